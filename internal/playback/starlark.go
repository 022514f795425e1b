package playback

import (
	"context"
	"fmt"
	"io"

	"github.com/pders01/macrotools/internal/models"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var starlarkOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Starlark runs macros as Starlark programs. Every chunk executes against
// the same module globals, like lines typed into a REPL.
type Starlark struct {
	thread  *starlark.Thread
	globals starlark.StringDict
}

// NewStarlark creates a Starlark engine whose print writes to out.
func NewStarlark(out io.Writer) *Starlark {
	thread := &starlark.Thread{
		Name: "macro",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(out, msg)
		},
	}
	return &Starlark{
		thread:  thread,
		globals: make(starlark.StringDict),
	}
}

// Name returns the engine kind.
func (e *Starlark) Name() models.Engine {
	return models.EngineStarlark
}

// Exec runs src, updating the shared globals in place.
func (e *Starlark) Exec(ctx context.Context, chunk, src string) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	f, err := starlarkOptions.Parse(chunk, src, 0)
	if err != nil {
		return fmt.Errorf("starlark syntax error: %w", err)
	}

	if err := starlark.ExecREPLChunk(f, e.thread, e.globals); err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok {
			return fmt.Errorf("starlark error: %s", evalErr.Backtrace())
		}
		return fmt.Errorf("starlark error: %w", err)
	}
	return nil
}

// Close drops the engine globals.
func (e *Starlark) Close() error {
	e.globals = nil
	return nil
}
