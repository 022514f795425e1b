package playback

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pders01/macrotools/internal/models"
)

// ErrUnknownEngine is returned for an engine name that is not supported.
var ErrUnknownEngine = errors.New("unknown playback engine")

// Engine executes macro source. Globals defined by one Exec call are visible
// to the next, so a recording can be replayed line by line.
type Engine interface {
	Name() models.Engine
	Exec(ctx context.Context, chunk, src string) error
	Close() error
}

// New creates an engine of the given kind that prints to out.
func New(kind models.Engine, out io.Writer) (Engine, error) {
	if out == nil {
		out = io.Discard
	}

	switch kind {
	case models.EngineLua:
		return NewLua(out), nil
	case models.EngineStarlark:
		return NewStarlark(out), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be: lua, starlark)", ErrUnknownEngine, kind)
	}
}

// Run executes a whole macro on a fresh engine.
func Run(ctx context.Context, kind models.Engine, name, src string, out io.Writer) error {
	engine, err := New(kind, out)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Exec(ctx, name, src); err != nil {
		return fmt.Errorf("macro %s failed: %w", name, err)
	}
	return nil
}
