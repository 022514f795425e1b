package playback

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pders01/macrotools/internal/models"
	lua "github.com/yuin/gopher-lua"
)

// Lua runs macros on a gopher-lua state with only the safe libraries open.
type Lua struct {
	L   *lua.LState
	out io.Writer
}

// NewLua creates a Lua engine whose print writes to out.
func NewLua(out io.Writer) *Lua {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	// io, os, debug and package stay closed.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	e := &Lua{L: L, out: out}
	L.SetGlobal("print", L.NewFunction(e.print))
	return e
}

// Name returns the engine kind.
func (e *Lua) Name() models.Engine {
	return models.EngineLua
}

// Exec runs src in the shared state. ctx cancels long-running chunks.
func (e *Lua) Exec(ctx context.Context, chunk, src string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	fn, err := e.L.Load(strings.NewReader(src), chunk)
	if err != nil {
		return fmt.Errorf("lua syntax error: %w", err)
	}

	e.L.Push(fn)
	if err := e.L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("lua error: %w", err)
	}
	return nil
}

// Close releases the Lua state.
func (e *Lua) Close() error {
	e.L.Close()
	return nil
}

func (e *Lua) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(e.out, strings.Join(parts, "\t"))
	return 0
}
