package playback

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pders01/macrotools/internal/models"
)

func TestNewUnknownEngine(t *testing.T) {
	if _, err := New("mel", nil); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestEnginesPrintAndKeepGlobals(t *testing.T) {
	tests := []struct {
		engine models.Engine
		chunks []string
		want   string
	}{
		{
			engine: models.EngineLua,
			chunks: []string{"x = 40", "x = x + 2", "print('answer', x)"},
			want:   "answer\t42\n",
		},
		{
			engine: models.EngineStarlark,
			chunks: []string{"x = 40", "x = x + 2", "print('answer', x)"},
			want:   "answer 42\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.engine), func(t *testing.T) {
			var out bytes.Buffer
			engine, err := New(tt.engine, &out)
			if err != nil {
				t.Fatalf("failed to create engine: %v", err)
			}
			defer engine.Close()

			if engine.Name() != tt.engine {
				t.Errorf("expected engine %s, got %s", tt.engine, engine.Name())
			}

			for i, chunk := range tt.chunks {
				if err := engine.Exec(context.Background(), "line", chunk); err != nil {
					t.Fatalf("chunk %d failed: %v", i, err)
				}
			}

			if out.String() != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, out.String())
			}
		})
	}
}

func TestEnginesReportErrors(t *testing.T) {
	tests := []struct {
		engine models.Engine
		src    string
	}{
		{models.EngineLua, "this is not lua"},
		{models.EngineLua, "error('boom')"},
		{models.EngineStarlark, "def ("},
		{models.EngineStarlark, "fail('boom')"},
	}

	for _, tt := range tests {
		t.Run(string(tt.engine)+"/"+tt.src, func(t *testing.T) {
			err := Run(context.Background(), tt.engine, "bad", tt.src, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "bad") {
				t.Errorf("expected error to name the macro, got %v", err)
			}
		})
	}
}

func TestLuaSandbox(t *testing.T) {
	err := Run(context.Background(), models.EngineLua, "sandbox", "os.exit(1)", nil)
	if err == nil {
		t.Error("expected os library to be unavailable")
	}
}

func TestEnginesHonourCancellation(t *testing.T) {
	loops := map[models.Engine]string{
		models.EngineLua:      "while true do end",
		models.EngineStarlark: "while True:\n    pass\n",
	}

	for kind, src := range loops {
		t.Run(string(kind), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- Run(ctx, kind, "loop", src, nil)
			}()

			select {
			case err := <-done:
				if err == nil {
					t.Error("expected cancellation error")
				}
			case <-time.After(5 * time.Second):
				t.Fatal("engine did not stop after cancellation")
			}
		})
	}
}
