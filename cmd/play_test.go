package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/pders01/macrotools/internal/playback"
	"github.com/pders01/macrotools/internal/testutil"
)

func TestPlayCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("count", "for i = 1, 3 do print(i) end\n")
	dir.CreateMacro("star", "for i in range(2):\n    print(i)\n")
	dir.CreateMacro("broken", "this is not lua\n")
	defer func() { playEngine = "" }()

	playEngine = ""
	out := testutil.CaptureStdout(t, func() {
		if err := runPlay(nil, []string{"count"}); err != nil {
			t.Fatalf("play failed: %v", err)
		}
	})
	if out != "1\n2\n3\n" {
		t.Errorf("unexpected output %q", out)
	}

	playEngine = "starlark"
	out = testutil.CaptureStdout(t, func() {
		if err := runPlay(nil, []string{"star"}); err != nil {
			t.Fatalf("play --engine starlark failed: %v", err)
		}
	})
	if out != "0\n1\n" {
		t.Errorf("unexpected output %q", out)
	}

	playEngine = ""
	err := runPlay(nil, []string{"broken"})
	if err == nil || !strings.Contains(err.Error(), "macro broken failed") {
		t.Errorf("expected playback error, got %v", err)
	}

	playEngine = "python"
	if err := runPlay(nil, []string{"count"}); !errors.Is(err, playback.ErrUnknownEngine) {
		t.Errorf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestRecordCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("rec", "x = 1\n")
	defer func() {
		stdin = strings.NewReader("")
		recordEngine, recordNoExec, recordCreate = "", false, false
	}()

	recordEngine, recordNoExec, recordCreate = "", false, false
	stdin = strings.NewReader("y = x + 1\nprint(y)\nnot lua at all\n")
	out := testutil.CaptureStdout(t, func() {
		if err := runRecord(nil, []string{"rec"}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	})

	// x is not defined in the fresh engine, so y = x + 1 fails.
	if got := dir.ReadMacro("rec"); got != "x = 1\ny = x + 1\nprint(y)\nnot lua at all\n" {
		t.Errorf("unexpected recorded content %q", got)
	}
	if !strings.Contains(out, "✓ Recorded 3 line(s) into rec (2 failed)") {
		t.Errorf("unexpected output %q", out)
	}

	recordNoExec, recordCreate = true, true
	stdin = strings.NewReader("anything goes\n")
	testutil.CaptureStdout(t, func() {
		if err := runRecord(nil, []string{"fresh"}); err != nil {
			t.Fatalf("record --create failed: %v", err)
		}
	})
	if got := dir.ReadMacro("fresh"); got != "anything goes\n" {
		t.Errorf("unexpected content %q", got)
	}
}
