package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/pders01/macrotools/internal/store"
	"github.com/pders01/macrotools/internal/testutil"
)

func TestNewCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "mt_")
	newForce = false

	testutil.CaptureStdout(t, func() {
		if err := runNew(nil, []string{"cube"}); err != nil {
			t.Fatalf("new command failed: %v", err)
		}
	})
	if !dir.MacroExists("cube") || dir.ReadMacro("cube") != "" {
		t.Fatal("expected empty macro file")
	}

	dir.CreateMacro("cube", "polyCube;\n")
	if err := runNew(nil, []string{"cube"}); !errors.Is(err, store.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if dir.ReadMacro("cube") != "polyCube;\n" {
		t.Error("existing macro was overwritten without --force")
	}

	newForce = true
	defer func() { newForce = false }()
	testutil.CaptureStdout(t, func() {
		if err := runNew(nil, []string{"cube"}); err != nil {
			t.Fatalf("new --force failed: %v", err)
		}
	})
	if dir.ReadMacro("cube") != "" {
		t.Error("expected --force to replace the macro")
	}

	if err := runNew(nil, []string{"../escape"}); !errors.Is(err, store.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestSaveCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	saveAppend, saveCreate = false, false
	defer func() { stdin = strings.NewReader("") }()

	stdin = strings.NewReader("polyCube;\n")
	if err := runSave(nil, []string{"cube"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without --create, got %v", err)
	}

	saveCreate = true
	testutil.CaptureStdout(t, func() {
		if err := runSave(nil, []string{"cube"}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	})
	saveCreate = false

	saveAppend = true
	stdin = strings.NewReader("move 1 0 0;\n")
	testutil.CaptureStdout(t, func() {
		if err := runSave(nil, []string{"cube"}); err != nil {
			t.Fatalf("save --append failed: %v", err)
		}
	})
	saveAppend = false

	if got := dir.ReadMacro("cube"); got != "polyCube;\nmove 1 0 0;\n" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestShowCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("cube", "polyCube;\nmove 1 0 0;")

	tests := []struct {
		name    string
		numbers bool
		info    bool
		want    string
	}{
		{
			name: "plain",
			want: "polyCube;\nmove 1 0 0;\n",
		},
		{
			name:    "numbered",
			numbers: true,
			want:    "   1  polyCube;\n   2  move 1 0 0;\n",
		},
		{
			name: "info",
			info: true,
			want: "Lines:    2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			showNumbers, showInfo = tt.numbers, tt.info
			defer func() { showNumbers, showInfo = false, false }()

			out := testutil.CaptureStdout(t, func() {
				if err := runShow(nil, []string{"cube"}); err != nil {
					t.Fatalf("show failed: %v", err)
				}
			})
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected output to contain %q, got %q", tt.want, out)
			}
		})
	}

	if err := runShow(nil, []string{"missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("keep", "x\n")
	dir.CreateMacro("drop", "y\n")
	defer func() {
		stdin = strings.NewReader("")
		deleteForce = false
	}()

	deleteForce = false
	stdin = strings.NewReader("n\n")
	out := testutil.CaptureStdout(t, func() {
		if err := runDelete(nil, []string{"keep"}); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
	})
	if !dir.MacroExists("keep") || !strings.Contains(out, "Aborted") {
		t.Error("expected delete to be aborted")
	}

	stdin = strings.NewReader("y\n")
	testutil.CaptureStdout(t, func() {
		if err := runDelete(nil, []string{"keep"}); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
	})
	if dir.MacroExists("keep") {
		t.Error("expected confirmed delete to remove the macro")
	}

	deleteForce = true
	testutil.CaptureStdout(t, func() {
		if err := runDelete(nil, []string{"drop"}); err != nil {
			t.Fatalf("delete --force failed: %v", err)
		}
	})
	if dir.MacroExists("drop") {
		t.Error("expected --force to remove the macro")
	}

	if err := runDelete(nil, []string{"drop"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("old", "x\n")
	dir.CreateMacro("taken", "y\n")

	if err := runRename(nil, []string{"old", "taken"}); !errors.Is(err, store.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	testutil.CaptureStdout(t, func() {
		if err := runRename(nil, []string{"old", "new"}); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
	})
	if dir.MacroExists("old") || dir.ReadMacro("new") != "x\n" {
		t.Error("expected macro to be renamed with its content")
	}
}

func TestClearCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("full", "x\ny\n")

	testutil.CaptureStdout(t, func() {
		if err := runClear(nil, []string{"full"}); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
	})
	if !dir.MacroExists("full") || dir.ReadMacro("full") != "" {
		t.Error("expected macro to be emptied but kept")
	}
}
