package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pders01/macrotools/internal/testutil"
)

func TestStatsCommand(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("cube", "polyCube -w 2;\nmove 1 0 0;\n")
	dir.CreateMacro("sphere", "polySphere;\nmove 0 1 0;\nrotate 0 90 0;\n")
	dir.CreateMacro("empty", "")
	defer func() { statsJSON = false }()

	statsJSON = true
	out := testutil.CaptureStdout(t, func() {
		if err := runStats(nil, nil); err != nil {
			t.Fatalf("stats failed: %v", err)
		}
	})

	var stats macroStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if stats.TotalMacros != 3 {
		t.Errorf("expected 3 macros, got %d", stats.TotalMacros)
	}
	if stats.TotalLines != 5 {
		t.Errorf("expected 5 lines, got %d", stats.TotalLines)
	}
	if stats.EmptyMacros != 1 {
		t.Errorf("expected 1 empty macro, got %d", stats.EmptyMacros)
	}
	if stats.Largest != "sphere" {
		t.Errorf("expected sphere to be largest, got %q", stats.Largest)
	}
	if stats.WithEmbeddings != 0 || stats.WithoutEmbeddings != 3 {
		t.Errorf("unexpected embedding coverage %d/%d", stats.WithEmbeddings, stats.WithoutEmbeddings)
	}
	if len(stats.TopCommands) == 0 || stats.TopCommands[0].Command != "move" || stats.TopCommands[0].Macros != 2 {
		t.Errorf("expected move to be the top command, got %+v", stats.TopCommands)
	}
}

func TestStatsCommandEmptyFolder(t *testing.T) {
	testutil.NewTempMacroDir(t, "")
	statsJSON, statsToon = false, false

	out := testutil.CaptureStdout(t, func() {
		if err := runStats(nil, nil); err != nil {
			t.Fatalf("stats failed: %v", err)
		}
	})
	if !strings.Contains(out, "No macros found") {
		t.Errorf("expected empty message, got %q", out)
	}
}
