package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pders01/macrotools/internal/embeddings"
	"github.com/pders01/macrotools/internal/testutil"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func TestPruneNothing(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("full", "polyCube;\n")
	pruneForce = false

	out := testutil.CaptureStdout(t, func() {
		if err := runPrune(nil, []string{}); err != nil {
			t.Fatalf("prune command failed: %v", err)
		}
	})
	if !strings.Contains(out, "Nothing to prune") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPruneDryRun(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("empty", "")
	dir.CreateMacro("blank", "  \n\n")
	dir.CreateMacro("full", "polyCube;\n")
	pruneForce = false

	out := testutil.CaptureStdout(t, func() {
		if err := runPrune(nil, []string{}); err != nil {
			t.Fatalf("prune command failed: %v", err)
		}
	})

	if !strings.Contains(out, "Macros to prune (2)") || !strings.Contains(out, "whitespace only") {
		t.Errorf("unexpected output:\n%s", out)
	}
	for _, name := range []string{"empty", "blank", "full"} {
		if !dir.MacroExists(name) {
			t.Errorf("dry run deleted %s", name)
		}
	}
}

func TestPruneForce(t *testing.T) {
	dir := testutil.NewTempMacroDir(t, "")
	dir.CreateMacro("empty", "")
	dir.CreateMacro("full", "polyCube;\n")

	fs := afero.NewOsFs()
	cache := embeddings.NewCache(fs, filepath.Join(dir.Path, embeddings.CacheDir), viper.GetString("embeddings.model"))
	cache.Put("polyCube;\n", []float64{1, 2})
	cache.Put("text of a deleted macro", []float64{3, 4})

	pruneForce = true
	defer func() { pruneForce = false }()

	testutil.CaptureStdout(t, func() {
		if err := runPrune(nil, []string{}); err != nil {
			t.Fatalf("prune command failed: %v", err)
		}
	})

	if dir.MacroExists("empty") {
		t.Error("expected empty macro to be pruned")
	}
	if !dir.MacroExists("full") {
		t.Error("expected full macro to be kept")
	}
	if _, ok := cache.Get("polyCube;\n"); !ok {
		t.Error("expected live embedding to be kept")
	}
	if _, ok := cache.Get("text of a deleted macro"); ok {
		t.Error("expected stale embedding to be pruned")
	}
}
