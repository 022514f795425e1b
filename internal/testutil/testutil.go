package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// TempMacroDir is a temporary macro folder wired into viper for command tests
type TempMacroDir struct {
	Path   string
	Prefix string
	T      *testing.T
}

// NewTempMacroDir creates a macro folder under t.TempDir and points the
// macros.folder and macros.prefix settings at it until the test ends
func NewTempMacroDir(t *testing.T, prefix string) *TempMacroDir {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "macros")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create macro folder: %v", err)
	}

	oldFolder := viper.Get("macros.folder")
	oldPrefix := viper.Get("macros.prefix")
	viper.Set("macros.folder", dir)
	viper.Set("macros.prefix", prefix)
	t.Cleanup(func() {
		viper.Set("macros.folder", oldFolder)
		viper.Set("macros.prefix", oldPrefix)
	})

	return &TempMacroDir{
		Path:   dir,
		Prefix: prefix,
		T:      t,
	}
}

// MacroPath returns the file path of the named macro
func (d *TempMacroDir) MacroPath(name string) string {
	return filepath.Join(d.Path, d.Prefix+name+".txt")
}

// CreateMacro writes a macro file with the given content
func (d *TempMacroDir) CreateMacro(name, content string) {
	d.T.Helper()
	if err := os.WriteFile(d.MacroPath(name), []byte(content), 0644); err != nil {
		d.T.Fatalf("failed to create macro: %v", err)
	}
}

// ReadMacro returns the content of a macro file
func (d *TempMacroDir) ReadMacro(name string) string {
	d.T.Helper()
	data, err := os.ReadFile(d.MacroPath(name))
	if err != nil {
		d.T.Fatalf("failed to read macro: %v", err)
	}
	return string(data)
}

// MacroExists checks if a macro file exists
func (d *TempMacroDir) MacroExists(name string) bool {
	_, err := os.Stat(d.MacroPath(name))
	return err == nil
}

// CaptureStdout runs fn with os.Stdout redirected and returns what it printed
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	old := os.Stdout
	os.Stdout = w
	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()
	defer func() { os.Stdout = old }()
	fn()
	w.Close()
	return string(<-done)
}
