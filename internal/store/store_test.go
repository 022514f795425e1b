package store

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func newTestStore(t *testing.T, prefix string) *Store {
	t.Helper()

	s := New(afero.NewMemMapFs(), "/macros", prefix)
	if err := s.EnsureFolder(); err != nil {
		t.Fatalf("failed to create folder: %v", err)
	}
	return s
}

func TestReadWrite(t *testing.T) {
	s := newTestStore(t, "")
	path := s.Path("cube")

	if _, err := s.Read(path); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Write(path, "polyCube;\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := s.Write(path, "sphere;"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	text, err := s.Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if text != "sphere;" {
		t.Errorf("expected truncated content 'sphere;', got %q", text)
	}

	if err := s.Write(path, ""); err != nil {
		t.Fatalf("write empty failed: %v", err)
	}
	if text, _ := s.Read(path); text != "" {
		t.Errorf("expected empty content, got %q", text)
	}
}

func TestWriteMissingFolder(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/nowhere", "")
	if err := s.Write(s.Path("x"), "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAppend(t *testing.T) {
	s := newTestStore(t, "")
	path := s.Path("rec")

	if err := s.Append(path, "a\n"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing file, got %v", err)
	}

	s.Write(path, "a\n")
	if err := s.Append(path, "b\n"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if text, _ := s.Read(path); text != "a\nb\n" {
		t.Errorf("expected 'a\\nb\\n', got %q", text)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t, "mt_")
	fs := s.Fs()

	afero.WriteFile(fs, "/macros/mt_one.txt", []byte("1"), 0644)
	afero.WriteFile(fs, "/macros/mt_two.txt", []byte("2"), 0644)
	afero.WriteFile(fs, "/macros/other.txt", []byte("x"), 0644)
	afero.WriteFile(fs, "/macros/mt_notes.md", []byte("x"), 0644)
	fs.MkdirAll("/macros/mt_dir.txt", 0755)

	tests := []struct {
		name     string
		folder   string
		prefix   string
		suffix   string
		expected []string
	}{
		{
			name:     "prefix and suffix",
			folder:   "/macros",
			prefix:   "mt_",
			suffix:   ".txt",
			expected: []string{"mt_one.txt", "mt_two.txt"},
		},
		{
			name:     "no prefix",
			folder:   "/macros",
			prefix:   "",
			suffix:   ".txt",
			expected: []string{"mt_one.txt", "mt_two.txt", "other.txt"},
		},
		{
			name:     "missing folder",
			folder:   "/missing",
			prefix:   "",
			suffix:   ".txt",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(tt.folder, tt.prefix, tt.suffix)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestMacros(t *testing.T) {
	s := newTestStore(t, "mt_")
	s.Write(s.Path("cube"), "polyCube;\nmove 1 0 0;\n")
	s.Write(s.Path("empty"), "")

	macros, err := s.Macros()
	if err != nil {
		t.Fatalf("macros failed: %v", err)
	}
	if len(macros) != 2 {
		t.Fatalf("expected 2 macros, got %d", len(macros))
	}

	if macros[0].Name != "cube" || macros[0].File != "mt_cube.txt" {
		t.Errorf("unexpected first macro: %+v", macros[0])
	}
	if macros[0].Lines != 2 {
		t.Errorf("expected 2 lines, got %d", macros[0].Lines)
	}
	if !macros[1].Empty() {
		t.Errorf("expected %s to be empty", macros[1].Name)
	}
}

func TestCreate(t *testing.T) {
	s := newTestStore(t, "")

	if _, err := s.Create("cube", false); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	s.Write(s.Path("cube"), "content")

	if _, err := s.Create("cube", false); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	if _, err := s.Create("cube", true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if text, _ := s.Read(s.Path("cube")); text != "" {
		t.Errorf("expected overwritten macro to be empty, got %q", text)
	}
}

func TestRenameAndRemove(t *testing.T) {
	s := newTestStore(t, "")
	s.Create("a", false)
	s.Create("b", false)

	if _, err := s.Rename("a", "b"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := s.Rename("missing", "c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	path, err := s.Rename("a", "c")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if path != s.Path("c") || s.Exists("a") || !s.Exists("c") {
		t.Error("rename did not move the file")
	}

	if err := s.Remove("c"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := s.Remove("c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"cube", false},
		{"my macro", false},
		{"", true},
		{"   ", true},
		{"a/b", true},
		{`a\b`, true},
		{".hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.wantErr != (err != nil) {
				t.Errorf("ValidateName(%q) = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("expected ErrInvalidName, got %v", err)
			}
		})
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		content  string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n\n", 2},
	}

	for _, tt := range tests {
		if got := CountLines(tt.content); got != tt.expected {
			t.Errorf("CountLines(%q) = %d, want %d", tt.content, got, tt.expected)
		}
	}
}
