package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/macrotools/internal/models"
	"github.com/spf13/afero"
)

// Suffix is the file extension of every macro file
const Suffix = ".txt"

// Common errors for store operations.
var (
	ErrNotFound    = errors.New("macro not found")
	ErrExists      = errors.New("macro name is already taken")
	ErrInvalidName = errors.New("invalid macro name")
)

// Store keeps macros as plain text files named <prefix><name>.txt inside a folder
type Store struct {
	fs     afero.Fs
	folder string
	prefix string
}

// New creates a store over the given filesystem
func New(fs afero.Fs, folder, prefix string) *Store {
	return &Store{
		fs:     fs,
		folder: folder,
		prefix: prefix,
	}
}

// NewOS creates a store on the real filesystem
func NewOS(folder, prefix string) *Store {
	return New(afero.NewOsFs(), folder, prefix)
}

// Fs returns the underlying filesystem
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Folder returns the macro folder
func (s *Store) Folder() string {
	return s.folder
}

// Prefix returns the macro file name prefix
func (s *Store) Prefix() string {
	return s.prefix
}

// Path returns the file path of the named macro
func (s *Store) Path(name string) string {
	return filepath.Join(s.folder, s.prefix+name+Suffix)
}

// NameOf returns the macro name for a file name, stripping prefix and suffix
func (s *Store) NameOf(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), Suffix)
	return strings.TrimPrefix(name, s.prefix)
}

// EnsureFolder creates the macro folder if it does not exist
func (s *Store) EnsureFolder() error {
	if err := s.fs.MkdirAll(s.folder, 0755); err != nil {
		return fmt.Errorf("failed to create macro folder: %w", err)
	}
	return nil
}

// Read returns the full content of the file at path
func (s *Store) Read(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to read macro: %w", err)
	}
	return string(data), nil
}

// Write truncates the file at path and writes text, creating it if absent
func (s *Store) Write(path, text string) error {
	if ok, _ := afero.DirExists(s.fs, filepath.Dir(path)); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, filepath.Dir(path))
	}
	if err := afero.WriteFile(s.fs, path, []byte(text), 0644); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to write macro: %w", err)
	}
	return nil
}

// Append adds text to the end of an existing file
func (s *Store) Append(path, text string) error {
	file, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to open macro: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(text); err != nil {
		return fmt.Errorf("failed to append to macro: %w", err)
	}
	return nil
}

// List returns the names of regular files in folder that start with prefix
// and end with suffix. A missing folder yields an empty list.
func (s *Store) List(folder, prefix, suffix string) ([]string, error) {
	exists, err := afero.DirExists(s.fs, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to check folder: %w", err)
	}
	if !exists {
		return []string{}, nil
	}

	infos, err := afero.ReadDir(s.fs, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder: %w", err)
	}

	names := []string{}
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		if strings.HasPrefix(info.Name(), prefix) && strings.HasSuffix(info.Name(), suffix) {
			names = append(names, info.Name())
		}
	}
	return names, nil
}

// Macros returns every macro in the folder, sorted by name
func (s *Store) Macros() ([]models.Macro, error) {
	files, err := s.List(s.folder, s.prefix, Suffix)
	if err != nil {
		return nil, err
	}

	macros := make([]models.Macro, 0, len(files))
	for _, file := range files {
		m, err := s.Stat(s.NameOf(file))
		if err != nil {
			continue
		}
		macros = append(macros, m)
	}
	return macros, nil
}

// Stat returns file information about the named macro
func (s *Store) Stat(name string) (models.Macro, error) {
	path := s.Path(name)
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Macro{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return models.Macro{}, fmt.Errorf("failed to stat macro: %w", err)
	}

	content, err := s.Read(path)
	if err != nil {
		return models.Macro{}, err
	}

	return models.Macro{
		Name:    name,
		File:    info.Name(),
		Path:    path,
		Size:    info.Size(),
		Lines:   CountLines(content),
		ModTime: info.ModTime(),
	}, nil
}

// Exists reports whether the named macro exists
func (s *Store) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, s.Path(name))
	return err == nil && ok
}

// Create writes an empty macro. An existing macro is only replaced when
// overwrite is set.
func (s *Store) Create(name string, overwrite bool) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if s.Exists(name) && !overwrite {
		return "", fmt.Errorf("%w: %s", ErrExists, name)
	}

	path := s.Path(name)
	if err := s.Write(path, ""); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes the named macro
func (s *Store) Remove(name string) error {
	if !s.Exists(name) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := s.fs.Remove(s.Path(name)); err != nil {
		return fmt.Errorf("failed to delete macro: %w", err)
	}
	return nil
}

// Rename moves a macro to a new name that must not be taken
func (s *Store) Rename(oldName, newName string) (string, error) {
	if err := ValidateName(newName); err != nil {
		return "", err
	}
	if !s.Exists(oldName) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	if s.Exists(newName) {
		return "", fmt.Errorf("%w: %s", ErrExists, newName)
	}

	newPath := s.Path(newName)
	if err := s.fs.Rename(s.Path(oldName), newPath); err != nil {
		return "", fmt.Errorf("failed to rename macro: %w", err)
	}
	return newPath, nil
}

// ValidateName rejects names that cannot be used as a macro file name
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	}
	return nil
}

// CountLines counts lines, including a final line without a newline
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
