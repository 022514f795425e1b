package backup

import (
	"errors"
	"fmt"
	"sync"
)

// Common errors for ring operations.
var (
	ErrOutOfHistory = errors.New("out of history")
	ErrNoDocument   = errors.New("no document bound to backup ring")
)

// Store is the part of the document store the ring depends on.
type Store interface {
	Read(path string) (string, error)
	Write(path, text string) error
}

// Ring is an append-only history of whole-document snapshots for a single
// active document, with a cursor used to step back and forth through edits.
//
// The cursor is 1-based: cursor == 0 means nothing has been captured yet,
// otherwise entries[cursor-1] is the snapshot currently materialized in the
// document. The document on disk is always the source of truth; the ring
// never serves content that it has not read from or written to the store.
type Ring struct {
	mu sync.Mutex

	store   Store
	path    string
	entries []string
	cursor  int
}

// New creates an empty ring bound to the document at path.
func New(store Store, path string) *Ring {
	return &Ring{
		store: store,
		path:  path,
	}
}

// Capture reads the current document content and appends it to the history
// unless it equals the most recent entry. The very first capture of a
// session is always appended, even when the document is empty.
func (r *Ring) Capture() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return false, ErrNoDocument
	}

	snapshot, err := r.store.Read(r.path)
	if err != nil {
		return false, fmt.Errorf("failed to capture snapshot: %w", err)
	}

	if n := len(r.entries); n > 0 && r.entries[n-1] == snapshot {
		return false, nil
	}

	r.entries = append(r.entries, snapshot)
	// Point at the new entry even if the cursor was moved back by undo.
	r.cursor = len(r.entries)
	return true, nil
}

// Undo writes the snapshot preceding the cursor to the document and moves
// the cursor back. It fails with ErrOutOfHistory at the oldest entry.
func (r *Ring) Undo() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.moveLocked(-1)
}

// Redo writes the snapshot following the cursor to the document and moves
// the cursor forward. It fails with ErrOutOfHistory at the newest entry.
func (r *Ring) Redo() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.moveLocked(1)
}

// moveLocked steps the cursor by delta, writing the target snapshot first so
// a failed write leaves the ring untouched.
func (r *Ring) moveLocked(delta int) (string, error) {
	target := clamp(r.cursor+delta, 0, len(r.entries))
	if target != r.cursor+delta || target < 1 {
		return "", ErrOutOfHistory
	}

	snapshot := r.entries[target-1]
	if err := r.store.Write(r.path, snapshot); err != nil {
		return "", fmt.Errorf("failed to restore snapshot %d: %w", target, err)
	}

	r.cursor = target
	return snapshot, nil
}

// Reset discards the history and rebinds the ring to a new document.
// An empty path leaves the ring unbound.
func (r *Ring) Reset(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.cursor = 0
	r.path = path
}

// CanUndo reports whether Undo would succeed.
func (r *Ring) CanUndo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor > 1
}

// CanRedo reports whether Redo would succeed.
func (r *Ring) CanRedo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor < len(r.entries)
}

// Cursor returns the 1-based position of the materialized snapshot.
func (r *Ring) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Current returns the snapshot at the cursor. ok is false while the ring
// is empty.
func (r *Ring) Current() (snapshot string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor == 0 {
		return "", false
	}
	return r.entries[r.cursor-1], true
}

// Len returns the number of captured snapshots.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Path returns the document the ring is bound to.
func (r *Ring) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Entries returns a copy of the captured snapshots, oldest first.
func (r *Ring) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
