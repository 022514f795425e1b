package backup

import (
	"errors"
	"math/rand"
	"testing"
)

var errMissing = errors.New("missing")

// memStore is an in-memory document store keyed by path.
type memStore struct {
	docs      map[string]string
	failWrite bool
	writes    int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]string)}
}

func (m *memStore) Read(path string) (string, error) {
	text, ok := m.docs[path]
	if !ok {
		return "", errMissing
	}
	return text, nil
}

func (m *memStore) Write(path, text string) error {
	if m.failWrite {
		return errMissing
	}
	m.writes++
	m.docs[path] = text
	return nil
}

func TestRingScenario(t *testing.T) {
	store := newMemStore()
	store.docs["macro.txt"] = "A"
	ring := New(store, "macro.txt")

	if _, err := ring.Capture(); err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	assertRing(t, ring, []string{"A"}, 1)

	store.docs["macro.txt"] = "B"
	if _, err := ring.Capture(); err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	assertRing(t, ring, []string{"A", "B"}, 2)

	text, err := ring.Undo()
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if text != "A" || store.docs["macro.txt"] != "A" {
		t.Errorf("expected document 'A' after undo, got %q", store.docs["macro.txt"])
	}
	assertRing(t, ring, []string{"A", "B"}, 1)

	if _, err := ring.Undo(); !errors.Is(err, ErrOutOfHistory) {
		t.Errorf("expected ErrOutOfHistory, got %v", err)
	}
	if store.docs["macro.txt"] != "A" {
		t.Errorf("document changed by failed undo: %q", store.docs["macro.txt"])
	}
	assertRing(t, ring, []string{"A", "B"}, 1)

	if _, err := ring.Redo(); err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if store.docs["macro.txt"] != "B" {
		t.Errorf("expected document 'B' after redo, got %q", store.docs["macro.txt"])
	}
	assertRing(t, ring, []string{"A", "B"}, 2)
}

func TestRingCaptureDedup(t *testing.T) {
	store := newMemStore()
	store.docs["macro.txt"] = "A"
	ring := New(store, "macro.txt")

	appended, err := ring.Capture()
	if err != nil || !appended {
		t.Fatalf("first capture: appended=%v err=%v", appended, err)
	}

	appended, err = ring.Capture()
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if appended {
		t.Error("expected unchanged content not to be appended")
	}
	assertRing(t, ring, []string{"A"}, 1)
}

func TestRingFirstCaptureOfEmptyDocument(t *testing.T) {
	store := newMemStore()
	store.docs["macro.txt"] = ""
	ring := New(store, "macro.txt")

	appended, err := ring.Capture()
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if !appended {
		t.Error("first capture must append even an empty document")
	}
	assertRing(t, ring, []string{""}, 1)

	if appended, _ := ring.Capture(); appended {
		t.Error("second capture of empty document should be deduplicated")
	}
}

func TestRingReset(t *testing.T) {
	store := newMemStore()
	store.docs["macro.txt"] = "A"
	store.docs["other.txt"] = "X"
	ring := New(store, "macro.txt")

	ring.Capture()
	store.docs["macro.txt"] = "B"
	ring.Capture()

	ring.Reset("other.txt")
	assertRing(t, ring, nil, 0)
	if ring.Path() != "other.txt" {
		t.Errorf("expected ring bound to other.txt, got %s", ring.Path())
	}

	if _, err := ring.Undo(); !errors.Is(err, ErrOutOfHistory) {
		t.Errorf("expected ErrOutOfHistory from undo, got %v", err)
	}
	if _, err := ring.Redo(); !errors.Is(err, ErrOutOfHistory) {
		t.Errorf("expected ErrOutOfHistory from redo, got %v", err)
	}
	if store.docs["macro.txt"] != "B" || store.docs["other.txt"] != "X" {
		t.Error("reset must not write any document")
	}
}

func TestRingBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		content []string
		undos   int
		op      func(*Ring) (string, error)
	}{
		{name: "undo on empty ring", content: nil, op: (*Ring).Undo},
		{name: "redo on empty ring", content: nil, op: (*Ring).Redo},
		{name: "undo at first entry", content: []string{"A"}, op: (*Ring).Undo},
		{name: "redo at last entry", content: []string{"A", "B", "C"}, op: (*Ring).Redo},
		{name: "undo after rewinding", content: []string{"A", "B"}, undos: 1, op: (*Ring).Undo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.docs["m.txt"] = ""
			ring := New(store, "m.txt")
			for _, c := range tt.content {
				store.docs["m.txt"] = c
				ring.Capture()
			}
			for i := 0; i < tt.undos; i++ {
				if _, err := ring.Undo(); err != nil {
					t.Fatalf("setup undo failed: %v", err)
				}
			}

			before := ring.Entries()
			cursor := ring.Cursor()
			doc := store.docs["m.txt"]
			writes := store.writes

			if _, err := tt.op(ring); !errors.Is(err, ErrOutOfHistory) {
				t.Fatalf("expected ErrOutOfHistory, got %v", err)
			}

			assertRing(t, ring, before, cursor)
			if store.docs["m.txt"] != doc || store.writes != writes {
				t.Error("failed operation must not touch the document")
			}
		})
	}
}

func TestRingCaptureAfterUndoTargetsNewEntry(t *testing.T) {
	store := newMemStore()
	ring := New(store, "m.txt")
	for _, c := range []string{"A", "B", "C"} {
		store.docs["m.txt"] = c
		ring.Capture()
	}

	ring.Undo()
	ring.Undo()
	store.docs["m.txt"] = "D"
	if _, err := ring.Capture(); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	assertRing(t, ring, []string{"A", "B", "C", "D"}, 4)
	if ring.CanRedo() {
		t.Error("redo should be disabled at the newest entry")
	}
}

func TestRingEnablement(t *testing.T) {
	store := newMemStore()
	ring := New(store, "m.txt")

	if ring.CanUndo() || ring.CanRedo() {
		t.Error("empty ring must disable undo and redo")
	}

	store.docs["m.txt"] = "A"
	ring.Capture()
	if ring.CanUndo() || ring.CanRedo() {
		t.Error("single entry must disable undo and redo")
	}

	store.docs["m.txt"] = "B"
	ring.Capture()
	if !ring.CanUndo() || ring.CanRedo() {
		t.Error("expected undo enabled and redo disabled at newest entry")
	}

	ring.Undo()
	if ring.CanUndo() || !ring.CanRedo() {
		t.Error("expected undo disabled and redo enabled at oldest entry")
	}
}

func TestRingCaptureErrors(t *testing.T) {
	t.Run("unbound", func(t *testing.T) {
		ring := New(newMemStore(), "")
		if _, err := ring.Capture(); !errors.Is(err, ErrNoDocument) {
			t.Errorf("expected ErrNoDocument, got %v", err)
		}
	})

	t.Run("missing document", func(t *testing.T) {
		ring := New(newMemStore(), "gone.txt")
		if _, err := ring.Capture(); !errors.Is(err, errMissing) {
			t.Errorf("expected store error to propagate, got %v", err)
		}
		if ring.Len() != 0 || ring.Cursor() != 0 {
			t.Error("failed capture must leave the ring empty")
		}
	})

	t.Run("failed write keeps cursor", func(t *testing.T) {
		store := newMemStore()
		ring := New(store, "m.txt")
		store.docs["m.txt"] = "A"
		ring.Capture()
		store.docs["m.txt"] = "B"
		ring.Capture()

		store.failWrite = true
		if _, err := ring.Undo(); !errors.Is(err, errMissing) {
			t.Fatalf("expected write error, got %v", err)
		}
		if ring.Cursor() != 2 {
			t.Errorf("expected cursor to stay at 2, got %d", ring.Cursor())
		}
	})
}

// TestRingRandomOperations drives the ring with random edits, undos and
// redos and checks the invariants after every step.
func TestRingRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	store := newMemStore()
	store.docs["m.txt"] = ""
	ring := New(store, "m.txt")
	words := []string{"", "A", "B", "C"}

	for step := 0; step < 2000; step++ {
		switch rng.Intn(4) {
		case 0:
			store.docs["m.txt"] = words[rng.Intn(len(words))]
			ring.Capture()
		case 1:
			ring.Capture()
		case 2:
			cursor := ring.Cursor()
			before := store.docs["m.txt"]
			if _, err := ring.Undo(); err == nil {
				// Redo right after a successful undo must restore the content.
				if _, err := ring.Redo(); err != nil {
					t.Fatalf("step %d: redo after undo failed: %v", step, err)
				}
				if store.docs["m.txt"] != before {
					t.Fatalf("step %d: redo did not restore %q", step, before)
				}
				if ring.Cursor() != cursor {
					t.Fatalf("step %d: cursor %d after undo/redo, want %d", step, ring.Cursor(), cursor)
				}
				ring.Undo()
			}
		case 3:
			ring.Redo()
		}

		entries := ring.Entries()
		cursor := ring.Cursor()
		if cursor < 0 || cursor > len(entries) {
			t.Fatalf("step %d: cursor %d out of bounds [0,%d]", step, cursor, len(entries))
		}
		for i := 1; i < len(entries); i++ {
			if entries[i] == entries[i-1] {
				t.Fatalf("step %d: consecutive duplicate entries at %d", step, i)
			}
		}
	}
}

func TestRingWriteMatchesCursor(t *testing.T) {
	store := newMemStore()
	ring := New(store, "m.txt")
	for _, c := range []string{"A", "B", "C", "D"} {
		store.docs["m.txt"] = c
		ring.Capture()
	}

	ops := []func() (string, error){ring.Undo, ring.Undo, ring.Redo, ring.Undo, ring.Undo, ring.Redo, ring.Redo, ring.Redo}
	for i, op := range ops {
		if _, err := op(); err != nil {
			t.Fatalf("op %d failed: %v", i, err)
		}
		entries := ring.Entries()
		if got, want := store.docs["m.txt"], entries[ring.Cursor()-1]; got != want {
			t.Fatalf("op %d: document %q does not match entry %q", i, got, want)
		}
	}
}

func assertRing(t *testing.T, ring *Ring, entries []string, cursor int) {
	t.Helper()

	got := ring.Entries()
	if len(got) != len(entries) {
		t.Fatalf("expected entries %v, got %v", entries, got)
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("expected entries %v, got %v", entries, got)
		}
	}
	if ring.Cursor() != cursor {
		t.Fatalf("expected cursor %d, got %d", cursor, ring.Cursor())
	}
}

func TestRingCurrent(t *testing.T) {
	store := newMemStore()
	ring := New(store, "doc")

	store.docs["doc"] = "A"
	if _, ok := ring.Current(); ok {
		t.Fatal("expected no current snapshot before the first capture")
	}
	ring.Capture()
	store.docs["doc"] = "B"
	ring.Capture()

	if got, ok := ring.Current(); !ok || got != "B" {
		t.Errorf("expected B at the cursor, got %q (ok %v)", got, ok)
	}
	ring.Undo()
	if got, _ := ring.Current(); got != "A" {
		t.Errorf("expected A after undo, got %q", got)
	}
}
