package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pders01/macrotools/internal/backup"
	"github.com/pders01/macrotools/internal/models"
	"github.com/pders01/macrotools/internal/playback"
	"github.com/pders01/macrotools/internal/record"
	"github.com/pders01/macrotools/internal/store"
	"github.com/pders01/macrotools/internal/watch"
)

// Common errors for session operations.
var (
	ErrNoActiveMacro = errors.New("no macro is selected")
	ErrRecording     = errors.New("not allowed while recording")
)

// Options configures a Session
type Options struct {
	Engine        models.Engine
	ExecuteRecord bool
	Debounce      time.Duration
	Out           io.Writer
	Logger        *slog.Logger
}

// Session owns the active macro and everything scoped to it: the backup
// ring, the recorder and the follow watcher. All operations are serialized
// by the session lock.
type Session struct {
	mu sync.Mutex

	store    *store.Store
	ring     *backup.Ring
	recorder *record.Recorder
	opts     Options
	logger   *slog.Logger

	active string
	// generation increments on every rebind so a watcher from a previous
	// binding cannot capture into the new ring.
	generation uint64
	watcher    *watch.Watcher
}

// New creates a session with no active macro
func New(s *store.Store, opts Options) *Session {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Engine == "" {
		opts.Engine = models.EngineLua
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{
		store:    s,
		ring:     backup.New(s, ""),
		recorder: record.New(s, opts.ExecuteRecord, opts.Out, logger),
		opts:     opts,
		logger:   logger,
	}
}

// Store returns the session's document store
func (s *Session) Store() *store.Store {
	return s.store
}

// Active returns the name of the active macro, empty when none is selected
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Macros lists the macros in the store
func (s *Session) Macros() ([]models.Macro, error) {
	return s.store.Macros()
}

// Select makes name the active macro and starts a fresh history for it.
// An empty name deselects.
func (s *Session) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder.Recording() {
		return ErrRecording
	}
	if name != "" && !s.store.Exists(name) {
		return fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}

	s.bindLocked(name)
	return nil
}

// Create writes a new empty macro and selects it
func (s *Session) Create(name string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder.Recording() {
		return ErrRecording
	}
	if _, err := s.store.Create(name, overwrite); err != nil {
		return err
	}

	s.bindLocked(name)
	return nil
}

// Delete removes the active macro and deselects it
func (s *Session) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdleLocked(); err != nil {
		return err
	}
	name := s.active
	if err := s.store.Remove(name); err != nil {
		return err
	}

	s.bindLocked("")
	s.logger.Info("macro deleted", "macro", name)
	return nil
}

// Rename renames the active macro and rebinds to the new name
func (s *Session) Rename(newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdleLocked(); err != nil {
		return err
	}
	oldName := s.active
	if _, err := s.store.Rename(oldName, newName); err != nil {
		return err
	}

	s.bindLocked(newName)
	s.logger.Info("macro renamed", "from", oldName, "to", newName)
	return nil
}

// Content reads the active macro from disk
func (s *Session) Content() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return "", ErrNoActiveMacro
	}
	return s.store.Read(s.store.Path(s.active))
}

// Capture records the current content of the active macro in its history
func (s *Session) Capture() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return false, ErrNoActiveMacro
	}
	return s.ring.Capture()
}

// Save replaces the content of the active macro. The content before and
// after the edit are both captured.
func (s *Session) Save(text string) error {
	return s.edit(func(path string) error {
		return s.store.Write(path, text)
	})
}

// AppendLine adds a line to the end of the active macro
func (s *Session) AppendLine(line string) error {
	return s.edit(func(path string) error {
		return s.store.Append(path, line+"\n")
	})
}

// Clear empties the active macro
func (s *Session) Clear() error {
	return s.edit(func(path string) error {
		text, err := s.store.Read(path)
		if err != nil {
			return err
		}
		if text == "" {
			return nil
		}
		return s.store.Write(path, "")
	})
}

// edit wraps a mutation of the active macro in a pair of captures
func (s *Session) edit(mutate func(path string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdleLocked(); err != nil {
		return err
	}

	if _, err := s.ring.Capture(); err != nil {
		return err
	}
	if err := mutate(s.store.Path(s.active)); err != nil {
		return err
	}
	_, err := s.ring.Capture()
	return err
}

// Undo restores the previous snapshot of the active macro
func (s *Session) Undo() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdleLocked(); err != nil {
		return "", err
	}
	return s.ring.Undo()
}

// Redo restores the next snapshot of the active macro
func (s *Session) Redo() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdleLocked(); err != nil {
		return "", err
	}
	return s.ring.Redo()
}

// History returns the captured snapshots and the 1-based cursor
func (s *Session) History() ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Entries(), s.ring.Cursor()
}

// StartRecording captures the active macro and starts recording into it
func (s *Session) StartRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return ErrNoActiveMacro
	}
	if _, err := s.ring.Capture(); err != nil {
		return err
	}
	return s.recorder.Start(s.store.Path(s.active), s.opts.Engine)
}

// Record runs and appends a line to the macro being recorded
func (s *Session) Record(ctx context.Context, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recorder.Recording() {
		return fmt.Errorf("not recording")
	}
	return s.recorder.Record(ctx, line)
}

// StopRecording ends a recording and captures the recorded content.
// Stopping when not recording does nothing.
func (s *Session) StopRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recorder.Recording() {
		return nil
	}
	stopErr := s.recorder.Stop()
	if _, err := s.ring.Capture(); err != nil {
		return err
	}
	return stopErr
}

// Recording reports whether a recording is in progress
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Recording()
}

// Play runs the active macro on a fresh script engine
func (s *Session) Play(ctx context.Context, out io.Writer) error {
	s.mu.Lock()
	if err := s.requireIdleLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	name := s.active
	text, err := s.store.Read(s.store.Path(name))
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("playback started", "macro", name, "engine", s.opts.Engine)
	if err := playback.Run(ctx, s.opts.Engine, name, text, out); err != nil {
		return err
	}
	s.logger.Info("playback finished", "macro", name)
	return nil
}

// Follow captures the active macro every time another process writes it
func (s *Session) Follow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return ErrNoActiveMacro
	}
	if s.watcher != nil {
		return nil
	}

	generation := s.generation
	w, err := watch.Watch(ctx, s.store.Path(s.active), s.opts.Debounce, func() {
		s.captureFromWatcher(generation)
	}, s.logger)
	if err != nil {
		return err
	}
	s.watcher = w
	go s.forgetWatcher(w)
	return nil
}

// forgetWatcher drops w from the session once its loop has exited, so a
// cancelled follow context does not leave the session following nothing.
func (s *Session) forgetWatcher(w *watch.Watcher) {
	<-w.Done()
	s.mu.Lock()
	owned := s.watcher == w
	if owned {
		s.watcher = nil
	}
	s.mu.Unlock()

	if owned {
		if err := w.Stop(); err != nil {
			s.logger.Warn("failed to close watcher", "path", w.Path(), "error", err)
		}
	}
}

// Unfollow stops following the active macro
func (s *Session) Unfollow() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Stop()
}

// Following reports whether the active macro is being followed
func (s *Session) Following() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watcher != nil
}

func (s *Session) captureFromWatcher(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || s.active == "" {
		return
	}
	// The recorder writes line by line; StopRecording captures the result.
	if s.recorder.Recording() {
		return
	}
	// Undo and redo write the file themselves; the event is not an outside edit.
	text, err := s.store.Read(s.store.Path(s.active))
	if err != nil {
		s.logger.Warn("failed to read followed macro", "macro", s.active, "error", err)
		return
	}
	if current, ok := s.ring.Current(); ok && current == text {
		return
	}

	appended, err := s.ring.Capture()
	if err != nil {
		s.logger.Warn("failed to capture external change", "macro", s.active, "error", err)
		return
	}
	if appended {
		s.logger.Debug("captured external change", "macro", s.active, "cursor", s.ring.Cursor())
	}
}

// State returns the view of the session consumed by the shell
func (s *Session) State() models.RingState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := models.RingState{
		Active:    s.active,
		Cursor:    s.ring.Cursor(),
		Length:    s.ring.Len(),
		CanUndo:   s.ring.CanUndo(),
		CanRedo:   s.ring.CanRedo(),
		Recording: s.recorder.Recording(),
		Following: s.watcher != nil,
	}
	if s.active != "" {
		state.Path = s.store.Path(s.active)
	}
	return state
}

// Close stops recording and following
func (s *Session) Close() error {
	err := s.StopRecording()
	if uerr := s.Unfollow(); err == nil {
		err = uerr
	}
	return err
}

// bindLocked hands the session over to a new active macro. The previous
// watcher is detached and stopped in the background; its generation no
// longer matches, so it cannot capture into the new ring.
func (s *Session) bindLocked(name string) {
	s.generation++
	if s.watcher != nil {
		w := s.watcher
		s.watcher = nil
		go func() {
			if err := w.Stop(); err != nil {
				s.logger.Warn("failed to stop watcher", "path", w.Path(), "error", err)
			}
		}()
	}

	s.active = name
	path := ""
	if name != "" {
		path = s.store.Path(name)
	}
	s.ring.Reset(path)
	s.logger.Debug("active macro changed", "macro", name)
}

func (s *Session) requireIdleLocked() error {
	if s.active == "" {
		return ErrNoActiveMacro
	}
	if s.recorder.Recording() {
		return ErrRecording
	}
	return nil
}
