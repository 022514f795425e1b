package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pders01/macrotools/internal/models"
	"github.com/pders01/macrotools/internal/playback"
)

// ErrAlreadyRecording is returned when a recording is already in progress.
var ErrAlreadyRecording = errors.New("a recording is already in progress")

// Appender is the part of the document store the recorder writes through.
type Appender interface {
	Append(path, text string) error
}

// Recorder captures executed command lines into a macro file between Start
// and Stop, the way a script console echoes every command it runs.
type Recorder struct {
	store   Appender
	execute bool
	out     io.Writer
	logger  *slog.Logger

	path   string
	engine playback.Engine
	lines  int
}

// New creates a recorder. When execute is set each recorded line is run on
// a script engine before it is written, with output sent to out.
func New(store Appender, execute bool, out io.Writer, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{
		store:   store,
		execute: execute,
		out:     out,
		logger:  logger,
	}
}

// Start begins recording into the file at path.
func (r *Recorder) Start(path string, kind models.Engine) error {
	if r.path != "" {
		return ErrAlreadyRecording
	}

	if r.execute {
		engine, err := playback.New(kind, r.out)
		if err != nil {
			return err
		}
		r.engine = engine
	}

	r.path = path
	r.lines = 0
	r.logger.Info("recording started", "path", path, "engine", kind, "execute", r.execute)
	return nil
}

// Record runs line (when execution is enabled) and appends it to the
// macro. A line that fails to run is still recorded and its error returned.
func (r *Recorder) Record(ctx context.Context, line string) error {
	if r.path == "" {
		return fmt.Errorf("not recording")
	}

	var execErr error
	if r.engine != nil && strings.TrimSpace(line) != "" {
		execErr = r.engine.Exec(ctx, fmt.Sprintf("line %d", r.lines+1), line)
	}

	if err := r.store.Append(r.path, line+"\n"); err != nil {
		return fmt.Errorf("failed to record line: %w", err)
	}
	r.lines++
	return execErr
}

// Stop ends the recording. Stopping an idle recorder does nothing.
func (r *Recorder) Stop() error {
	if r.path == "" {
		return nil
	}

	var err error
	if r.engine != nil {
		err = r.engine.Close()
		r.engine = nil
	}

	r.logger.Info("recording stopped", "path", r.path, "lines", r.lines)
	r.path = ""
	return err
}

// Recording reports whether a recording is in progress.
func (r *Recorder) Recording() bool {
	return r.path != ""
}

// Path returns the file being recorded into.
func (r *Recorder) Path() string {
	return r.path
}

// Lines returns the number of lines recorded so far.
func (r *Recorder) Lines() int {
	return r.lines
}
