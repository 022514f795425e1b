// Package shell is the interactive front end of a session. It reads
// commands line by line and reports the state of the active macro after
// each one.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/pders01/macrotools/internal/backup"
	"github.com/pders01/macrotools/internal/session"
	"github.com/pders01/macrotools/internal/store"
)

// CommandPrefix marks a shell command while recording
const CommandPrefix = ":"

// LineReader supplies input lines. io.EOF ends the shell.
type LineReader interface {
	Readline() (string, error)
}

// Prompter is implemented by readers that display a prompt
type Prompter interface {
	SetPrompt(prompt string)
}

// EditFunc opens the file at path for interactive editing and returns when
// the user is done
type EditFunc func(path string) error

// Shell runs commands against a session
type Shell struct {
	session *session.Session
	in      LineReader
	out     io.Writer
	edit    EditFunc
	logger  *slog.Logger
	id      string

	canUndo bool
	canRedo bool
}

// New creates a shell. A nil edit runs the configured editor.
func New(sess *session.Session, in LineReader, out io.Writer, edit EditFunc, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	if edit == nil {
		edit = Editor("vi")
	}

	id := uuid.NewString()
	return &Shell{
		session: sess,
		in:      in,
		out:     out,
		edit:    edit,
		logger:  logger.With("session", id),
		id:      id,
	}
}

// ID returns the shell session id attached to every log record
func (sh *Shell) ID() string {
	return sh.id
}

// Run reads and executes lines until quit or end of input
func (sh *Shell) Run(ctx context.Context) error {
	sh.logger.Info("shell started")
	defer sh.logger.Info("shell stopped")

	for {
		if p, ok := sh.in.(Prompter); ok {
			p.SetPrompt(sh.prompt())
		}

		line, err := sh.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if quit := sh.Exec(ctx, line); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Exec runs a single input line and reports whether the shell should quit
func (sh *Shell) Exec(ctx context.Context, line string) bool {
	if sh.session.Recording() && !strings.HasPrefix(strings.TrimSpace(line), CommandPrefix) {
		if err := sh.session.Record(ctx, line); err != nil {
			sh.printError(err)
		}
		return false
	}

	line = strings.TrimPrefix(strings.TrimSpace(line), CommandPrefix)
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	if name == "" {
		return false
	}

	sh.logger.Debug("command", "name", name)
	quit, err := sh.dispatch(ctx, name, rest)
	if err != nil {
		sh.printError(err)
	}
	sh.reportHistory()
	return quit
}

func (sh *Shell) dispatch(ctx context.Context, name, rest string) (bool, error) {
	switch name {
	case "help", "?":
		sh.help()
	case "ls":
		return false, sh.list()
	case "use":
		if rest == "" {
			return false, fmt.Errorf("usage: use <name>")
		}
		if err := sh.session.Select(rest); err != nil {
			return false, err
		}
		fmt.Fprintf(sh.out, "✓ Using %s\n", rest)
	case "new":
		return false, sh.create(rest)
	case "rm":
		active := sh.session.Active()
		if err := sh.session.Delete(); err != nil {
			return false, err
		}
		fmt.Fprintf(sh.out, "✓ Deleted %s\n", active)
	case "mv":
		if rest == "" {
			return false, fmt.Errorf("usage: mv <new-name>")
		}
		if err := sh.session.Rename(rest); err != nil {
			return false, err
		}
		fmt.Fprintf(sh.out, "✓ Renamed to %s\n", rest)
	case "cat":
		text, err := sh.session.Content()
		if err != nil {
			return false, err
		}
		fmt.Fprint(sh.out, text)
		if text != "" && !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(sh.out)
		}
	case "put":
		text := rest
		if text != "" {
			text += "\n"
		}
		return false, sh.session.Save(text)
	case "append":
		return false, sh.session.AppendLine(rest)
	case "edit":
		return false, sh.editActive()
	case "clear":
		if err := sh.session.Clear(); err != nil {
			return false, err
		}
		fmt.Fprintln(sh.out, "✓ Cleared")
	case "undo":
		return false, sh.move("undo", sh.session.Undo)
	case "redo":
		return false, sh.move("redo", sh.session.Redo)
	case "history":
		sh.history()
	case "status":
		sh.status()
	case "rec":
		if err := sh.session.StartRecording(); err != nil {
			return false, err
		}
		fmt.Fprintf(sh.out, "● Recording %s (prefix commands with %s)\n", sh.session.Active(), CommandPrefix)
	case "stop":
		if !sh.session.Recording() {
			fmt.Fprintln(sh.out, "Not recording")
			return false, nil
		}
		if err := sh.session.StopRecording(); err != nil {
			return false, err
		}
		fmt.Fprintln(sh.out, "✓ Recording stopped")
	case "play":
		return false, sh.session.Play(ctx, sh.out)
	case "follow":
		return false, sh.follow(ctx, rest)
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %s (type help)", name)
	}
	return false, nil
}

func (sh *Shell) help() {
	fmt.Fprint(sh.out, `Commands:
  ls                 list macros
  use <name>         select a macro
  new <name> [-f]    create and select a macro (-f overwrites)
  rm                 delete the selected macro
  mv <new-name>      rename the selected macro
  cat                print the selected macro
  put <text>         replace the macro with one line
  append <text>      add a line to the macro
  edit               open the macro in the editor
  clear              empty the macro
  undo, redo         step through the macro history
  history            show the macro history
  status             show the session state
  rec, stop          record script lines into the macro
  play               run the macro
  follow on|off      capture edits made by other programs
  quit               leave the shell

While recording, lines are executed and appended to the macro.
Prefix commands with ":" (":stop").
`)
}

func (sh *Shell) list() error {
	macros, err := sh.session.Macros()
	if err != nil {
		return err
	}
	if len(macros) == 0 {
		fmt.Fprintln(sh.out, "No macros found")
		return nil
	}

	active := sh.session.Active()
	for _, m := range macros {
		marker := " "
		if m.Name == active {
			marker = "*"
		}
		fmt.Fprintf(sh.out, "%s %-24s %4d lines\n", marker, m.Name, m.Lines)
	}
	return nil
}

func (sh *Shell) create(rest string) error {
	var name string
	overwrite := false
	for _, field := range strings.Fields(rest) {
		switch field {
		case "-f", "--force":
			overwrite = true
		default:
			name = field
		}
	}
	if name == "" {
		return fmt.Errorf("usage: new <name> [-f]")
	}

	if err := sh.session.Create(name, overwrite); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "✓ Created %s\n", name)
	return nil
}

func (sh *Shell) move(verb string, step func() (string, error)) error {
	_, err := step()
	if errors.Is(err, backup.ErrOutOfHistory) {
		fmt.Fprintf(sh.out, "Nothing to %s\n", verb)
		return nil
	}
	if err != nil {
		return err
	}

	state := sh.session.State()
	fmt.Fprintf(sh.out, "✓ %s (%d/%d)\n", strings.ToUpper(verb[:1])+verb[1:], state.Cursor, state.Length)
	return nil
}

func (sh *Shell) editActive() error {
	text, err := sh.session.Content()
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "macrotools-edit-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, sh.session.Active()+store.Suffix)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := sh.edit(path); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read edited file: %w", err)
	}
	if string(edited) == text {
		fmt.Fprintln(sh.out, "No changes")
		return nil
	}

	if err := sh.session.Save(string(edited)); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "✓ Saved")
	return nil
}

func (sh *Shell) history() {
	entries, cursor := sh.session.History()
	if len(entries) == 0 {
		fmt.Fprintln(sh.out, "No history")
		return
	}

	for i, entry := range entries {
		marker := " "
		if i+1 == cursor {
			marker = ">"
		}
		fmt.Fprintf(sh.out, "%s %3d  %4d lines  %s\n", marker, i+1, store.CountLines(entry), preview(entry))
	}
}

func (sh *Shell) status() {
	state := sh.session.State()
	if state.Active == "" {
		fmt.Fprintln(sh.out, "No macro selected")
		return
	}

	fmt.Fprintf(sh.out, "Macro:     %s\n", state.Active)
	fmt.Fprintf(sh.out, "File:      %s\n", state.Path)
	fmt.Fprintf(sh.out, "History:   %d/%d\n", state.Cursor, state.Length)
	fmt.Fprintf(sh.out, "Undo:      %s\n", onOff(state.CanUndo))
	fmt.Fprintf(sh.out, "Redo:      %s\n", onOff(state.CanRedo))
	fmt.Fprintf(sh.out, "Recording: %s\n", onOff(state.Recording))
	fmt.Fprintf(sh.out, "Following: %s\n", onOff(state.Following))
}

func (sh *Shell) follow(ctx context.Context, rest string) error {
	switch rest {
	case "on", "":
		if err := sh.session.Follow(ctx); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "✓ Following %s\n", sh.session.Active())
	case "off":
		if err := sh.session.Unfollow(); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "✓ Stopped following")
	default:
		return fmt.Errorf("usage: follow on|off")
	}
	return nil
}

// reportHistory prints undo and redo availability whenever it changes
func (sh *Shell) reportHistory() {
	state := sh.session.State()
	if state.CanUndo == sh.canUndo && state.CanRedo == sh.canRedo {
		return
	}
	sh.canUndo, sh.canRedo = state.CanUndo, state.CanRedo
	fmt.Fprintf(sh.out, "[undo: %s, redo: %s]\n", onOff(state.CanUndo), onOff(state.CanRedo))
}

func (sh *Shell) printError(err error) {
	active := sh.session.Active()
	if errors.Is(err, store.ErrNotFound) && active != "" && !sh.session.Store().Exists(active) && !sh.session.Recording() {
		if serr := sh.session.Select(""); serr == nil {
			fmt.Fprintln(sh.out, "Macro file is gone, nothing is selected now")
		}
	}
	sh.logger.Warn("command failed", "error", err)
	fmt.Fprintf(sh.out, "Error: %v\n", err)
}

func (sh *Shell) prompt() string {
	state := sh.session.State()
	switch {
	case state.Recording:
		return fmt.Sprintf("rec[%s]> ", state.Active)
	case state.Active != "":
		return fmt.Sprintf("macro[%s]> ", state.Active)
	default:
		return "macro> "
	}
}

// Editor returns an EditFunc running command with the file path appended.
// The command may carry arguments ("code --wait").
func Editor(command string) EditFunc {
	return func(path string) error {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return fmt.Errorf("no editor configured")
		}
		c := exec.Command(fields[0], append(fields[1:], path)...)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}
}

// NewReadline creates a line editor with persistent history
func NewReadline(historyFile string) (*readline.Instance, error) {
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "macro> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start line editor: %w", err)
	}
	return rl, nil
}

// ScannerReader reads lines from any io.Reader
type ScannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader wraps r as a LineReader
func NewScannerReader(r io.Reader) *ScannerReader {
	return &ScannerReader{scanner: bufio.NewScanner(r)}
}

// Readline returns the next line or io.EOF
func (s *ScannerReader) Readline() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func preview(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	if runes := []rune(first); len(runes) > 50 {
		first = string(runes[:50]) + "..."
	}
	if first == "" && text == "" {
		return "(empty)"
	}
	return first
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
