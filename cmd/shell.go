package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/chzyer/readline"
	"github.com/pders01/macrotools/internal/config"
	"github.com/pders01/macrotools/internal/session"
	"github.com/pders01/macrotools/internal/shell"
	"github.com/spf13/cobra"
)

var shellEngine string

var shellCmd = &cobra.Command{
	Use:   "shell [name]",
	Short: "Edit, record and replay macros interactively with undo and redo",
	Long: `Start an interactive shell. Every edit made in the shell is captured,
so undo and redo step through the versions of the selected macro.

History lasts for the shell session and restarts whenever another macro is
selected. Type "help" inside the shell for the command list.

Examples:
  macro shell
  macro shell rig-setup
  macro shell rig-setup --engine starlark`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().StringVar(&shellEngine, "engine", "", "Script engine (default from playback.engine)")
}

func runShell(cmd *cobra.Command, args []string) error {
	s := openStore()
	if err := s.EnsureFolder(); err != nil {
		return err
	}

	engine, err := resolveEngine(shellEngine)
	if err != nil {
		return err
	}

	sess := session.New(s, session.Options{
		Engine:        engine,
		ExecuteRecord: config.GetRecordExecute(),
		Debounce:      config.GetWatchDebounce(),
		Out:           os.Stdout,
		Logger:        logger,
	})
	defer func() {
		if err := sess.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}()

	if len(args) == 1 {
		if err := sess.Select(args[0]); err != nil {
			return err
		}
	}

	var in shell.LineReader
	if stdin == os.Stdin && readline.DefaultIsTerminal() {
		rl, err := shell.NewReadline(config.GetHistoryFile())
		if err != nil {
			return err
		}
		defer rl.Close()
		in = rl
	} else {
		in = shell.NewScannerReader(stdin)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := shell.New(sess, in, os.Stdout, shell.Editor(config.GetEditor()), logger)
	return sh.Run(ctx)
}
