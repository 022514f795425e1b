package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pders01/macrotools/internal/config"
	"github.com/pders01/macrotools/internal/record"
	"github.com/spf13/cobra"
)

var (
	recordEngine string
	recordNoExec bool
	recordCreate bool
)

var recordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record lines from stdin into a macro",
	Long: `Read script lines from stdin until EOF, run each one and append it to
the macro. Lines that fail are still recorded and the error is reported.

Examples:
  macro record rig-setup < steps.lua
  macro record rig-setup --no-exec      # Append without running
  macro record scratch --create --engine starlark`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().StringVar(&recordEngine, "engine", "", "Script engine (default from playback.engine)")
	recordCmd.Flags().BoolVar(&recordNoExec, "no-exec", false, "Append lines without running them")
	recordCmd.Flags().BoolVar(&recordCreate, "create", false, "Create the macro if it does not exist")
}

func runRecord(cmd *cobra.Command, args []string) error {
	name := args[0]
	s := openStore()
	if recordCreate && !s.Exists(name) {
		if err := s.EnsureFolder(); err != nil {
			return err
		}
		if _, err := s.Create(name, false); err != nil {
			return err
		}
	}
	if _, err := requireMacro(name); err != nil {
		return err
	}

	engine, err := resolveEngine(recordEngine)
	if err != nil {
		return err
	}

	execute := config.GetRecordExecute() && !recordNoExec
	rec := record.New(s, execute, os.Stdout, logger)
	if err := rec.Start(s.Path(name), engine); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if err := rec.Record(ctx, scanner.Text()); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Warning: line %d: %v\n", rec.Lines(), err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	lines := rec.Lines()
	stopErr := rec.Stop()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	if stopErr != nil {
		return stopErr
	}

	fmt.Printf("✓ Recorded %d line(s) into %s", lines, name)
	if failed > 0 {
		fmt.Printf(" (%d failed)", failed)
	}
	fmt.Println()
	return nil
}
