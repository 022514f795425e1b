package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pders01/macrotools/internal/config"
	"github.com/pders01/macrotools/internal/models"
	"github.com/pders01/macrotools/internal/playback"
	"github.com/spf13/cobra"
)

var playEngine string

var playCmd = &cobra.Command{
	Use:   "play <name>",
	Short: "Run a macro",
	Long: `Run a macro with the configured script engine. Ctrl-C stops it.

Engines:
  lua (default)  - Lua 5.1 with the base, table, string and math libraries
  starlark       - Starlark

Examples:
  macro play rig-setup
  macro play rig-setup --engine starlark`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVar(&playEngine, "engine", "", "Script engine (default from playback.engine)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	name := args[0]
	s, err := requireMacro(name)
	if err != nil {
		return err
	}

	engine, err := resolveEngine(playEngine)
	if err != nil {
		return err
	}

	text, err := s.Read(s.Path(name))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("playback started", "macro", name, "engine", engine)
	if err := playback.Run(ctx, engine, name, text, os.Stdout); err != nil {
		return err
	}
	logger.Info("playback finished", "macro", name)
	return nil
}

// resolveEngine returns the engine named by a flag, or the configured one
func resolveEngine(flag string) (models.Engine, error) {
	engine := config.GetEngine()
	if flag != "" {
		engine = models.Engine(flag)
	}
	if !engine.Valid() {
		return "", fmt.Errorf("%w: %s", playback.ErrUnknownEngine, engine)
	}
	return engine, nil
}
