package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:     "rename <old> <new>",
	Aliases: []string{"mv"},
	Short:   "Rename a macro",
	Long: `Rename a macro file. Fails if the new name is taken.

Example:
  macro rename rig rig-setup`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	s, err := requireMacro(args[0])
	if err != nil {
		return err
	}

	path, err := s.Rename(args[0], args[1])
	if err != nil {
		return err
	}

	logger.Info("macro renamed", "from", args[0], "to", args[1])
	fmt.Printf("✓ Renamed %s to %s (%s)\n", args[0], args[1], path)
	return nil
}
