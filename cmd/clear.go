package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear <name>",
	Short: "Empty a macro",
	Long: `Remove all content from a macro, keeping the file.

Undo is only available inside the shell, so use "macro shell <name>" and
its clear command if you may want the content back.

Example:
  macro clear scratch`,
	Args: cobra.ExactArgs(1),
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	s, err := requireMacro(args[0])
	if err != nil {
		return err
	}

	if err := s.Write(s.Path(args[0]), ""); err != nil {
		return err
	}

	fmt.Printf("✓ Cleared macro: %s\n", args[0])
	return nil
}
