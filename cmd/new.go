package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var newForce bool

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty macro",
	Long: `Create an empty macro file in the macro folder.

Examples:
  macro new rig-setup
  macro new rig-setup --force   # Replace an existing macro with an empty one`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "Overwrite an existing macro")
}

func runNew(cmd *cobra.Command, args []string) error {
	s := openStore()
	if err := s.EnsureFolder(); err != nil {
		return err
	}

	path, err := s.Create(args[0], newForce)
	if err != nil {
		return err
	}

	logger.Info("macro created", "macro", args[0], "path", path)
	fmt.Printf("✓ Created macro: %s\n", path)
	return nil
}
