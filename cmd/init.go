package cmd

import (
	"fmt"
	"os"

	"github.com/pders01/macrotools/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the macro folder and a default config",
	Long: `Create the macro folder and write a config file if none exists.

This command:
  - Creates the macro folder (macros.folder, or --folder)
  - Creates $HOME/.config/macrotools/config.toml with the current settings

Run this once before recording your first macro.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	s := openStore()
	if err := s.EnsureFolder(); err != nil {
		return err
	}
	fmt.Printf("✓ Macro folder: %s\n", s.Folder())

	path := configPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(path, config.Current()); err != nil {
			return err
		}
		fmt.Printf("✓ Created default config: %s\n", path)
	} else {
		fmt.Printf("Config already exists: %s\n", path)
	}

	fmt.Println("\n✓ Macro tools initialized successfully!")
	fmt.Println("  You can now use: macro new <name> && macro shell <name>")

	return nil
}
