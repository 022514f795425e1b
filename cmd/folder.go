package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pders01/macrotools/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var folderSet string

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Show or change the macro folder",
	Long: `Print the macro folder, or change it and save the new location in the
config file.

Examples:
  macro folder
  cd "$(macro folder)"
  macro folder --set ~/maya/macros`,
	Args: cobra.NoArgs,
	RunE: runFolder,
}

func init() {
	rootCmd.AddCommand(folderCmd)

	folderCmd.Flags().StringVar(&folderSet, "set", "", "New macro folder")
}

func runFolder(cmd *cobra.Command, args []string) error {
	if folderSet == "" {
		fmt.Println(config.GetMacroFolder())
		return nil
	}

	abs, err := filepath.Abs(folderSet)
	if err != nil {
		return fmt.Errorf("failed to resolve folder: %w", err)
	}

	viper.Set("macros.folder", abs)
	s := openStore()
	if err := s.EnsureFolder(); err != nil {
		return err
	}

	path := configPath()
	if err := config.Save(path, config.Current()); err != nil {
		return err
	}

	logger.Info("macro folder changed", "folder", abs, "config", path)
	fmt.Printf("✓ Macro folder: %s\n", abs)
	fmt.Printf("  Saved to %s\n", path)
	return nil
}
