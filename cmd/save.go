package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	saveAppend bool
	saveCreate bool
)

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Replace a macro with text from stdin",
	Long: `Write the text read from stdin into a macro.

Examples:
  pbpaste | macro save rig-setup
  echo 'polyCube;' | macro save rig-setup --append
  macro save fresh --create < script.lua`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().BoolVar(&saveAppend, "append", false, "Append instead of replacing")
	saveCmd.Flags().BoolVar(&saveCreate, "create", false, "Create the macro if it does not exist")
}

func runSave(cmd *cobra.Command, args []string) error {
	name := args[0]
	s := openStore()

	if !s.Exists(name) {
		if !saveCreate {
			_, err := requireMacro(name)
			return err
		}
		if err := s.EnsureFolder(); err != nil {
			return err
		}
		if _, err := s.Create(name, false); err != nil {
			return err
		}
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	path := s.Path(name)
	if saveAppend {
		err = s.Append(path, string(data))
	} else {
		err = s.Write(path, string(data))
	}
	if err != nil {
		return err
	}

	logger.Info("macro saved", "macro", name, "bytes", len(data), "append", saveAppend)
	fmt.Printf("✓ Saved %d bytes to %s\n", len(data), name)
	return nil
}
