package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	listJSON bool
	listToon bool
	listSort string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all macros",
	Long: `List the macros in the macro folder.

Examples:
  macro list
  macro list --sort modified
  macro list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output in LLM-friendly toon format")
	listCmd.Flags().StringVar(&listSort, "sort", "name", "Sort by name, modified or size")
}

func runList(cmd *cobra.Command, args []string) error {
	macros, err := openStore().Macros()
	if err != nil {
		return fmt.Errorf("failed to list macros: %w", err)
	}

	switch listSort {
	case "name", "":
		// Macros are already sorted by name
	case "modified":
		sort.SliceStable(macros, func(i, j int) bool {
			return macros[i].ModTime.After(macros[j].ModTime)
		})
	case "size":
		sort.SliceStable(macros, func(i, j int) bool {
			return macros[i].Size > macros[j].Size
		})
	default:
		return fmt.Errorf("invalid --sort value: %s (use name, modified or size)", listSort)
	}

	if done, err := printStructured(macros, listJSON, listToon); done {
		return err
	}

	if len(macros) == 0 {
		fmt.Println("No macros found")
		return nil
	}

	fmt.Printf("Found %d macro(s):\n\n", len(macros))
	for _, m := range macros {
		fmt.Printf("  %s\n", m.Name)
		fmt.Printf("    Lines:    %d\n", m.Lines)
		fmt.Printf("    Size:     %d bytes\n", m.Size)
		fmt.Printf("    Modified: %s\n", m.ModTime.Format("2006-01-02 15:04"))
		fmt.Println()
	}

	return nil
}
