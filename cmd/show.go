package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	showNumbers bool
	showInfo    bool
)

var showCmd = &cobra.Command{
	Use:     "show <name>",
	Aliases: []string{"cat"},
	Short:   "Print a macro",
	Long: `Print the content of a macro.

Examples:
  macro show rig-setup
  macro show rig-setup -n       # With line numbers
  macro show rig-setup --info   # File details only`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVarP(&showNumbers, "number", "n", false, "Number the lines")
	showCmd.Flags().BoolVar(&showInfo, "info", false, "Show file details instead of content")
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := requireMacro(args[0])
	if err != nil {
		return err
	}

	if showInfo {
		m, err := s.Stat(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Macro:    %s\n", m.Name)
		fmt.Printf("File:     %s\n", m.Path)
		fmt.Printf("Lines:    %d\n", m.Lines)
		fmt.Printf("Size:     %d bytes\n", m.Size)
		fmt.Printf("Modified: %s\n", m.ModTime.Format("2006-01-02 15:04:05"))
		return nil
	}

	text, err := s.Read(s.Path(args[0]))
	if err != nil {
		return err
	}

	if !showNumbers {
		fmt.Print(text)
		if text != "" && !strings.HasSuffix(text, "\n") {
			fmt.Println()
		}
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if text == "" {
		lines = nil
	}
	for i, line := range lines {
		fmt.Printf("%4d  %s\n", i+1, line)
	}
	return nil
}
