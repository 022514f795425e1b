package cmd

import (
	"fmt"

	"github.com/pders01/macrotools/internal/diff"
	"github.com/spf13/cobra"
)

var (
	diffJSON bool
	diffToon bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare two macros",
	Long: `Compare two macros line by line and show:
  - Lines only in the first macro (-)
  - Lines only in the second macro (+)
  - Summary counts

Example:
  macro diff rig-setup rig-setup-v2`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Output as JSON")
	diffCmd.Flags().BoolVar(&diffToon, "toon", false, "Output in LLM-friendly toon format")
}

type macroDiff struct {
	From     string      `json:"from"`
	To       string      `json:"to"`
	Lines    []diff.Line `json:"lines"`
	Inserted int         `json:"inserted"`
	Deleted  int         `json:"deleted"`
	Changed  bool        `json:"changed"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	texts := make([]string, 2)
	for i, name := range args {
		s, err := requireMacro(name)
		if err != nil {
			return err
		}
		texts[i], err = s.Read(s.Path(name))
		if err != nil {
			return err
		}
	}

	r := diff.Compute(texts[0], texts[1])
	result := macroDiff{
		From:     args[0],
		To:       args[1],
		Lines:    r.Lines,
		Inserted: r.Inserted,
		Deleted:  r.Deleted,
		Changed:  r.HasChanges(),
	}

	if done, err := printStructured(result, diffJSON, diffToon); done {
		return err
	}

	fmt.Println("Macro Comparison")
	fmt.Println("━━━━━━━━━━━━━━━━")
	fmt.Println()
	fmt.Printf("--- %s\n", args[0])
	fmt.Printf("+++ %s\n", args[1])
	fmt.Println()

	if !result.Changed {
		fmt.Println("Macros are identical")
		return nil
	}

	fmt.Print(r.Unified())
	fmt.Println()
	fmt.Printf("%d line(s) added, %d line(s) removed\n", result.Inserted, result.Deleted)
	return nil
}
