package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pders01/macrotools/internal/embeddings"
	"github.com/pders01/macrotools/internal/search"
	"github.com/spf13/cobra"
)

var (
	relatedJSON bool
	relatedToon bool
)

var relatedCmd = &cobra.Command{
	Use:   "related <name>",
	Short: "Find related macros",
	Long: `Find macros related to a given macro based on:
  - Shared commands
  - Semantic similarity (when Ollama is running)

Results are ranked by relevance.

Example:
  macro related rig-setup`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func init() {
	rootCmd.AddCommand(relatedCmd)

	relatedCmd.Flags().BoolVar(&relatedJSON, "json", false, "Output as JSON")
	relatedCmd.Flags().BoolVar(&relatedToon, "toon", false, "Output in LLM-friendly toon format")
}

func runRelated(cmd *cobra.Command, args []string) error {
	name := args[0]
	s, err := requireMacro(name)
	if err != nil {
		return err
	}

	text, err := s.Read(s.Path(name))
	if err != nil {
		return err
	}
	target := embeddings.Document{Name: name, Text: text}

	docs, err := loadDocuments(s)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var vectors map[string][]float64
	if strings.TrimSpace(text) != "" {
		if e := newEmbedder(ctx); e != nil {
			vectors = embedDocuments(ctx, e, s, docs)
		}
	}

	related := search.Related(target, docs, vectors)

	if done, err := printStructured(related, relatedJSON, relatedToon); done {
		return err
	}

	if len(related) == 0 {
		fmt.Println("No related macros found")
		return nil
	}

	fmt.Printf("Found %d related macro(s) for %s:\n\n", len(related), name)
	for i, r := range related {
		fmt.Printf("%d. %s [score: %.1f]\n", i+1, r.Name, r.Score)
		fmt.Printf("   Relationship: %s\n", strings.Join(r.Reasons, ", "))
		fmt.Println()
	}

	return nil
}
