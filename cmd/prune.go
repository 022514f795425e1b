package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pders01/macrotools/internal/config"
	"github.com/pders01/macrotools/internal/embeddings"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var pruneForce bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove empty macros and stale embeddings",
	Long: `Remove macros that contain nothing but whitespace, and cached
embeddings that no longer match the content of any macro.

Example:
  macro prune              # Show what would be pruned
  macro prune --force      # Actually prune`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().BoolVar(&pruneForce, "force", false, "Actually delete instead of showing what would be pruned")
}

type pruneCandidate struct {
	Name   string
	Age    time.Duration
	Reason string
}

func runPrune(cmd *cobra.Command, args []string) error {
	s := openStore()
	macros, err := s.Macros()
	if err != nil {
		return fmt.Errorf("failed to list macros: %w", err)
	}

	cacheDir := filepath.Join(s.Folder(), embeddings.CacheDir)
	cache := embeddings.NewCache(s.Fs(), cacheDir, config.GetEmbeddingModel())
	live := make(map[string]bool)

	var toPrune []pruneCandidate
	for _, m := range macros {
		text, err := s.Read(m.Path)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			reason := "empty"
			if text != "" {
				reason = "whitespace only"
			}
			toPrune = append(toPrune, pruneCandidate{
				Name:   m.Name,
				Age:    time.Since(m.ModTime),
				Reason: reason,
			})
			continue
		}
		live[cache.Key(text)+".bin"] = true
	}

	var staleEmbeddings []string
	if entries, err := afero.ReadDir(s.Fs(), cacheDir); err == nil {
		for _, e := range entries {
			if e.Mode().IsRegular() && !live[e.Name()] {
				staleEmbeddings = append(staleEmbeddings, filepath.Join(cacheDir, e.Name()))
			}
		}
	}

	if len(toPrune) == 0 && len(staleEmbeddings) == 0 {
		fmt.Println("Nothing to prune")
		return nil
	}

	if len(toPrune) > 0 {
		fmt.Printf("Macros to prune (%d):\n\n", len(toPrune))
		for _, c := range toPrune {
			fmt.Printf("  %s\n", c.Name)
			fmt.Printf("    Age:    %s\n", formatDuration(c.Age))
			fmt.Printf("    Reason: %s\n", c.Reason)
			fmt.Println()
		}
	}
	if len(staleEmbeddings) > 0 {
		fmt.Printf("Stale embeddings to prune: %d\n\n", len(staleEmbeddings))
	}

	if !pruneForce {
		fmt.Println("This is a dry run. Use --force to actually prune.")
		return nil
	}

	fmt.Println("Pruning...")
	pruned := 0
	for _, c := range toPrune {
		if err := s.Remove(c.Name); err != nil {
			fmt.Printf("  Error: %s: %v\n", c.Name, err)
			continue
		}
		fmt.Printf("  ✓ Deleted %s\n", c.Name)
		pruned++
	}
	for _, path := range staleEmbeddings {
		if err := s.Fs().Remove(path); err != nil {
			logger.Warn("failed to remove stale embedding", "path", path, "error", err)
		}
	}
	fmt.Printf("\n✓ Pruned %d macro(s) and %d embedding(s)\n", pruned, len(staleEmbeddings))

	return nil
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days == 0 {
		return "< 1 day"
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
