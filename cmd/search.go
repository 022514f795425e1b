package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pders01/macrotools/internal/config"
	"github.com/pders01/macrotools/internal/embeddings"
	"github.com/pders01/macrotools/internal/ollama"
	"github.com/pders01/macrotools/internal/search"
	"github.com/pders01/macrotools/internal/store"
	"github.com/spf13/cobra"
)

var (
	searchLimit       int
	searchKeywordOnly bool
	searchJSON        bool
	searchToon        bool
)

// newEmbedder returns the embedding backend, or nil when semantic search
// is disabled or unavailable
var newEmbedder = func(ctx context.Context) embeddings.Embedder {
	if !config.GetEmbeddingsEnabled() {
		return nil
	}
	client, err := ollama.NewClient(config.GetOllamaURL(), config.GetEmbeddingModel())
	if err != nil {
		logger.Warn("failed to create ollama client", "error", err)
		return nil
	}
	if !client.Available(ctx) {
		logger.Debug("ollama is not running, using keyword search")
		return nil
	}
	if err := client.CheckModel(ctx); err != nil {
		logger.Warn("embedding model unavailable", "error", err)
		return nil
	}
	return client
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search macros using hybrid keyword and semantic search",
	Long: `Search macro names and content using hybrid search.

Combines keyword matching with semantic similarity when Ollama is running.
Embeddings are cached in the macro folder and only recomputed when a macro
changes.

Example:
  macro search "polyCube"
  macro search "rotate the selection" --limit 5

Search modes:
  - Keyword only: When embeddings are disabled or Ollama is not running
  - Hybrid: Combines keyword (30%) + semantic (70%) when embeddings are available`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results (0 for all)")
	searchCmd.Flags().BoolVar(&searchKeywordOnly, "keyword-only", false, "Skip semantic search")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	searchCmd.Flags().BoolVar(&searchToon, "toon", false, "Output in LLM-friendly toon format")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	s := openStore()
	docs, err := loadDocuments(s)
	if err != nil {
		return err
	}
	structured := searchJSON || searchToon

	if len(docs) == 0 {
		if !structured {
			fmt.Println("No macros found")
			return nil
		}
		_, err := printStructured([]search.Result{}, searchJSON, searchToon)
		return err
	}

	var queryVec []float64
	var vectors map[string][]float64
	if !searchKeywordOnly {
		if e := newEmbedder(ctx); e != nil {
			queryVec, err = e.Embed(ctx, query)
			if err != nil {
				logger.Warn("failed to embed query", "error", err)
			} else {
				vectors = embedDocuments(ctx, e, s, docs)
			}
		}
	}

	if !structured {
		if queryVec != nil {
			fmt.Println("Using hybrid search (keyword + semantic)")
		} else {
			fmt.Println("Using keyword search only")
		}
	}

	results := search.Rank(query, queryVec, docs, vectors, search.Weights{
		Keyword:  config.GetKeywordWeight(),
		Semantic: config.GetSemanticWeight(),
	})
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if done, err := printStructured(results, searchJSON, searchToon); done {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No macros match the search query")
		return nil
	}

	texts := make(map[string]string, len(docs))
	for _, d := range docs {
		texts[d.Name] = d.Text
	}

	fmt.Printf("\nFound %d matching macro(s):\n\n", len(results))
	for i, r := range results {
		scoreDisplay := fmt.Sprintf("%.1f", r.Score)
		if r.UsedSemantic {
			scoreDisplay += fmt.Sprintf(" (keyword: %d, semantic: %.1f%%)", r.KeywordScore, r.SemanticScore)
		} else {
			scoreDisplay += " (keyword only)"
		}

		fmt.Printf("%d. %s [score: %s]\n", i+1, r.Name, scoreDisplay)
		if line := matchingLine(texts[r.Name], query); line != "" {
			fmt.Printf("   %s\n", truncate(line, 80))
		}
		fmt.Println()
	}

	return nil
}

// loadDocuments reads every non-empty macro
func loadDocuments(s *store.Store) ([]embeddings.Document, error) {
	macros, err := s.Macros()
	if err != nil {
		return nil, fmt.Errorf("failed to list macros: %w", err)
	}

	docs := make([]embeddings.Document, 0, len(macros))
	for _, m := range macros {
		text, err := s.Read(m.Path)
		if err != nil {
			logger.Warn("failed to read macro", "macro", m.Name, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, embeddings.Document{Name: m.Name, Text: text})
	}
	return docs, nil
}

// embedDocuments returns the vectors of docs, generating missing ones in
// parallel and caching them in the macro folder
func embedDocuments(ctx context.Context, e embeddings.Embedder, s *store.Store, docs []embeddings.Document) map[string][]float64 {
	cache := embeddings.NewCache(s.Fs(), filepath.Join(s.Folder(), embeddings.CacheDir), config.GetEmbeddingModel())
	return embeddings.EmbedAll(ctx, e, cache, docs, config.GetSearchWorkers(), logger)
}

// matchingLine returns the first line containing a query word
func matchingLine(text, query string) string {
	words := strings.Fields(strings.ToLower(query))
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, w := range words {
			if strings.Contains(lower, w) {
				return strings.TrimSpace(line)
			}
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
