package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pders01/macrotools/internal/config"
	"github.com/pders01/macrotools/internal/embeddings"
	"github.com/pders01/macrotools/internal/search"
	"github.com/spf13/cobra"
)

var (
	statsJSON bool
	statsToon bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show macro statistics",
	Long: `Display statistics about your macros including:
  - Macro count, total lines and size
  - Empty macros
  - Most used commands
  - Recent activity
  - Embedding coverage

Examples:
  macro stats
  macro stats --json
  macro stats --toon`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

type macroStats struct {
	TotalMacros       int             `json:"total_macros"`
	TotalLines        int             `json:"total_lines"`
	TotalBytes        int64           `json:"total_bytes"`
	EmptyMacros       int             `json:"empty_macros"`
	Largest           string          `json:"largest,omitempty"`
	WithEmbeddings    int             `json:"with_embeddings"`
	WithoutEmbeddings int             `json:"without_embeddings"`
	OldestChange      *time.Time      `json:"oldest_change,omitempty"`
	NewestChange      *time.Time      `json:"newest_change,omitempty"`
	TopCommands       []commandStat   `json:"top_commands"`
	DailyActivity     []dailyActivity `json:"daily_activity"`
}

type commandStat struct {
	Command string `json:"command"`
	Macros  int    `json:"macros"`
}

type dailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func runStats(cmd *cobra.Command, args []string) error {
	s := openStore()
	macros, err := s.Macros()
	if err != nil {
		return fmt.Errorf("failed to list macros: %w", err)
	}

	stats := &macroStats{TotalMacros: len(macros)}
	cache := embeddings.NewCache(s.Fs(), filepath.Join(s.Folder(), embeddings.CacheDir), config.GetEmbeddingModel())

	byCommand := make(map[string]int)
	byDate := make(map[string]int)
	var largest int64 = -1

	for _, m := range macros {
		stats.TotalLines += m.Lines
		stats.TotalBytes += m.Size
		if m.Size == 0 {
			stats.EmptyMacros++
		}
		if m.Size > largest {
			largest = m.Size
			stats.Largest = m.Name
		}

		if stats.OldestChange == nil || m.ModTime.Before(*stats.OldestChange) {
			t := m.ModTime
			stats.OldestChange = &t
		}
		if stats.NewestChange == nil || m.ModTime.After(*stats.NewestChange) {
			t := m.ModTime
			stats.NewestChange = &t
		}
		byDate[m.ModTime.Format("2006-01-02")]++

		text, err := s.Read(m.Path)
		if err != nil {
			continue
		}
		for c := range search.Commands(text) {
			byCommand[c]++
		}
		if _, ok := cache.Get(text); ok {
			stats.WithEmbeddings++
		} else {
			stats.WithoutEmbeddings++
		}
	}

	for c, count := range byCommand {
		stats.TopCommands = append(stats.TopCommands, commandStat{Command: c, Macros: count})
	}
	sort.Slice(stats.TopCommands, func(i, j int) bool {
		if stats.TopCommands[i].Macros != stats.TopCommands[j].Macros {
			return stats.TopCommands[i].Macros > stats.TopCommands[j].Macros
		}
		return stats.TopCommands[i].Command < stats.TopCommands[j].Command
	})

	for date, count := range byDate {
		stats.DailyActivity = append(stats.DailyActivity, dailyActivity{Date: date, Count: count})
	}
	sort.Slice(stats.DailyActivity, func(i, j int) bool {
		return stats.DailyActivity[i].Date > stats.DailyActivity[j].Date
	})

	if done, err := printStructured(stats, statsJSON, statsToon); done {
		return err
	}

	if stats.TotalMacros == 0 {
		fmt.Println("No macros found")
		return nil
	}

	fmt.Println("Macro Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Total Macros: %d\n", stats.TotalMacros)
	fmt.Printf("Total Lines:  %d\n", stats.TotalLines)
	fmt.Printf("Total Size:   %d bytes\n", stats.TotalBytes)
	fmt.Printf("Empty:        %d\n", stats.EmptyMacros)
	fmt.Printf("Largest:      %s\n", stats.Largest)
	if stats.OldestChange != nil && stats.NewestChange != nil {
		fmt.Printf("Changed:      %s to %s\n",
			stats.OldestChange.Format("2006-01-02"),
			stats.NewestChange.Format("2006-01-02"))
	}
	fmt.Println()

	fmt.Println("Embedding Coverage:")
	percentage := float64(stats.WithEmbeddings) / float64(stats.TotalMacros) * 100
	fmt.Printf("  With embeddings:    %3d  (%.1f%%)\n", stats.WithEmbeddings, percentage)
	fmt.Printf("  Without embeddings: %3d  (%.1f%%)\n", stats.WithoutEmbeddings, 100-percentage)
	fmt.Println()

	if len(stats.TopCommands) > 0 {
		fmt.Println("Top Commands:")
		limit := min(10, len(stats.TopCommands))
		for _, cs := range stats.TopCommands[:limit] {
			fmt.Printf("  %-20s %3d\n", cs.Command, cs.Macros)
		}
		fmt.Println()
	}

	if len(stats.DailyActivity) > 0 {
		fmt.Println("Recent Activity:")
		limit := min(7, len(stats.DailyActivity))
		for _, da := range stats.DailyActivity[:limit] {
			bar := strings.Repeat("█", min(da.Count, 20))
			fmt.Printf("  %s  %3d  %s\n", da.Date, da.Count, bar)
		}
	}

	return nil
}
