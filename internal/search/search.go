// Package search ranks macros against a query or against another macro,
// blending keyword relevance with embedding similarity when vectors exist.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pders01/macrotools/internal/embeddings"
)

// Weights balances the keyword and semantic parts of a hybrid score
type Weights struct {
	Keyword  float64
	Semantic float64
}

// Result is one ranked macro
type Result struct {
	Name          string   `json:"name"`
	Score         float64  `json:"score"`
	KeywordScore  int      `json:"keyword_score"`
	SemanticScore float64  `json:"semantic_score,omitempty"`
	UsedSemantic  bool     `json:"used_semantic"`
	Reasons       []string `json:"reasons,omitempty"`
}

// KeywordScore counts query words in the macro text, with a bonus for
// words found in the macro name
func KeywordScore(queryWords []string, name, text string) int {
	score := 0
	lowerText := strings.ToLower(text)
	lowerName := strings.ToLower(name)

	for _, word := range queryWords {
		word = strings.ToLower(word)
		score += strings.Count(lowerText, word) * 10
		if strings.Contains(lowerName, word) {
			score += 50
		}
	}

	return score
}

// Rank scores docs against query. When queryVec is set, docs with a vector
// get a hybrid score; the rest are scored on keywords only. Results with no
// relevance are dropped and the rest sorted best first.
func Rank(query string, queryVec []float64, docs []embeddings.Document, vectors map[string][]float64, w Weights) []Result {
	queryWords := strings.Fields(strings.ToLower(query))

	var results []Result
	for _, doc := range docs {
		r := Result{
			Name:         doc.Name,
			KeywordScore: KeywordScore(queryWords, doc.Name, doc.Text),
		}
		r.Score = float64(r.KeywordScore)

		if vec, ok := vectors[doc.Name]; ok && queryVec != nil {
			if sim, err := embeddings.CosineSimilarity(queryVec, vec); err == nil {
				r.SemanticScore = embeddings.Percent(sim)
				r.UsedSemantic = true
				r.Score = w.Keyword*normalizeKeyword(r.KeywordScore) + w.Semantic*r.SemanticScore
			}
		}

		if r.Score > 0 || r.KeywordScore > 0 {
			results = append(results, r)
		}
	}

	sortResults(results)
	return results
}

// Related scores docs against the macro named target using shared commands
// and, when vectors exist, embedding similarity. The target itself is
// never returned.
func Related(target embeddings.Document, docs []embeddings.Document, vectors map[string][]float64) []Result {
	targetCommands := Commands(target.Text)
	targetVec := vectors[target.Name]

	var results []Result
	for _, doc := range docs {
		if doc.Name == target.Name {
			continue
		}

		r := Result{Name: doc.Name}

		shared := 0
		for cmd := range Commands(doc.Text) {
			if _, ok := targetCommands[cmd]; ok {
				shared++
			}
		}
		if shared > 0 {
			r.KeywordScore = shared * 10
			r.Score += float64(r.KeywordScore)
			r.Reasons = append(r.Reasons, fmt.Sprintf("%d shared commands", shared))
		}

		if vec, ok := vectors[doc.Name]; ok && targetVec != nil {
			if sim, err := embeddings.CosineSimilarity(targetVec, vec); err == nil && sim > 0 {
				r.SemanticScore = embeddings.Percent(sim)
				r.UsedSemantic = true
				r.Score += r.SemanticScore
				r.Reasons = append(r.Reasons, fmt.Sprintf("%.0f%% similar", r.SemanticScore))
			}
		}

		if r.Score > 0 {
			results = append(results, r)
		}
	}

	sortResults(results)
	return results
}

// Commands returns the set of commands used by a macro: the first word of
// every non-blank line, up to any bracket, flag separator or semicolon
func Commands(text string) map[string]struct{} {
	commands := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd := strings.TrimRight(fields[0], ";")
		if i := strings.IndexAny(cmd, "(=."); i >= 0 {
			cmd = cmd[:i]
		}
		if cmd == "" || strings.HasPrefix(cmd, "--") || strings.HasPrefix(cmd, "#") || strings.HasPrefix(cmd, "//") {
			continue
		}
		commands[cmd] = struct{}{}
	}
	return commands
}

// normalizeKeyword brings a keyword score roughly onto the 0-100 scale of
// semantic scores
func normalizeKeyword(score int) float64 {
	n := float64(score) / 2.0
	if n > 100 {
		n = 100
	}
	return n
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
}
