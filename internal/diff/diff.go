// Package diff computes line-based differences between two macros.
package diff

import (
	"strings"
)

// Op is the kind of a diff line
type Op uint8

const (
	// Equal marks a line present in both texts
	Equal Op = iota
	// Insert marks a line only in the new text
	Insert
	// Delete marks a line only in the old text
	Delete
)

// String returns the unified diff marker of the op
func (o Op) String() string {
	switch o {
	case Insert:
		return "+"
	case Delete:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a diff
type Line struct {
	Op   Op     `json:"-"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Result is the full line diff of two texts
type Result struct {
	Lines    []Line `json:"lines"`
	Inserted int    `json:"inserted"`
	Deleted  int    `json:"deleted"`
}

// HasChanges reports whether the texts differ
func (r Result) HasChanges() bool {
	return r.Inserted > 0 || r.Deleted > 0
}

// SplitLines splits text into lines, ignoring the final newline
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// Compute returns the line diff from oldText to newText using the longest
// common subsequence of lines
func Compute(oldText, newText string) Result {
	a := SplitLines(oldText)
	b := SplitLines(newText)
	n, m := len(a), len(b)

	// lcs[i][j] is the LCS length of a[i:] and b[j:]
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var r Result
	add := func(op Op, text string) {
		r.Lines = append(r.Lines, Line{Op: op, Kind: kind(op), Text: text})
		switch op {
		case Insert:
			r.Inserted++
		case Delete:
			r.Deleted++
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			add(Equal, a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			add(Delete, a[i])
			i++
		default:
			add(Insert, b[j])
			j++
		}
	}
	for ; i < n; i++ {
		add(Delete, a[i])
	}
	for ; j < m; j++ {
		add(Insert, b[j])
	}

	return r
}

// Unified renders the diff with a marker in front of every line
func (r Result) Unified() string {
	var sb strings.Builder
	for _, line := range r.Lines {
		sb.WriteString(line.Op.String())
		sb.WriteString(" ")
		sb.WriteString(line.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func kind(op Op) string {
	switch op {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "equal"
	}
}
