// Package similarity compares free-text item fields.
package similarity

import (
	"golang.org/x/text/cases"
)

// Distance returns the Levenshtein edit distance between a and b, counted in
// runes. Both strings are case-folded before comparison.
func Distance(a, b string) int {
	ra, rb := fold(a), fold(b)
	return distance(ra, rb)
}

// Similarity returns 1 - distance/max(len(a), len(b)), a value in [0, 1].
// Two empty strings are identical and score 1.
func Similarity(a, b string) float64 {
	ra, rb := fold(a), fold(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(distance(ra, rb))/float64(longest)
}

func fold(s string) []rune {
	return []rune(cases.Fold().String(s))
}

// distance runs the classic recurrence keeping only two rows.
func distance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
