package mapping

import "strings"

// LevenshteinScorer scores by normalized edit distance. It is the drop-in
// alternative to PathScorer when ratio-style scoring is preferred.
type LevenshteinScorer struct{}

// Score implements Scorer.
func (LevenshteinScorer) Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	return LevenshteinRatio(a, b)
}

// LevenshteinRatio calculates similarity ratio (0-1)
func LevenshteinRatio(s1, s2 string) float64 {
	s1 = strings.ToLower(s1)
	s2 = strings.ToLower(s2)
	distance := levenshtein(s1, s2)
	maxLen := float64(max(len(s1), len(s2)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - (float64(distance) / maxLen)
}

func levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	len1, len2 := len(r1), len(r2)

	row := make([]int, len2+1)
	for i := 0; i <= len2; i++ {
		row[i] = i
	}

	for i := 1; i <= len1; i++ {
		prev := i
		for j := 1; j <= len2; j++ {
			val := row[j]
			if r1[i-1] == r2[j-1] {
				val = row[j-1]
			} else {
				val = min(row[j-1]+1, prev+1, row[j]+1)
			}
			row[j-1] = prev
			prev = val
		}
		row[len2] = prev
	}
	return row[len2]
}
