package mapping

import "strings"

// Scorer computes a bounded similarity between two normalized paths.
// Implementations return values in [0,1], score equal inputs 1.0 and score
// 0.0 whenever either input is empty. Callers depend on nothing else, so
// implementations are interchangeable.
type Scorer interface {
	Score(a, b string) float64
}

// PathScorer is the default prefix/suffix heuristic: common prefix weighted
// 0.7, common suffix 0.3, both relative to the longer string, minus a
// length-mismatch penalty of up to 0.2.
type PathScorer struct{}

// Score implements Scorer.
func (PathScorer) Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}

	ra, rb := []rune(a), []rune(b)
	minLen := min(len(ra), len(rb))
	maxLen := max(len(ra), len(rb))

	prefix := 0
	for prefix < minLen && ra[prefix] == rb[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < minLen && ra[len(ra)-1-suffix] == rb[len(rb)-1-suffix] {
		suffix++
	}

	score := (float64(prefix)*0.7 + float64(suffix)*0.3) / float64(maxLen)
	penalty := float64(maxLen-minLen) / float64(maxLen) * 0.2
	if score < penalty {
		return 0.0
	}
	return score - penalty
}
