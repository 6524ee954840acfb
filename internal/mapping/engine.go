package mapping

import (
	"math"

	"schemaforge/internal/models"
)

const (
	// DefaultThreshold is the minimum fuzzy similarity accepted as a match.
	DefaultThreshold = 0.7
	// SuggestionThreshold is the lower bound used when proposing review
	// candidates among unmapped fields.
	SuggestionThreshold = 0.3
)

// Engine aligns a source schema tree with a target schema tree.
type Engine struct {
	Threshold float64
	Scorer    Scorer
}

// NewEngine returns an Engine with the default threshold and scorer.
func NewEngine() *Engine {
	return &Engine{
		Threshold: DefaultThreshold,
		Scorer:    PathScorer{},
	}
}

// Map produces one entry per source field, in source field order. Exact
// normalized-path matches score 1.0; otherwise the best fuzzy score wins if
// it reaches the threshold (inclusive); otherwise the entry carries an empty
// target. Ties on equal fuzzy scores keep the first target in target order.
func (e *Engine) Map(source, target []models.SchemaField) []models.MappingEntry {
	scorer := e.Scorer
	if scorer == nil {
		scorer = PathScorer{}
	}

	// First declaration wins so repeated normalized paths stay deterministic.
	exact := make(map[string]int, len(target))
	targetPaths := make([]string, len(target))
	for i := range target {
		p := Normalize(target[i].Levels)
		targetPaths[i] = p
		if _, ok := exact[p]; !ok {
			exact[p] = i
		}
	}

	entries := make([]models.MappingEntry, 0, len(source))
	for i := range source {
		src := Normalize(source[i].Levels)

		if j, ok := exact[src]; ok {
			entries = append(entries, models.MappingEntry{
				Source:      src,
				Target:      targetPaths[j],
				Similarity:  1.0,
				SourceField: &source[i],
				TargetField: &target[j],
			})
			continue
		}

		best := -1
		bestScore := 0.0
		for j := range targetPaths {
			if score := scorer.Score(src, targetPaths[j]); score > bestScore {
				best = j
				bestScore = score
			}
		}
		if best >= 0 && bestScore >= e.Threshold {
			entries = append(entries, models.MappingEntry{
				Source:      src,
				Target:      targetPaths[best],
				Similarity:  round3(bestScore),
				SourceField: &source[i],
				TargetField: &target[best],
			})
			continue
		}

		entries = append(entries, models.MappingEntry{
			Source:      src,
			SourceField: &source[i],
		})
	}
	return entries
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
