package mapping

import (
	"sort"

	"schemaforge/internal/models"
)

// Stats summarizes the outcome of a mapping run.
func Stats(entries []models.MappingEntry, targetCount int) models.MappingStats {
	st := models.MappingStats{
		TotalSourceFields: len(entries),
		TotalTargetFields: targetCount,
	}
	sum := 0.0
	for i := range entries {
		e := &entries[i]
		switch {
		case e.Exact():
			st.ExactMatches++
		case e.Matched():
			st.FuzzyMatches++
		default:
			st.NoMatches++
		}
		sum += e.Similarity
	}
	if len(entries) > 0 {
		matched := st.ExactMatches + st.FuzzyMatches
		st.AvgSimilarity = round3(sum / float64(len(entries)))
		st.Coverage = round3(float64(matched) / float64(len(entries)) * 100)
	}
	return st
}

// Unmapped lists source paths the run left without a match and target paths
// no entry consumed.
func Unmapped(entries []models.MappingEntry, target []models.SchemaField) (source, unusedTarget []string) {
	used := make(map[string]bool, len(entries))
	for i := range entries {
		if entries[i].Matched() {
			used[entries[i].Target] = true
		} else {
			source = append(source, entries[i].Source)
		}
	}
	for i := range target {
		p := Normalize(target[i].Levels)
		if !used[p] {
			unusedTarget = append(unusedTarget, p)
		}
	}
	return source, unusedTarget
}

// Suggest ranks below-threshold pairings among unmapped paths so a reviewer
// can approve near-misses by hand. Results are sorted by similarity,
// strongest first.
func (e *Engine) Suggest(source, target []string) []models.Suggestion {
	scorer := e.Scorer
	if scorer == nil {
		scorer = PathScorer{}
	}
	var out []models.Suggestion
	for _, s := range source {
		best := ""
		bestScore := 0.0
		for _, t := range target {
			if score := scorer.Score(s, t); score > bestScore {
				best = t
				bestScore = score
			}
		}
		if best != "" && bestScore >= SuggestionThreshold {
			out = append(out, models.Suggestion{
				Source:     s,
				Target:     best,
				Similarity: round3(bestScore),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}
