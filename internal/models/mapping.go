package models

// MappingEntry aligns one source field with at most one target field.
// Source and Target hold normalized paths; an empty Target means no match
// cleared the threshold.
type MappingEntry struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`

	SourceField *SchemaField `json:"-"`
	TargetField *SchemaField `json:"-"`
}

// Matched reports whether the entry found a target.
func (e *MappingEntry) Matched() bool {
	return e.Target != ""
}

// Exact reports whether the entry is an exact normalized-path match.
func (e *MappingEntry) Exact() bool {
	return e.Matched() && e.Similarity == 1.0
}

// MappingStats summarizes one mapping run.
type MappingStats struct {
	TotalSourceFields int     `json:"total_source_fields"`
	TotalTargetFields int     `json:"total_target_fields"`
	ExactMatches      int     `json:"exact_matches"`
	FuzzyMatches      int     `json:"fuzzy_matches"`
	NoMatches         int     `json:"no_matches"`
	AvgSimilarity     float64 `json:"avg_similarity"`
	Coverage          float64 `json:"coverage"`
}

// Suggestion pairs two unmapped paths whose similarity fell below the main
// threshold but may still interest a reviewer.
type Suggestion struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
}
