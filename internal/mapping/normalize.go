package mapping

import "strings"

// arrayToken is the canonical segment both schema dialects collapse to:
// XSD repeating elements named "item" and JSON Schema "[]" item markers
// normalize to the same key so cross-format paths stay comparable.
const arrayToken = "arrayitem"

// IsArraySegment reports whether a path segment marks array items in either
// schema dialect.
func IsArraySegment(segment string) bool {
	return segment == "[]" || strings.EqualFold(segment, "item")
}

// NormalizeSegments lowercases path segments and collapses array-item
// markers to the canonical token.
func NormalizeSegments(levels []string) []string {
	out := make([]string, len(levels))
	for i, level := range levels {
		if IsArraySegment(level) {
			out[i] = arrayToken
			continue
		}
		out[i] = strings.ToLower(level)
	}
	return out
}

// Normalize converts a field's levels into its canonical comparison key.
// The function is pure and idempotent.
func Normalize(levels []string) string {
	return strings.Join(NormalizeSegments(levels), ".")
}
