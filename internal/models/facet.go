package models

import "strings"

// Facet is one named validation constraint, kept in declaration order.
type Facet struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FacetDetails renders facets as "name: value" pairs joined by "; ",
// the form the Details column carries.
func FacetDetails(facets []Facet) string {
	if len(facets) == 0 {
		return ""
	}
	parts := make([]string, len(facets))
	for i, f := range facets {
		parts[i] = f.Name + ": " + f.Value
	}
	return strings.Join(parts, "; ")
}
