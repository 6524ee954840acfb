package models

import "strings"

// Category classifies a field by its role in the schema document
type Category string

const (
	CategoryMessage   Category = "message"
	CategoryElement   Category = "element"
	CategoryAttribute Category = "attribute"
)

// SchemaKind identifies the document format a tree was extracted from
type SchemaKind string

const (
	KindXSD        SchemaKind = "xsd"
	KindJSONSchema SchemaKind = "jsonschema"
	KindPostgres   SchemaKind = "postgres"
	KindInferred   SchemaKind = "inferred"
)

// RequestParameter returns the transport label rendered in the
// Request Parameter column for trees of this kind.
func (k SchemaKind) RequestParameter() string {
	switch k {
	case KindXSD:
		return "body (xml)"
	case KindPostgres:
		return "body (sql)"
	default:
		return "body (json)"
	}
}

// SchemaField is one node of an extracted schema tree. Fields are value
// objects; nothing mutates them after extraction.
type SchemaField struct {
	Levels      []string `json:"levels"`
	Type        string   `json:"type"`
	BaseType    string   `json:"base_type"`
	Cardinality string   `json:"cardinality"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Details     string   `json:"details"`
	Required    bool     `json:"required"`
}

// Path returns the dot-joined display path of the field.
func (f *SchemaField) Path() string {
	return strings.Join(f.Levels, ".")
}

// Name returns the last path segment.
func (f *SchemaField) Name() string {
	if len(f.Levels) == 0 {
		return ""
	}
	return f.Levels[len(f.Levels)-1]
}

// Depth returns the nesting depth of the field.
func (f *SchemaField) Depth() int {
	return len(f.Levels)
}

// SchemaTree is the ordered result of one extraction pass over one schema
// document. Field order is document order (pre-order, depth-first).
type SchemaTree struct {
	Name   string        `json:"name"`
	Kind   SchemaKind    `json:"kind"`
	Fields []SchemaField `json:"fields"`
}

// Paths returns the display path of every field in extraction order.
func (t *SchemaTree) Paths() []string {
	out := make([]string, len(t.Fields))
	for i := range t.Fields {
		out[i] = t.Fields[i].Path()
	}
	return out
}
