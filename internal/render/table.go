package render

import (
	"fmt"

	"schemaforge/internal/mapping"
	"schemaforge/internal/models"
)

// DefaultMaxLevel is the number of level columns rendered when the caller
// does not configure one. Paths deeper than this are truncated for display
// only; matching always sees the full path.
const DefaultMaxLevel = 8

// metaColumns is the fixed metadata block every row carries after its level
// columns. Order is a compatibility surface for downstream tooling.
var metaColumns = []string{
	"Request Parameter", "Type", "Cardinality", "Details", "Description", "Category",
}

// Table is an ordered grid with a fixed header row.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Renderer flattens schema trees and mapping runs into leveled rows.
type Renderer struct {
	MaxLevel int
}

// NewRenderer returns a Renderer with the default level width.
func NewRenderer() *Renderer {
	return &Renderer{MaxLevel: DefaultMaxLevel}
}

func (r *Renderer) maxLevel() int {
	if r.MaxLevel > 0 {
		return r.MaxLevel
	}
	return DefaultMaxLevel
}

// SchemaTable renders one tree: level columns then metadata, one row per
// field in extraction order, repeated ancestor names blanked for
// readability.
func (r *Renderer) SchemaTable(tree *models.SchemaTree) *Table {
	n := r.maxLevel()
	headers := append(levelHeaders(n, ""), metaHeaders("")...)

	memory := newColumnMemory(n)
	param := tree.Kind.RequestParameter()
	rows := make([][]string, 0, len(tree.Fields))
	for i := range tree.Fields {
		f := &tree.Fields[i]
		row := append(memory.levelCells(f), metaCells(f, param)...)
		rows = append(rows, row)
	}
	return &Table{Headers: headers, Rows: rows}
}

// MappingTable renders a mapping run: the source block, the Destination
// Field column carrying the matched target's path, and the mirrored target
// block. An unmatched row leaves the target block blank and resets the
// target-side column memory so the next match re-prints its full ancestry.
func (r *Renderer) MappingTable(entries []models.MappingEntry, source, target *models.SchemaTree) *Table {
	n := r.maxLevel()
	headers := append(levelHeaders(n, "_src"), metaHeaders("_src")...)
	headers = append(headers, "Destination Field")
	headers = append(headers, levelHeaders(n, "_tgt")...)
	headers = append(headers, metaHeaders("_tgt")...)

	srcParam := source.Kind.RequestParameter()
	tgtParam := target.Kind.RequestParameter()
	srcMem := newColumnMemory(n)
	tgtMem := newColumnMemory(n)

	rows := make([][]string, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.SourceField == nil {
			continue
		}
		row := append(srcMem.levelCells(e.SourceField), metaCells(e.SourceField, srcParam)...)
		if e.TargetField != nil {
			row = append(row, e.TargetField.Path())
			row = append(row, tgtMem.levelCells(e.TargetField)...)
			row = append(row, metaCells(e.TargetField, tgtParam)...)
		} else {
			row = append(row, make([]string, 1+n+len(metaColumns))...)
			tgtMem.reset()
		}
		rows = append(rows, row)
	}
	return &Table{Headers: headers, Rows: rows}
}

// columnMemory blanks a level cell when its raw value matches the
// remembered value for that column. Non-empty raw values refresh the
// memory, which persists across rows for the lifetime of one table.
type columnMemory struct {
	prev []string
}

func newColumnMemory(n int) *columnMemory {
	return &columnMemory{prev: make([]string, n)}
}

func (m *columnMemory) levelCells(f *models.SchemaField) []string {
	cells := make([]string, len(m.prev))
	for i := range m.prev {
		raw := ""
		if i < len(f.Levels) {
			raw = displaySegment(f.Levels[i])
		}
		if raw != m.prev[i] {
			cells[i] = raw
		}
		if raw != "" {
			m.prev[i] = raw
		}
	}
	return cells
}

func (m *columnMemory) reset() {
	for i := range m.prev {
		m.prev[i] = ""
	}
}

// displaySegment shows array-item markers as [] and every other segment
// verbatim.
func displaySegment(segment string) string {
	if mapping.IsArraySegment(segment) {
		return "[]"
	}
	return segment
}

func metaCells(f *models.SchemaField, requestParameter string) []string {
	return []string{
		requestParameter,
		f.Type,
		f.Cardinality,
		f.Details,
		f.Description,
		string(f.Category),
	}
}

func levelHeaders(n int, suffix string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Level%d%s", i+1, suffix)
	}
	return out
}

func metaHeaders(suffix string) []string {
	out := make([]string, len(metaColumns))
	for i, c := range metaColumns {
		out[i] = c + suffix
	}
	return out
}
