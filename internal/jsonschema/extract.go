package jsonschema

import (
	"fmt"
	"strings"

	"github.com/valyala/fastjson"

	"schemaforge/internal/models"
)

// arraySegment is the synthetic path segment standing in for array items.
const arraySegment = "[]"

// Extractor walks JSON Schema documents into ordered field trees.
type Extractor struct{}

// NewExtractor returns a ready Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the document and walks its properties in document order.
// A root object with exactly one property wraps the whole message: that
// property becomes the length-1 message field and its children hang
// underneath it. Multiple root properties walk directly, each one a
// message field of its own.
func (x *Extractor) Extract(data []byte) (*models.SchemaTree, error) {
	doc, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse json schema: %w", err)
	}
	props := doc.GetObject("properties")
	if props == nil || props.Len() == 0 {
		return nil, models.ErrMissingRoot
	}
	w := &walker{doc: doc, resolving: make(map[string]bool)}
	if props.Len() == 1 {
		w.emitWrappedRoot(doc, props)
	} else {
		w.walkProperties(doc, nil)
	}
	return &models.SchemaTree{Kind: models.KindJSONSchema, Fields: w.fields}, nil
}

// walker carries the per-extraction state: the document for $ref lookups,
// the emitted fields, and the set of pointers currently being expanded on
// the path.
type walker struct {
	doc       *fastjson.Value
	fields    []models.SchemaField
	resolving map[string]bool
}

func (w *walker) emitWrappedRoot(doc *fastjson.Value, props *fastjson.Object) {
	var name string
	var root *fastjson.Value
	props.Visit(func(key []byte, v *fastjson.Value) {
		name = string(key)
		root = v
	})
	required := requiredSet(doc)[name]
	card := "0..1"
	if required {
		card = "1"
	}

	resolved, rawRef, holds := w.resolveRef(root)
	defer w.release(holds)
	if rawRef != "" {
		w.fields = append(w.fields, models.SchemaField{
			Levels:      []string{name},
			Type:        rawRef,
			BaseType:    rawRef,
			Cardinality: card,
			Category:    models.CategoryMessage,
			Required:    required,
		})
		return
	}

	typ := schemaType(resolved)
	if typ == "" {
		typ = "object"
	}
	w.fields = append(w.fields, models.SchemaField{
		Levels:      []string{name},
		Type:        typ,
		BaseType:    typ,
		Cardinality: card,
		Category:    models.CategoryMessage,
		Description: string(resolved.GetStringBytes("description")),
		Required:    required,
	})
	switch typ {
	case "object":
		w.walkProperties(resolved, []string{name})
	case "array":
		w.walkItems(resolved, []string{name})
	}
}

// walkProperties emits one field per property of node, in document order,
// with requiredness taken from the node's own required array.
func (w *walker) walkProperties(node *fastjson.Value, path []string) {
	props := node.GetObject("properties")
	if props == nil {
		return
	}
	required := requiredSet(node)
	props.Visit(func(key []byte, prop *fastjson.Value) {
		w.emit(string(key), prop, path, required[string(key)])
	})
}

func (w *walker) emit(name string, prop *fastjson.Value, path []string, required bool) {
	levels := append(append([]string{}, path...), name)
	category := models.CategoryElement
	if len(path) == 0 {
		category = models.CategoryMessage
	}
	card := "0..1"
	if required {
		card = "1"
	}

	resolved, rawRef, holds := w.resolveRef(prop)
	defer w.release(holds)
	if rawRef != "" {
		// Dangling or cyclic pointer degrades to the raw ref string.
		w.fields = append(w.fields, models.SchemaField{
			Levels:      levels,
			Type:        rawRef,
			BaseType:    rawRef,
			Cardinality: card,
			Category:    category,
			Required:    required,
		})
		return
	}

	typ := schemaType(resolved)
	if typ == "" {
		typ = "object"
	}
	if typ == "array" {
		card = arrayCardinality(resolved)
	}
	w.fields = append(w.fields, models.SchemaField{
		Levels:      levels,
		Type:        typ,
		BaseType:    typ,
		Cardinality: card,
		Category:    category,
		Description: string(resolved.GetStringBytes("description")),
		Details:     detailString(resolved),
		Required:    required,
	})

	switch typ {
	case "object":
		w.walkProperties(resolved, levels)
	case "array":
		w.walkItems(resolved, levels)
	}
}

// walkItems recurses into object-typed array items under the synthetic []
// segment. Primitive items emit no child of their own.
func (w *walker) walkItems(node *fastjson.Value, path []string) {
	items := node.Get("items")
	if items == nil {
		return
	}
	resolved, rawRef, holds := w.resolveRef(items)
	defer w.release(holds)
	if rawRef != "" {
		return
	}
	if schemaType(resolved) == "object" {
		itemPath := append(append([]string{}, path...), arraySegment)
		w.walkProperties(resolved, itemPath)
	}
}

// resolveRef chases local $ref pointers, holding each visited pointer in
// the per-walk guard; the caller releases the holds once it is done with
// the subtree. A dangling or cyclic pointer stops resolution and comes
// back as rawRef.
func (w *walker) resolveRef(prop *fastjson.Value) (resolved *fastjson.Value, rawRef string, holds []string) {
	resolved = prop
	for {
		ref := string(resolved.GetStringBytes("$ref"))
		if ref == "" {
			return resolved, "", holds
		}
		target := w.lookupRef(ref)
		if target == nil || w.resolving[ref] {
			return resolved, ref, holds
		}
		w.resolving[ref] = true
		holds = append(holds, ref)
		resolved = target
	}
}

func (w *walker) release(holds []string) {
	for _, ref := range holds {
		delete(w.resolving, ref)
	}
}

// lookupRef resolves a local pointer against the document's definitions.
func (w *walker) lookupRef(ref string) *fastjson.Value {
	if name, ok := strings.CutPrefix(ref, "#/definitions/"); ok {
		return w.doc.Get("definitions", name)
	}
	if name, ok := strings.CutPrefix(ref, "#/$defs/"); ok {
		return w.doc.Get("$defs", name)
	}
	return nil
}

// schemaType reads the type keyword. A node carrying properties without a
// declared type walks as an object; otherwise the type stays as declared.
// Emitters default a missing type to "object" so degraded fields never
// carry an empty type.
func schemaType(node *fastjson.Value) string {
	if t := node.GetStringBytes("type"); len(t) > 0 {
		return string(t)
	}
	if node.Exists("properties") {
		return "object"
	}
	return ""
}

// arrayCardinality renders minItems..maxItems, with unbounded standing in
// for a missing maxItems.
func arrayCardinality(node *fastjson.Value) string {
	minItems := node.GetInt("minItems")
	if max := node.Get("maxItems"); max != nil {
		return fmt.Sprintf("%d..%s", minItems, max.String())
	}
	return fmt.Sprintf("%d..unbounded", minItems)
}

func requiredSet(node *fastjson.Value) map[string]bool {
	set := make(map[string]bool)
	for _, v := range node.GetArray("required") {
		set[string(v.GetStringBytes())] = true
	}
	return set
}

// facetKeys is the fixed order validation keywords surface in the Details
// column.
var facetKeys = []string{
	"enum", "pattern", "minLength", "maxLength", "minimum", "maximum",
	"exclusiveMinimum", "exclusiveMaximum", "format", "multipleOf",
}

// detailString collects the node's validation keywords in facetKeys order.
// Enum values each get their own entry, and a $comment rides along raw at
// the end, without a name prefix.
func detailString(node *fastjson.Value) string {
	var facets []models.Facet
	for _, key := range facetKeys {
		v := node.Get(key)
		if v == nil {
			continue
		}
		if key == "enum" {
			for _, item := range v.GetArray() {
				facets = append(facets, models.Facet{Name: "enum", Value: facetValue(item)})
			}
			continue
		}
		facets = append(facets, models.Facet{Name: key, Value: facetValue(v)})
	}
	details := models.FacetDetails(facets)
	if comment := node.GetStringBytes("$comment"); len(comment) > 0 {
		if details == "" {
			return string(comment)
		}
		return details + "; " + string(comment)
	}
	return details
}

// facetValue renders a keyword value the way the Details column carries it:
// strings unquoted, anything else as its JSON text.
func facetValue(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}
