package xsd

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"

	"schemaforge/internal/models"
)

// Extractor walks XSD documents into ordered field trees.
type Extractor struct {
	// KeepCase preserves declared element and attribute spelling instead of
	// lowering the first rune.
	KeepCase bool
}

// NewExtractor returns an Extractor with default naming behavior.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Parse reads an XSD document and returns its schema root element.
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xsd: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("parse xsd: empty document")
	}
	return root, nil
}

// Extract parses the document and walks every top-level element declaration
// in document order. Fields come out in pre-order depth-first sequence.
func (x *Extractor) Extract(data []byte) (*models.SchemaTree, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return x.ExtractElement(root)
}

// ExtractElement walks an already parsed schema root.
func (x *Extractor) ExtractElement(root *etree.Element) (*models.SchemaTree, error) {
	roots := Children(root, "element")
	if len(roots) == 0 {
		return nil, models.ErrMissingRoot
	}
	w := &walker{
		cat:       BuildCatalog(root),
		keepCase:  x.KeepCase,
		expanding: make(map[string]bool),
	}
	for _, el := range roots {
		w.emit(el, nil, models.CategoryMessage)
	}
	return &models.SchemaTree{Kind: models.KindXSD, Fields: w.fields}, nil
}

// walker carries the per-extraction state: the type catalog, the emitted
// fields, and the set of named complex types currently being expanded on the
// path (the recursion guard for self-referential types).
type walker struct {
	cat       *Catalog
	keepCase  bool
	fields    []models.SchemaField
	expanding map[string]bool
}

// resolution is the outcome of resolving one element or attribute
// declaration. body is the complex type definition still to be expanded
// under the field's path, nil for leaves.
type resolution struct {
	typ    string
	base   string
	facets []models.Facet
	body   *etree.Element
}

// resolveFunc probes one way a declaration can carry its type. It reports
// false when the declaration does not match its shape.
type resolveFunc func(w *walker, el *etree.Element) (resolution, bool)

// resolveChain lists the resolution strategies in precedence order. The
// first one that applies wins and later ones are not consulted.
var resolveChain = []resolveFunc{
	inlineSimpleType,
	namedSimpleType,
	namedComplexType,
	inlineComplexType,
	declaredType,
}

func (w *walker) resolve(el *etree.Element) resolution {
	for _, strategy := range resolveChain {
		if res, ok := strategy(w, el); ok {
			return res
		}
	}
	// No type attribute and no inline definition.
	return resolution{typ: "string", base: "string"}
}

func inlineSimpleType(w *walker, el *etree.Element) (resolution, bool) {
	st := Child(el, "simpleType")
	if st == nil {
		return resolution{}, false
	}
	r := Child(st, "restriction")
	if r == nil {
		return resolution{typ: "string", base: "string"}, true
	}
	base := r.SelectAttrValue("base", "")
	if base == "" {
		return resolution{typ: "string", base: "string", facets: RestrictionFacets(r)}, true
	}
	return resolution{
		typ:    canonicalType(base),
		base:   w.cat.ResolveBase(base),
		facets: RestrictionFacets(r),
	}, true
}

func namedSimpleType(w *walker, el *etree.Element) (resolution, bool) {
	declared := el.SelectAttrValue("type", "")
	if declared == "" {
		return resolution{}, false
	}
	st, ok := w.cat.LookupSimple(declared)
	if !ok {
		return resolution{}, false
	}
	return resolution{
		typ:    st.Name,
		base:   w.cat.ResolveBase(declared),
		facets: st.Facets,
	}, true
}

func namedComplexType(w *walker, el *etree.Element) (resolution, bool) {
	declared := el.SelectAttrValue("type", "")
	if declared == "" {
		return resolution{}, false
	}
	ct, ok := w.cat.LookupComplex(declared)
	if !ok {
		return resolution{}, false
	}
	if sc := Child(ct, "simpleContent"); sc != nil {
		// The value is simple-typed; only attributes remain to expand.
		res := resolution{typ: LocalName(declared), base: LocalName(declared), body: ct}
		content := Child(sc, "extension")
		if content == nil {
			content = Child(sc, "restriction")
		}
		if content != nil {
			if base := content.SelectAttrValue("base", ""); base != "" {
				if st, ok := w.cat.LookupSimple(base); ok {
					res.base = w.cat.ResolveBase(base)
					res.facets = st.Facets
				} else {
					res.base = canonicalType(base)
				}
			}
			if content.Tag == "restriction" {
				res.facets = RestrictionFacets(content)
			}
		}
		return res, true
	}
	return resolution{typ: "object", base: LocalName(declared), body: ct}, true
}

func inlineComplexType(w *walker, el *etree.Element) (resolution, bool) {
	ct := Child(el, "complexType")
	if ct == nil {
		return resolution{}, false
	}
	return resolution{typ: "object", base: "object", body: ct}, true
}

func declaredType(w *walker, el *etree.Element) (resolution, bool) {
	declared := el.SelectAttrValue("type", "")
	if declared == "" {
		return resolution{}, false
	}
	// Builtins canonicalize; an unresolved custom reference keeps its raw
	// spelling in both slots and the walk continues.
	return resolution{typ: canonicalType(declared), base: canonicalType(declared)}, true
}

// emit appends the field for one element declaration and expands its complex
// body, if any, underneath it.
func (w *walker) emit(el *etree.Element, path []string, category models.Category) {
	name := el.SelectAttrValue("name", "")
	if name == "" {
		name = LocalName(el.SelectAttrValue("ref", ""))
	}
	if name == "" {
		return
	}
	levels := append(append([]string{}, path...), w.fieldName(name))
	res := w.resolve(el)
	details := models.FacetDetails(res.facets)
	desc := Documentation(el)
	if desc == "" {
		desc = details
	}
	w.fields = append(w.fields, models.SchemaField{
		Levels:      levels,
		Type:        res.typ,
		BaseType:    res.base,
		Cardinality: elementCardinality(el),
		Category:    category,
		Description: desc,
		Details:     details,
		Required:    el.SelectAttrValue("minOccurs", "1") != "0",
	})
	if res.body != nil {
		w.expandNamed(res.body, levels)
	}
}

// expandNamed walks a complex type definition, guarding against named types
// that reference themselves on the current path.
func (w *walker) expandNamed(ct *etree.Element, path []string) {
	name := ct.SelectAttrValue("name", "")
	if name != "" {
		if w.expanding[name] {
			return
		}
		w.expanding[name] = true
		defer delete(w.expanding, name)
	}
	w.walkComplex(ct, path)
}

// walkComplex emits the fields a complex type definition declares under the
// given parent path: base type children first for extensions, then the
// type's own particles, then its attributes.
func (w *walker) walkComplex(ct *etree.Element, path []string) {
	if cc := Child(ct, "complexContent"); cc != nil {
		if ext := Child(cc, "extension"); ext != nil {
			if base, ok := w.cat.LookupComplex(ext.SelectAttrValue("base", "")); ok {
				w.expandNamed(base, path)
			}
			w.walkParticles(ext, path)
			w.walkAttributes(ext, path)
		}
		return
	}
	if sc := Child(ct, "simpleContent"); sc != nil {
		if content := Child(sc, "extension"); content != nil {
			w.walkAttributes(content, path)
		}
		return
	}
	w.walkParticles(ct, path)
	w.walkAttributes(ct, path)
}

// walkParticles descends sequence, all and choice groups in document order,
// emitting one field per element declaration.
func (w *walker) walkParticles(parent *etree.Element, path []string) {
	for _, c := range parent.ChildElements() {
		switch c.Tag {
		case "sequence", "all", "choice":
			w.walkParticles(c, path)
		case "element":
			w.emit(c, path, models.CategoryElement)
		}
	}
}

// walkAttributes emits one attribute-category field per attribute
// declaration, path segment prefixed with @.
func (w *walker) walkAttributes(parent *etree.Element, path []string) {
	for _, a := range Children(parent, "attribute") {
		name := a.SelectAttrValue("name", "")
		if name == "" {
			continue
		}
		levels := append(append([]string{}, path...), "@"+w.fieldName(name))
		res := w.resolve(a)
		required := a.SelectAttrValue("use", "") == "required"
		card := "0..1"
		if required {
			card = "1..1"
		}
		details := models.FacetDetails(res.facets)
		desc := Documentation(a)
		if desc == "" {
			desc = details
		}
		w.fields = append(w.fields, models.SchemaField{
			Levels:      levels,
			Type:        res.typ,
			BaseType:    res.base,
			Cardinality: card,
			Category:    models.CategoryAttribute,
			Description: desc,
			Details:     details,
			Required:    required,
		})
	}
}

// fieldName lowers the first rune of a declared name unless KeepCase is set.
func (w *walker) fieldName(name string) string {
	if w.keepCase || name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// elementCardinality renders minOccurs/maxOccurs in the canonical notation:
// "1" for the required singular default, "m..n" for unbounded, "m..k"
// otherwise.
func elementCardinality(el *etree.Element) string {
	minOccurs := el.SelectAttrValue("minOccurs", "1")
	maxOccurs := el.SelectAttrValue("maxOccurs", "1")
	if maxOccurs == "unbounded" {
		return minOccurs + "..n"
	}
	if minOccurs == "1" && maxOccurs == "1" {
		return "1"
	}
	return minOccurs + ".." + maxOccurs
}
