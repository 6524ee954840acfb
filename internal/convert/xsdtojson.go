package convert

import (
	"encoding/json"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"

	"schemaforge/internal/models"
	"schemaforge/internal/xsd"
)

// XSDToJSONSchema renders the first root element of an XSD document as a
// draft-07 JSON Schema. The root element becomes a single required
// property under an object wrapper, and element names are camelCased.
func XSDToJSONSchema(data []byte) ([]byte, error) {
	root, err := xsd.Parse(data)
	if err != nil {
		return nil, err
	}
	roots := xsd.Children(root, "element")
	if len(roots) == 0 {
		return nil, models.ErrMissingRoot
	}

	b := &jsonBuilder{cat: xsd.BuildCatalog(root), expanding: make(map[string]bool)}
	rootEl := roots[0]
	name := camelCase(rootEl.SelectAttrValue("name", "root"))
	schema := NewOrderedMap().
		Set("$schema", "http://json-schema.org/draft-07/schema#").
		Set("title", name).
		Set("type", "object").
		Set("properties", NewOrderedMap().Set(name, b.elementSchema(rootEl))).
		Set("required", []string{name})
	return json.MarshalIndent(schema, "", "  ")
}

type jsonBuilder struct {
	cat       *xsd.Catalog
	expanding map[string]bool
}

// elementSchema renders one element declaration. Repeating elements are
// wrapped as arrays with the element's own schema as items.
func (b *jsonBuilder) elementSchema(el *etree.Element) *OrderedMap {
	schema := b.typeSchema(el)
	if desc := xsd.Documentation(el); desc != "" && !schema.Has("description") {
		schema.Set("description", desc)
	}

	maxOccurs := el.SelectAttrValue("maxOccurs", "1")
	max, maxErr := strconv.Atoi(maxOccurs)
	if maxOccurs != "unbounded" && (maxErr != nil || max <= 1) {
		return schema
	}
	arr := NewOrderedMap().Set("type", "array").Set("items", schema)
	if min, err := strconv.Atoi(el.SelectAttrValue("minOccurs", "1")); err == nil && min > 0 {
		arr.Set("minItems", min)
	}
	if maxErr == nil {
		arr.Set("maxItems", max)
	}
	return arr
}

// typeSchema resolves an element's type the way extraction does: named
// complex and simple types first, then inline definitions, then the raw
// declared builtin, with string as the last resort.
func (b *jsonBuilder) typeSchema(el *etree.Element) *OrderedMap {
	declared := el.SelectAttrValue("type", "")
	if declared != "" {
		if ct, ok := b.cat.LookupComplex(declared); ok {
			return b.complexSchema(ct)
		}
		if st, ok := b.cat.LookupSimple(declared); ok {
			return simpleSchema(st)
		}
	}
	if ct := xsd.Child(el, "complexType"); ct != nil {
		return b.complexSchema(ct)
	}
	if st := xsd.Child(el, "simpleType"); st != nil {
		if r := xsd.Child(st, "restriction"); r != nil {
			return simpleSchema(xsd.SimpleType{
				Base:   r.SelectAttrValue("base", "string"),
				Facets: xsd.RestrictionFacets(r),
			})
		}
		return NewOrderedMap().Set("type", "string")
	}
	if declared != "" {
		return NewOrderedMap().Set("type", jsonType(declared))
	}
	return NewOrderedMap().Set("type", "string")
}

// complexSchema renders a complex type as an object, listing children
// with minOccurs 1 as required.
func (b *jsonBuilder) complexSchema(ct *etree.Element) *OrderedMap {
	if name := ct.SelectAttrValue("name", ""); name != "" {
		if b.expanding[name] {
			return NewOrderedMap().Set("type", "object")
		}
		b.expanding[name] = true
		defer delete(b.expanding, name)
	}

	props := NewOrderedMap()
	var required []string
	b.collectChildren(ct, props, &required)
	schema := NewOrderedMap().Set("type", "object").Set("properties", props)
	if len(required) > 0 {
		schema.Set("required", required)
	}
	return schema
}

// collectChildren walks sequence, all and choice groups in document
// order. Extension bases contribute their children first.
func (b *jsonBuilder) collectChildren(parent *etree.Element, props *OrderedMap, required *[]string) {
	if cc := xsd.Child(parent, "complexContent"); cc != nil {
		if ext := xsd.Child(cc, "extension"); ext != nil {
			baseName := xsd.LocalName(ext.SelectAttrValue("base", ""))
			if base, ok := b.cat.LookupComplex(baseName); ok && !b.expanding[baseName] {
				b.expanding[baseName] = true
				b.collectChildren(base, props, required)
				delete(b.expanding, baseName)
			}
			b.collectChildren(ext, props, required)
		}
		return
	}

	for _, c := range parent.ChildElements() {
		switch c.Tag {
		case "sequence", "all", "choice":
			b.collectChildren(c, props, required)
		case "element":
			name := camelCase(c.SelectAttrValue("name", ""))
			if name == "" {
				continue
			}
			props.Set(name, b.elementSchema(c))
			if c.SelectAttrValue("minOccurs", "1") == "1" {
				*required = append(*required, name)
			}
		}
	}
}

// simpleSchema renders a simple type as its base's JSON type plus the
// restriction facets mapped onto draft-07 keywords.
func simpleSchema(st xsd.SimpleType) *OrderedMap {
	schema := NewOrderedMap().Set("type", jsonType(st.Base))
	applyFacets(schema, st.Facets)
	return schema
}

// applyFacets maps restriction facets onto draft-07 keywords. totalDigits
// has no JSON Schema equivalent and rides along in $comment.
func applyFacets(schema *OrderedMap, facets []models.Facet) {
	values := make(map[string]string)
	var enum []string
	for _, f := range facets {
		if f.Name == "enum" {
			enum = append(enum, f.Value)
			continue
		}
		values[f.Name] = f.Value
	}

	if len(enum) > 0 {
		schema.Set("enum", enum)
	}
	if v, ok := values["pattern"]; ok {
		schema.Set("pattern", v)
	}
	for _, key := range []string{"minLength", "maxLength"} {
		if n, err := strconv.Atoi(values[key]); err == nil {
			schema.Set(key, n)
		}
	}
	setNumber(schema, "minimum", values["minInclusive"])
	setNumber(schema, "maximum", values["maxInclusive"])
	setNumber(schema, "exclusiveMinimum", values["minExclusive"])
	setNumber(schema, "exclusiveMaximum", values["maxExclusive"])
	if d, err := strconv.Atoi(values["fractionDigits"]); err == nil {
		if f, err := strconv.ParseFloat("1e-"+strconv.Itoa(d), 64); err == nil {
			schema.Set("multipleOf", f)
		}
	}
	if v, ok := values["totalDigits"]; ok {
		schema.Set("$comment", "totalDigits: "+v)
	}
}

func setNumber(schema *OrderedMap, key, raw string) {
	if raw == "" {
		return
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		schema.Set(key, f)
	}
}

// jsonType maps XSD builtins onto JSON Schema types. Everything unknown
// lands on string.
func jsonType(ref string) string {
	switch xsd.LocalName(ref) {
	case "int", "integer":
		return "integer"
	case "boolean":
		return "boolean"
	case "decimal", "float":
		return "number"
	default:
		return "string"
	}
}

func camelCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func pascalCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
