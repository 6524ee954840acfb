package xsd

import (
	"github.com/beevik/etree"

	"schemaforge/internal/models"
)

// SimpleType is a named simpleType restriction pulled out of a schema.
type SimpleType struct {
	Name   string
	Base   string
	Facets []models.Facet
}

// Catalog indexes a schema's named type declarations so the tree walk can
// resolve references without re-scanning the document. Anonymous inline
// types are never registered here; the extractor resolves those in place.
type Catalog struct {
	Simple  map[string]SimpleType
	Complex map[string]*etree.Element
}

// BuildCatalog scans the schema root for named simpleType and complexType
// declarations at any depth.
func BuildCatalog(root *etree.Element) *Catalog {
	cat := &Catalog{
		Simple:  make(map[string]SimpleType),
		Complex: make(map[string]*etree.Element),
	}
	for _, st := range Descendants(root, "simpleType") {
		name := st.SelectAttrValue("name", "")
		if name == "" {
			continue
		}
		entry := SimpleType{Name: name}
		if r := Child(st, "restriction"); r != nil {
			entry.Base = r.SelectAttrValue("base", "")
			entry.Facets = RestrictionFacets(r)
		}
		cat.Simple[name] = entry
	}
	for _, ct := range Descendants(root, "complexType") {
		name := ct.SelectAttrValue("name", "")
		if name == "" {
			continue
		}
		cat.Complex[name] = ct
	}
	return cat
}

// LookupSimple resolves a possibly prefixed reference to a named simple type.
func (c *Catalog) LookupSimple(ref string) (SimpleType, bool) {
	st, ok := c.Simple[LocalName(ref)]
	return st, ok
}

// LookupComplex resolves a possibly prefixed reference to a named complex type.
func (c *Catalog) LookupComplex(ref string) (*etree.Element, bool) {
	ct, ok := c.Complex[LocalName(ref)]
	return ct, ok
}

// ResolveBase follows a simple-type restriction chain down to its primitive
// base. Unknown references resolve to their canonical spelling unchanged, so
// a dangling base degrades instead of failing.
func (c *Catalog) ResolveBase(ref string) string {
	seen := make(map[string]bool)
	cur := ref
	for {
		name := LocalName(cur)
		if seen[name] {
			return canonicalType(cur)
		}
		seen[name] = true
		st, ok := c.Simple[name]
		if !ok || st.Base == "" {
			return canonicalType(cur)
		}
		cur = st.Base
	}
}

// canonicalType folds the builtin spellings the mapping layer compares on.
// Anything else passes through raw, prefix included, so xs:date survives as
// declared.
func canonicalType(ref string) string {
	switch LocalName(ref) {
	case "int", "integer":
		return "integer"
	case "string":
		return "string"
	case "boolean":
		return "boolean"
	case "decimal", "float":
		return "number"
	}
	return ref
}
