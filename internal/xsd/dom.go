package xsd

import (
	"strings"

	"github.com/beevik/etree"

	"schemaforge/internal/models"
)

// LocalName strips a namespace prefix from a QName reference, so "xs:string"
// and "string" resolve alike.
func LocalName(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Child returns the first direct child element with the given local tag,
// regardless of namespace prefix.
func Child(el *etree.Element, local string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			return c
		}
	}
	return nil
}

// Children returns every direct child element with the given local tag, in
// document order.
func Children(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

// Descendants returns every element below el with the given local tag, at any
// depth, in document order.
func Descendants(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
		out = append(out, Descendants(c, local)...)
	}
	return out
}

// Documentation returns the trimmed annotation/documentation text of el, or
// an empty string when none is declared.
func Documentation(el *etree.Element) string {
	ann := Child(el, "annotation")
	if ann == nil {
		return ""
	}
	doc := Child(ann, "documentation")
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

// RestrictionFacets collects every facet child of a restriction that carries
// a value attribute, in declaration order. enumeration is recorded under the
// shorter enum name so facet vocabularies line up across schema dialects.
func RestrictionFacets(restriction *etree.Element) []models.Facet {
	var facets []models.Facet
	for _, c := range restriction.ChildElements() {
		attr := c.SelectAttr("value")
		if attr == nil {
			continue
		}
		name := c.Tag
		if name == "enumeration" {
			name = "enum"
		}
		facets = append(facets, models.Facet{Name: name, Value: attr.Value})
	}
	return facets
}
