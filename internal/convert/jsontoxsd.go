package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/valyala/fastjson"

	"schemaforge/internal/models"
	"schemaforge/internal/xsd"
)

var (
	totalDigitsRe    = regexp.MustCompile(`totalDigits\s*[:=]\s*(\d+)`)
	fractionDigitsRe = regexp.MustCompile(`fractionDigits\s*[:=]\s*(\d+)`)
)

// JSONSchemaToXSD renders a JSON Schema as an XSD document with element
// names PascalCased. A schema whose single root property matches the
// title unwraps into the root element itself; otherwise all root
// properties become children of an element named after the title.
func JSONSchemaToXSD(data []byte) ([]byte, error) {
	doc, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse json schema: %w", err)
	}
	props := doc.GetObject("properties")
	if props == nil || props.Len() == 0 {
		return nil, models.ErrMissingRoot
	}
	title := string(doc.GetStringBytes("title"))
	if title == "" {
		title = "Root"
	}

	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	schema := out.CreateElement("xs:schema")
	schema.CreateAttr("xmlns:xs", "http://www.w3.org/2001/XMLSchema")

	var wrapped *fastjson.Value
	if props.Len() == 1 {
		props.Visit(func(key []byte, v *fastjson.Value) {
			if strings.EqualFold(string(key), title) {
				wrapped = v
			}
		})
	}

	root := schema.CreateElement("xs:element")
	root.CreateAttr("name", pascalCase(title))
	if wrapped != nil {
		buildComplexBody(root, wrapped)
	} else {
		buildComplexBody(root, doc)
	}

	out.Indent(2)
	return out.WriteToBytes()
}

// buildComplexBody fills an element with an annotation and a complex type
// holding the node's properties as a sequence.
func buildComplexBody(el *etree.Element, node *fastjson.Value) {
	addAnnotation(el, node)
	ct := el.CreateElement("xs:complexType")
	seq := ct.CreateElement("xs:sequence")
	required := requiredLookup(node)
	if props := node.GetObject("properties"); props != nil {
		props.Visit(func(key []byte, v *fastjson.Value) {
			buildElement(seq, string(key), v, required[string(key)])
		})
	}
}

// buildElement emits one child element. Arrays collapse into a repeating
// element carrying the item schema, the native XSD form.
func buildElement(parent *etree.Element, name string, node *fastjson.Value, required bool) {
	el := parent.CreateElement("xs:element")
	el.CreateAttr("name", pascalCase(name))
	minOccurs := "0"
	if required {
		minOccurs = "1"
	}
	el.CreateAttr("minOccurs", minOccurs)

	if schemaTypeOf(node) == "array" {
		maxOccurs := "unbounded"
		if v := node.Get("maxItems"); v != nil {
			if s := rawValue(v); isDigits(s) {
				maxOccurs = s
			}
		}
		el.CreateAttr("maxOccurs", maxOccurs)
		addAnnotation(el, node)
		if items := node.Get("items"); items != nil {
			fillElement(el, items)
		} else {
			el.CreateAttr("type", "xs:string")
		}
		return
	}

	el.CreateAttr("maxOccurs", "1")
	fillElement(el, node)
}

// fillElement writes a schema node's content onto an existing element:
// a complex body for objects, a restriction or plain type for leaves.
func fillElement(el *etree.Element, node *fastjson.Value) {
	typ := schemaTypeOf(node)
	if typ == "object" {
		buildComplexBody(el, node)
		return
	}

	addAnnotation(el, node)
	facets := leafRestrictions(node, typ)
	if len(facets) == 0 {
		el.CreateAttr("type", xsdType(typ))
		return
	}
	st := el.CreateElement("xs:simpleType")
	r := st.CreateElement("xs:restriction")
	r.CreateAttr("base", restrictionBase(typ))
	for _, f := range facets {
		fe := r.CreateElement("xs:" + f.Name)
		fe.CreateAttr("value", f.Value)
	}
}

// addAnnotation writes the node's description as XSD documentation. An
// element gets at most one annotation.
func addAnnotation(el *etree.Element, node *fastjson.Value) {
	desc := node.GetStringBytes("description")
	if len(desc) == 0 || xsd.Child(el, "annotation") != nil {
		return
	}
	ann := el.CreateElement("xs:annotation")
	ann.CreateElement("xs:documentation").SetText(string(desc))
}

// leafRestrictions maps draft-07 keywords back onto restriction facets.
// multipleOf values below one recover fractionDigits, and $comment hints
// carry totalDigits and fractionDigits through round trips.
func leafRestrictions(node *fastjson.Value, typ string) []models.Facet {
	var out []models.Facet
	switch typ {
	case "string":
		for _, key := range []string{"maxLength", "minLength", "pattern"} {
			if v := node.Get(key); v != nil {
				out = append(out, models.Facet{Name: key, Value: rawValue(v)})
			}
		}
		out = append(out, enumFacets(node)...)
		out = append(out, commentFacets(node)...)
	case "integer", "number":
		bounds := [][2]string{
			{"minimum", "minInclusive"},
			{"maximum", "maxInclusive"},
			{"exclusiveMinimum", "minExclusive"},
			{"exclusiveMaximum", "maxExclusive"},
		}
		for _, b := range bounds {
			if v := node.Get(b[0]); v != nil {
				out = append(out, models.Facet{Name: b[1], Value: rawValue(v)})
			}
		}
		if v := node.Get("multipleOf"); v != nil {
			if d, ok := fractionDigitsFromMultipleOf(rawValue(v)); ok {
				out = append(out, models.Facet{Name: "fractionDigits", Value: strconv.Itoa(d)})
			}
		}
		out = append(out, commentFacets(node)...)
		out = append(out, enumFacets(node)...)
	}
	return out
}

func enumFacets(node *fastjson.Value) []models.Facet {
	var out []models.Facet
	for _, v := range node.GetArray("enum") {
		out = append(out, models.Facet{Name: "enumeration", Value: rawValue(v)})
	}
	return out
}

func commentFacets(node *fastjson.Value) []models.Facet {
	comment := string(node.GetStringBytes("$comment"))
	if comment == "" {
		return nil
	}
	var out []models.Facet
	if m := totalDigitsRe.FindStringSubmatch(comment); m != nil {
		out = append(out, models.Facet{Name: "totalDigits", Value: m[1]})
	}
	if m := fractionDigitsRe.FindStringSubmatch(comment); m != nil {
		out = append(out, models.Facet{Name: "fractionDigits", Value: m[1]})
	}
	return out
}

// fractionDigitsFromMultipleOf recovers a digit count from a multipleOf
// strictly between zero and one, e.g. 0.001 carries three digits.
func fractionDigitsFromMultipleOf(raw string) (int, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 || f >= 1 {
		return 0, false
	}
	if dot := strings.IndexByte(raw, '.'); dot >= 0 && !strings.ContainsAny(raw, "eE") {
		return len(raw) - dot - 1, true
	}
	d := 0
	for f < 1 {
		f *= 10
		d++
	}
	return d, true
}

func requiredLookup(node *fastjson.Value) map[string]bool {
	out := make(map[string]bool)
	for _, v := range node.GetArray("required") {
		if b, err := v.StringBytes(); err == nil {
			out[string(b)] = true
		}
	}
	return out
}

// schemaTypeOf reads the type keyword, treating typeless nodes with
// properties as objects.
func schemaTypeOf(node *fastjson.Value) string {
	if t := node.GetStringBytes("type"); len(t) > 0 {
		return string(t)
	}
	if node.Exists("properties") {
		return "object"
	}
	return ""
}

func xsdType(typ string) string {
	switch typ {
	case "integer":
		return "xs:int"
	case "number":
		return "xs:decimal"
	case "boolean":
		return "xs:boolean"
	default:
		return "xs:string"
	}
}

func restrictionBase(typ string) string {
	if typ == "string" {
		return "xs:string"
	}
	if typ == "integer" {
		return "xs:int"
	}
	return "xs:decimal"
}

// rawValue renders a scalar the way it appears in the document, without
// quotes around strings.
func rawValue(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
