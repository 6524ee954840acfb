package convert

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"schemaforge/internal/models"
	"schemaforge/internal/xsd"
)

const orderXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Order">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="Id" type="OrderIdType">
          <xs:annotation>
            <xs:documentation>Order identifier.</xs:documentation>
          </xs:annotation>
        </xs:element>
        <xs:element name="Total" type="xs:decimal" minOccurs="0"/>
        <xs:element name="Lines" minOccurs="0" maxOccurs="unbounded">
          <xs:complexType>
            <xs:sequence>
              <xs:element name="Sku" type="xs:string"/>
              <xs:element name="Quantity" type="xs:int" minOccurs="0"/>
            </xs:sequence>
          </xs:complexType>
        </xs:element>
        <xs:element name="Price">
          <xs:simpleType>
            <xs:restriction base="xs:decimal">
              <xs:minInclusive value="0"/>
              <xs:fractionDigits value="2"/>
              <xs:totalDigits value="7"/>
            </xs:restriction>
          </xs:simpleType>
        </xs:element>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
  <xs:simpleType name="OrderIdType">
    <xs:restriction base="xs:string">
      <xs:maxLength value="10"/>
      <xs:pattern value="[A-Z0-9]+"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`

func TestOrderedMapMarshalsInInsertionOrder(t *testing.T) {
	m := NewOrderedMap().Set("zeta", 1).Set("alpha", "two").Set("zeta", 3)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":3,"alpha":"two"}`, string(data))
	assert.Equal(t, []string{"zeta", "alpha"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "two", v)
	assert.False(t, m.Has("missing"))
}

func TestOrderedMapMarshalsNestedValues(t *testing.T) {
	m := NewOrderedMap().
		Set("outer", NewOrderedMap().Set("b", 1).Set("a", 2)).
		Set("list", []any{"x", NewOrderedMap().Set("k", true)})

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"outer":{"b":1,"a":2},"list":["x",{"k":true}]}`, string(data))
}

func TestYAMLToJSONKeepsKeyOrder(t *testing.T) {
	out, err := YAMLToJSON([]byte("zeta: 1\nalpha:\n  inner: two\nlist:\n  - a\n  - b\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"inner":"two"},"list":["a","b"]}`, string(out))
}

func TestYAMLToJSONMalformedDocument(t *testing.T) {
	_, err := YAMLToJSON([]byte("key: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")
}

func TestXSDToJSONSchema(t *testing.T) {
	out, err := XSDToJSONSchema([]byte(orderXSD))
	require.NoError(t, err)

	doc, err := fastjson.ParseBytes(out)
	require.NoError(t, err)
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", string(doc.GetStringBytes("$schema")))
	assert.Equal(t, "order", string(doc.GetStringBytes("title")))
	assert.Equal(t, "object", string(doc.GetStringBytes("type")))

	required := doc.GetArray("required")
	require.Len(t, required, 1)
	assert.Equal(t, "order", string(required[0].GetStringBytes()))

	root := doc.Get("properties", "order")
	require.NotNil(t, root)
	assert.Equal(t, "object", string(root.GetStringBytes("type")))

	var rootRequired []string
	for _, v := range root.GetArray("required") {
		rootRequired = append(rootRequired, string(v.GetStringBytes()))
	}
	assert.Equal(t, []string{"id", "price"}, rootRequired)

	id := root.Get("properties", "id")
	require.NotNil(t, id)
	assert.Equal(t, "string", string(id.GetStringBytes("type")))
	assert.Equal(t, 10, id.GetInt("maxLength"))
	assert.Equal(t, "[A-Z0-9]+", string(id.GetStringBytes("pattern")))
	assert.Equal(t, "Order identifier.", string(id.GetStringBytes("description")))

	assert.Equal(t, "number", string(root.Get("properties", "total").GetStringBytes("type")))

	lines := root.Get("properties", "lines")
	require.NotNil(t, lines)
	assert.Equal(t, "array", string(lines.GetStringBytes("type")))
	assert.False(t, lines.Exists("minItems"))
	assert.False(t, lines.Exists("maxItems"))
	items := lines.Get("items")
	require.NotNil(t, items)
	assert.Equal(t, "object", string(items.GetStringBytes("type")))
	assert.Equal(t, "string", string(items.Get("properties", "sku").GetStringBytes("type")))
	itemRequired := items.GetArray("required")
	require.Len(t, itemRequired, 1)
	assert.Equal(t, "sku", string(itemRequired[0].GetStringBytes()))

	price := root.Get("properties", "price")
	require.NotNil(t, price)
	assert.Equal(t, "number", string(price.GetStringBytes("type")))
	assert.InDelta(t, 0.0, price.GetFloat64("minimum"), 1e-9)
	assert.InDelta(t, 0.01, price.GetFloat64("multipleOf"), 1e-9)
	assert.Equal(t, "totalDigits: 7", string(price.GetStringBytes("$comment")))
}

func TestXSDToJSONSchemaKeepsDeclarationOrder(t *testing.T) {
	out, err := XSDToJSONSchema([]byte(orderXSD))
	require.NoError(t, err)

	raw := string(out)
	last := -1
	for _, key := range []string{`"$schema"`, `"title"`, `"type"`, `"properties"`, `"id"`, `"total"`, `"lines"`, `"price"`} {
		idx := strings.Index(raw, key)
		require.Greater(t, idx, last, key)
		last = idx
	}
}

func TestXSDToJSONSchemaBoundedRepeats(t *testing.T) {
	out, err := XSDToJSONSchema([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Batch">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="Entry" type="xs:string" minOccurs="1" maxOccurs="3"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`))
	require.NoError(t, err)

	doc, err := fastjson.ParseBytes(out)
	require.NoError(t, err)
	entry := doc.Get("properties", "batch", "properties", "entry")
	require.NotNil(t, entry)
	assert.Equal(t, "array", string(entry.GetStringBytes("type")))
	assert.Equal(t, 1, entry.GetInt("minItems"))
	assert.Equal(t, 3, entry.GetInt("maxItems"))
	assert.Equal(t, "string", string(entry.Get("items").GetStringBytes("type")))
}

func TestXSDToJSONSchemaExtensionBaseFirst(t *testing.T) {
	out, err := XSDToJSONSchema([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Audit" type="AuditType"/>
  <xs:complexType name="AuditType">
    <xs:complexContent>
      <xs:extension base="BaseType">
        <xs:sequence>
          <xs:element name="CreatedAt" type="xs:string"/>
        </xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
  <xs:complexType name="BaseType">
    <xs:sequence>
      <xs:element name="Id" type="xs:int"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`))
	require.NoError(t, err)

	raw := string(out)
	assert.Less(t, strings.Index(raw, `"id"`), strings.Index(raw, `"createdAt"`))

	doc, err := fastjson.ParseBytes(out)
	require.NoError(t, err)
	assert.Equal(t, "integer", string(doc.Get("properties", "audit", "properties", "id").GetStringBytes("type")))
}

func TestXSDToJSONSchemaMissingRoot(t *testing.T) {
	_, err := XSDToJSONSchema([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`))
	assert.ErrorIs(t, err, models.ErrMissingRoot)
}

func TestXSDToJSONSchemaMalformedDocument(t *testing.T) {
	_, err := XSDToJSONSchema([]byte(`<xs:schema xmlns:xs="http`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse xsd")
}

func TestJSONSchemaToXSD(t *testing.T) {
	out, err := JSONSchemaToXSD([]byte(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "order",
  "type": "object",
  "properties": {
    "order": {
      "type": "object",
      "description": "An order.",
      "properties": {
        "id": {"type": "string", "maxLength": 10, "pattern": "[A-Z0-9]+"},
        "total": {"type": "number", "minimum": 0, "multipleOf": 0.01, "$comment": "totalDigits: 7"},
        "active": {"type": "boolean"},
        "lines": {
          "type": "array",
          "maxItems": 5,
          "items": {
            "type": "object",
            "properties": {"sku": {"type": "string"}},
            "required": ["sku"]
          }
        }
      },
      "required": ["id", "total"]
    }
  },
  "required": ["order"]
}`))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	schema := doc.Root()
	require.NotNil(t, schema)
	assert.Equal(t, "schema", schema.Tag)

	roots := xsd.Children(schema, "element")
	require.Len(t, roots, 1)
	root := roots[0]
	assert.Equal(t, "Order", root.SelectAttrValue("name", ""))
	assert.Equal(t, "An order.", xsd.Documentation(root))

	seq := xsd.Child(xsd.Child(root, "complexType"), "sequence")
	require.NotNil(t, seq)
	children := xsd.Children(seq, "element")
	require.Len(t, children, 4)

	id := children[0]
	assert.Equal(t, "Id", id.SelectAttrValue("name", ""))
	assert.Equal(t, "1", id.SelectAttrValue("minOccurs", ""))
	assert.Equal(t, "1", id.SelectAttrValue("maxOccurs", ""))
	idRestriction := xsd.Child(xsd.Child(id, "simpleType"), "restriction")
	require.NotNil(t, idRestriction)
	assert.Equal(t, "xs:string", idRestriction.SelectAttrValue("base", ""))

	total := children[1]
	totalRestriction := xsd.Child(xsd.Child(total, "simpleType"), "restriction")
	require.NotNil(t, totalRestriction)
	assert.Equal(t, "xs:decimal", totalRestriction.SelectAttrValue("base", ""))
	var facetNames, facetValues []string
	for _, f := range totalRestriction.ChildElements() {
		facetNames = append(facetNames, f.Tag)
		facetValues = append(facetValues, f.SelectAttrValue("value", ""))
	}
	assert.Equal(t, []string{"minInclusive", "fractionDigits", "totalDigits"}, facetNames)
	assert.Equal(t, []string{"0", "2", "7"}, facetValues)

	active := children[2]
	assert.Equal(t, "Active", active.SelectAttrValue("name", ""))
	assert.Equal(t, "0", active.SelectAttrValue("minOccurs", ""))
	assert.Equal(t, "xs:boolean", active.SelectAttrValue("type", ""))

	lines := children[3]
	assert.Equal(t, "Lines", lines.SelectAttrValue("name", ""))
	assert.Equal(t, "0", lines.SelectAttrValue("minOccurs", ""))
	assert.Equal(t, "5", lines.SelectAttrValue("maxOccurs", ""))
	lineSeq := xsd.Child(xsd.Child(lines, "complexType"), "sequence")
	require.NotNil(t, lineSeq)
	sku := xsd.Child(lineSeq, "element")
	require.NotNil(t, sku)
	assert.Equal(t, "Sku", sku.SelectAttrValue("name", ""))
	assert.Equal(t, "1", sku.SelectAttrValue("minOccurs", ""))
}

func TestJSONSchemaToXSDRoundTripsThroughExtraction(t *testing.T) {
	out, err := JSONSchemaToXSD([]byte(`{
  "title": "order",
  "type": "object",
  "properties": {
    "order": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "maxLength": 10},
        "lines": {
          "type": "array",
          "maxItems": 5,
          "items": {"type": "object", "properties": {"sku": {"type": "string"}}, "required": ["sku"]}
        }
      },
      "required": ["id"]
    }
  },
  "required": ["order"]
}`))
	require.NoError(t, err)

	tree, err := xsd.NewExtractor().Extract(out)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"order",
		"order.id",
		"order.lines",
		"order.lines.sku",
	}, tree.Paths())

	byPath := make(map[string]models.SchemaField, len(tree.Fields))
	for _, f := range tree.Fields {
		byPath[f.Path()] = f
	}
	assert.Equal(t, "string", byPath["order.id"].Type)
	assert.Equal(t, "maxLength: 10", byPath["order.id"].Details)
	assert.Equal(t, "0..5", byPath["order.lines"].Cardinality)
	assert.Equal(t, "1", byPath["order.lines.sku"].Cardinality)
}

func TestJSONSchemaToXSDFlatRoot(t *testing.T) {
	out, err := JSONSchemaToXSD([]byte(`{
  "title": "customer",
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer"},
    "status": {"type": "string", "enum": ["NEW", "BLOCKED"]}
  },
  "required": ["name"]
}`))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := xsd.Child(doc.Root(), "element")
	require.NotNil(t, root)
	assert.Equal(t, "Customer", root.SelectAttrValue("name", ""))

	seq := xsd.Child(xsd.Child(root, "complexType"), "sequence")
	require.NotNil(t, seq)
	children := xsd.Children(seq, "element")
	require.Len(t, children, 3)
	assert.Equal(t, "Name", children[0].SelectAttrValue("name", ""))
	assert.Equal(t, "1", children[0].SelectAttrValue("minOccurs", ""))
	assert.Equal(t, "xs:string", children[0].SelectAttrValue("type", ""))
	assert.Equal(t, "Age", children[1].SelectAttrValue("name", ""))
	assert.Equal(t, "0", children[1].SelectAttrValue("minOccurs", ""))
	assert.Equal(t, "xs:int", children[1].SelectAttrValue("type", ""))

	enums := xsd.Children(xsd.Child(xsd.Child(children[2], "simpleType"), "restriction"), "enumeration")
	require.Len(t, enums, 2)
	assert.Equal(t, "NEW", enums[0].SelectAttrValue("value", ""))
	assert.Equal(t, "BLOCKED", enums[1].SelectAttrValue("value", ""))
}

func TestJSONSchemaToXSDSingleRootWithoutTitleMatchStaysWrapped(t *testing.T) {
	out, err := JSONSchemaToXSD([]byte(`{
  "title": "envelope",
  "properties": {
    "payload": {"type": "object", "properties": {"body": {"type": "string"}}}
  }
}`))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := xsd.Child(doc.Root(), "element")
	require.NotNil(t, root)
	assert.Equal(t, "Envelope", root.SelectAttrValue("name", ""))

	seq := xsd.Child(xsd.Child(root, "complexType"), "sequence")
	require.NotNil(t, seq)
	payload := xsd.Child(seq, "element")
	require.NotNil(t, payload)
	assert.Equal(t, "Payload", payload.SelectAttrValue("name", ""))
}

func TestJSONSchemaToXSDMissingRoot(t *testing.T) {
	for _, doc := range []string{`{"title":"x","properties":{}}`, `{"type":"object"}`} {
		_, err := JSONSchemaToXSD([]byte(doc))
		assert.ErrorIs(t, err, models.ErrMissingRoot, doc)
	}
}

func TestJSONSchemaToXSDMalformedDocument(t *testing.T) {
	_, err := JSONSchemaToXSD([]byte(`{"title":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json schema")
}

func TestFractionDigitsFromMultipleOf(t *testing.T) {
	cases := []struct {
		raw    string
		digits int
		ok     bool
	}{
		{"0.001", 3, true},
		{"0.010", 3, true},
		{"0.5", 1, true},
		{"1e-2", 2, true},
		{"1", 0, false},
		{"2", 0, false},
		{"0", 0, false},
		{"-0.5", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		d, ok := fractionDigitsFromMultipleOf(c.raw)
		assert.Equal(t, c.ok, ok, c.raw)
		assert.Equal(t, c.digits, d, c.raw)
	}
}
