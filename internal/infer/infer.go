// Package infer derives JSON Schema documents from concrete example
// payloads so an example can enter the mapping pipeline without a
// hand-written schema.
package infer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/valyala/fastjson"

	"schemaforge/internal/convert"
)

// FromExample walks a JSON example document and renders the inferred
// schema as draft-07 bytes. Objects record every present key as required,
// array element schemas are merged, and whole numbers infer as integer.
func FromExample(data []byte) ([]byte, error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse example: %w", err)
	}

	doc := convert.NewOrderedMap().Set("$schema", "http://json-schema.org/draft-07/schema#")
	root := schemaDoc(valueSchema(v))
	for _, k := range root.Keys() {
		val, _ := root.Get(k)
		doc.Set(k, val)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func valueSchema(v *fastjson.Value) *openapi3.Schema {
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return &openapi3.Schema{}
		}
		return objectSchema(o)
	case fastjson.TypeArray:
		return arraySchema(v.GetArray())
	case fastjson.TypeString:
		return &openapi3.Schema{Type: openapi3.TypeString}
	case fastjson.TypeNumber:
		if _, err := v.Int64(); err == nil {
			return &openapi3.Schema{Type: openapi3.TypeInteger}
		}
		return &openapi3.Schema{Type: openapi3.TypeNumber}
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return &openapi3.Schema{Type: openapi3.TypeBoolean}
	case fastjson.TypeNull:
		return &openapi3.Schema{Nullable: true}
	}
	return &openapi3.Schema{}
}

func objectSchema(o *fastjson.Object) *openapi3.Schema {
	props := make(openapi3.Schemas, o.Len())
	var required []string
	o.Visit(func(key []byte, v *fastjson.Value) {
		props[string(key)] = valueSchema(v).NewRef()
		required = append(required, string(key))
	})
	return &openapi3.Schema{Type: openapi3.TypeObject, Properties: props, Required: required}
}

func arraySchema(vs []*fastjson.Value) *openapi3.Schema {
	var item *openapi3.Schema
	for _, v := range vs {
		item = mergeSchema(item, valueSchema(v))
	}
	s := &openapi3.Schema{Type: openapi3.TypeArray}
	if item != nil {
		s.Items = item.NewRef()
	}
	return s
}

// mergeSchema folds two inferred schemas into one: properties union with
// required intersection for objects, merged item schemas for arrays, and
// integer widening to number. Irreconcilable types drop the constraint.
func mergeSchema(a, b *openapi3.Schema) *openapi3.Schema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Type != b.Type {
		if numeric(a.Type) && numeric(b.Type) {
			return &openapi3.Schema{Type: openapi3.TypeNumber, Nullable: a.Nullable || b.Nullable}
		}
		if a.Type == "" && a.Nullable {
			return nullable(b)
		}
		if b.Type == "" && b.Nullable {
			return nullable(a)
		}
		return &openapi3.Schema{}
	}

	switch a.Type {
	case openapi3.TypeObject:
		return &openapi3.Schema{
			Type:       openapi3.TypeObject,
			Properties: mergeProperties(a.Properties, b.Properties),
			Required:   intersect(a.Required, b.Required),
			Nullable:   a.Nullable || b.Nullable,
		}
	case openapi3.TypeArray:
		s := &openapi3.Schema{Type: openapi3.TypeArray, Nullable: a.Nullable || b.Nullable}
		if merged := mergeSchema(refValue(a.Items), refValue(b.Items)); merged != nil {
			s.Items = merged.NewRef()
		}
		return s
	}
	return &openapi3.Schema{Type: a.Type, Nullable: a.Nullable || b.Nullable}
}

func mergeProperties(a, b openapi3.Schemas) openapi3.Schemas {
	out := make(openapi3.Schemas, len(a)+len(b))
	for k, v := range a {
		if w, ok := b[k]; ok {
			out[k] = mergeSchema(refValue(v), refValue(w)).NewRef()
			continue
		}
		out[k] = v
	}
	for k, v := range b {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// intersect keeps the keys of a that also appear in b, in a's order.
func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, k := range b {
		in[k] = true
	}
	var out []string
	for _, k := range a {
		if in[k] {
			out = append(out, k)
		}
	}
	return out
}

func numeric(t string) bool {
	return t == openapi3.TypeInteger || t == openapi3.TypeNumber
}

func nullable(s *openapi3.Schema) *openapi3.Schema {
	c := *s
	c.Nullable = true
	return &c
}

func refValue(r *openapi3.SchemaRef) *openapi3.Schema {
	if r == nil {
		return nil
	}
	return r.Value
}

// schemaDoc serializes an inferred schema as draft-07 keywords. Property
// and required lists are sorted so output is deterministic.
func schemaDoc(s *openapi3.Schema) *convert.OrderedMap {
	m := convert.NewOrderedMap()
	if s.Type != "" {
		m.Set("type", s.Type)
	} else if s.Nullable {
		m.Set("type", "null")
	}
	if len(s.Properties) > 0 {
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		props := convert.NewOrderedMap()
		for _, k := range keys {
			props.Set(k, schemaDoc(s.Properties[k].Value))
		}
		m.Set("properties", props)
	}
	if len(s.Required) > 0 {
		required := append([]string(nil), s.Required...)
		sort.Strings(required)
		m.Set("required", required)
	}
	if s.Items != nil && s.Items.Value != nil {
		m.Set("items", schemaDoc(s.Items.Value))
	}
	return m
}
