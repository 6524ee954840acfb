package convert

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// YAMLToJSON re-encodes a YAML document as JSON, keeping mapping keys in
// document order so schema extraction sees properties as authored.
func YAMLToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return json.Marshal(jsonValue(doc))
}

// jsonValue rewrites goccy's ordered mappings into OrderedMap values that
// encoding/json can marshal without losing key order.
func jsonValue(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		m := NewOrderedMap()
		for _, item := range t {
			m.Set(fmt.Sprint(item.Key), jsonValue(item.Value))
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return v
	}
}
