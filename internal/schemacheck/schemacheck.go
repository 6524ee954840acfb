// Package schemacheck compiles JSON Schema documents and validates
// instances against them, a pre-flight for documents entering the
// mapping pipeline.
package schemacheck

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kaptinlin/jsonschema"
)

// Compile parses and compiles a JSON Schema document.
func Compile(data []byte) (*jsonschema.Schema, error) {
	schema, err := jsonschema.NewCompiler().Compile(data)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Validate checks a JSON instance against a schema document and returns
// the violation messages, sorted for stable output. Nil messages mean the
// instance conforms.
func Validate(schemaDoc, instance []byte) ([]string, error) {
	schema, err := Compile(schemaDoc)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(instance, &value); err != nil {
		return nil, fmt.Errorf("parse instance: %w", err)
	}

	result := schema.Validate(value)
	if result.Valid {
		return nil, nil
	}
	messages := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		messages = append(messages, e.Error())
	}
	sort.Strings(messages)
	return messages, nil
}
