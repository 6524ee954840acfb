package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"schemaforge/internal/convert"
	"schemaforge/internal/jsonschema"
	"schemaforge/internal/models"
	"schemaforge/internal/xsd"
)

// ErrUnsupportedExtension marks a schema file whose extension names no
// known extractor.
var ErrUnsupportedExtension = errors.New("unsupported schema file extension")

// Detect returns the schema kind a file name implies. YAML documents walk
// through the JSON Schema extractor after conversion.
func Detect(name string) (models.SchemaKind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xsd", ".xml":
		return models.KindXSD, nil
	case ".json", ".yaml", ".yml":
		return models.KindJSONSchema, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedExtension, name)
}

// Extract parses raw schema bytes with the extractor the file name implies
// and stamps the tree with the file's base name.
func Extract(name string, data []byte) (*models.SchemaTree, error) {
	kind, err := Detect(name)
	if err != nil {
		return nil, err
	}
	if kind == models.KindJSONSchema && isYAML(name) {
		if data, err = convert.YAMLToJSON(data); err != nil {
			return nil, err
		}
	}

	var tree *models.SchemaTree
	switch kind {
	case models.KindXSD:
		tree, err = xsd.NewExtractor().Extract(data)
	default:
		tree, err = jsonschema.NewExtractor().Extract(data)
	}
	if err != nil {
		return nil, err
	}
	tree.Name = filepath.Base(name)
	return tree, nil
}

// Load reads a schema file from disk and extracts it.
func Load(path string) (*models.SchemaTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Extract(path, data)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
