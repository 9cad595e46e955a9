package content

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator checks item metadata against a JSON schema.
type SchemaValidator struct {
	name   string
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles schemaJSON for the named collection.
func NewSchemaValidator(collection, schemaJSON string) (*SchemaValidator, error) {
	url := fmt.Sprintf("gitcontent://collections/%s/schema.json", collection)
	compiled, err := jsonschema.CompileString(url, schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("content: compile schema for %s: %w", collection, err)
	}
	return &SchemaValidator{name: collection, schema: compiled}, nil
}

// Validate reports the first schema violation for meta, if any.
func (v *SchemaValidator) Validate(meta Metadata) error {
	if v == nil || v.schema == nil {
		return nil
	}
	// the validator only understands plain JSON shapes, not named map types
	doc := make(map[string]any, len(meta))
	for key, value := range meta {
		doc[key] = value
	}
	return v.schema.Validate(doc)
}
