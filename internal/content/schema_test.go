package content

import "testing"

func TestSchemaValidator(t *testing.T) {
	validator, err := NewSchemaValidator("posts", `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"publish": {"type": "boolean"}
		}
	}`)
	if err != nil {
		t.Fatalf("NewSchemaValidator: %v", err)
	}

	if err := validator.Validate(Metadata{"title": "Hello", "publish": true}); err != nil {
		t.Fatalf("expected valid metadata, got %v", err)
	}
	if err := validator.Validate(Metadata{"publish": true}); err == nil {
		t.Fatalf("expected missing title to fail")
	}
	if err := validator.Validate(Metadata{"title": "Hello", "publish": "yes"}); err == nil {
		t.Fatalf("expected string publish to fail")
	}

	var nilValidator *SchemaValidator
	if err := nilValidator.Validate(Metadata{}); err != nil {
		t.Fatalf("expected nil validator to accept, got %v", err)
	}
}
