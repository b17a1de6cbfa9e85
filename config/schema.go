package config

//go:generate go run ../tools/schema-generator -o ../gerrit-hooks.schema.json

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for gerrit-hooks configuration
// files. Unknown top-level keys are extensions and stay allowed; nested
// sections reject unknown fields.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		// Inline nested structs instead of using $ref for a flat schema.
		ExpandedStruct: true,
		DoNotReference: true,
		Anonymous:      true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "gerrit-hooks Configuration"
	schema.Description = "Schema for gerrit-hooks.yml."
	schema.AdditionalProperties = nil

	return json.MarshalIndent(schema, "", "  ")
}
