package config

import (
	"github.com/grovetools/gerrit-hooks/schema"
)

// SchemaValidator validates configuration documents against the schema
// produced by GenerateSchema.
type SchemaValidator struct {
	validator *schema.Validator
}

// NewSchemaValidator generates the configuration schema and compiles it.
func NewSchemaValidator() (*SchemaValidator, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	validator, err := schema.NewValidator("gerrit-hooks.schema.json", data)
	if err != nil {
		return nil, err
	}
	return &SchemaValidator{validator: validator}, nil
}

// Validate validates configuration data against the schema.
func (v *SchemaValidator) Validate(configData interface{}) error {
	return v.validator.Validate(configData)
}
