// Package schema provides a minimal JSON Schema representation used to
// declare and validate tool parameter schemas. The subset implemented here
// covers what OpenAI-style function-calling APIs accept: object schemas with
// typed properties, required fields, enums, and basic string constraints.
package schema

// JSONSchema represents a JSON Schema object compatible with draft-07.
type JSONSchema struct {
	Type                 string                 `json:"type"`
	Description          string                 `json:"description,omitempty"`
	Properties           map[string]SchemaField `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	AdditionalProperties *bool                  `json:"additionalProperties,omitempty"`
}

// SchemaField represents a single property within an object schema.
type SchemaField struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Format      string   `json:"format,omitempty"`
}

// NewObjectSchema creates an object schema with the given properties and required fields.
func NewObjectSchema(properties map[string]SchemaField, required []string) JSONSchema {
	return JSONSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// NewStringField creates a string field with the given description.
func NewStringField(description string) SchemaField {
	return SchemaField{
		Type:        "string",
		Description: description,
	}
}

// NewIntegerField creates an integer field with the given description.
func NewIntegerField(description string) SchemaField {
	return SchemaField{
		Type:        "integer",
		Description: description,
	}
}

// NewBooleanField creates a boolean field with the given description.
func NewBooleanField(description string) SchemaField {
	return SchemaField{
		Type:        "boolean",
		Description: description,
	}
}

// WithEnum constrains the field to the given set of values.
func (f SchemaField) WithEnum(values ...string) SchemaField {
	f.Enum = values
	return f
}

// WithFormat adds a format constraint to string fields (e.g. date, date-time, uuid).
func (f SchemaField) WithFormat(format string) SchemaField {
	f.Format = format
	return f
}

// WithMaxLength adds a maximum length constraint to string fields.
func (f SchemaField) WithMaxLength(length int) SchemaField {
	f.MaxLength = &length
	return f
}

// WithDefault sets the default value for the field.
func (f SchemaField) WithDefault(value any) SchemaField {
	f.Default = value
	return f
}
