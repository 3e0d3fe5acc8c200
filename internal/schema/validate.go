package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidationError represents a schema validation error for one field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (value: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a decoded argument map against an object schema.
// It returns one ValidationError per violation; an empty slice means the
// data conforms.
func Validate(schema JSONSchema, data map[string]any) []ValidationError {
	var errs []ValidationError

	if schema.Type != "object" {
		return []ValidationError{{
			Message: fmt.Sprintf("root type must be object, got %s", schema.Type),
		}}
	}

	for _, field := range schema.Required {
		if _, exists := data[field]; !exists {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "required field is missing",
			})
		}
	}

	for fieldName, value := range data {
		fieldSchema, hasSchema := schema.Properties[fieldName]
		if !hasSchema {
			if schema.AdditionalProperties != nil && !*schema.AdditionalProperties {
				errs = append(errs, ValidationError{
					Field:   fieldName,
					Message: "additional property not allowed",
					Value:   value,
				})
			}
			continue
		}

		errs = append(errs, validateField(fieldName, fieldSchema, value)...)
	}

	return errs
}

// validateField validates a single field value against its schema.
func validateField(fieldPath string, schema SchemaField, value any) []ValidationError {
	var errs []ValidationError

	actualType := jsonType(value)
	if !typeCompatible(schema.Type, actualType, value) {
		return []ValidationError{{
			Field:   fieldPath,
			Message: fmt.Sprintf("expected type %s, got %s", schema.Type, actualType),
			Value:   value,
		}}
	}

	if schema.Type == "string" {
		errs = append(errs, validateString(fieldPath, schema, value)...)
	}

	if len(schema.Enum) > 0 {
		errs = append(errs, validateEnum(fieldPath, schema, value)...)
	}

	return errs
}

// validateString validates string-specific constraints.
func validateString(fieldPath string, schema SchemaField, value any) []ValidationError {
	var errs []ValidationError
	str, ok := value.(string)
	if !ok {
		return errs
	}

	if schema.MinLength != nil && len(str) < *schema.MinLength {
		errs = append(errs, ValidationError{
			Field:   fieldPath,
			Message: fmt.Sprintf("string length must be at least %d", *schema.MinLength),
			Value:   value,
		})
	}

	if schema.MaxLength != nil && len(str) > *schema.MaxLength {
		errs = append(errs, ValidationError{
			Field:   fieldPath,
			Message: fmt.Sprintf("string length must be at most %d", *schema.MaxLength),
			Value:   value,
		})
	}

	if schema.Format != "" {
		errs = append(errs, validateFormat(fieldPath, schema.Format, str)...)
	}

	return errs
}

// validateEnum checks that the value is one of the allowed enum members.
func validateEnum(fieldPath string, schema SchemaField, value any) []ValidationError {
	strValue := fmt.Sprintf("%v", value)

	for _, enumValue := range schema.Enum {
		if strValue == enumValue {
			return nil
		}
	}

	return []ValidationError{{
		Field:   fieldPath,
		Message: fmt.Sprintf("value must be one of: %s", strings.Join(schema.Enum, ", ")),
		Value:   value,
	}}
}

// validateFormat validates string format constraints.
func validateFormat(fieldPath, format, value string) []ValidationError {
	switch format {
	case "date":
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return []ValidationError{{
				Field:   fieldPath,
				Message: "invalid date format (expected YYYY-MM-DD)",
				Value:   value,
			}}
		}
	case "date-time":
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return []ValidationError{{
				Field:   fieldPath,
				Message: "invalid date-time format (expected RFC3339)",
				Value:   value,
			}}
		}
	case "uuid":
		if _, err := uuid.Parse(value); err != nil {
			return []ValidationError{{
				Field:   fieldPath,
				Message: "invalid UUID format",
				Value:   value,
			}}
		}
	}

	return nil
}

// typeCompatible checks if the actual type is compatible with the expected type.
func typeCompatible(expectedType, actualType string, value any) bool {
	if expectedType == actualType {
		return true
	}

	// JSON numbers decode as float64; accept whole numbers for integer fields.
	if expectedType == "integer" && actualType == "number" {
		switch v := value.(type) {
		case float64:
			return v == float64(int64(v))
		case int, int64, int32:
			return true
		}
	}

	return false
}

// jsonType returns the JSON type name of a decoded value.
func jsonType(value any) string {
	if value == nil {
		return "null"
	}

	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
