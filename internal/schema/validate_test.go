package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskSchema() JSONSchema {
	return NewObjectSchema(map[string]SchemaField{
		"title":    NewStringField("Task title").WithMaxLength(500),
		"priority": NewStringField("Task priority").WithEnum("low", "medium", "high").WithDefault("medium"),
		"due_date": NewStringField("Due date").WithFormat("date"),
		"count":    NewIntegerField("Item count"),
	}, []string{"title"})
}

func TestValidate_Success(t *testing.T) {
	errs := Validate(taskSchema(), map[string]any{
		"title":    "buy milk",
		"priority": "high",
		"due_date": "2026-03-01",
	})
	assert.Empty(t, errs)
}

func TestValidate_MissingRequired(t *testing.T) {
	errs := Validate(taskSchema(), map[string]any{"priority": "low"})

	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
	assert.Contains(t, errs[0].Message, "required")
}

func TestValidate_EnumViolation(t *testing.T) {
	errs := Validate(taskSchema(), map[string]any{
		"title":    "buy milk",
		"priority": "urgent",
	})

	require.Len(t, errs, 1)
	assert.Equal(t, "priority", errs[0].Field)
	assert.Contains(t, errs[0].Message, "must be one of")
}

func TestValidate_TypeMismatch(t *testing.T) {
	errs := Validate(taskSchema(), map[string]any{"title": 42})

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "expected type string")
}

func TestValidate_DateFormat(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{name: "valid", date: "2026-08-24", wantErr: false},
		{name: "wrong layout", date: "24/08/2026", wantErr: true},
		{name: "free text", date: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(taskSchema(), map[string]any{
				"title":    "t",
				"due_date": tt.date,
			})
			if tt.wantErr {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidate_IntegerAcceptsWholeFloat(t *testing.T) {
	// JSON decoding yields float64 for all numbers
	errs := Validate(taskSchema(), map[string]any{"title": "t", "count": float64(3)})
	assert.Empty(t, errs)

	errs = Validate(taskSchema(), map[string]any{"title": "t", "count": 3.5})
	assert.NotEmpty(t, errs)
}

func TestValidate_AdditionalProperties(t *testing.T) {
	s := taskSchema()
	disallow := false
	s.AdditionalProperties = &disallow

	errs := Validate(s, map[string]any{"title": "t", "user_id": "sneaky"})
	require.Len(t, errs, 1)
	assert.Equal(t, "user_id", errs[0].Field)
}

func TestValidate_MaxLength(t *testing.T) {
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}

	errs := Validate(taskSchema(), map[string]any{"title": string(long)})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "at most 500")
}
