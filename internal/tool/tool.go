// Package tool defines the tool-calling surface exposed to the LLM: the
// Tool interface, structured results, and a registry that dispatches tool
// calls by name.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/types"
)

// ResultStatus indicates whether a tool execution succeeded.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// Result is the structured outcome of a tool execution. It is serialized
// to JSON and handed back to the model as the tool message content, so
// errors are data the model can recover from, not Go errors.
type Result struct {
	Status  ResultStatus `json:"status"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
}

// IsError reports whether the execution failed.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// JSON serializes the result for the tool message content.
func (r Result) JSON() string {
	encoded, err := json.Marshal(r)
	if err != nil {
		// Data payloads are maps of primitives; this should not happen.
		return fmt.Sprintf(`{"status":"error","message":"failed to encode result: %v"}`, err)
	}
	return string(encoded)
}

// Success creates a successful result.
func Success(message string, data any) Result {
	return Result{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{
		Status:  StatusError,
		Message: fmt.Sprintf(format, args...),
	}
}

// Tool is a capability the LLM can invoke during a conversation.
//
// Execute receives the authenticated user's ID from the caller, never from
// model-supplied arguments: a tool must scope every data access to that ID
// and ignore any identity fields the model may have invented.
type Tool interface {
	// Name returns the unique tool name the model calls it by.
	Name() string

	// Description explains what the tool does, for the model's catalogue.
	Description() string

	// Definition returns the tool's name, description, and parameter schema
	// as advertised to the model.
	Definition() llm.ToolDef

	// Execute runs the tool for the given user with decoded arguments.
	Execute(ctx context.Context, userID types.ID, args map[string]any) Result
}
