package llm

import (
	"context"

	"github.com/taskmind/taskmind/internal/types"
)

// Provider defines the interface that all LLM providers must implement.
// It provides a unified abstraction over chat-completion services
// (Anthropic Claude, OpenAI GPT, local Ollama models, etc.).
type Provider interface {
	// Name returns the provider name (e.g., "anthropic", "openai", "ollama")
	Name() string

	// Models returns information about available models for this provider
	Models(ctx context.Context) ([]ModelInfo, error)

	// Complete sends a completion request and returns the full response.
	// This is a blocking call that waits for the entire response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteWithTools sends a completion request with tool definitions.
	// Tool choice is automatic: the model may answer in text or request
	// one or more tool invocations.
	CompleteWithTools(ctx context.Context, req CompletionRequest, tools []ToolDef) (*CompletionResponse, error)

	// Health checks the health status of the provider and its connectivity
	Health(ctx context.Context) types.HealthStatus
}

// ModelInfo contains metadata about an LLM model.
type ModelInfo struct {
	// Name is the model identifier (e.g., "gpt-4o", "claude-sonnet-4-5")
	Name string `json:"name"`

	// ContextWindow is the maximum number of tokens the model can process
	ContextWindow int `json:"context_window"`

	// Features lists the capabilities this model supports
	Features []string `json:"features"`

	// MaxOutput is the maximum number of tokens the model can generate
	MaxOutput int `json:"max_output"`
}

// SupportsFeature checks if the model supports a given feature
func (m ModelInfo) SupportsFeature(feature string) bool {
	for _, f := range m.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// SupportsToolUse checks if the model supports tool/function calling
func (m ModelInfo) SupportsToolUse() bool {
	return m.SupportsFeature("tools")
}
