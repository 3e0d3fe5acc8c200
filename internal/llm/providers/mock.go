package providers

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/types"
)

// MockProvider implements llm.Provider for testing. It replays a scripted
// sequence of responses and records every request it receives. When the
// script is exhausted the last response repeats, which makes it easy to
// simulate a model that keeps requesting the same tool call.
type MockProvider struct {
	mu        sync.Mutex
	responses []*llm.CompletionResponse
	index     int
	err       error
	requests  []llm.CompletionRequest
}

// NewMockProvider creates a mock provider that replays the given responses in order.
func NewMockProvider(responses ...*llm.CompletionResponse) *MockProvider {
	return &MockProvider{
		responses: responses,
	}
}

// TextTurn builds a scripted plain-text assistant response.
func TextTurn(content string) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        "mock-model",
		Message:      llm.NewAssistantMessage(content),
		FinishReason: llm.FinishReasonStop,
	}
}

// ToolCallTurn builds a scripted assistant response requesting the given tool calls.
func ToolCallTurn(calls ...llm.ToolCall) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		ID:    uuid.New().String(),
		Model: "mock-model",
		Message: llm.Message{
			Role:      llm.RoleAssistant,
			ToolCalls: calls,
		},
		FinishReason: llm.FinishReasonToolCalls,
	}
}

// FailWith makes every subsequent completion call return err.
func (p *MockProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Requests returns a copy of all completion requests received so far.
func (p *MockProvider) Requests() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]llm.CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// CallCount returns the number of completion calls received so far.
func (p *MockProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return "mock"
}

// Models returns mock model information
func (p *MockProvider) Models(ctx context.Context) ([]llm.ModelInfo, error) {
	return []llm.ModelInfo{
		{
			Name:          "mock-model",
			ContextWindow: 4096,
			MaxOutput:     2048,
			Features:      []string{"chat", "tools"},
		},
	}, nil
}

// Complete replays the next scripted response
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return p.next(req)
}

// CompleteWithTools replays the next scripted response
func (p *MockProvider) CompleteWithTools(ctx context.Context, req llm.CompletionRequest, tools []llm.ToolDef) (*llm.CompletionResponse, error) {
	return p.next(req)
}

// Health always reports healthy unless a failure is injected
func (p *MockProvider) Health(ctx context.Context) types.HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return types.Unhealthy(p.err.Error())
	}
	return types.Healthy("")
}

func (p *MockProvider) next(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	if p.err != nil {
		return nil, p.err
	}

	if len(p.responses) == 0 {
		return TextTurn("mock response"), nil
	}

	resp := p.responses[p.index]
	if p.index < len(p.responses)-1 {
		p.index++
	}

	return resp, nil
}
