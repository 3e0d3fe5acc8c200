package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmind/taskmind/internal/llm"
)

func TestMockProvider_ReplaysScript(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider(
		ToolCallTurn(llm.ToolCall{ID: "call_1", Type: "function", Name: "list_tasks", Arguments: "{}"}),
		TextTurn("you have no tasks"),
	)

	req := llm.CompletionRequest{Model: "mock-model", Messages: []llm.Message{llm.NewUserMessage("list my tasks")}}

	first, err := mock.CompleteWithTools(ctx, req, nil)
	require.NoError(t, err)
	require.True(t, first.HasToolCalls())
	assert.Equal(t, "list_tasks", first.Message.ToolCalls[0].Name)

	second, err := mock.CompleteWithTools(ctx, req, nil)
	require.NoError(t, err)
	assert.False(t, second.HasToolCalls())
	assert.Equal(t, "you have no tasks", second.Message.Content)

	assert.Equal(t, 2, mock.CallCount())
}

func TestMockProvider_RepeatsLastResponse(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider(
		ToolCallTurn(llm.ToolCall{ID: "call_1", Type: "function", Name: "list_tasks", Arguments: "{}"}),
	)

	req := llm.CompletionRequest{Model: "mock-model", Messages: []llm.Message{llm.NewUserMessage("hi")}}

	for i := 0; i < 5; i++ {
		resp, err := mock.Complete(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.HasToolCalls())
	}
}

func TestMockProvider_FailWith(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider(TextTurn("never reached"))
	mock.FailWith(llm.NewRateLimitError("mock"))

	_, err := mock.Complete(ctx, llm.CompletionRequest{Model: "mock-model"})
	require.Error(t, err)
	assert.Equal(t, llm.ErrorClassRateLimit, llm.Classify(err))
	assert.True(t, mock.Health(ctx).IsUnhealthy())
}

func TestNewProvider_Mock(t *testing.T) {
	provider, err := NewProvider(llm.ProviderConfig{Type: llm.ProviderMock})
	require.NoError(t, err)
	assert.Equal(t, "mock", provider.Name())
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(llm.ProviderConfig{Type: "bard"})
	assert.Error(t, err)
}
