package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmind/taskmind/internal/types"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "rate limit", err: NewRateLimitError("openai"), retryable: true},
		{name: "network failure", err: NewNetworkError("connection reset", nil), retryable: true},
		{name: "timeout", err: NewTimeoutError("deadline exceeded"), retryable: true},
		{name: "provider unavailable", err: NewProviderUnavailableError("openai", nil), retryable: true},
		{name: "authentication", err: NewAuthError("openai", nil), retryable: false},
		{name: "invalid request", err: NewInvalidRequestError("bad temperature"), retryable: false},
		{name: "plain error", err: fmt.Errorf("something broke"), retryable: false},
		{name: "context canceled", err: types.NewError(ErrContextCanceled, "canceled"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{name: "rate limit", err: NewRateLimitError("openai"), expected: ErrorClassRateLimit},
		{name: "network", err: NewNetworkError("refused", nil), expected: ErrorClassConnection},
		{name: "timeout maps to connection", err: NewTimeoutError("slow"), expected: ErrorClassConnection},
		{name: "unavailable maps to connection", err: NewProviderUnavailableError("x", nil), expected: ErrorClassConnection},
		{name: "auth", err: NewAuthError("openai", nil), expected: ErrorClassAuthentication},
		{name: "completion failure", err: NewCompletionError("boom", nil), expected: ErrorClassUnknown},
		{name: "plain error", err: fmt.Errorf("boom"), expected: ErrorClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name     string
		raw      error
		expected types.ErrorCode
	}{
		{name: "api key", raw: fmt.Errorf("invalid api key provided"), expected: ErrProviderUnauthorized},
		{name: "429", raw: fmt.Errorf("unexpected status 429 too many requests"), expected: ErrProviderRateLimited},
		{name: "timeout", raw: fmt.Errorf("request timeout after 30s"), expected: ErrTimeoutExceeded},
		{name: "connection", raw: fmt.Errorf("connection refused"), expected: ErrNetworkFailed},
		{name: "anything else", raw: fmt.Errorf("weird provider hiccup"), expected: ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated := TranslateError("openai", tt.raw)

			var appErr *types.AppError
			require.True(t, errors.As(translated, &appErr))
			assert.Equal(t, tt.expected, appErr.Code)
		})
	}
}

func TestTranslateError_ContextErrors(t *testing.T) {
	translated := TranslateError("openai", context.DeadlineExceeded)
	var appErr *types.AppError
	require.True(t, errors.As(translated, &appErr))
	assert.Equal(t, ErrTimeoutExceeded, appErr.Code)

	translated = TranslateError("openai", context.Canceled)
	require.True(t, errors.As(translated, &appErr))
	assert.Equal(t, ErrContextCanceled, appErr.Code)
}

func TestTranslateError_PassThrough(t *testing.T) {
	original := NewRateLimitError("openai")
	assert.Equal(t, error(original), TranslateError("openai", original))
	assert.Nil(t, TranslateError("openai", nil))
}
