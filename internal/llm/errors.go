package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskmind/taskmind/internal/types"
)

// LLM error codes follow the taskmind error pattern
const (
	// Provider errors
	ErrProviderNotFound      types.ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	ErrProviderInitFailed    types.ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	ErrProviderUnavailable   types.ErrorCode = "LLM_PROVIDER_UNAVAILABLE"
	ErrProviderUnauthorized  types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrProviderRateLimited   types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"
	ErrProviderAlreadyExists types.ErrorCode = "LLM_PROVIDER_ALREADY_EXISTS"
	ErrProviderInvalidInput  types.ErrorCode = "LLM_PROVIDER_INVALID_INPUT"

	// Request errors
	ErrInvalidRequest types.ErrorCode = "LLM_INVALID_REQUEST"
	ErrInvalidMessage types.ErrorCode = "LLM_INVALID_MESSAGE"

	// Completion errors
	ErrCompletionFailed types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrTimeoutExceeded  types.ErrorCode = "LLM_TIMEOUT_EXCEEDED"
	ErrContextCanceled  types.ErrorCode = "LLM_CONTEXT_CANCELED"

	// Network errors
	ErrNetworkFailed types.ErrorCode = "LLM_NETWORK_FAILED"
)

// IsRetryable determines if an error is transient and may succeed on retry.
func IsRetryable(err error) bool {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return false
	}

	if appErr.Retryable {
		return true
	}

	switch appErr.Code {
	// Network errors are typically retryable
	case ErrNetworkFailed:
		return true

	// Rate limiting may succeed after waiting
	case ErrProviderRateLimited:
		return true

	// Provider unavailable may be temporary
	case ErrProviderUnavailable:
		return true

	// Timeout errors may succeed with more time
	case ErrTimeoutExceeded:
		return true

	// Context cancellation is user-initiated, not retryable
	case ErrContextCanceled:
		return false

	// Auth errors are not retryable
	case ErrProviderUnauthorized:
		return false

	// Invalid requests won't succeed on retry
	case ErrInvalidRequest, ErrInvalidMessage:
		return false

	default:
		return false
	}
}

// ErrorClass groups completion-client failures for user-facing fallback mapping.
type ErrorClass string

const (
	ErrorClassRateLimit      ErrorClass = "rate_limit"
	ErrorClassConnection     ErrorClass = "connection"
	ErrorClassAuthentication ErrorClass = "authentication"
	ErrorClassUnknown        ErrorClass = "unknown"
)

// Classify maps an error into its fallback class.
// Timeouts are treated identically to connection failures.
func Classify(err error) ErrorClass {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return ErrorClassUnknown
	}

	switch appErr.Code {
	case ErrProviderRateLimited:
		return ErrorClassRateLimit
	case ErrNetworkFailed, ErrTimeoutExceeded, ErrProviderUnavailable:
		return ErrorClassConnection
	case ErrProviderUnauthorized:
		return ErrorClassAuthentication
	default:
		return ErrorClassUnknown
	}
}

// NewProviderNotFoundError creates an error for when a provider is not found
func NewProviderNotFoundError(providerName string) *types.AppError {
	return types.NewError(ErrProviderNotFound, "provider not found: "+providerName)
}

// NewProviderUnavailableError creates a retryable error for when a provider is temporarily unavailable
func NewProviderUnavailableError(providerName string, cause error) *types.AppError {
	return &types.AppError{
		Code:      ErrProviderUnavailable,
		Message:   "provider temporarily unavailable: " + providerName,
		Retryable: true,
		Cause:     cause,
	}
}

// NewRateLimitError creates a retryable error for rate limiting
func NewRateLimitError(providerName string) *types.AppError {
	return &types.AppError{
		Code:      ErrProviderRateLimited,
		Message:   "rate limit exceeded for provider: " + providerName,
		Retryable: true,
	}
}

// NewAuthError creates an authentication error for a provider
func NewAuthError(providerName string, cause error) *types.AppError {
	return &types.AppError{
		Code:    ErrProviderUnauthorized,
		Message: fmt.Sprintf("provider '%s' authentication failed", providerName),
		Cause:   cause,
	}
}

// NewNetworkError creates a retryable error for network failures
func NewNetworkError(message string, cause error) *types.AppError {
	return &types.AppError{
		Code:      ErrNetworkFailed,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewTimeoutError creates a retryable error for timeout failures
func NewTimeoutError(message string) *types.AppError {
	return &types.AppError{
		Code:      ErrTimeoutExceeded,
		Message:   message,
		Retryable: true,
	}
}

// NewInvalidRequestError creates an error for invalid requests
func NewInvalidRequestError(message string) *types.AppError {
	return types.NewError(ErrInvalidRequest, message)
}

// NewCompletionError creates an error for completion failures
func NewCompletionError(message string, cause error) *types.AppError {
	return types.WrapError(ErrCompletionFailed, message, cause)
}

// TranslateError translates raw provider errors into taxonomy errors based
// on error content. Already-translated errors pass through unchanged.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return types.NewError(ErrContextCanceled, "completion canceled")
	}

	lowerMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerMsg, "unauthorized") || strings.Contains(lowerMsg, "authentication") ||
		strings.Contains(lowerMsg, "api key") || strings.Contains(lowerMsg, "401"):
		return NewAuthError(provider, err)
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests") ||
		strings.Contains(lowerMsg, "429"):
		return NewRateLimitError(provider)
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline"):
		return NewTimeoutError(err.Error())
	case strings.Contains(lowerMsg, "network") || strings.Contains(lowerMsg, "connection"):
		return NewNetworkError(err.Error(), err)
	default:
		return NewProviderUnavailableError(provider, err)
	}
}
