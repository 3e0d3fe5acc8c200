// Package assistant implements the tool-calling orchestration loop that
// turns a user's chat message into model completions, tool executions, and
// a final natural-language reply.
package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/tool"
	"github.com/taskmind/taskmind/internal/types"
)

const (
	// DefaultMaxIterations bounds the model/tool ping-pong per request.
	DefaultMaxIterations = 5

	// DefaultMaxAttempts bounds completion-call retries per model turn.
	DefaultMaxAttempts = 3

	// DefaultRequestTimeout bounds each completion call so a hung provider
	// cannot hang the request.
	DefaultRequestTimeout = 30 * time.Second

	defaultBackoffBase = 100 * time.Millisecond
)

// ToolInvocation records one tool execution performed during a run.
type ToolInvocation struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Result    string `json:"result"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Result is the outcome of one orchestration run. Run always produces a
// Result; failures surface as a degraded FinalText, never as an error.
type Result struct {
	// FinalText is the assistant's reply to show the user.
	FinalText string `json:"final_text"`

	// ToolInvocations lists every tool executed, in order.
	ToolInvocations []ToolInvocation `json:"tool_invocations,omitempty"`

	// NewMessages holds the messages produced by this run (the user
	// message, assistant turns, and tool results) for the caller to
	// persist. The system message is rebuilt per run and excluded.
	NewMessages []llm.Message `json:"new_messages"`

	// Degraded reports that FinalText is a fallback rather than a real
	// model reply.
	Degraded bool `json:"degraded,omitempty"`
}

// Orchestrator drives the tool-calling loop. It holds only immutable
// collaborators and is safe for concurrent use across requests; all
// per-request state lives on the Run stack.
type Orchestrator struct {
	provider      llm.Provider
	registry      *tool.Registry
	model         string
	temperature   float64
	maxTokens     int
	maxIterations int
	maxAttempts   int
	backoffBase   time.Duration
	timeout       time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxIterations overrides the model/tool loop cap.
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithMaxAttempts overrides how many times a failed completion is retried.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithRequestTimeout overrides the per-call completion timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBackoffBase overrides the first retry delay. Mainly for tests.
func WithBackoffBase(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.backoffBase = d
		}
	}
}

// WithTemperature sets the sampling temperature for completions.
func WithTemperature(t float64) Option {
	return func(o *Orchestrator) {
		o.temperature = t
	}
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithClock overrides the time source used in the system prompt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an orchestrator for the given provider, tool registry, and model.
func New(provider llm.Provider, registry *tool.Registry, model string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:      provider,
		registry:      registry,
		model:         model,
		maxIterations: DefaultMaxIterations,
		maxAttempts:   DefaultMaxAttempts,
		backoffBase:   defaultBackoffBase,
		timeout:       DefaultRequestTimeout,
		logger:        slog.Default().With("component", "assistant"),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run executes one orchestration for the authenticated user identified by
// identity. The history is the caller-loaded prior conversation; Run never
// stores anything itself. Run never returns an error: completion failures
// and iteration exhaustion map to degraded fallback texts.
func (o *Orchestrator) Run(ctx context.Context, identity types.ID, userMessage string, history []llm.Message) Result {
	userMsg := llm.NewUserMessage(userMessage)

	working := make([]llm.Message, 0, len(history)+2)
	working = append(working, llm.NewSystemMessage(o.systemPrompt(identity)))
	working = append(working, history...)
	working = append(working, userMsg)

	result := Result{
		NewMessages: []llm.Message{userMsg},
	}

	tools := o.registry.Definitions()

	for iteration := 0; iteration < o.maxIterations; iteration++ {
		resp, err := o.complete(ctx, working, tools)
		if err != nil {
			class := llm.Classify(err)
			o.logger.Warn("completion failed, returning fallback",
				"class", string(class), "iteration", iteration, "error", err)
			result.FinalText = fallbackText(class)
			result.Degraded = true
			return result
		}

		if !resp.HasToolCalls() {
			assistantMsg := llm.NewAssistantMessage(resp.Message.Content)
			working = append(working, assistantMsg)
			result.NewMessages = append(result.NewMessages, assistantMsg)
			result.FinalText = resp.Message.Content
			return result
		}

		// Keep the assistant's tool_calls message so every tool message
		// that follows pairs with a call ID the model has seen.
		assistantMsg := resp.Message
		working = append(working, assistantMsg)
		result.NewMessages = append(result.NewMessages, assistantMsg)

		for _, call := range assistantMsg.ToolCalls {
			toolResult := o.registry.Dispatch(ctx, identity, call)

			result.ToolInvocations = append(result.ToolInvocations, ToolInvocation{
				Name:      call.Name,
				Arguments: call.Arguments,
				Result:    toolResult.Content,
				IsError:   toolResult.IsError,
			})

			toolMsg := llm.NewToolResultMessage(call.ID, call.Name, toolResult.Content)
			working = append(working, toolMsg)
			result.NewMessages = append(result.NewMessages, toolMsg)
		}
	}

	o.logger.Info("iteration cap reached",
		"cap", o.maxIterations, "tool_invocations", len(result.ToolInvocations))
	result.FinalText = exhaustedText
	result.Degraded = true
	return result
}

// complete calls the provider with bounded retries. Each attempt is capped
// by the request timeout; only retryable failure classes are retried, and
// backoff doubles per attempt while respecting ctx.
func (o *Orchestrator) complete(ctx context.Context, messages []llm.Message, tools []llm.ToolDef) (*llm.CompletionResponse, error) {
	req := llm.NewCompletionRequest(o.model, messages,
		llm.WithTemperature(o.temperature),
		llm.WithMaxTokens(o.maxTokens),
	)

	var lastErr error
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := o.backoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, llm.TranslateError(o.provider.Name(), ctx.Err())
			}

			o.logger.Debug("retrying completion", "attempt", attempt+1, "backoff", backoff)
		}

		resp, err := o.callProvider(ctx, req, tools)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if !llm.IsRetryable(err) {
			break
		}
	}

	return nil, lastErr
}

// callProvider runs one completion attempt under the configured timeout.
func (o *Orchestrator) callProvider(ctx context.Context, req llm.CompletionRequest, tools []llm.ToolDef) (*llm.CompletionResponse, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.provider.CompleteWithTools(ctx, req, tools)
	if err != nil {
		return nil, llm.TranslateError(o.provider.Name(), err)
	}
	return resp, nil
}
