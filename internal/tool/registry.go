package tool

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/schema"
	"github.com/taskmind/taskmind/internal/types"
)

// Registry holds the tools available to the model and dispatches tool
// calls by name. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	stats  map[string]*ToolStats
	logger *slog.Logger
}

// ToolStats tracks per-tool execution counters.
type ToolStats struct {
	Calls    int64     `json:"calls"`
	Errors   int64     `json:"errors"`
	LastUsed time.Time `json:"last_used"`
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		stats:  make(map[string]*ToolStats),
		logger: slog.Default().With("component", "tool_registry"),
	}
}

// Register adds a tool to the registry. Registering a duplicate name or an
// invalid definition is an error.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	if err := t.Definition().Validate(); err != nil {
		return fmt.Errorf("invalid definition for tool %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = t
	r.stats[name] = &ToolStats{}
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the tool catalogue advertised to the model,
// sorted by name for a stable prompt.
func (r *Registry) Definitions() []llm.ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDef, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Stats returns a snapshot of per-tool execution counters.
func (r *Registry) Stats() map[string]ToolStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ToolStats, len(r.stats))
	for name, s := range r.stats {
		out[name] = *s
	}
	return out
}

// Dispatch executes a tool call for the given user and returns the tool
// message payload. Failures are returned as structured error results so
// the model can observe them and recover; Dispatch itself never fails.
func (r *Registry) Dispatch(ctx context.Context, userID types.ID, call llm.ToolCall) llm.ToolResult {
	result := r.execute(ctx, userID, call)

	if result.IsError() {
		return llm.NewToolError(call.ID, result.JSON())
	}
	return llm.NewToolResult(call.ID, result.JSON())
}

func (r *Registry) execute(ctx context.Context, userID types.ID, call llm.ToolCall) Result {
	t, ok := r.Get(call.Name)
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", call.Name, "call_id", call.ID)
		return Errorf("unknown tool: %s (available: %s)", call.Name, strings.Join(r.Names(), ", "))
	}

	args, err := call.ArgumentsMap()
	if err != nil {
		r.record(call.Name, true)
		return Errorf("invalid arguments for %s: %v", call.Name, err)
	}

	if errs := schema.Validate(t.Definition().Parameters, args); len(errs) > 0 {
		r.record(call.Name, true)
		return Errorf("invalid arguments for %s: %s", call.Name, joinValidationErrors(errs))
	}

	start := time.Now()
	result := t.Execute(ctx, userID, args)
	r.record(call.Name, result.IsError())

	r.logger.Debug("tool executed",
		"tool", call.Name,
		"call_id", call.ID,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds())

	return result
}

func (r *Registry) record(name string, isError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[name]
	if !ok {
		return
	}
	s.Calls++
	if isError {
		s.Errors++
	}
	s.LastUsed = time.Now()
}

func joinValidationErrors(errs []schema.ValidationError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
