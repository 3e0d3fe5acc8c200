package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/schema"
	"github.com/taskmind/taskmind/internal/types"
)

// echoTool records the identity it was executed with and echoes its args.
type echoTool struct {
	name       string
	lastUserID types.ID
	result     Result
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echoes arguments back" }

func (t *echoTool) Definition() llm.ToolDef {
	return llm.NewToolDef(t.name, t.Description(), schema.NewObjectSchema(
		map[string]schema.SchemaField{
			"text": schema.NewStringField("text to echo"),
		},
		[]string{"text"},
	))
}

func (t *echoTool) Execute(ctx context.Context, userID types.ID, args map[string]any) Result {
	t.lastUserID = userID
	if t.result.Status != "" {
		return t.result
	}
	return Success("echoed", map[string]any{"text": args["text"]})
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "echo"}))

	got, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Name())
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "echo"}))
	assert.Error(t, reg.Register(&echoTool{name: "echo"}))
}

func TestRegistry_Definitions_Sorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "zeta"}))
	require.NoError(t, reg.Register(&echoTool{name: "alpha"}))

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "zeta", defs[1].Name)
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := NewRegistry()
	echo := &echoTool{name: "echo"}
	require.NoError(t, reg.Register(echo))

	userID := types.NewID()
	result := reg.Dispatch(context.Background(), userID, llm.ToolCall{
		ID:        "call_1",
		Type:      "function",
		Name:      "echo",
		Arguments: `{"text":"hello"}`,
	})

	assert.Equal(t, "call_1", result.ToolCallID)
	assert.False(t, result.IsError)
	assert.Equal(t, userID, echo.lastUserID)

	var decoded Result
	require.NoError(t, json.Unmarshal([]byte(result.Content), &decoded))
	assert.Equal(t, StatusSuccess, decoded.Status)
}

func TestRegistry_Dispatch_UnknownTool(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "echo"}))

	result := reg.Dispatch(context.Background(), types.NewID(), llm.ToolCall{
		ID:        "call_1",
		Name:      "launch_rocket",
		Arguments: "{}",
	})

	// Unknown tools come back as structured errors, never Go errors.
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "unknown tool")
	assert.Contains(t, result.Content, "echo")
}

func TestRegistry_Dispatch_InvalidJSON(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "echo"}))

	result := reg.Dispatch(context.Background(), types.NewID(), llm.ToolCall{
		ID:        "call_1",
		Name:      "echo",
		Arguments: `{"text":`,
	})

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "invalid arguments")
}

func TestRegistry_Dispatch_MissingRequiredArg(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "echo"}))

	result := reg.Dispatch(context.Background(), types.NewID(), llm.ToolCall{
		ID:        "call_1",
		Name:      "echo",
		Arguments: "{}",
	})

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "required field is missing")
}

func TestRegistry_Stats(t *testing.T) {
	reg := NewRegistry()
	failing := &echoTool{name: "echo", result: Errorf("boom")}
	require.NoError(t, reg.Register(failing))

	ctx := context.Background()
	call := llm.ToolCall{ID: "call_1", Name: "echo", Arguments: `{"text":"x"}`}
	reg.Dispatch(ctx, types.NewID(), call)
	reg.Dispatch(ctx, types.NewID(), call)

	stats := reg.Stats()
	require.Contains(t, stats, "echo")
	assert.Equal(t, int64(2), stats["echo"].Calls)
	assert.Equal(t, int64(2), stats["echo"].Errors)
	assert.False(t, stats["echo"].LastUsed.IsZero())
}

func TestResult_JSON(t *testing.T) {
	r := Success("done", map[string]any{"count": 1})
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.JSON()), &decoded))
	assert.Equal(t, "success", decoded["status"])
	assert.Equal(t, "done", decoded["message"])
}
