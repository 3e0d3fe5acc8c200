package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmind/taskmind/internal/assistant"
	"github.com/taskmind/taskmind/internal/config"
	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/llm/providers"
	"github.com/taskmind/taskmind/internal/tool"
	"github.com/taskmind/taskmind/internal/tool/builtins"
	"github.com/taskmind/taskmind/internal/types"
)

type testServer struct {
	server *Server
	mock   *providers.MockProvider
	db     *database.DB
}

func newTestServer(t *testing.T, cfg config.ServerConfig, responses ...*llm.CompletionResponse) *testServer {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := tool.NewRegistry()
	require.NoError(t, builtins.RegisterAll(reg, database.NewTaskDAO(db)))

	mock := providers.NewMockProvider(responses...)
	orch := assistant.New(mock, reg, "mock-model")

	providerRegistry := llm.NewRegistry()
	require.NoError(t, providerRegistry.Register(mock))

	return &testServer{
		server: New(cfg, db, providerRegistry, orch, 50),
		mock:   mock,
		db:     db,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, userID types.ID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if !userID.IsZero() {
		req.Header.Set("X-User-ID", userID.String())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestServer_Identity(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})

	t.Run("missing header", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/v1/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req.Header.Set("X-User-ID", "not-a-uuid")
		w := httptest.NewRecorder()
		ts.server.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestServer_TaskCRUD(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})
	userID := types.NewID()

	w := ts.request(t, http.MethodPost, "/api/v1/tasks", userID, map[string]any{
		"title":    "Buy milk",
		"priority": "high",
		"due_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	taskID := created["id"].(string)
	assert.Equal(t, "high", created["priority"])

	t.Run("get", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/v1/tasks/"+taskID, userID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Buy milk", decode(t, w)["title"])
	})

	t.Run("cross-user get is 404", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/v1/tasks/"+taskID, types.NewID(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/v1/tasks?status=pending", userID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["count"])
	})

	t.Run("patch", func(t *testing.T) {
		w := ts.request(t, http.MethodPatch, "/api/v1/tasks/"+taskID, userID, map[string]any{
			"title": "Buy oat milk",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Buy oat milk", decode(t, w)["title"])
	})

	t.Run("invalid due date is 400", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/v1/tasks", userID, map[string]any{
			"title":    "Bad date",
			"due_date": "tomorrow",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("complete", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%s/complete", taskID), userID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "completed", body["task"].(map[string]any)["status"])
	})

	t.Run("delete", func(t *testing.T) {
		w := ts.request(t, http.MethodDelete, "/api/v1/tasks/"+taskID, userID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = ts.request(t, http.MethodGet, "/api/v1/tasks/"+taskID, userID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_Templates(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})
	userID := types.NewID()

	w := ts.request(t, http.MethodPost, "/api/v1/templates", userID, map[string]any{
		"name":       "groceries",
		"title":      "Weekly groceries run",
		"recurrence": "weekly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	templateID := decode(t, w)["id"].(string)

	t.Run("list", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/v1/templates", userID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["count"])
	})

	t.Run("instantiate", func(t *testing.T) {
		w := ts.request(t, http.MethodPost,
			fmt.Sprintf("/api/v1/templates/%s/instantiate", templateID), userID, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		created := decode(t, w)
		assert.Equal(t, "Weekly groceries run", created["title"])
		assert.Equal(t, "pending", created["status"])
		assert.Equal(t, templateID, created["template_id"])
	})

	t.Run("delete", func(t *testing.T) {
		w := ts.request(t, http.MethodDelete, "/api/v1/templates/"+templateID, userID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestServer_Chat(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{},
		providers.ToolCallTurn(llm.ToolCall{
			ID:        "call_1",
			Type:      "function",
			Name:      "add_task",
			Arguments: `{"title":"buy milk"}`,
		}),
		providers.TextTurn("Added \"buy milk\" to your list."),
		providers.TextTurn("You asked me to add buy milk."),
	)
	userID := types.NewID()

	w := ts.request(t, http.MethodPost, "/api/v1/chat", userID, map[string]any{
		"message": "add a task to buy milk",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Contains(t, body["reply"], "buy milk")
	assert.Equal(t, false, body["degraded"])
	require.Len(t, body["tool_invocations"], 1)

	// The task landed in the store.
	w = ts.request(t, http.MethodGet, "/api/v1/tasks", userID, nil)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	// The turn was persisted and is replayed as context next time.
	w = ts.request(t, http.MethodGet, "/api/v1/chat/history", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decode(t, w)["count"])

	w = ts.request(t, http.MethodPost, "/api/v1/chat", userID, map[string]any{
		"message": "what did I just ask?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	requests := ts.mock.Requests()
	last := requests[len(requests)-1].Messages
	// system + 4 history + new user message
	assert.Len(t, last, 6)

	t.Run("clear history", func(t *testing.T) {
		w := ts.request(t, http.MethodDelete, "/api/v1/chat/history", userID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = ts.request(t, http.MethodGet, "/api/v1/chat/history", userID, nil)
		assert.Equal(t, float64(0), decode(t, w)["count"])
	})
}

func TestServer_Chat_DegradedNotPersisted(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})
	ts.mock.FailWith(llm.NewAuthError("mock", nil))
	userID := types.NewID()

	w := ts.request(t, http.MethodPost, "/api/v1/chat", userID, map[string]any{
		"message": "hello",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["degraded"])
	assert.Contains(t, body["reply"], "contact support")

	w = ts.request(t, http.MethodGet, "/api/v1/chat/history", userID, nil)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestServer_RateLimit(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{RateLimit: 1, RateBurst: 1})
	userID := types.NewID()

	first := ts.request(t, http.MethodGet, "/api/v1/tasks", userID, nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := ts.request(t, http.MethodGet, "/api/v1/tasks", userID, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Limits are per client, not global.
	other := ts.request(t, http.MethodGet, "/api/v1/tasks", types.NewID(), nil)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{}, providers.TextTurn("pong"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "database")
	assert.Contains(t, body, "providers")
}
