// Package builtins implements the task-management tools exposed to the
// model: add, list, complete, update, and delete.
package builtins

import (
	"strings"
	"time"

	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/tool"
)

// RegisterAll registers every builtin task tool on the registry.
func RegisterAll(reg *tool.Registry, tasks *database.TaskDAO) error {
	builtins := []tool.Tool{
		NewAddTask(tasks),
		NewListTasks(tasks),
		NewCompleteTask(tasks),
		NewUpdateTask(tasks),
		NewDeleteTask(tasks),
	}

	for _, t := range builtins {
		if err := reg.Register(t); err != nil {
			return err
		}
	}

	return nil
}

// stringArg extracts a string argument. Non-string values report ok=false.
func stringArg(args map[string]any, key string) (string, bool) {
	raw, exists := args[key]
	if !exists {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// taskPayload serializes a task into the data map fed back to the model.
// Due dates are formatted as YYYY-MM-DD to match the tool input format.
func taskPayload(t *task.Task) map[string]any {
	payload := map[string]any{
		"id":         t.ID.String(),
		"title":      t.Title,
		"priority":   t.Priority.String(),
		"status":     t.Status.String(),
		"recurrence": t.Recurrence.String(),
	}

	if t.Description != "" {
		payload["description"] = t.Description
	}
	if t.DueDate != nil {
		payload["due_date"] = t.DueDate.Format(task.DueDateLayout)
	}
	if t.CompletedAt != nil {
		payload["completed_at"] = t.CompletedAt.UTC().Format(time.RFC3339)
	}

	return payload
}

// notFoundResult is the uniform shape for missing tasks. Malformed IDs and
// tasks owned by other users produce the same result as nonexistent ones,
// so the model cannot probe for other users' task IDs.
func notFoundResult(taskID string) tool.Result {
	return tool.Errorf("task not found: %s", strings.TrimSpace(taskID))
}
