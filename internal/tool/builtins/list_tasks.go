package builtins

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/schema"
	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/tool"
	"github.com/taskmind/taskmind/internal/types"
)

// ListTasks lists the calling user's tasks with optional filters.
type ListTasks struct {
	tasks *database.TaskDAO
	now   func() time.Time
}

// NewListTasks creates the list_tasks tool.
func NewListTasks(tasks *database.TaskDAO) *ListTasks {
	return &ListTasks{tasks: tasks, now: time.Now}
}

// Name returns the tool name.
func (t *ListTasks) Name() string {
	return "list_tasks"
}

// Description returns the tool description.
func (t *ListTasks) Description() string {
	return "List the user's tasks, optionally filtered by status, priority, or a date window such as today or this_week."
}

// Definition returns the tool's parameter schema.
func (t *ListTasks) Definition() llm.ToolDef {
	return llm.NewToolDef(t.Name(), t.Description(), schema.NewObjectSchema(
		map[string]schema.SchemaField{
			"status": schema.NewStringField("Filter by completion status, defaults to all").
				WithEnum("all", "pending", "completed"),
			// Unknown priority and date_filter values are ignored rather
			// than rejected, so these are plain strings in the schema.
			"priority":    schema.NewStringField("Filter by priority: low, medium, or high"),
			"date_filter": schema.NewStringField("Filter by due date: today, tomorrow, overdue, or this_week"),
		},
		nil,
	))
}

// Execute lists matching tasks. Unknown priority or date_filter values are
// skipped rather than rejected; the overdue filter implies pending-only.
func (t *ListTasks) Execute(ctx context.Context, userID types.ID, args map[string]any) tool.Result {
	var filter database.TaskFilter

	if statusArg, ok := stringArg(args, "status"); ok {
		switch task.Status(strings.ToLower(strings.TrimSpace(statusArg))) {
		case task.StatusPending:
			filter.Status = task.StatusPending
		case task.StatusCompleted:
			filter.Status = task.StatusCompleted
		}
	}

	if priorityArg, ok := stringArg(args, "priority"); ok {
		p := task.Priority(strings.ToLower(strings.TrimSpace(priorityArg)))
		if p.IsValid() {
			filter.Priority = p
		}
	}

	if dateArg, ok := stringArg(args, "date_filter"); ok {
		if dateFilter, valid := task.ParseDateFilter(dateArg); valid {
			window := dateFilter.Window(t.now())
			filter.Due = &window
			if dateFilter.ImpliesPending() {
				filter.Status = task.StatusPending
			}
		}
	}

	tasks, err := t.tasks.List(ctx, userID, filter)
	if err != nil {
		return tool.Errorf("failed to list tasks: %v", err)
	}

	items := make([]map[string]any, len(tasks))
	for i, tk := range tasks {
		items[i] = taskPayload(tk)
	}

	return tool.Success(fmt.Sprintf("Found %d tasks", len(items)), map[string]any{
		"items": items,
		"count": len(items),
	})
}
