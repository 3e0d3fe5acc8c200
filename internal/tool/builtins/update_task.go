package builtins

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/schema"
	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/tool"
	"github.com/taskmind/taskmind/internal/types"
)

// UpdateTask applies a partial update to a task.
type UpdateTask struct {
	tasks *database.TaskDAO
	now   func() time.Time
}

// NewUpdateTask creates the update_task tool.
func NewUpdateTask(tasks *database.TaskDAO) *UpdateTask {
	return &UpdateTask{tasks: tasks, now: time.Now}
}

// Name returns the tool name.
func (t *UpdateTask) Name() string {
	return "update_task"
}

// Description returns the tool description.
func (t *UpdateTask) Description() string {
	return "Update fields of an existing task. Only the fields provided are changed; an empty due_date clears the due date."
}

// Definition returns the tool's parameter schema.
func (t *UpdateTask) Definition() llm.ToolDef {
	return llm.NewToolDef(t.Name(), t.Description(), schema.NewObjectSchema(
		map[string]schema.SchemaField{
			"task_id":     schema.NewStringField("ID of the task to update"),
			"title":       schema.NewStringField("New title").WithMaxLength(task.MaxTitleLength),
			"description": schema.NewStringField("New description"),
			// Priority, due_date, and recurrence are unconstrained here so
			// the executor's lenient normalization sees every value; see
			// the add_task schema.
			"priority":   schema.NewStringField("New priority: low, medium, or high"),
			"due_date":   schema.NewStringField("New due date in YYYY-MM-DD format; empty string clears it"),
			"recurrence": schema.NewStringField("New recurrence: none, daily, weekly, or monthly"),
		},
		[]string{"task_id"},
	))
}

// Execute applies the supplied fields and reports which ones actually
// changed compared to the prior values. An unparsable due_date is skipped,
// matching the lenient date handling of task creation.
func (t *UpdateTask) Execute(ctx context.Context, userID types.ID, args map[string]any) tool.Result {
	rawID, _ := stringArg(args, "task_id")
	taskID, err := types.ParseID(rawID)
	if err != nil {
		return notFoundResult(rawID)
	}

	existing, err := t.tasks.Get(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, types.NewError(types.TASK_NOT_FOUND, "")) {
			return notFoundResult(rawID)
		}
		return tool.Errorf("failed to load task: %v", err)
	}

	var changed []string

	if titleArg, ok := stringArg(args, "title"); ok {
		title := strings.TrimSpace(titleArg)
		if err := task.ValidateTitle(title); err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) {
				return tool.Errorf("%s", appErr.Message)
			}
			return tool.Errorf("%s", err.Error())
		}
		if title != existing.Title {
			existing.Title = title
			changed = append(changed, "title")
		}
	}

	if descArg, ok := stringArg(args, "description"); ok {
		desc := strings.TrimSpace(descArg)
		if desc != existing.Description {
			existing.Description = desc
			changed = append(changed, "description")
		}
	}

	if priorityArg, ok := stringArg(args, "priority"); ok {
		p := task.NormalizePriority(priorityArg)
		if p != existing.Priority {
			existing.Priority = p
			changed = append(changed, "priority")
		}
	}

	if recurrenceArg, ok := stringArg(args, "recurrence"); ok {
		r := task.NormalizeRecurrence(recurrenceArg)
		if r != existing.Recurrence {
			existing.Recurrence = r
			changed = append(changed, "recurrence")
		}
	}

	if dueArg, ok := stringArg(args, "due_date"); ok {
		if strings.TrimSpace(dueArg) == "" {
			if existing.DueDate != nil {
				existing.DueDate = nil
				changed = append(changed, "due_date")
			}
		} else if due, err := task.ParseDueDate(dueArg); err == nil {
			if existing.DueDate == nil || !existing.DueDate.Equal(due) {
				existing.DueDate = &due
				changed = append(changed, "due_date")
			}
		}
	}

	if len(changed) == 0 {
		return tool.Success("No fields changed", map[string]any{
			"task":           taskPayload(existing),
			"changed_fields": []string{},
		})
	}

	existing.UpdatedAt = t.now().UTC()
	if err := t.tasks.Update(ctx, existing); err != nil {
		if errors.Is(err, types.NewError(types.TASK_NOT_FOUND, "")) {
			return notFoundResult(rawID)
		}
		return tool.Errorf("failed to update task: %v", err)
	}

	return tool.Success("Task updated", map[string]any{
		"task":           taskPayload(existing),
		"changed_fields": changed,
	})
}
