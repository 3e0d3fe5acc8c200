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

// AddTask creates a new task for the calling user.
type AddTask struct {
	tasks *database.TaskDAO
	now   func() time.Time
}

// NewAddTask creates the add_task tool.
func NewAddTask(tasks *database.TaskDAO) *AddTask {
	return &AddTask{tasks: tasks, now: time.Now}
}

// Name returns the tool name.
func (t *AddTask) Name() string {
	return "add_task"
}

// Description returns the tool description.
func (t *AddTask) Description() string {
	return "Create a new task on the user's todo list. Use this when the user wants to add, create, or remember something to do."
}

// Definition returns the tool's parameter schema.
func (t *AddTask) Definition() llm.ToolDef {
	return llm.NewToolDef(t.Name(), t.Description(), schema.NewObjectSchema(
		map[string]schema.SchemaField{
			"title":       schema.NewStringField("Short title of the task").WithMaxLength(task.MaxTitleLength),
			"description": schema.NewStringField("Optional longer description"),
			// No enum or format constraints on priority, due_date, or
			// recurrence: unrecognized priorities normalize to medium,
			// unparsable dates are dropped, unknown recurrences become
			// none. Constraining them here would make the registry reject
			// what the executor is supposed to tolerate.
			"priority":   schema.NewStringField("Task priority: low, medium, or high; defaults to medium"),
			"due_date":   schema.NewStringField("Due date in YYYY-MM-DD format"),
			"recurrence": schema.NewStringField("How often the task repeats: none, daily, weekly, or monthly; defaults to none"),
		},
		[]string{"title"},
	))
}

// Execute creates the task. An unparsable due_date is dropped silently and
// the task is still created; this leniency is deliberate, models frequently
// emit sloppy dates and a missing date beats a failed task.
func (t *AddTask) Execute(ctx context.Context, userID types.ID, args map[string]any) tool.Result {
	title, _ := stringArg(args, "title")
	title = strings.TrimSpace(title)
	if err := task.ValidateTitle(title); err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			return tool.Errorf("%s", appErr.Message)
		}
		return tool.Errorf("%s", err.Error())
	}

	description, _ := stringArg(args, "description")
	priorityArg, _ := stringArg(args, "priority")
	recurrenceArg, _ := stringArg(args, "recurrence")

	now := t.now().UTC()
	newTask := &task.Task{
		ID:          types.NewID(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Priority:    task.NormalizePriority(priorityArg),
		Status:      task.StatusPending,
		Recurrence:  task.NormalizeRecurrence(recurrenceArg),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if dueArg, ok := stringArg(args, "due_date"); ok && dueArg != "" {
		if due, err := task.ParseDueDate(dueArg); err == nil {
			newTask.DueDate = &due
		}
	}

	if err := t.tasks.Create(ctx, newTask); err != nil {
		return tool.Errorf("failed to create task: %v", err)
	}

	return tool.Success("Task created", map[string]any{"task": taskPayload(newTask)})
}
