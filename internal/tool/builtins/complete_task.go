package builtins

import (
	"context"
	"errors"
	"time"

	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/schema"
	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/tool"
	"github.com/taskmind/taskmind/internal/types"
)

// CompleteTask marks a task as completed.
type CompleteTask struct {
	tasks *database.TaskDAO
	now   func() time.Time
}

// NewCompleteTask creates the complete_task tool.
func NewCompleteTask(tasks *database.TaskDAO) *CompleteTask {
	return &CompleteTask{tasks: tasks, now: time.Now}
}

// Name returns the tool name.
func (t *CompleteTask) Name() string {
	return "complete_task"
}

// Description returns the tool description.
func (t *CompleteTask) Description() string {
	return "Mark a task as completed. Completing a recurring task schedules its next occurrence."
}

// Definition returns the tool's parameter schema.
func (t *CompleteTask) Definition() llm.ToolDef {
	return llm.NewToolDef(t.Name(), t.Description(), schema.NewObjectSchema(
		map[string]schema.SchemaField{
			"task_id": schema.NewStringField("ID of the task to complete"),
		},
		[]string{"task_id"},
	))
}

// Execute completes the task. Completing an already-completed task succeeds
// without a second mutation.
func (t *CompleteTask) Execute(ctx context.Context, userID types.ID, args map[string]any) tool.Result {
	rawID, _ := stringArg(args, "task_id")
	taskID, err := types.ParseID(rawID)
	if err != nil {
		return notFoundResult(rawID)
	}

	alreadyDone := false
	if existing, err := t.tasks.Get(ctx, userID, taskID); err == nil {
		alreadyDone = existing.IsCompleted()
	}

	completed, next, err := t.tasks.Complete(ctx, userID, taskID, t.now().UTC())
	if err != nil {
		if errors.Is(err, types.NewError(types.TASK_NOT_FOUND, "")) {
			return notFoundResult(rawID)
		}
		return tool.Errorf("failed to complete task: %v", err)
	}

	data := map[string]any{"task": taskPayload(completed)}
	message := "Task completed"

	if alreadyDone {
		message = "Task was already completed"
	}
	if next != nil {
		data["next_occurrence"] = taskPayload(next)
		message = "Task completed; next occurrence scheduled for " +
			next.DueDate.Format(task.DueDateLayout)
	}

	return tool.Success(message, data)
}
