package builtins

import (
	"context"
	"errors"

	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/schema"
	"github.com/taskmind/taskmind/internal/tool"
	"github.com/taskmind/taskmind/internal/types"
)

// DeleteTask permanently removes a task.
type DeleteTask struct {
	tasks *database.TaskDAO
}

// NewDeleteTask creates the delete_task tool.
func NewDeleteTask(tasks *database.TaskDAO) *DeleteTask {
	return &DeleteTask{tasks: tasks}
}

// Name returns the tool name.
func (t *DeleteTask) Name() string {
	return "delete_task"
}

// Description returns the tool description.
func (t *DeleteTask) Description() string {
	return "Permanently delete a task from the user's todo list."
}

// Definition returns the tool's parameter schema.
func (t *DeleteTask) Definition() llm.ToolDef {
	return llm.NewToolDef(t.Name(), t.Description(), schema.NewObjectSchema(
		map[string]schema.SchemaField{
			"task_id": schema.NewStringField("ID of the task to delete"),
		},
		[]string{"task_id"},
	))
}

// Execute deletes the task. There is no soft delete.
func (t *DeleteTask) Execute(ctx context.Context, userID types.ID, args map[string]any) tool.Result {
	rawID, _ := stringArg(args, "task_id")
	taskID, err := types.ParseID(rawID)
	if err != nil {
		return notFoundResult(rawID)
	}

	if err := t.tasks.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, types.NewError(types.TASK_NOT_FOUND, "")) {
			return notFoundResult(rawID)
		}
		return tool.Errorf("failed to delete task: %v", err)
	}

	return tool.Success("Task deleted", nil)
}
