package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/types"
)

// TaskDAO provides data access operations for tasks.
// Every operation is scoped to the owning user: a task belonging to another
// user is indistinguishable from a nonexistent one.
type TaskDAO struct {
	db *DB
}

// NewTaskDAO creates a new TaskDAO.
func NewTaskDAO(db *DB) *TaskDAO {
	return &TaskDAO{db: db}
}

// TaskFilter narrows a task listing. Zero values mean "no constraint".
type TaskFilter struct {
	Status   task.Status
	Priority task.Priority
	Due      *task.Window
}

const taskColumns = `id, user_id, title, description, priority, status,
	due_date, recurrence, template_id, created_at, updated_at, completed_at`

// Create inserts a new task.
func (d *TaskDAO) Create(ctx context.Context, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO tasks (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, taskColumns)

	_, err := d.db.conn.ExecContext(ctx, query,
		t.ID.String(), t.UserID.String(), t.Title, t.Description,
		t.Priority.String(), t.Status.String(),
		nullTime(t.DueDate), t.Recurrence.String(), nullID(t.TemplateID),
		t.CreatedAt, t.UpdatedAt, nullTime(t.CompletedAt))
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to create task", err)
	}

	return nil
}

// Get retrieves a task by ID, scoped to the owning user.
// Returns TASK_NOT_FOUND for nonexistent tasks and for tasks owned by
// other users, with no distinction between the two.
func (d *TaskDAO) Get(ctx context.Context, userID, taskID types.ID) (*task.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = ? AND user_id = ?", taskColumns)

	row := d.db.conn.QueryRowContext(ctx, query, taskID.String(), userID.String())

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(types.TASK_NOT_FOUND,
			fmt.Sprintf("task not found: %s", taskID))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get task", err)
	}

	return t, nil
}

// List retrieves the user's tasks matching the filter, ordered by due date
// (tasks without a due date last), then by creation time.
func (d *TaskDAO) List(ctx context.Context, userID types.ID, filter TaskFilter) ([]*task.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE user_id = ?", taskColumns)
	args := []any{userID.String()}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status.String())
	}

	if filter.Priority != "" {
		query += " AND priority = ?"
		args = append(args, filter.Priority.String())
	}

	if filter.Due != nil {
		query += " AND due_date IS NOT NULL"
		if !filter.Due.From.IsZero() {
			query += " AND due_date >= ?"
			args = append(args, filter.Due.From)
		}
		if !filter.Due.To.IsZero() {
			query += " AND due_date < ?"
			args = append(args, filter.Due.To)
		}
	}

	query += " ORDER BY due_date IS NULL, due_date, created_at"

	rows, err := d.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list tasks", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan task", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Update persists changes to an existing task, scoped to the owning user.
func (d *TaskDAO) Update(ctx context.Context, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	result, err := d.db.conn.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, priority = ?, status = ?,
			due_date = ?, recurrence = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.Priority.String(), t.Status.String(),
		nullTime(t.DueDate), t.Recurrence.String(), t.UpdatedAt, nullTime(t.CompletedAt),
		t.ID.String(), t.UserID.String())
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to update task", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to check update result", err)
	}
	if affected == 0 {
		return types.NewError(types.TASK_NOT_FOUND,
			fmt.Sprintf("task not found: %s", t.ID))
	}

	return nil
}

// Complete marks a task as completed. Completing an already-completed task
// is a no-op that returns the task unchanged. If the task recurs and has a
// due date, the next occurrence is created in the same transaction and
// returned alongside the completed task.
func (d *TaskDAO) Complete(ctx context.Context, userID, taskID types.ID, now time.Time) (*task.Task, *task.Task, error) {
	t, err := d.Get(ctx, userID, taskID)
	if err != nil {
		return nil, nil, err
	}

	if t.IsCompleted() {
		return t, nil, nil
	}

	completedAt := now
	t.Status = task.StatusCompleted
	t.CompletedAt = &completedAt
	t.UpdatedAt = now

	var next *task.Task
	if t.Recurrence.IsRepeating() && t.DueDate != nil {
		nextDue := t.Recurrence.Next(*t.DueDate)
		next = &task.Task{
			ID:          types.NewID(),
			UserID:      t.UserID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Status:      task.StatusPending,
			DueDate:     &nextDue,
			Recurrence:  t.Recurrence,
			TemplateID:  t.TemplateID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	err = d.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET status = ?, completed_at = ?, updated_at = ?
			WHERE id = ? AND user_id = ? AND status = ?`,
			t.Status.String(), t.CompletedAt, t.UpdatedAt,
			t.ID.String(), t.UserID.String(), task.StatusPending.String())
		if err != nil {
			return types.WrapError(types.DB_QUERY_FAILED, "failed to complete task", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return types.WrapError(types.DB_QUERY_FAILED, "failed to check completion result", err)
		}
		if affected == 0 {
			// Completed concurrently between the read and this update.
			next = nil
			return nil
		}

		if next != nil {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO tasks (%s)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, taskColumns),
				next.ID.String(), next.UserID.String(), next.Title, next.Description,
				next.Priority.String(), next.Status.String(),
				nullTime(next.DueDate), next.Recurrence.String(), nullID(next.TemplateID),
				next.CreatedAt, next.UpdatedAt, nil)
			if err != nil {
				return types.WrapError(types.DB_QUERY_FAILED, "failed to create next occurrence", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return t, next, nil
}

// Delete removes a task, scoped to the owning user.
func (d *TaskDAO) Delete(ctx context.Context, userID, taskID types.ID) error {
	result, err := d.db.conn.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND user_id = ?",
		taskID.String(), userID.String())
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete task", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to check delete result", err)
	}
	if affected == 0 {
		return types.NewError(types.TASK_NOT_FOUND,
			fmt.Sprintf("task not found: %s", taskID))
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*task.Task, error) {
	var (
		t           task.Task
		id, userID  string
		priority    string
		status      string
		recurrence  string
		dueDate     sql.NullTime
		templateID  sql.NullString
		completedAt sql.NullTime
	)

	err := s.Scan(&id, &userID, &t.Title, &t.Description, &priority, &status,
		&dueDate, &recurrence, &templateID, &t.CreatedAt, &t.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	t.ID = types.ID(id)
	t.UserID = types.ID(userID)
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	t.Recurrence = task.Recurrence(recurrence)

	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	if templateID.Valid {
		t.TemplateID = types.ID(templateID.String)
	}
	if completedAt.Valid {
		done := completedAt.Time
		t.CompletedAt = &done
	}

	return &t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullID(id types.ID) any {
	if id.IsZero() {
		return nil
	}
	return id.String()
}
