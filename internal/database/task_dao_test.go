package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/types"
)

func newTestTask(userID types.ID, title string) *task.Task {
	now := time.Now().UTC()
	return &task.Task{
		ID:         types.NewID(),
		UserID:     userID,
		Title:      title,
		Priority:   task.PriorityMedium,
		Status:     task.StatusPending,
		Recurrence: task.RecurrenceNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestTaskDAO_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	due := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	created := newTestTask(userID, "Buy milk")
	created.Description = "2% from the corner store"
	created.Priority = task.PriorityHigh
	created.DueDate = &due
	require.NoError(t, dao.Create(ctx, created))

	got, err := dao.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2% from the corner store", got.Description)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, task.StatusPending, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.Nil(t, got.CompletedAt)
}

func TestTaskDAO_Create_InvalidTitle(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)

	tk := newTestTask(types.NewID(), "   ")
	err := dao.Create(context.Background(), tk)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TASK_INVALID, ""))
}

func TestTaskDAO_Get_NotFound(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)

	_, err := dao.Get(context.Background(), types.NewID(), types.NewID())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TASK_NOT_FOUND, ""))
}

func TestTaskDAO_Get_CrossUserLooksNonexistent(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	owner := types.NewID()
	stranger := types.NewID()

	tk := newTestTask(owner, "Owner's task")
	require.NoError(t, dao.Create(ctx, tk))

	_, foreignErr := dao.Get(ctx, stranger, tk.ID)
	_, missingErr := dao.Get(ctx, owner, types.NewID())

	// A foreign task and a nonexistent task must be indistinguishable.
	require.Error(t, foreignErr)
	require.Error(t, missingErr)
	assert.ErrorIs(t, foreignErr, types.NewError(types.TASK_NOT_FOUND, ""))
	assert.ErrorIs(t, missingErr, types.NewError(types.TASK_NOT_FOUND, ""))
}

func TestTaskDAO_List_Filters(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	today := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	lastWeek := today.AddDate(0, 0, -7)

	dueToday := newTestTask(userID, "Due today")
	dueToday.DueDate = &today

	dueTomorrow := newTestTask(userID, "Due tomorrow")
	dueTomorrow.DueDate = &tomorrow
	dueTomorrow.Priority = task.PriorityHigh

	overdue := newTestTask(userID, "Overdue")
	overdue.DueDate = &lastWeek

	done := newTestTask(userID, "Done")
	done.Status = task.StatusCompleted

	undated := newTestTask(userID, "No due date")

	for _, tk := range []*task.Task{dueToday, dueTomorrow, overdue, done, undated} {
		require.NoError(t, dao.Create(ctx, tk))
	}

	t.Run("all", func(t *testing.T) {
		tasks, err := dao.List(ctx, userID, TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 5)
	})

	t.Run("pending only", func(t *testing.T) {
		tasks, err := dao.List(ctx, userID, TaskFilter{Status: task.StatusPending})
		require.NoError(t, err)
		assert.Len(t, tasks, 4)
	})

	t.Run("high priority", func(t *testing.T) {
		tasks, err := dao.List(ctx, userID, TaskFilter{Priority: task.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Due tomorrow", tasks[0].Title)
	})

	t.Run("due today", func(t *testing.T) {
		window := task.DateFilterToday.Window(today)
		tasks, err := dao.List(ctx, userID, TaskFilter{Due: &window})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Due today", tasks[0].Title)
	})

	t.Run("overdue excludes undated", func(t *testing.T) {
		window := task.DateFilterOverdue.Window(today)
		tasks, err := dao.List(ctx, userID, TaskFilter{Due: &window, Status: task.StatusPending})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Overdue", tasks[0].Title)
	})

	t.Run("ordered by due date, undated last", func(t *testing.T) {
		tasks, err := dao.List(ctx, userID, TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 5)
		assert.Equal(t, "Overdue", tasks[0].Title)
		assert.Equal(t, "Due today", tasks[1].Title)
		assert.Equal(t, "Due tomorrow", tasks[2].Title)
		assert.Nil(t, tasks[4].DueDate)
	})
}

func TestTaskDAO_List_IsolatedByUser(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	alice := types.NewID()
	bob := types.NewID()

	require.NoError(t, dao.Create(ctx, newTestTask(alice, "Alice's task")))
	require.NoError(t, dao.Create(ctx, newTestTask(bob, "Bob's task")))

	tasks, err := dao.List(ctx, alice, TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Alice's task", tasks[0].Title)
}

func TestTaskDAO_Update(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	tk := newTestTask(userID, "Original")
	require.NoError(t, dao.Create(ctx, tk))

	tk.Title = "Renamed"
	tk.Priority = task.PriorityLow
	tk.UpdatedAt = time.Now().UTC()
	require.NoError(t, dao.Update(ctx, tk))

	got, err := dao.Get(ctx, userID, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, task.PriorityLow, got.Priority)
}

func TestTaskDAO_Update_CrossUserNotFound(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	tk := newTestTask(types.NewID(), "Owner's task")
	require.NoError(t, dao.Create(ctx, tk))

	hijacked := *tk
	hijacked.UserID = types.NewID()
	hijacked.Title = "Hijacked"

	err := dao.Update(ctx, &hijacked)
	assert.ErrorIs(t, err, types.NewError(types.TASK_NOT_FOUND, ""))
}

func TestTaskDAO_Complete(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	now := time.Now().UTC()

	tk := newTestTask(userID, "One-off task")
	require.NoError(t, dao.Create(ctx, tk))

	completed, next, err := dao.Complete(ctx, userID, tk.ID, now)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted())
	assert.NotNil(t, completed.CompletedAt)
	assert.Nil(t, next)
}

func TestTaskDAO_Complete_Idempotent(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	now := time.Now().UTC()
	due := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	tk := newTestTask(userID, "Water plants")
	tk.DueDate = &due
	tk.Recurrence = task.RecurrenceDaily
	require.NoError(t, dao.Create(ctx, tk))

	_, first, err := dao.Complete(ctx, userID, tk.ID, now)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Completing again succeeds and must not spawn another occurrence.
	again, second, err := dao.Complete(ctx, userID, tk.ID, now)
	require.NoError(t, err)
	assert.True(t, again.IsCompleted())
	assert.Nil(t, second)

	tasks, err := dao.List(ctx, userID, TaskFilter{Status: task.StatusPending})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestTaskDAO_Complete_SpawnsNextOccurrence(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	now := time.Now().UTC()
	due := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	tk := newTestTask(userID, "Weekly review")
	tk.DueDate = &due
	tk.Recurrence = task.RecurrenceWeekly
	require.NoError(t, dao.Create(ctx, tk))

	_, next, err := dao.Complete(ctx, userID, tk.ID, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotEqual(t, tk.ID, next.ID)
	assert.Equal(t, "Weekly review", next.Title)
	assert.Equal(t, task.StatusPending, next.Status)
	require.NotNil(t, next.DueDate)
	assert.True(t, next.DueDate.Equal(due.AddDate(0, 0, 7)))

	// The next occurrence is persisted, not just returned.
	got, err := dao.Get(ctx, userID, next.ID)
	require.NoError(t, err)
	assert.Equal(t, task.RecurrenceWeekly, got.Recurrence)
}

func TestTaskDAO_Complete_NoDueDateNoSpawn(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	tk := newTestTask(userID, "Recurring but undated")
	tk.Recurrence = task.RecurrenceDaily
	require.NoError(t, dao.Create(ctx, tk))

	_, next, err := dao.Complete(ctx, userID, tk.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestTaskDAO_Delete(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	tk := newTestTask(userID, "Doomed")
	require.NoError(t, dao.Create(ctx, tk))

	require.NoError(t, dao.Delete(ctx, userID, tk.ID))

	_, err := dao.Get(ctx, userID, tk.ID)
	assert.ErrorIs(t, err, types.NewError(types.TASK_NOT_FOUND, ""))

	err = dao.Delete(ctx, userID, tk.ID)
	assert.ErrorIs(t, err, types.NewError(types.TASK_NOT_FOUND, ""))
}

func TestTaskDAO_Delete_CrossUserNotFound(t *testing.T) {
	db := newTestDB(t)
	dao := NewTaskDAO(db)
	ctx := context.Background()

	owner := types.NewID()
	tk := newTestTask(owner, "Protected")
	require.NoError(t, dao.Create(ctx, tk))

	err := dao.Delete(ctx, types.NewID(), tk.ID)
	assert.ErrorIs(t, err, types.NewError(types.TASK_NOT_FOUND, ""))

	// Still there for the owner.
	_, err = dao.Get(ctx, owner, tk.ID)
	assert.NoError(t, err)
}
