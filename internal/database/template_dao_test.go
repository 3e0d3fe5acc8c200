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

func newTestTemplate(userID types.ID, name string) *task.Template {
	return &task.Template{
		ID:         types.NewID(),
		UserID:     userID,
		Name:       name,
		Title:      "Weekly groceries run",
		Priority:   task.PriorityMedium,
		Recurrence: task.RecurrenceWeekly,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestTemplateDAO_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	dao := NewTemplateDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	tpl := newTestTemplate(userID, "groceries")
	require.NoError(t, dao.Create(ctx, tpl))

	got, err := dao.Get(ctx, userID, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Name)
	assert.Equal(t, task.RecurrenceWeekly, got.Recurrence)
}

func TestTemplateDAO_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	dao := NewTemplateDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	require.NoError(t, dao.Create(ctx, newTestTemplate(userID, "groceries")))

	err := dao.Create(ctx, newTestTemplate(userID, "groceries"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TASK_INVALID, ""))

	// Same name under a different user is fine.
	assert.NoError(t, dao.Create(ctx, newTestTemplate(types.NewID(), "groceries")))
}

func TestTemplateDAO_GetByName(t *testing.T) {
	db := newTestDB(t)
	dao := NewTemplateDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	tpl := newTestTemplate(userID, "groceries")
	require.NoError(t, dao.Create(ctx, tpl))

	got, err := dao.GetByName(ctx, userID, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, got.ID)

	_, err = dao.GetByName(ctx, userID, "laundry")
	assert.ErrorIs(t, err, types.NewError(types.TEMPLATE_NOT_FOUND, ""))
}

func TestTemplateDAO_List_IsolatedByUser(t *testing.T) {
	db := newTestDB(t)
	dao := NewTemplateDAO(db)
	ctx := context.Background()

	alice := types.NewID()
	require.NoError(t, dao.Create(ctx, newTestTemplate(alice, "zebra")))
	require.NoError(t, dao.Create(ctx, newTestTemplate(alice, "apple")))
	require.NoError(t, dao.Create(ctx, newTestTemplate(types.NewID(), "other")))

	templates, err := dao.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "apple", templates[0].Name)
	assert.Equal(t, "zebra", templates[1].Name)
}

func TestTemplateDAO_Delete(t *testing.T) {
	db := newTestDB(t)
	dao := NewTemplateDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	tpl := newTestTemplate(userID, "groceries")
	require.NoError(t, dao.Create(ctx, tpl))

	require.NoError(t, dao.Delete(ctx, userID, tpl.ID))
	err := dao.Delete(ctx, userID, tpl.ID)
	assert.ErrorIs(t, err, types.NewError(types.TEMPLATE_NOT_FOUND, ""))
}

func TestTemplateDAO_Instantiate_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	templates := NewTemplateDAO(db)
	tasks := NewTaskDAO(db)
	ctx := context.Background()

	userID := types.NewID()
	tpl := newTestTemplate(userID, "groceries")
	require.NoError(t, templates.Create(ctx, tpl))

	tk := tpl.Instantiate(time.Now().UTC())
	require.NoError(t, tasks.Create(ctx, &tk))

	got, err := tasks.Get(ctx, userID, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.Title, got.Title)
	assert.Equal(t, tpl.ID, got.TemplateID)
	assert.Equal(t, task.StatusPending, got.Status)
}
