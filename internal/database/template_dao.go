package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/types"
)

// TemplateDAO provides data access operations for task templates.
type TemplateDAO struct {
	db *DB
}

// NewTemplateDAO creates a new TemplateDAO.
func NewTemplateDAO(db *DB) *TemplateDAO {
	return &TemplateDAO{db: db}
}

const templateColumns = "id, user_id, name, title, description, priority, recurrence, created_at"

// Create inserts a new template. Template names are unique per user.
func (d *TemplateDAO) Create(ctx context.Context, tpl *task.Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO templates (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", templateColumns)

	_, err := d.db.conn.ExecContext(ctx, query,
		tpl.ID.String(), tpl.UserID.String(), tpl.Name, tpl.Title,
		tpl.Description, tpl.Priority.String(), tpl.Recurrence.String(), tpl.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return types.NewError(types.TASK_INVALID,
				fmt.Sprintf("template already exists: %s", tpl.Name))
		}
		return types.WrapError(types.DB_QUERY_FAILED, "failed to create template", err)
	}

	return nil
}

// Get retrieves a template by ID, scoped to the owning user.
func (d *TemplateDAO) Get(ctx context.Context, userID, templateID types.ID) (*task.Template, error) {
	query := fmt.Sprintf("SELECT %s FROM templates WHERE id = ? AND user_id = ?", templateColumns)

	tpl, err := scanTemplate(d.db.conn.QueryRowContext(ctx, query, templateID.String(), userID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(types.TEMPLATE_NOT_FOUND,
			fmt.Sprintf("template not found: %s", templateID))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get template", err)
	}

	return tpl, nil
}

// GetByName retrieves a template by its per-user unique name.
// The lookup is case-insensitive.
func (d *TemplateDAO) GetByName(ctx context.Context, userID types.ID, name string) (*task.Template, error) {
	query := fmt.Sprintf("SELECT %s FROM templates WHERE user_id = ? AND name = ? COLLATE NOCASE", templateColumns)

	tpl, err := scanTemplate(d.db.conn.QueryRowContext(ctx, query, userID.String(), strings.TrimSpace(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(types.TEMPLATE_NOT_FOUND,
			fmt.Sprintf("template not found: %s", name))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get template", err)
	}

	return tpl, nil
}

// List retrieves all templates for a user, ordered by name.
func (d *TemplateDAO) List(ctx context.Context, userID types.ID) ([]*task.Template, error) {
	query := fmt.Sprintf("SELECT %s FROM templates WHERE user_id = ? ORDER BY name", templateColumns)

	rows, err := d.db.conn.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list templates", err)
	}
	defer rows.Close()

	var templates []*task.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan template", err)
		}
		templates = append(templates, tpl)
	}

	return templates, rows.Err()
}

// Delete removes a template, scoped to the owning user.
// Tasks created from the template are not affected.
func (d *TemplateDAO) Delete(ctx context.Context, userID, templateID types.ID) error {
	result, err := d.db.conn.ExecContext(ctx,
		"DELETE FROM templates WHERE id = ? AND user_id = ?",
		templateID.String(), userID.String())
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete template", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to check delete result", err)
	}
	if affected == 0 {
		return types.NewError(types.TEMPLATE_NOT_FOUND,
			fmt.Sprintf("template not found: %s", templateID))
	}

	return nil
}

func scanTemplate(s scanner) (*task.Template, error) {
	var (
		tpl        task.Template
		id, userID string
		priority   string
		recurrence string
	)

	err := s.Scan(&id, &userID, &tpl.Name, &tpl.Title, &tpl.Description,
		&priority, &recurrence, &tpl.CreatedAt)
	if err != nil {
		return nil, err
	}

	tpl.ID = types.ID(id)
	tpl.UserID = types.ID(userID)
	tpl.Priority = task.Priority(priority)
	tpl.Recurrence = task.Recurrence(recurrence)

	return &tpl, nil
}
