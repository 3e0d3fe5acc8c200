// Package task defines the todo-list domain model: tasks, priorities,
// recurrence rules, templates, and the date filters used when listing tasks.
package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/taskmind/taskmind/internal/types"
)

// MaxTitleLength is the maximum accepted length for a task title.
const MaxTitleLength = 500

// Priority represents the urgency level of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// String returns the string representation of the Priority
func (p Priority) String() string {
	return string(p)
}

// IsValid checks if the priority is a valid value
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// NormalizePriority maps arbitrary input to a valid Priority.
// Unknown or empty values fall back to medium.
func NormalizePriority(s string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.IsValid() {
		return p
	}
	return PriorityMedium
}

// Status represents the completion state of a task
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// String returns the string representation of the Status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}

// Recurrence represents how often a task repeats.
// Completing a recurring task schedules the next occurrence.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// String returns the string representation of the Recurrence
func (r Recurrence) String() string {
	return string(r)
}

// IsValid checks if the recurrence is a valid value
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// IsRepeating returns true if the recurrence schedules further occurrences.
func (r Recurrence) IsRepeating() bool {
	return r.IsValid() && r != RecurrenceNone
}

// NormalizeRecurrence maps arbitrary input to a valid Recurrence.
// Unknown or empty values fall back to none.
func NormalizeRecurrence(s string) Recurrence {
	r := Recurrence(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r
	}
	return RecurrenceNone
}

// Next returns the next occurrence of a due date for this recurrence.
// Monthly recurrence clamps to the last day of shorter months
// (Jan 31 -> Feb 28, not Mar 3).
func (r Recurrence) Next(due time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		return due.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return due.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return addMonthClamped(due)
	default:
		return due
	}
}

// addMonthClamped advances a date by one month, clamping the day to the
// last day of the target month. time.AddDate normalizes overflow instead.
func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	firstOfNext := time.Date(year, month+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Task represents a single todo item owned by a user.
type Task struct {
	ID          types.ID   `db:"id" json:"id"`
	UserID      types.ID   `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description,omitempty"`
	Priority    Priority   `db:"priority" json:"priority"`
	Status      Status     `db:"status" json:"status"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	Recurrence  Recurrence `db:"recurrence" json:"recurrence"`
	TemplateID  types.ID   `db:"template_id" json:"template_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// IsCompleted returns true if the task has been marked complete.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue returns true if the task is pending and its due date is in the past.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Status != StatusPending || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// Validate checks that the task satisfies domain constraints.
func (t Task) Validate() error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if t.UserID.IsZero() {
		return types.NewError(types.TASK_INVALID, "task must have an owner")
	}
	if !t.Priority.IsValid() {
		return types.NewError(types.TASK_INVALID, fmt.Sprintf("invalid priority: %s", t.Priority))
	}
	if !t.Status.IsValid() {
		return types.NewError(types.TASK_INVALID, fmt.Sprintf("invalid status: %s", t.Status))
	}
	if !t.Recurrence.IsValid() {
		return types.NewError(types.TASK_INVALID, fmt.Sprintf("invalid recurrence: %s", t.Recurrence))
	}
	return nil
}

// ValidateTitle checks the title constraints: non-empty after trimming
// and at most MaxTitleLength characters.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return types.NewError(types.TASK_INVALID, "task title cannot be empty")
	}
	if len(trimmed) > MaxTitleLength {
		return types.NewError(types.TASK_INVALID,
			fmt.Sprintf("task title cannot exceed %d characters", MaxTitleLength))
	}
	return nil
}

// Template is a reusable task blueprint. Instantiating a template creates
// a pending task pre-filled with the template's fields.
type Template struct {
	ID          types.ID   `db:"id" json:"id"`
	UserID      types.ID   `db:"user_id" json:"user_id"`
	Name        string     `db:"name" json:"name"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description,omitempty"`
	Priority    Priority   `db:"priority" json:"priority"`
	Recurrence  Recurrence `db:"recurrence" json:"recurrence"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Validate checks that the template satisfies domain constraints.
func (tpl Template) Validate() error {
	if strings.TrimSpace(tpl.Name) == "" {
		return types.NewError(types.TASK_INVALID, "template name cannot be empty")
	}
	if err := ValidateTitle(tpl.Title); err != nil {
		return err
	}
	if tpl.UserID.IsZero() {
		return types.NewError(types.TASK_INVALID, "template must have an owner")
	}
	return nil
}

// Instantiate creates a new pending task from the template.
func (tpl Template) Instantiate(now time.Time) Task {
	return Task{
		ID:          types.NewID(),
		UserID:      tpl.UserID,
		Title:       tpl.Title,
		Description: tpl.Description,
		Priority:    tpl.Priority,
		Status:      StatusPending,
		Recurrence:  tpl.Recurrence,
		TemplateID:  tpl.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarshalJSON ensures stable serialization for Priority
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

// UnmarshalJSON validates Priority on decode
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	prio := Priority(s)
	if !prio.IsValid() {
		return fmt.Errorf("invalid priority: %s", s)
	}
	*p = prio
	return nil
}
