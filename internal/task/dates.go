package task

import (
	"fmt"
	"strings"
	"time"
)

// DueDateLayout is the accepted wire format for due dates.
const DueDateLayout = "2006-01-02"

// ParseDueDate parses a strict YYYY-MM-DD date string.
// Callers that tolerate sloppy model output drop the field on error
// rather than failing the operation.
func ParseDueDate(s string) (time.Time, error) {
	t, err := time.Parse(DueDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateFilter narrows a task listing to a date window.
type DateFilter string

const (
	DateFilterToday    DateFilter = "today"
	DateFilterTomorrow DateFilter = "tomorrow"
	DateFilterOverdue  DateFilter = "overdue"
	DateFilterThisWeek DateFilter = "this_week"
)

// IsValid checks if the date filter is a valid value
func (f DateFilter) IsValid() bool {
	switch f {
	case DateFilterToday, DateFilterTomorrow, DateFilterOverdue, DateFilterThisWeek:
		return true
	default:
		return false
	}
}

// ParseDateFilter maps input to a DateFilter. Unknown values report ok=false
// and callers skip the filter instead of rejecting the request.
func ParseDateFilter(s string) (DateFilter, bool) {
	f := DateFilter(strings.ToLower(strings.TrimSpace(s)))
	return f, f.IsValid()
}

// ImpliesPending reports whether the filter only makes sense for pending
// tasks. Overdue listings always exclude completed tasks.
func (f DateFilter) ImpliesPending() bool {
	return f == DateFilterOverdue
}

// Window computes the half-open due-date interval [From, To) selected by the
// filter, relative to now. A zero From or To means the bound is unconstrained.
type Window struct {
	From time.Time
	To   time.Time
}

// Window returns the due-date window for this filter relative to now.
func (f DateFilter) Window(now time.Time) Window {
	today := StartOfDay(now)

	switch f {
	case DateFilterToday:
		return Window{From: today, To: today.AddDate(0, 0, 1)}
	case DateFilterTomorrow:
		tomorrow := today.AddDate(0, 0, 1)
		return Window{From: tomorrow, To: tomorrow.AddDate(0, 0, 1)}
	case DateFilterOverdue:
		return Window{To: today}
	case DateFilterThisWeek:
		// Monday-based week containing now.
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := today.AddDate(0, 0, -(weekday - 1))
		return Window{From: monday, To: monday.AddDate(0, 0, 7)}
	default:
		return Window{}
	}
}

// StartOfDay truncates a time to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
