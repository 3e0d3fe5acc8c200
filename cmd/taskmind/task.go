package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/types"
)

var (
	taskPriority    string
	taskDue         string
	taskDescription string
	taskRecurrence  string
	taskStatus      string
	taskDateFilter  string
	taskTitle       string
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	idStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	highStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mediumStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("240"))
	overdueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks directly from the command line",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		title := strings.TrimSpace(strings.Join(args, " "))
		if err := task.ValidateTitle(title); err != nil {
			return err
		}

		now := time.Now().UTC()
		newTask := &task.Task{
			ID:          types.NewID(),
			UserID:      userID,
			Title:       title,
			Description: strings.TrimSpace(taskDescription),
			Priority:    task.NormalizePriority(taskPriority),
			Status:      task.StatusPending,
			Recurrence:  task.NormalizeRecurrence(taskRecurrence),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if taskDue != "" {
			due, err := task.ParseDueDate(taskDue)
			if err != nil {
				return err
			}
			newTask.DueDate = &due
		}

		dao := database.NewTaskDAO(a.db)
		if err := dao.Create(cmd.Context(), newTask); err != nil {
			return err
		}

		cmd.Printf("Added task %s\n", idStyle.Render(newTask.ID.String()))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var filter database.TaskFilter
		switch task.Status(taskStatus) {
		case task.StatusPending:
			filter.Status = task.StatusPending
		case task.StatusCompleted:
			filter.Status = task.StatusCompleted
		}
		if p := task.Priority(taskPriority); p.IsValid() {
			filter.Priority = p
		}
		if dateFilter, ok := task.ParseDateFilter(taskDateFilter); ok {
			window := dateFilter.Window(time.Now())
			filter.Due = &window
			if dateFilter.ImpliesPending() {
				filter.Status = task.StatusPending
			}
		}

		dao := database.NewTaskDAO(a.db)
		tasks, err := dao.List(cmd.Context(), userID, filter)
		if err != nil {
			return err
		}

		if len(tasks) == 0 {
			cmd.Println("No tasks found.")
			return nil
		}

		cmd.Println(headerStyle.Render(fmt.Sprintf("%-36s  %-8s  %-10s  %s", "ID", "PRIORITY", "DUE", "TITLE")))
		now := time.Now()
		for _, t := range tasks {
			cmd.Println(renderTaskRow(t, now))
		}

		return nil
	},
}

func renderTaskRow(t *task.Task, now time.Time) string {
	due := "-"
	if t.DueDate != nil {
		due = t.DueDate.Format(task.DueDateLayout)
		if t.IsOverdue(now) {
			due = overdueStyle.Render(due)
		}
	}

	priority := t.Priority.String()
	switch t.Priority {
	case task.PriorityHigh:
		priority = highStyle.Render(priority)
	case task.PriorityMedium:
		priority = mediumStyle.Render(priority)
	case task.PriorityLow:
		priority = lowStyle.Render(priority)
	}

	title := t.Title
	if t.IsCompleted() {
		title = completedStyle.Render(title)
	}

	return fmt.Sprintf("%s  %-8s  %-10s  %s", idStyle.Render(t.ID.String()), priority, due, title)
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		taskID, err := types.ParseID(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %s", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		dao := database.NewTaskDAO(a.db)
		completed, next, err := dao.Complete(cmd.Context(), userID, taskID, time.Now().UTC())
		if err != nil {
			return err
		}

		cmd.Printf("Completed: %s\n", completed.Title)
		if next != nil {
			cmd.Printf("Next occurrence scheduled for %s\n", next.DueDate.Format(task.DueDateLayout))
		}
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		taskID, err := types.ParseID(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %s", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		dao := database.NewTaskDAO(a.db)
		existing, err := dao.Get(ctx, userID, taskID)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("title") {
			title := strings.TrimSpace(taskTitle)
			if err := task.ValidateTitle(title); err != nil {
				return err
			}
			existing.Title = title
		}
		if cmd.Flags().Changed("description") {
			existing.Description = strings.TrimSpace(taskDescription)
		}
		if cmd.Flags().Changed("priority") {
			existing.Priority = task.NormalizePriority(taskPriority)
		}
		if cmd.Flags().Changed("recurrence") {
			existing.Recurrence = task.NormalizeRecurrence(taskRecurrence)
		}
		if cmd.Flags().Changed("due") {
			if taskDue == "" {
				existing.DueDate = nil
			} else {
				due, err := task.ParseDueDate(taskDue)
				if err != nil {
					return err
				}
				existing.DueDate = &due
			}
		}

		existing.UpdatedAt = time.Now().UTC()
		if err := dao.Update(ctx, existing); err != nil {
			return err
		}

		cmd.Printf("Updated: %s\n", existing.Title)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Permanently delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		taskID, err := types.ParseID(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %s", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		dao := database.NewTaskDAO(a.db)
		if err := dao.Delete(cmd.Context(), userID, taskID); err != nil {
			return err
		}

		cmd.Println("Task deleted.")
		return nil
	},
}

// requireUser parses the --user flag into an identity.
func requireUser() (types.ID, error) {
	if flagUser == "" {
		return "", fmt.Errorf("--user is required")
	}

	userID, err := types.ParseID(flagUser)
	if err != nil {
		return "", fmt.Errorf("invalid --user value: %w", err)
	}

	return userID, nil
}

func init() {
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "", "Task priority (low, medium, high)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskDescription, "description", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskRecurrence, "recurrence", "", "Recurrence (none, daily, weekly, monthly)")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (pending, completed)")
	taskListCmd.Flags().StringVar(&taskPriority, "priority", "", "Filter by priority")
	taskListCmd.Flags().StringVar(&taskDateFilter, "date", "", "Filter by date (today, tomorrow, overdue, this_week)")

	taskUpdateCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskUpdateCmd.Flags().StringVar(&taskDescription, "description", "", "New description")
	taskUpdateCmd.Flags().StringVar(&taskPriority, "priority", "", "New priority")
	taskUpdateCmd.Flags().StringVar(&taskDue, "due", "", "New due date (empty clears)")
	taskUpdateCmd.Flags().StringVar(&taskRecurrence, "recurrence", "", "New recurrence")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}
