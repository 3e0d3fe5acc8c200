package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/types"
)

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	Recurrence  string `json:"recurrence"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	Recurrence  *string `json:"recurrence"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if err := task.ValidateTitle(title); err != nil {
		errorResponse(c, err)
		return
	}

	now := time.Now().UTC()
	newTask := &task.Task{
		ID:          types.NewID(),
		UserID:      currentUser(c),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Priority:    task.NormalizePriority(req.Priority),
		Status:      task.StatusPending,
		Recurrence:  task.NormalizeRecurrence(req.Recurrence),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The REST surface is strict about dates, unlike the tool path
	// where sloppy model output is dropped.
	if req.DueDate != "" {
		due, err := task.ParseDueDate(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newTask.DueDate = &due
	}

	if err := s.tasks.Create(c.Request.Context(), newTask); err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTask)
}

func (s *Server) handleListTasks(c *gin.Context) {
	var filter database.TaskFilter

	switch task.Status(c.Query("status")) {
	case task.StatusPending:
		filter.Status = task.StatusPending
	case task.StatusCompleted:
		filter.Status = task.StatusCompleted
	}

	if p := task.Priority(c.Query("priority")); p.IsValid() {
		filter.Priority = p
	}

	if dateFilter, ok := task.ParseDateFilter(c.Query("date_filter")); ok {
		window := dateFilter.Window(time.Now())
		filter.Due = &window
		if dateFilter.ImpliesPending() {
			filter.Status = task.StatusPending
		}
	}

	tasks, err := s.tasks.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": tasks,
		"count": len(tasks),
	})
}

func (s *Server) handleGetTask(c *gin.Context) {
	taskID, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	t, err := s.tasks.Get(c.Request.Context(), currentUser(c), taskID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	taskID, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	existing, err := s.tasks.Get(ctx, currentUser(c), taskID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := task.ValidateTitle(title); err != nil {
			errorResponse(c, err)
			return
		}
		existing.Title = title
	}
	if req.Description != nil {
		existing.Description = strings.TrimSpace(*req.Description)
	}
	if req.Priority != nil {
		existing.Priority = task.NormalizePriority(*req.Priority)
	}
	if req.Recurrence != nil {
		existing.Recurrence = task.NormalizeRecurrence(*req.Recurrence)
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			existing.DueDate = nil
		} else {
			due, err := task.ParseDueDate(*req.DueDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			existing.DueDate = &due
		}
	}

	existing.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, existing); err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, existing)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	taskID, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	completed, next, err := s.tasks.Complete(c.Request.Context(), currentUser(c), taskID, time.Now().UTC())
	if err != nil {
		errorResponse(c, err)
		return
	}

	resp := gin.H{"task": completed}
	if next != nil {
		resp["next_occurrence"] = next
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	taskID, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), currentUser(c), taskID); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
