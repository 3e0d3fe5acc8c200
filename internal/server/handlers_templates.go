package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskmind/taskmind/internal/task"
	"github.com/taskmind/taskmind/internal/types"
)

type createTemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Recurrence  string `json:"recurrence"`
}

func (s *Server) handleCreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tpl := &task.Template{
		ID:          types.NewID(),
		UserID:      currentUser(c),
		Name:        strings.TrimSpace(req.Name),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Priority:    task.NormalizePriority(req.Priority),
		Recurrence:  task.NormalizeRecurrence(req.Recurrence),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.templates.Create(c.Request.Context(), tpl); err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(c *gin.Context) {
	templates, err := s.templates.List(c.Request.Context(), currentUser(c))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": templates,
		"count": len(templates),
	})
}

func (s *Server) handleDeleteTemplate(c *gin.Context) {
	templateID, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	if err := s.templates.Delete(c.Request.Context(), currentUser(c), templateID); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// handleInstantiateTemplate creates a new pending task from a template.
func (s *Server) handleInstantiateTemplate(c *gin.Context) {
	templateID, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	ctx := c.Request.Context()
	tpl, err := s.templates.Get(ctx, currentUser(c), templateID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	newTask := tpl.Instantiate(time.Now().UTC())
	if err := s.tasks.Create(ctx, &newTask); err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTask)
}
