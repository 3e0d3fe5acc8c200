package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// handleChat runs one assistant turn: load stored history, orchestrate,
// persist the new messages, reply.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message cannot be empty"})
		return
	}

	ctx := c.Request.Context()
	userID := currentUser(c)

	history, err := s.conversations.Load(ctx, userID, s.historyLimit)
	if err != nil {
		errorResponse(c, err)
		return
	}

	result := s.orch.Run(ctx, userID, message, history)

	// A degraded turn is not persisted as history: the fallback text is
	// not a model reply worth replaying into future prompts.
	if !result.Degraded {
		if err := s.conversations.Append(ctx, userID, result.NewMessages); err != nil {
			s.logger.Error("failed to persist conversation", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":            result.FinalText,
		"tool_invocations": result.ToolInvocations,
		"degraded":         result.Degraded,
	})
}

func (s *Server) handleChatHistory(c *gin.Context) {
	history, err := s.conversations.Load(c.Request.Context(), currentUser(c), s.historyLimit)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": history,
		"count":    len(history),
	})
}

func (s *Server) handleClearChatHistory(c *gin.Context) {
	if err := s.conversations.Clear(c.Request.Context(), currentUser(c)); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
