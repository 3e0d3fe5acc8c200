// Package server exposes the HTTP API: task and template CRUD, the chat
// endpoint backed by the assistant orchestrator, and health reporting.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskmind/taskmind/internal/assistant"
	"github.com/taskmind/taskmind/internal/config"
	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/types"
)

// Server wires the HTTP API over the store and the assistant.
type Server struct {
	cfg           config.ServerConfig
	db            *database.DB
	tasks         *database.TaskDAO
	templates     *database.TemplateDAO
	conversations *database.ConversationDAO
	providers     *llm.Registry
	orch          *assistant.Orchestrator
	historyLimit  int
	logger        *slog.Logger
	engine        *gin.Engine
}

// New creates the server and registers all routes.
func New(cfg config.ServerConfig, db *database.DB, providers *llm.Registry, orch *assistant.Orchestrator, historyLimit int) *Server {
	s := &Server{
		cfg:           cfg,
		db:            db,
		tasks:         database.NewTaskDAO(db),
		templates:     database.NewTemplateDAO(db),
		conversations: database.NewConversationDAO(db),
		providers:     providers,
		orch:          orch,
		historyLimit:  historyLimit,
		logger:        slog.Default().With("component", "server"),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", s.handleHealth)

	api := engine.Group("/api/v1")
	api.Use(s.identity())
	if cfg.RateLimit > 0 {
		api.Use(s.rateLimit())
	}

	tasks := api.Group("/tasks")
	{
		tasks.POST("", s.handleCreateTask)
		tasks.GET("", s.handleListTasks)
		tasks.GET("/:id", s.handleGetTask)
		tasks.PATCH("/:id", s.handleUpdateTask)
		tasks.POST("/:id/complete", s.handleCompleteTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
	}

	templates := api.Group("/templates")
	{
		templates.POST("", s.handleCreateTemplate)
		templates.GET("", s.handleListTemplates)
		templates.DELETE("/:id", s.handleDeleteTemplate)
		templates.POST("/:id/instantiate", s.handleInstantiateTemplate)
	}

	chat := api.Group("/chat")
	{
		chat.POST("", s.handleChat)
		chat.GET("/history", s.handleChatHistory)
		chat.DELETE("/history", s.handleClearChatHistory)
	}

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "address", s.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

// handleHealth aggregates store and provider health.
func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	dbHealth := s.db.Health(ctx)
	providerHealth := s.providers.Health(ctx)

	status := http.StatusOK
	if dbHealth.IsUnhealthy() || providerHealth.IsUnhealthy() {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"database":  dbHealth,
		"providers": providerHealth,
	})
}

// errorResponse maps application errors onto HTTP statuses.
func errorResponse(c *gin.Context, err error) {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case types.TASK_NOT_FOUND, types.TEMPLATE_NOT_FOUND:
		status = http.StatusNotFound
	case types.TASK_INVALID:
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{
		"error": appErr.Message,
		"code":  string(appErr.Code),
	})
}
