package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskmind/taskmind/internal/assistant"
	"github.com/taskmind/taskmind/internal/config"
	"github.com/taskmind/taskmind/internal/database"
	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/llm/providers"
	"github.com/taskmind/taskmind/internal/tool"
	"github.com/taskmind/taskmind/internal/tool/builtins"
)

var (
	flagConfig   string
	flagDB       string
	flagUser     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "taskmind",
	Short: "TaskMind - LLM-powered todo list assistant",
	Long: `TaskMind manages your todo list through a chat assistant backed by
an LLM with tool calling, or directly from the command line.

Run 'taskmind serve' to start the HTTP API, or 'taskmind chat' to talk
to the assistant from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "taskmind.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Override database path")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "User ID to act as")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}

// app bundles the wired application components shared by subcommands.
type app struct {
	cfg       *config.Config
	db        *database.DB
	providers *llm.Registry
	registry  *tool.Registry
	orch      *assistant.Orchestrator
}

// newApp loads configuration, opens the store, and wires the assistant.
func newApp() (*app, error) {
	loader := config.NewConfigLoader(config.NewConfigValidator())
	cfg, err := loader.LoadWithDefaults(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	setupLogging(cfg.Logging)

	db, err := database.OpenWithConfig(database.Config{
		Path:         cfg.Database.Path,
		BusyTimeout:  int(cfg.Database.BusyTimeout.Milliseconds()),
		MaxOpenConns: cfg.Database.MaxConnections,
		MaxIdleConns: cfg.Database.MaxConnections / 2,
	})
	if err != nil {
		return nil, err
	}

	provider, err := providers.NewProvider(cfg.LLM.ProviderConfig())
	if err != nil {
		db.Close()
		return nil, err
	}

	providerRegistry := llm.NewRegistry()
	if err := providerRegistry.Register(provider); err != nil {
		db.Close()
		return nil, err
	}

	// Resolve through the registry so the configured name is what binds
	// the assistant to a provider.
	active, err := providerRegistry.Get(cfg.LLM.Provider)
	if err != nil {
		db.Close()
		return nil, err
	}

	registry := tool.NewRegistry()
	if err := builtins.RegisterAll(registry, database.NewTaskDAO(db)); err != nil {
		db.Close()
		return nil, err
	}

	orch := assistant.New(active, registry, cfg.LLM.Model,
		assistant.WithMaxIterations(cfg.Assistant.MaxIterations),
		assistant.WithMaxAttempts(cfg.Assistant.MaxAttempts),
		assistant.WithRequestTimeout(cfg.LLM.Timeout),
		assistant.WithTemperature(cfg.LLM.Temperature),
		assistant.WithMaxTokens(cfg.LLM.MaxTokens),
	)

	return &app{
		cfg:       cfg,
		db:        db,
		providers: providerRegistry,
		registry:  registry,
		orch:      orch,
	}, nil
}

// Close releases application resources.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// setupLogging configures the process-wide slog default.
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
