package config

import (
	"fmt"
	"strings"

	"github.com/taskmind/taskmind/internal/llm"
	"github.com/taskmind/taskmind/internal/types"
)

// ConfigValidator validates a loaded configuration.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

type configValidator struct{}

// NewConfigValidator creates the default validator.
func NewConfigValidator() ConfigValidator {
	return &configValidator{}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks the configuration for structural problems.
func (v *configValidator) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	var problems []string

	if cfg.Database.Path == "" {
		problems = append(problems, "database.path is required")
	}
	if cfg.Database.MaxConnections < 1 {
		problems = append(problems, "database.max_connections must be at least 1")
	}

	if cfg.Server.Address == "" {
		problems = append(problems, "server.address is required")
	}
	if cfg.Server.RateLimit < 0 {
		problems = append(problems, "server.rate_limit cannot be negative")
	}

	if !llm.ProviderType(cfg.LLM.Provider).IsValid() {
		problems = append(problems, fmt.Sprintf("llm.provider %q is not supported", cfg.LLM.Provider))
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 1 {
		problems = append(problems, "llm.temperature must be between 0 and 1")
	}
	if cfg.LLM.MaxTokens < 0 {
		problems = append(problems, "llm.max_tokens cannot be negative")
	}

	if cfg.Assistant.MaxIterations < 1 {
		problems = append(problems, "assistant.max_iterations must be at least 1")
	}
	if cfg.Assistant.MaxAttempts < 1 {
		problems = append(problems, "assistant.max_attempts must be at least 1")
	}
	if cfg.Assistant.HistoryLimit < 0 {
		problems = append(problems, "assistant.history_limit cannot be negative")
	}

	if !validLogLevels[cfg.Logging.Level] {
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level))
	}
	if !validLogFormats[cfg.Logging.Format] {
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of text, json", cfg.Logging.Format))
	}

	if len(problems) > 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, strings.Join(problems, "; "))
	}

	return nil
}
