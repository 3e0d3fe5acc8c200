// Package config defines the taskmind configuration model and the YAML
// loader with environment variable interpolation.
package config

import (
	"time"

	"github.com/taskmind/taskmind/internal/llm"
)

// Config is the root configuration for taskmind.
type Config struct {
	Database  DBConfig        `mapstructure:"database" yaml:"database"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Assistant AssistantConfig `mapstructure:"assistant" yaml:"assistant"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// DBConfig contains database configuration.
type DBConfig struct {
	Path           string        `mapstructure:"path" yaml:"path"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
	BusyTimeout    time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`

	// RateLimit is the sustained request rate allowed per client,
	// in requests per second. Zero disables rate limiting.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the burst size allowed on top of RateLimit.
	RateBurst int `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// LLMConfig contains completion provider configuration.
// APIKey supports ${VAR} interpolation so keys stay out of config files.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ProviderConfig converts the LLM section into the provider layer's config.
func (c LLMConfig) ProviderConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		Type:         llm.ProviderType(c.Provider),
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		DefaultModel: c.Model,
		Timeout:      c.Timeout,
		Temperature:  c.Temperature,
		MaxTokens:    c.MaxTokens,
	}.WithDefaults()
}

// AssistantConfig contains orchestration settings.
type AssistantConfig struct {
	// MaxIterations bounds the model/tool loop per chat request.
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`

	// MaxAttempts bounds completion-call retries per model turn.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// HistoryLimit is how many stored conversation messages are loaded
	// per chat request. Zero loads the full history.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}
