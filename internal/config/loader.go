package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/taskmind/taskmind/internal/types"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path.
// Values support ${VAR_NAME} environment variable interpolation, which is
// how API keys are expected to reach the config.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Start from defaults so partial config files work.
	defaults := DefaultConfig()
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.max_connections", defaults.Database.MaxConnections)
	v.SetDefault("database.busy_timeout", defaults.Database.BusyTimeout)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("server.rate_limit", defaults.Server.RateLimit)
	v.SetDefault("server.rate_burst", defaults.Server.RateBurst)
	v.SetDefault("llm.provider", defaults.LLM.Provider)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.timeout", defaults.LLM.Timeout)
	v.SetDefault("llm.temperature", defaults.LLM.Temperature)
	v.SetDefault("llm.max_tokens", defaults.LLM.MaxTokens)
	v.SetDefault("assistant.max_iterations", defaults.Assistant.MaxIterations)
	v.SetDefault("assistant.max_attempts", defaults.Assistant.MaxAttempts)
	v.SetDefault("assistant.history_limit", defaults.Assistant.HistoryLimit)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	applyInterpolation(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return l.Load(path)
}

// applyInterpolation expands ${VAR_NAME} in the string fields where
// environment-sourced values make sense.
func applyInterpolation(cfg *Config) {
	cfg.Database.Path = interpolateString(cfg.Database.Path)
	cfg.Server.Address = interpolateString(cfg.Server.Address)
	cfg.LLM.Provider = interpolateString(cfg.LLM.Provider)
	cfg.LLM.Model = interpolateString(cfg.LLM.Model)
	cfg.LLM.APIKey = interpolateString(cfg.LLM.APIKey)
	cfg.LLM.BaseURL = interpolateString(cfg.LLM.BaseURL)
	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables leave the placeholder intact.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")

		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}

		return match
	})
}
