package config

import "time"

// DefaultConfig returns the configuration used when no config file exists.
// The mock provider keeps a fresh checkout usable without credentials.
func DefaultConfig() *Config {
	return &Config{
		Database: DBConfig{
			Path:           "taskmind.db",
			MaxConnections: 10,
			BusyTimeout:    5 * time.Second,
		},
		Server: ServerConfig{
			Address:   "localhost:8080",
			RateLimit: 10,
			RateBurst: 20,
		},
		LLM: LLMConfig{
			Provider:    "mock",
			Model:       "mock-model",
			Timeout:     30 * time.Second,
			Temperature: 0.2,
			MaxTokens:   1024,
		},
		Assistant: AssistantConfig{
			MaxIterations: 5,
			MaxAttempts:   3,
			HistoryLimit:  50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
