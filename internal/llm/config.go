package llm

import (
	"fmt"
	"time"

	"github.com/taskmind/taskmind/internal/types"
)

// ProviderType represents the type of LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
	ProviderMock      ProviderType = "mock"
)

// IsValid checks if the provider type is a supported value
func (t ProviderType) IsValid() bool {
	switch t {
	case ProviderAnthropic, ProviderOpenAI, ProviderOllama, ProviderMock:
		return true
	default:
		return false
	}
}

// ProviderConfig contains configuration for a specific LLM provider:
// credentials, endpoint, default model, and call limits.
type ProviderConfig struct {
	Type         ProviderType  `mapstructure:"type" yaml:"type"`
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel string        `mapstructure:"default_model" yaml:"default_model"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Temperature  float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// Validate performs validation on the ProviderConfig.
func (p *ProviderConfig) Validate() error {
	if p.Type == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "provider type cannot be empty")
	}

	if !p.Type.IsValid() {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown provider type: %s", p.Type))
	}

	if p.DefaultModel == "" && p.Type != ProviderMock {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "default_model cannot be empty")
	}

	if p.Temperature < 0 || p.Temperature > 1 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("temperature must be between 0 and 1, got %f", p.Temperature))
	}

	return nil
}

// WithDefaults fills unset optional fields with sensible defaults.
func (p ProviderConfig) WithDefaults() ProviderConfig {
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = 1024
	}
	return p
}
