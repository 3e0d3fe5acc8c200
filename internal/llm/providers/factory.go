package providers

import (
	"fmt"

	"github.com/taskmind/taskmind/internal/llm"
)

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	cfg = cfg.WithDefaults()

	switch cfg.Type {
	case llm.ProviderAnthropic:
		return NewAnthropicProvider(cfg)

	case llm.ProviderOpenAI:
		return NewOpenAIProvider(cfg)

	case llm.ProviderOllama:
		return NewOllamaProvider(cfg)

	case llm.ProviderMock:
		return NewMockProvider(), nil

	default:
		return nil, llm.NewInvalidRequestError(fmt.Sprintf("unknown provider type: %s", cfg.Type))
	}
}
