package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmind/taskmind/internal/llm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, NewConfigValidator().Validate(DefaultConfig()))
}

func TestLoader_Load(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/tasks.db
  max_connections: 5
server:
  address: localhost:9090
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
  timeout: 45s
assistant:
  max_iterations: 7
logging:
  level: debug
  format: json
`)

	cfg, err := NewConfigLoader(NewConfigValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tasks.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Database.MaxConnections)
	assert.Equal(t, "localhost:9090", cfg.Server.Address)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 7, cfg.Assistant.MaxIterations)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Unset sections keep their defaults.
	assert.Equal(t, DefaultConfig().Assistant.MaxAttempts, cfg.Assistant.MaxAttempts)
	assert.Equal(t, DefaultConfig().Server.RateBurst, cfg.Server.RateBurst)
}

func TestLoader_Load_EnvInterpolation(t *testing.T) {
	t.Setenv("TEST_TASKMIND_KEY", "sk-secret")

	path := writeConfig(t, `
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: ${TEST_TASKMIND_KEY}
`)

	cfg, err := NewConfigLoader(NewConfigValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
}

func TestLoader_Load_UnsetEnvKeepsPlaceholder(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: ${DEFINITELY_NOT_SET_12345}
`)

	cfg, err := NewConfigLoader(NewConfigValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_12345}", cfg.LLM.APIKey)
}

func TestLoader_Load_InvalidProvider(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: skynet
`)

	_, err := NewConfigLoader(NewConfigValidator()).Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := NewConfigLoader(NewConfigValidator()).Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoader_LoadWithDefaults_MissingFile(t *testing.T) {
	cfg, err := NewConfigLoader(NewConfigValidator()).LoadWithDefaults("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidator_CollectsProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Path = ""
	cfg.Logging.Level = "loud"
	cfg.Assistant.MaxIterations = 0

	err := NewConfigValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.path")
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "assistant.max_iterations")
}

func TestLLMConfig_ProviderConfig(t *testing.T) {
	cfg := LLMConfig{
		Provider: "ollama",
		Model:    "llama3",
		BaseURL:  "http://localhost:11434",
	}

	pc := cfg.ProviderConfig()
	assert.Equal(t, llm.ProviderOllama, pc.Type)
	assert.Equal(t, "llama3", pc.DefaultModel)
	assert.Equal(t, 30*time.Second, pc.Timeout)
	assert.Equal(t, 1024, pc.MaxTokens)
}
