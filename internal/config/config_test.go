package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/llm"
)

// clearEnv unsets every variable Load or llm.ConfigFromEnv reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"EXAMIZ_CONFIG", "EXAMIZ_LLM_PROVIDER", "EXAMIZ_LLM_MODEL", "EXAMIZ_LLM_API_KEY",
		"EXAMIZ_LLM_BASE_URL", "EXAMIZ_LLM_TIMEOUT", "EXAMIZ_LLM_RETRIES", "EXAMIZ_DIFFICULTY",
		"EXAMIZ_DB", "EXAMIZ_ADDR", "EXAMIZ_JWT_SECRET", "EXAMIZ_JWT_ISSUER", "EXAMIZ_LOG_LEVEL",
		"EXAMIZ_ANTHROPIC_API_KEY", "EXAMIZ_OPENAI_API_KEY", "EXAMIZ_GEMINI_API_KEY", "EXAMIZ_OPENROUTER_API_KEY",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "B2", cfg.Generation.Difficulty)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
llm:
  provider: openai
  model: gpt-4o
  api_key: sk-file
  timeout: 45s
  retries: 2
generation:
  difficulty: C1
  parallelism: 5
  structured_output: false
store:
  dsn: postgres://examiz@localhost/examiz
server:
  addr: ":9000"
  allowed_origins: ["https://app.example.org"]
  jwt_secret: geheim
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "C1", cfg.Generation.Difficulty)
	assert.Equal(t, 5, cfg.Generation.Parallelism)
	assert.False(t, cfg.Generation.StructuredOutput)
	assert.True(t, cfg.Generation.CheckConformance, "unset fields keep defaults")
	assert.Equal(t, "postgres://examiz@localhost/examiz", cfg.Store.DSN)
	assert.Equal(t, []string{"https://app.example.org"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)

	lc := cfg.LLMProvider()
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "gpt-4o", lc.OpenAI.Model)
	assert.Equal(t, "sk-file", lc.OpenAI.APIKey)
	assert.Equal(t, 3, lc.Retry.MaxAttempts)
	assert.NoError(t, lc.Validate())

	ec := cfg.Exam()
	assert.Equal(t, 45*time.Second, ec.Timeout)
	assert.Equal(t, 5, ec.Parallelism)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "llm:\n  provider: openai\n  timeout: 45s\nserver:\n  addr: \":9000\"\n")
	t.Setenv("EXAMIZ_LLM_PROVIDER", "anthropic")
	t.Setenv("EXAMIZ_LLM_TIMEOUT", "10s")
	t.Setenv("EXAMIZ_ADDR", ":7000")
	t.Setenv("EXAMIZ_ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, ":7000", cfg.Server.Addr)

	lc := cfg.LLMProvider()
	assert.Equal(t, "sk-ant", lc.Anthropic.APIKey)
	assert.Equal(t, 10*time.Second, lc.Timeout)
}

func TestLoad_EnvConfigPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMIZ_CONFIG", writeConfig(t, "logging:\n  level: warn\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		path string
		env  map[string]string
	}{
		{"missing explicit file", filepath.Join(t.TempDir(), "nope.yaml"), nil},
		{"unknown field", writeConfig(t, "llm:\n  providr: openai\n"), nil},
		{"bad duration", writeConfig(t, "llm:\n  timeout: soon\n"), nil},
		{"bad env duration", writeConfig(t, ""), map[string]string{"EXAMIZ_LLM_TIMEOUT": "bald"}},
		{"bad env retries", writeConfig(t, ""), map[string]string{"EXAMIZ_LLM_RETRIES": "drei"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path)
			var cfgErr *llm.ErrConfiguration
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestLLMProvider_DiscoversStandardKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-standard")

	cfg, err := Load("")
	require.NoError(t, err)

	lc := cfg.LLMProvider()
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "sk-standard", lc.OpenAI.APIKey)
}
