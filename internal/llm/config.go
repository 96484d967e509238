package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single generation call. Exceeding it is reported
	// as a transient failure. Default: 90s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-sonnet"
	BaseURL string // Optional gateway in front of the Messages API.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.

	// JSONObjectMode sends response_format json_object instead of a strict
	// json_schema, for compatible servers that reject schemas. The prompt
	// still carries the literal example shape.
	JSONObjectMode bool

	// headers are added to every request. Used by OpenRouter.
	headers map[string]string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-001"
	BaseURL string // Default: "https://openrouter.ai/api/v1"

	// AppName and SiteURL identify the app on OpenRouter's dashboards
	// (X-Title and HTTP-Referer headers).
	AppName string
	SiteURL string
}

// RetryConfig configures the optional caller-side retry decorator.
// Providers never retry on their own.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "anthropic",
		Anthropic: AnthropicConfig{Model: "claude-sonnet"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{
			Model:   "google/gemini-2.0-flash-001",
			AppName: "examiz",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// Settings returns pointers to the key, model and base URL of the named
// provider, or ok=false for providers without credentials.
func (c *Config) Settings(provider string) (apiKey, model, baseURL *string, ok bool) {
	switch provider {
	case "anthropic":
		return &c.Anthropic.APIKey, &c.Anthropic.Model, &c.Anthropic.BaseURL, true
	case "openai":
		return &c.OpenAI.APIKey, &c.OpenAI.Model, &c.OpenAI.BaseURL, true
	case "gemini":
		return &c.Gemini.APIKey, &c.Gemini.Model, &c.Gemini.BaseURL, true
	case "openrouter":
		return &c.OpenRouter.APIKey, &c.OpenRouter.Model, &c.OpenRouter.BaseURL, true
	}
	return nil, nil, nil, false
}

// providerEnv lists providers with the prefix of their EXAMIZ_* variables
// and the standard key variable DiscoverConfig probes, in discovery order.
var providerEnv = []struct {
	name      string
	prefix    string
	stdKeyVar string
}{
	{"gemini", "EXAMIZ_GEMINI", "GEMINI_API_KEY"},
	{"openai", "EXAMIZ_OPENAI", "OPENAI_API_KEY"},
	{"anthropic", "EXAMIZ_ANTHROPIC", "ANTHROPIC_API_KEY"},
	{"openrouter", "EXAMIZ_OPENROUTER", "OPENROUTER_API_KEY"},
}

// ConfigFromEnv builds a Config from EXAMIZ_* environment variables,
// falling back to defaults for unset values. Each provider reads
// <PREFIX>_API_KEY, <PREFIX>_MODEL and <PREFIX>_BASE_URL.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("EXAMIZ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	for _, pe := range providerEnv {
		key, model, baseURL, _ := cfg.Settings(pe.name)
		setFromEnv(key, pe.prefix+"_API_KEY")
		setFromEnv(model, pe.prefix+"_MODEL")
		setFromEnv(baseURL, pe.prefix+"_BASE_URL")
	}
	if os.Getenv("EXAMIZ_OPENAI_JSON_OBJECT") == "true" {
		cfg.OpenAI.JSONObjectMode = true
	}

	if t := os.Getenv("EXAMIZ_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

func setFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, pe := range providerEnv {
		k := os.Getenv(pe.stdKeyVar)
		if k == "" {
			continue
		}
		cfg.Provider = pe.name
		key, _, _, _ := cfg.Settings(pe.name)
		*key = k
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
// Failures are reported as *ErrConfiguration.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	key, _, _, ok := c.Settings(c.Provider)
	if !ok {
		return &ErrConfiguration{Err: fmt.Errorf("unknown LLM provider: %q", c.Provider)}
	}
	if *key == "" {
		for _, pe := range providerEnv {
			if pe.name == c.Provider {
				return &ErrConfiguration{Err: fmt.Errorf("%s_API_KEY is required for the %s provider", pe.prefix, c.Provider)}
			}
		}
	}
	return nil
}
