package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/examiz/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with logging middleware only. Retrying
// is left to callers (see WithRetry).
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, &ErrConfiguration{Err: fmt.Errorf("unknown LLM provider: %q", cfg.Provider)}
	}
	if err != nil {
		return nil, &ErrConfiguration{Err: fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)}
	}

	return WithLogging(base, cfg.Provider, eventRepo, logger), nil
}

// NewProviderFromEnv builds a provider from EXAMIZ_* variables, falling back
// to the first standard *_API_KEY variable found.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if cfg.Validate() != nil {
		if discovered, ok := DiscoverConfig(); ok {
			cfg = discovered
		}
	}
	return NewProvider(ctx, cfg, eventRepo, logger)
}
