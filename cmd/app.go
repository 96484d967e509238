package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/config"
	"github.com/abhisek/examiz/internal/examgen"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/store"
)

func newLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = lvl
	}
	if verbose {
		zc.Level.SetLevel(zapcore.DebugLevel)
	}
	// Generated content goes to stdout; logs stay on stderr.
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// pipeline bundles what the generate, exam and serve commands need.
type pipeline struct {
	generator *examgen.Generator
	registry  *blueprint.Registry
	store     *store.Store
}

func (p *pipeline) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// newPipeline builds the provider and generator from appConfig. With
// noStore, nothing is recorded. retries > 0 wraps the provider with the
// retry decorator and overrides the configured retry count.
func newPipeline(ctx context.Context, noStore bool, retries int) (*pipeline, error) {
	p := &pipeline{registry: blueprint.Default()}

	var events store.EventRepo
	if !noStore && !appConfig.Store.Disabled {
		s, err := openStore()
		if err != nil {
			return nil, err
		}
		p.store = s
		events = s.EventRepo()
	}

	cfg := appConfig.LLMProvider()
	if retries > 0 {
		cfg.Retry.MaxAttempts = retries + 1
	}
	provider, err := llm.NewProvider(ctx, cfg, events, logger)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	if cfg.Retry.MaxAttempts > 1 {
		provider = llm.WithRetry(provider, cfg.Retry)
	}

	opts := []examgen.Option{examgen.WithLogger(logger)}
	if events != nil {
		opts = append(opts, examgen.WithEventRepo(events))
	}
	p.generator = examgen.New(provider, p.registry, appConfig.Exam(), opts...)
	return p, nil
}
