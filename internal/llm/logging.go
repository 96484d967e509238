package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/examiz/internal/store"
)

// LoggingProvider logs each call and stores it as an LLM event together
// with the rendered prompt and the raw reply.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	logger   *zap.Logger
}

// WithLogging wraps p. provider names the backend in recorded events
// ("anthropic", "openrouter"). A nil repo records nothing.
func WithLogging(p Provider, provider string, repo store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, provider: provider, events: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	ev := store.LLMRequestEventData{
		RequestID:   RequestIDFrom(ctx),
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: renderPrompt(req),
	}
	if resp != nil {
		ev.ResponseBody = resp.Text
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}

	log := l.logger.With(
		zap.String("request_id", ev.RequestID),
		zap.String("purpose", ev.Purpose),
		zap.String("provider", ev.Provider),
		zap.String("model", ev.Model),
		zap.Duration("latency", elapsed),
	)
	switch {
	case err != nil:
		ev.ErrorMessage = err.Error()
		log.Warn("llm request failed", zap.Error(err))
	case resp.StopReason != StopEnd:
		log.Warn("llm reply incomplete", zap.String("stop_reason", resp.StopReason),
			zap.Int("output_tokens", ev.OutputTokens))
	default:
		log.Debug("llm request", zap.Int("input_tokens", ev.InputTokens), zap.Int("output_tokens", ev.OutputTokens))
	}

	if l.events != nil {
		// The caller may have given up already; the call still happened.
		if rerr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); rerr != nil {
			log.Warn("failed to record LLM request event", zap.Error(rerr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// renderPrompt flattens a request into the text shown by "examiz llm view".
func renderPrompt(req Request) string {
	var sections []string
	if req.System != "" {
		sections = append(sections, "[system]\n"+req.System)
	}
	for _, m := range req.Messages {
		sections = append(sections, "["+string(m.Role)+"]\n"+m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			sections = append(sections, "[schema: "+req.Schema.Name+"]\n"+string(def))
		}
	}
	return strings.Join(sections, "\n\n")
}
