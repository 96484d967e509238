package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/examiz/internal/store"
)

// eventSink keeps recorded LLM events; other EventRepo methods are not
// used by the decorator.
type eventSink struct {
	store.EventRepo

	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (s *eventSink) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, data)
	return s.err
}

func TestLoggingProvider_RecordsCall(t *testing.T) {
	sink := &eventSink{}
	mock := NewMockProvider(MockResponse{
		Text:  `{"title":"Leseverstehen, Teil 1"}`,
		Usage: Usage{InputTokens: 12, OutputTokens: 34},
	})
	p := WithLogging(mock, "anthropic", sink, nil)

	ctx := WithRequestID(WithPurpose(context.Background(), "exam-part"), "req-42")
	resp, err := p.Generate(ctx, Request{
		System:   "Du erstellst Prüfungsaufgaben.",
		Messages: []Message{{Role: RoleUser, Content: "Lesen, Teil 1"}},
		Schema:   &Schema{Name: "exam-part-lesen-1", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	want := store.LLMRequestEventData{
		RequestID:    "req-42",
		Provider:     "anthropic",
		Model:        "mock",
		Purpose:      "exam-part",
		InputTokens:  12,
		OutputTokens: 34,
		LatencyMs:    ev.LatencyMs,
		Success:      true,
		RequestBody:  ev.RequestBody,
		ResponseBody: resp.Text,
	}
	if ev != want {
		t.Fatalf("event = %+v\nwant  %+v", ev, want)
	}

	sections := strings.Split(ev.RequestBody, "\n\n")
	if len(sections) != 3 || !strings.HasPrefix(sections[0], "[system]\n") ||
		sections[1] != "[user]\nLesen, Teil 1" || !strings.HasPrefix(sections[2], "[schema: exam-part-lesen-1]\n") {
		t.Fatalf("rendered prompt = %q", ev.RequestBody)
	}
}

func TestLoggingProvider_Failure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := &eventSink{}
	p := WithLogging(NewMockProvider(MockResponse{Err: &ErrRateLimit{}}), "openai", sink, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit passed through, got %v", err)
	}
	if len(sink.events) != 1 || sink.events[0].Success || sink.events[0].ErrorMessage == "" {
		t.Fatalf("expected one failed event with a message, got %+v", sink.events)
	}

	warns := logs.FilterMessage("llm request failed").All()
	if len(warns) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warns))
	}
	fields := warns[0].ContextMap()
	if fields["purpose"] != "unknown" || fields["provider"] != "openai" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestLoggingProvider_IncompleteReplyIsWarned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := WithLogging(NewMockProvider(MockResponse{Text: `{"questions":[`, StopReason: StopMaxTokens}), "gemini", nil, zap.New(core))

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	warns := logs.FilterMessage("llm reply incomplete").All()
	if len(warns) != 1 || warns[0].ContextMap()["stop_reason"] != StopMaxTokens {
		t.Fatalf("expected a max_tokens warning, got %v", logs.All())
	}
}

func TestLoggingProvider_RecordErrorDoesNotFailRequest(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := &eventSink{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Text: `{}`}), "mock", sink, zap.New(core))

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("record failure leaked into request: %v", err)
	}
	if logs.FilterMessage("failed to record LLM request event").Len() != 1 {
		t.Fatal("expected record failure to be logged")
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}
}
