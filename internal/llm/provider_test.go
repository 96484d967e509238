package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMockProvider_Queue(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "```json\n{\"b\":2}\n```", StopReason: StopMaxTokens},
		MockResponse{Err: &ErrRateLimit{}},
	)
	ctx := context.Background()

	first, err := mock.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "Teil 1"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *first != (Response{Text: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, Model: "mock", StopReason: StopEnd}) {
		t.Fatalf("first = %+v", first)
	}

	second, err := mock.Generate(ctx, Request{})
	if err != nil || second.StopReason != StopMaxTokens || second.Text != "```json\n{\"b\":2}\n```" {
		t.Fatalf("second = %+v, %v", second, err)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &rl) {
		t.Fatalf("expected queued ErrRateLimit, got %v", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable once drained, got %v", err)
	}

	if mock.CallCount() != 4 || mock.Calls[0].System != "sys" {
		t.Fatalf("calls not recorded: %d %+v", mock.CallCount(), mock.Calls)
	}
	if mock.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", mock.ModelID())
	}
}

func TestMockProvider_AddResponse(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Text: "{}"})
	if resp, err := mock.Generate(context.Background(), Request{}); err != nil || resp.Text != "{}" {
		t.Fatalf("resp = %+v, err = %v", resp, err)
	}
}

func TestMockProviderFunc(t *testing.T) {
	mock := NewMockProviderFunc(func(req Request) MockResponse {
		return MockResponse{Text: fmt.Sprintf(`{"schema":%q}`, req.Schema.Name)}
	})
	for _, name := range []string{"exam-part-lesen-1", "exam-part-lesen-2"} {
		resp, err := mock.Generate(context.Background(), Request{Schema: &Schema{Name: name}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := fmt.Sprintf(`{"schema":%q}`, name); resp.Text != want {
			t.Fatalf("text = %s, want %s", resp.Text, want)
		}
	}
}

func TestMockProvider_CancelledContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{}`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if PurposeFrom(ctx) != "unknown" || RequestIDFrom(ctx) != "" {
		t.Fatal("unexpected defaults")
	}
	ctx = WithRequestID(WithPurpose(ctx, "exam-part"), "req-1")
	if PurposeFrom(ctx) != "exam-part" || RequestIDFrom(ctx) != "req-1" {
		t.Fatalf("purpose=%q request=%q", PurposeFrom(ctx), RequestIDFrom(ctx))
	}
}

func TestRequestMaxTokensDefault(t *testing.T) {
	if got := (Request{}).maxTokens(); got != defaultMaxTokens {
		t.Fatalf("maxTokens = %d", got)
	}
	if got := (Request{MaxTokens: 900}).maxTokens(); got != 900 {
		t.Fatalf("maxTokens = %d", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Provider: "anthropic"}, true},
		{Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{Config{Provider: "openai"}, true},
		{Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or"}}, false},
		{Config{Provider: "gemini"}, true},
		{Config{Provider: "mock"}, false},
		{Config{Provider: "bard"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Provider, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var cfgErr *ErrConfiguration
			if err != nil && !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ErrConfiguration, got %T", err)
			}
		})
	}
}
