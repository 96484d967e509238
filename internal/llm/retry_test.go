package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestRetry_Policy(t *testing.T) {
	unavailable := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
	ok := MockResponse{Text: `{"ok":true}`}

	tests := []struct {
		name      string
		attempts  int
		replies   []MockResponse
		wantCalls int
		wantErr   bool
	}{
		{"first attempt succeeds", 3, []MockResponse{ok}, 1, false},
		{"transient then success", 3, []MockResponse{unavailable, ok}, 2, false},
		{"gives up after max attempts", 3, []MockResponse{unavailable, unavailable, unavailable, ok}, 3, true},
		{"rate limit honours retry-after", 3, []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond}}, ok}, 2, false},
		{"plain network error is retried", 2, []MockResponse{{Err: errors.New("connection reset")}, ok}, 2, false},
		{"invalid reply retried once", 5, []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			ok,
		}, 2, true},
		{"truncation not retried", 3, []MockResponse{{Err: &ErrMaxTokensExceeded{}}, ok}, 1, true},
		{"quota not retried", 3, []MockResponse{{Err: &ErrQuotaExhausted{Err: errors.New("insufficient_quota")}}, ok}, 1, true},
		{"configuration not retried", 3, []MockResponse{{Err: &ErrConfiguration{Err: errors.New("401")}}, ok}, 1, true},
		{"zero attempts still calls once", 0, []MockResponse{unavailable, ok}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			_, err := WithRetry(mock, fastRetry(tt.attempts)).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_ErrorTypePreserved(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrQuotaExhausted{Err: errors.New("credit balance too low")}})
	_, err := WithRetry(mock, fastRetry(3)).Generate(context.Background(), Request{})
	var quota *ErrQuotaExhausted
	if !errors.As(err, &quota) {
		t.Fatalf("expected ErrQuotaExhausted, got %T (%v)", err, err)
	}
}

func TestRetry_CancelledWhileWaiting(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Minute}},
		MockResponse{Text: `{}`},
	)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := WithRetry(mock, fastRetry(3)).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected the rate limit to be kept, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("retry ignored cancellation")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_WaitIsCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	for attempt := 1; attempt <= 4; attempt++ {
		if d := r.wait(attempt, errors.New("x")); d > 2400*time.Millisecond {
			t.Fatalf("attempt %d: wait %s exceeds cap plus jitter", attempt, d)
		}
	}
	if d := r.wait(1, &ErrRateLimit{RetryAfter: 7 * time.Second}); d != 7*time.Second {
		t.Fatalf("retry-after not honoured: %s", d)
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	if id := WithRetry(NewMockProvider(), fastRetry(1)).ModelID(); id != "mock" {
		t.Fatalf("ModelID = %q", id)
	}
}
