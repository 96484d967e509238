package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestClassifyHTTPError(t *testing.T) {
	base := errors.New("upstream said no")
	tests := []struct {
		name   string
		status int
		err    error
		check  func(error) bool
	}{
		{"payment required", http.StatusPaymentRequired, base, isType[*ErrQuotaExhausted]},
		{"429 quota body", http.StatusTooManyRequests, errors.New(`{"code":"insufficient_quota"}`), isType[*ErrQuotaExhausted]},
		{"429 plain", http.StatusTooManyRequests, base, isType[*ErrRateLimit]},
		{"401", http.StatusUnauthorized, base, isType[*ErrConfiguration]},
		{"500", http.StatusInternalServerError, base, isType[*ErrProviderUnavailable]},
		{"400 other", http.StatusBadRequest, base, isType[*ErrProviderUnavailable]},
		{"500 mentioning billing", http.StatusBadGateway, errors.New("billing service down"), isType[*ErrProviderUnavailable]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyHTTPError(tt.status, nil, tt.err)
			if !tt.check(got) {
				t.Fatalf("unexpected classification %T (%v)", got, got)
			}
			if !errors.Is(got, tt.err) {
				t.Fatal("classified error must wrap the original")
			}
		})
	}
}

func isType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func TestParseRetryAfter(t *testing.T) {
	h := http.Header{}
	if d := parseRetryAfter(h); d != 0 {
		t.Fatalf("expected 0 for missing header, got %s", d)
	}
	h.Set("Retry-After", "12")
	if d := parseRetryAfter(h); d != 12*time.Second {
		t.Fatalf("expected 12s, got %s", d)
	}
	h.Set("Retry-After", "soon")
	if d := parseRetryAfter(h); d != 0 {
		t.Fatalf("expected 0 for garbage, got %s", d)
	}
	if d := parseRetryAfter(nil); d != 0 {
		t.Fatalf("expected 0 for nil header, got %s", d)
	}
}
