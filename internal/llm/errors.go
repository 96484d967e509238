package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimit indicates the provider throttled the request (429).
// Waiting and retrying is expected to succeed.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrQuotaExhausted indicates the account has run out of quota or credit.
// Retrying will not help until billing is topped up.
type ErrQuotaExhausted struct {
	Err error
}

func (e *ErrQuotaExhausted) Error() string {
	return fmt.Sprintf("quota exhausted: %v", e.Err)
}

func (e *ErrQuotaExhausted) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the provider returned a reply without any
// usable content.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable, or
// failed transiently.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrConfiguration indicates missing or rejected credentials or settings.
// It is fatal: nothing is generated.
type ErrConfiguration struct {
	Err error
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ErrConfiguration) Unwrap() error { return e.Err }

// quotaMarkers are substrings providers use in error bodies when the
// account is out of credit rather than merely throttled.
var quotaMarkers = []string{
	"insufficient_quota",
	"billing",
	"credit balance",
	"payment required",
}

func isQuotaMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// classifyHTTPError maps an upstream status code and error body to the
// package's error types. Every provider funnels its SDK errors through here.
func classifyHTTPError(status int, header http.Header, err error) error {
	switch {
	case status == http.StatusPaymentRequired:
		return &ErrQuotaExhausted{Err: err}
	case isQuotaMessage(err.Error()) && status >= 400 && status < 500:
		return &ErrQuotaExhausted{Err: err}
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: parseRetryAfter(header), Err: err}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ErrConfiguration{Err: err}
	case status == http.StatusNotFound:
		// Unknown model or wrong base URL.
		return &ErrConfiguration{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
