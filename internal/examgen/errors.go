package examgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/examiz/internal/llm"
)

// ErrInvalidSectionOrPart is returned before any model call when the
// requested (section, part) pair is not in the registry.
type ErrInvalidSectionOrPart struct {
	Section string
	Part    int
}

func (e *ErrInvalidSectionOrPart) Error() string {
	return fmt.Sprintf("unknown exam part %s/%d", e.Section, e.Part)
}

// ParseError indicates the model reply contained no JSON object or array.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse model output: %v", e.Err)
	}
	return "parse model output: no JSON object or array found"
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind classifies pipeline errors for callers deciding between retry,
// billing action and generic failure.
type Kind string

const (
	KindInvalidSectionOrPart Kind = "invalid_section_or_part"
	KindRateLimited          Kind = "rate_limited"
	KindQuotaExhausted       Kind = "quota_exhausted"
	KindTransientFailure     Kind = "transient_failure"
	KindUpstreamParseFailure Kind = "upstream_parse_failure"
	KindConfigurationError   Kind = "configuration_error"
	KindInternalFailure      Kind = "internal_failure"
)

// KindOf classifies err. It returns "" for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		invalid     *ErrInvalidSectionOrPart
		parseErr    *ParseError
		quota       *llm.ErrQuotaExhausted
		rateLimit   *llm.ErrRateLimit
		cfgErr      *llm.ErrConfiguration
		unavailable *llm.ErrProviderUnavailable
		badResp     *llm.ErrInvalidResponse
		truncated   *llm.ErrMaxTokensExceeded
	)

	switch {
	case errors.As(err, &invalid):
		return KindInvalidSectionOrPart
	case errors.As(err, &quota):
		return KindQuotaExhausted
	case errors.As(err, &rateLimit):
		return KindRateLimited
	case errors.As(err, &cfgErr):
		return KindConfigurationError
	case errors.As(err, &parseErr), errors.As(err, &badResp), errors.As(err, &truncated):
		return KindUpstreamParseFailure
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTransientFailure
	case errors.As(err, &unavailable):
		return KindTransientFailure
	}
	return KindInternalFailure
}

// Retryable reports whether a caller may retry after backing off.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindTransientFailure || k == KindUpstreamParseFailure
}
