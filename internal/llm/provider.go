package llm

import "context"

// Provider sends one request to a model backend. Each Generate call is
// exactly one upstream request; retrying is a decorator's job.
type Provider interface {
	// Generate returns the model's raw reply. A non-nil Schema asks for the
	// backend's structured output mode, but the reply is returned as is:
	// callers parse and repair it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the resolved model id, e.g. "claude-haiku-4-5".
	ModelID() string
}

// Request is a provider-neutral prompt.
type Request struct {
	System   string
	Messages []Message // exam parts use a single user message

	// Schema requests structured output. Nil means free text.
	Schema *Schema

	// MaxTokens caps the reply; zero means defaultMaxTokens.
	MaxTokens int

	// Temperature in [0,1]. Zero keeps the backend default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the compiled-schema cache
// key, so one name must always carry the same definition.
type Schema struct {
	Name        string // e.g. "exam-part-lesen-2"
	Description string
	Definition  map[string]any
}

// Response is the raw outcome of one call.
type Response struct {
	// Text may wrap the JSON payload in prose or code fences.
	Text       string
	Usage      Usage
	Model      string // model that actually served the call
	StopReason string // StopEnd, StopMaxTokens or StopRefused
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopRefused   = "refused"
)

// RequestIDHeader carries the exam request id to providers so their logs
// can be matched with stored events.
const RequestIDHeader = "X-Request-Id"

// defaultMaxTokens applies when a Request leaves MaxTokens at zero.
// Anthropic rejects a zero limit.
const defaultMaxTokens = 4096

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
