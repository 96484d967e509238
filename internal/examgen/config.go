package examgen

import "time"

// Config controls prompt construction and the generation pipeline.
type Config struct {
	// MaxTokens is the token budget for one exam part.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// StructuredOutput attaches the blueprint's output schema to requests
	// so providers use their native JSON mode.
	StructuredOutput bool

	// Timeout bounds one generation call. Zero means no pipeline timeout
	// beyond the caller's context.
	Timeout time.Duration

	// Parallelism caps concurrent part generation in GenerateSection.
	Parallelism int

	// CheckConformance validates parsed payloads against the exact-count
	// schema and logs violations.
	CheckConformance bool
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:        8192,
		Temperature:      0.7,
		StructuredOutput: true,
		Timeout:          90 * time.Second,
		Parallelism:      3,
		CheckConformance: true,
	}
}
