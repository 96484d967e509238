package examgen

import "github.com/abhisek/examiz/internal/blueprint"

// GeneratedQuestion is one question of a generated exam part.
type GeneratedQuestion struct {
	// ID identifies the question within its part, e.g. "q3".
	ID string `json:"id"`

	// QuestionText is the statement, scenario or gap shown to the learner.
	// For gap-fill parts it carries the three candidate fillers,
	// e.g. "Lücke 4: a) in  b) an  c) auf".
	QuestionText string `json:"questionText"`

	// Options lists the answer choices. For fixed-label parts it always
	// equals the blueprint's canonical labels.
	Options []string `json:"options,omitempty"`

	// CorrectAnswer is a member of Options whenever Options is present,
	// except for model-authored multiple choice where no option matched.
	CorrectAnswer string `json:"correctAnswer"`

	// Explanation is never empty after repair.
	Explanation string `json:"explanation"`

	Hint       string `json:"hint,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Candidate is a labeled heading or advertisement that questions are
// matched against.
type Candidate struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ExamPartContent is the validated content of one exam part.
type ExamPartContent struct {
	Section           blueprint.Section   `json:"section"`
	PartNumber        int                 `json:"partNumber"`
	Title             string              `json:"title"`
	Instructions      string              `json:"instructions"`
	SourceText        string              `json:"sourceText,omitempty"`
	Task              string              `json:"task,omitempty"`
	Candidates        []Candidate         `json:"candidates,omitempty"`
	MaxPoints         float64             `json:"maxPoints"`
	PointsPerQuestion float64             `json:"pointsPerQuestion"`
	Questions         []GeneratedQuestion `json:"questions"`
}

// ExamContent is what the pipeline returns to callers.
type ExamContent struct {
	RequestID        string            `json:"requestId,omitempty"`
	Title            string            `json:"title"`
	Instructions     string            `json:"instructions"`
	TimeLimitMinutes int               `json:"timeLimitMinutes"`
	MaxPoints        float64           `json:"maxPoints"`
	Parts            []ExamPartContent `json:"parts"`
}

// Request is the inbound generation request.
type Request struct {
	Section    blueprint.Section `json:"section"`
	Part       int               `json:"part"`
	Difficulty string            `json:"difficulty"`
}
