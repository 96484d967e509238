package examgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/llm"
)

const systemPrompt = `You are an experienced author of German language certification exams at level B2.

Rules:
- Write all exam content in German. Field names stay exactly as given.
- All content must be wholly original. Never reproduce, adapt or paraphrase real exam material, textbooks or published model tests.
- Follow the structural requirements exactly: the number of texts, questions and options is checked by a machine.
- Answer with a single JSON object and nothing else. No comments, no markdown.`

// Prompt is a generation request for one blueprint.
type Prompt struct {
	Blueprint blueprint.Blueprint
	Request   llm.Request
}

// Builder turns blueprints into generation requests.
type Builder struct {
	registry *blueprint.Registry
	config   Config
}

// NewBuilder creates a Builder over reg.
func NewBuilder(reg *blueprint.Registry, cfg Config) *Builder {
	return &Builder{registry: reg, config: cfg}
}

// Build returns the request for (section, part), or nil when the registry
// has no such part.
func (b *Builder) Build(section blueprint.Section, part int, difficulty string) *Prompt {
	bp, ok := b.registry.Lookup(section, part)
	if !ok {
		return nil
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(bp, difficulty)},
		},
		MaxTokens:   b.config.MaxTokens,
		Temperature: b.config.Temperature,
	}
	if b.config.StructuredOutput {
		req.Schema = OutputSchema(bp)
	}
	return &Prompt{Blueprint: bp, Request: req}
}

// buildUserMessage assembles the preamble, the content specification and
// a literal example of the output shape.
func buildUserMessage(bp blueprint.Blueprint, difficulty string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create original practice content for the exam part %q.\n", bp.Title)
	b.WriteString("Do not reuse any real exam material. Use the title and instructions below verbatim.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", bp.Title)
	fmt.Fprintf(&b, "Instructions: %s\n", bp.Instructions)
	if difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", difficulty)
	}

	b.WriteString("\nContent requirements:\n")
	for _, line := range contentSpec(bp) {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	b.WriteString("\nReturn JSON in exactly this shape:\n")
	b.WriteString(exampleJSON(bp, difficulty))
	return b.String()
}

func contentSpec(bp blueprint.Blueprint) []string {
	labels := bp.CanonicalLabels()
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	optionsRule := fmt.Sprintf("Every question has options exactly [%s] in this order; correctAnswer is one of them, spelled exactly.", strings.Join(quoted, ", "))

	n := bp.QuestionCount
	switch bp.OptionType {
	case blueprint.HeadingMatch:
		return []string{
			fmt.Sprintf("Write %d short texts of 60 to 90 words each in sourceText, numbered 1 to %d.", n, n),
			fmt.Sprintf("Write %d candidate headings in candidates, labeled %s. Exactly one heading stays unused.", len(labels), labelRange(labels)),
			"Label headings with letters only so they cannot be confused with the text numbers.",
			fmt.Sprintf("Write exactly %d questions; question i refers to text i and has questionText \"Text i\".", n),
			optionsRule,
		}
	case blueprint.TrueFalseNotStated:
		return []string{
			"Write one coherent text of 350 to 450 words in sourceText.",
			fmt.Sprintf("Write exactly %d statements about the text as questions.", n),
			fmt.Sprintf("Judge each statement against the text with exactly one of the literal labels %s. Use every label at least twice.", strings.Join(quoted, ", ")),
			optionsRule,
		}
	case blueprint.TrueFalse:
		return []string{
			"Write the complete transcript of the recording in sourceText.",
			fmt.Sprintf("Write exactly %d statements about the recording as questions, in the order the information is heard.", n),
			fmt.Sprintf("Judge each statement with exactly one of the literal labels %s.", strings.Join(quoted, ", ")),
			optionsRule,
		}
	case blueprint.LetterMatch:
		return []string{
			fmt.Sprintf("Write %d short advertisements in candidates, labeled %s.", len(labels), labelRange(labels)),
			fmt.Sprintf("Write exactly %d situations as questions. Each situation matches exactly one advertisement; the remaining advertisements match none.", n),
			"correctAnswer is the single capital letter of the matching advertisement.",
			optionsRule,
		}
	case blueprint.ABCGapFill:
		return []string{
			fmt.Sprintf("Write one coherent text in sourceText with exactly %d numbered gaps, marked (1) to (%d).", n, n),
			fmt.Sprintf("Write exactly %d questions, one per gap. questionText lists exactly 3 candidate fillers as \"a) ... b) ... c) ...\".", n),
			"Exactly one filler per gap is grammatically and semantically correct.",
			optionsRule,
		}
	case blueprint.FreeMultipleChoice:
		return []string{
			fmt.Sprintf("Write %d short recordings (announcements, voicemail messages, radio notes) in sourceText, numbered and separated by blank lines.", n),
			fmt.Sprintf("Write exactly %d questions, one per recording, each with exactly 3 options written out in full.", n),
			"correctAnswer repeats the text of the correct option exactly.",
		}
	case blueprint.FreeText:
		return []string{
			"Write a realistic situation that calls for a semi-formal letter or e-mail in task.",
			"The task names four guiding points the letter must cover.",
			"Do not write questions.",
		}
	case blueprint.Speaking:
		return []string{
			"Write the task card for the candidates in task: the situation and the guiding points.",
			"Put any short material text the candidates talk about in sourceText, otherwise leave it empty.",
			"Do not write questions.",
		}
	}
	return nil
}

type exampleQuestion struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Hint          string   `json:"hint"`
	Difficulty    string   `json:"difficulty"`
}

type examplePart struct {
	Title        string            `json:"title"`
	Instructions string            `json:"instructions"`
	SourceText   *string           `json:"sourceText,omitempty"`
	Task         *string           `json:"task,omitempty"`
	Candidates   []Candidate       `json:"candidates,omitempty"`
	Questions    []exampleQuestion `json:"questions,omitempty"`
}

// exampleJSON renders a literal two-question example for bp.
func exampleJSON(bp blueprint.Blueprint, difficulty string) string {
	source := "..."
	ex := examplePart{Title: bp.Title, Instructions: bp.Instructions, SourceText: &source}

	if !bp.OptionType.HasQuestions() {
		task := "..."
		ex.Task = &task
		if bp.OptionType == blueprint.FreeText {
			ex.SourceText = nil
		}
	} else {
		labels := bp.CanonicalLabels()
		if bp.OptionType == blueprint.HeadingMatch || bp.OptionType == blueprint.LetterMatch {
			ex.Candidates = []Candidate{{Label: labels[0], Text: "..."}, {Label: labels[1], Text: "..."}}
		}
		for i := range min(2, bp.QuestionCount) {
			q := exampleQuestion{
				ID:           fmt.Sprintf("q%d", i+1),
				QuestionText: "...",
				Options:      labels,
				Explanation:  "...",
				Hint:         "",
				Difficulty:   difficulty,
			}
			switch bp.OptionType {
			case blueprint.HeadingMatch:
				q.QuestionText = fmt.Sprintf("Text %d", i+1)
			case blueprint.ABCGapFill:
				q.QuestionText = fmt.Sprintf("(%d) a) ... b) ... c) ...", i+1)
			case blueprint.FreeMultipleChoice:
				q.Options = []string{"...", "...", "..."}
			}
			if labels != nil {
				q.CorrectAnswer = labels[i%len(labels)]
			} else {
				q.CorrectAnswer = "..."
			}
			ex.Questions = append(ex.Questions, q)
		}
	}

	out, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(out) + "\n"
}
