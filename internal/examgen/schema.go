package examgen

import (
	"fmt"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/llm"
)

// OutputSchema derives the structured-output schema for one blueprint.
// Every property is required and no extras are allowed, which strict
// provider modes demand. Counts are stated in descriptions only.
func OutputSchema(bp blueprint.Blueprint) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("exam-part-%s-%d", bp.Section, bp.Part),
		Description: fmt.Sprintf("%s: exam part content", bp.Title),
		Definition:  partDefinition(bp, false),
	}
}

// conformanceSchema is OutputSchema plus exact counts. It is only used to
// measure how far a reply drifted, never sent to a provider.
func conformanceSchema(bp blueprint.Blueprint) *llm.Schema {
	return &llm.Schema{
		Name:       fmt.Sprintf("exam-part-%s-%d-conformance", bp.Section, bp.Part),
		Definition: partDefinition(bp, true),
	}
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func partDefinition(bp blueprint.Blueprint, exactCounts bool) map[string]any {
	props := map[string]any{
		"title":        stringProp("Exactly: " + bp.Title),
		"instructions": stringProp("Exactly: " + bp.Instructions),
	}
	required := []any{"title", "instructions"}

	if !bp.OptionType.HasQuestions() {
		props["task"] = stringProp("The complete task prompt for the candidate")
		required = append(required, "task")
		if bp.OptionType == blueprint.Speaking {
			props["sourceText"] = stringProp("Optional material the candidates talk about, empty if none")
			required = append(required, "sourceText")
		}
		return object(props, required)
	}

	props["sourceText"] = stringProp(sourceTextDescription(bp.OptionType))
	required = append(required, "sourceText")

	if bp.OptionType == blueprint.HeadingMatch || bp.OptionType == blueprint.LetterMatch {
		labels := bp.CanonicalLabels()
		cands := map[string]any{
			"type":        "array",
			"description": fmt.Sprintf("Exactly %d candidates labeled %s", len(labels), labelRange(labels)),
			"items": object(map[string]any{
				"label": map[string]any{"type": "string", "enum": toAny(labels)},
				"text":  stringProp("Candidate text"),
			}, []any{"label", "text"}),
		}
		if exactCounts {
			cands["minItems"] = len(labels)
			cands["maxItems"] = len(labels)
		}
		props["candidates"] = cands
		required = append(required, "candidates")
	}

	answer := stringProp("The correct answer, one of options")
	options := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	if labels := bp.CanonicalLabels(); labels != nil {
		options["items"] = map[string]any{"type": "string", "enum": toAny(labels)}
		options["description"] = "Exactly the labels " + labelRange(labels) + " in this order"
		answer["enum"] = toAny(labels)
		if exactCounts {
			options["minItems"] = len(labels)
			options["maxItems"] = len(labels)
		}
	} else {
		options["description"] = "The answer options, written out in full"
	}

	questions := map[string]any{
		"type":        "array",
		"description": fmt.Sprintf("Exactly %d questions", bp.QuestionCount),
		"items": object(map[string]any{
			"id":            stringProp("q1, q2, ... in order"),
			"questionText":  stringProp("The statement, situation or gap"),
			"options":       options,
			"correctAnswer": answer,
			"explanation":   stringProp("Why the answer is correct, citing the text"),
			"hint":          stringProp("A short hint, may be empty"),
			"difficulty":    stringProp("The requested difficulty"),
		}, []any{"id", "questionText", "options", "correctAnswer", "explanation", "hint", "difficulty"}),
	}
	if exactCounts {
		questions["minItems"] = bp.QuestionCount
		questions["maxItems"] = bp.QuestionCount
	}
	props["questions"] = questions
	required = append(required, "questions")

	return object(props, required)
}

func object(props map[string]any, required []any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func labelRange(labels []string) string {
	if len(labels) > 3 {
		return labels[0] + "–" + labels[len(labels)-1]
	}
	return fmt.Sprintf("%q", labels)
}

func sourceTextDescription(t blueprint.OptionType) string {
	switch t {
	case blueprint.HeadingMatch:
		return "Five short texts numbered 1–5"
	case blueprint.LetterMatch:
		return "Empty; the advertisements go into candidates"
	case blueprint.FreeMultipleChoice, blueprint.TrueFalse:
		return "The full transcript of the recording"
	case blueprint.ABCGapFill:
		return "The complete text with the gaps marked (1), (2), ..."
	}
	return "The complete reading text"
}
