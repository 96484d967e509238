package examgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/blueprint"
)

func TestConformance_ConformingReplyPasses(t *testing.T) {
	for _, bp := range blueprint.Default().All() {
		t.Run(bp.Key(), func(t *testing.T) {
			p := mustParse(t, conformingReply(bp, bp.QuestionCount))
			assert.NoError(t, CheckConformance(bp, p))
		})
	}
}

func TestConformance_DetectsDrift(t *testing.T) {
	bp := mustLookup(blueprint.SectionReading, 2)

	tooMany := mustParse(t, conformingReply(bp, bp.QuestionCount+2))
	assert.Error(t, CheckConformance(bp, tooMany))

	badLabel := mustParse(t, mustSet(t, conformingReply(bp, bp.QuestionCount), "questions.0.correctAnswer", "Richtig"))
	assert.Error(t, CheckConformance(bp, badLabel))

	extraField := mustParse(t, mustSet(t, conformingReply(bp, bp.QuestionCount), "maxPoints", 25))
	assert.Error(t, CheckConformance(bp, extraField))
}

func TestConformance_EnvelopeCheckedByFirstPart(t *testing.T) {
	bp := mustLookup(blueprint.SectionListening, 2)
	raw := `{"title":"Prüfung","parts":[` + conformingReply(bp, bp.QuestionCount) + `]}`

	assert.NoError(t, CheckConformance(bp, mustParse(t, raw)))
}

func TestOutputSchema_Shape(t *testing.T) {
	bp := mustLookup(blueprint.SectionReading, 3)
	s := OutputSchema(bp)
	assert.Equal(t, "exam-part-lesen-3", s.Name)

	props := s.Definition["properties"].(map[string]any)
	require.Contains(t, props, "candidates")
	q := props["questions"].(map[string]any)
	assert.NotContains(t, q, "minItems", "provider schema must not carry counts")

	item := q["items"].(map[string]any)["properties"].(map[string]any)
	answer := item["correctAnswer"].(map[string]any)
	assert.Len(t, answer["enum"], 12)
}

func TestOutputSchema_NoQuestionsForWriting(t *testing.T) {
	s := OutputSchema(mustLookup(blueprint.SectionWriting, 1))
	props := s.Definition["properties"].(map[string]any)
	assert.Contains(t, props, "task")
	assert.NotContains(t, props, "questions")
}
