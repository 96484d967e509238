package examgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ExtractsFirstJSONValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"title":"x"}`, `{"title":"x"}`},
		{"code fence", "```json\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"prose around", "Hier ist der Inhalt:\n{\"title\":\"x\"}\nViel Erfolg!", `{"title":"x"}`},
		{"bracket in prose", "Teil [1] folgt: {\"title\":\"x\"}", `{"title":"x"}`},
		{"brace in prose", "Format {siehe unten}: [{\"id\":\"q1\"}]", `[{"id":"q1"}]`},
		{"array", `[{"id":"q1"},{"id":"q2"}]`, `[{"id":"q1"},{"id":"q2"}]`},
		{"first of two", `{"a":1} und {"b":2}`, `{"a":1}`},
		{"nested braces in strings", `{"text":"{nicht} [json]"}`, `{"text":"{nicht} [json]"}`},
		{"scalar array alone", `["richtig","falsch"]`, `["richtig","falsch"]`},
		{"object after scalar array", `[1] dann {"title":"x"}`, `{"title":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(p.JSON()))
		})
	}
}

func TestParse_NoJSON(t *testing.T) {
	for _, raw := range []string{"", "Leider kann ich das nicht.", "{unvollständig", "```json\n{\"title\": \n```", `{"questions":[{"options":["a","b"],"correctAnswer":`} {
		_, err := Parse(raw)
		var pe *ParseError
		require.Truef(t, errors.As(err, &pe), "Parse(%q) error = %v, want *ParseError", raw, err)
		assert.Equal(t, raw, pe.Raw)
	}
}

func TestPayload_Aliases(t *testing.T) {
	p, err := Parse(`{
		"titel": "Leseverstehen, Teil 2",
		"passage": "Ein Text.",
		"statements": [
			{"nr": 1, "statement": "Aussage eins", "choices": ["Richtig", "Falsch"], "answer": true, "rationale": "Zeile 3"},
			{"question": "Aussage zwei", "options": {"a": "in", "b": "an"}, "solution": "b"},
			"Aussage drei"
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Leseverstehen, Teil 2", p.title())
	assert.Equal(t, "Ein Text.", p.sourceText())

	qs := p.questions()
	require.Len(t, qs, 3)
	assert.Equal(t, rawQuestion{
		ID: "1", Text: "Aussage eins", Options: []string{"Richtig", "Falsch"}, HasOptions: true,
		Answer: "true", Explanation: "Zeile 3",
	}, qs[0])
	assert.Equal(t, []string{"in", "an"}, qs[1].Options)
	assert.Equal(t, "b", qs[1].Answer)
	assert.Equal(t, "Aussage drei", qs[2].Text)
	assert.False(t, qs[2].HasOptions)
}

func TestPayload_TopLevelArrayIsQuestionList(t *testing.T) {
	p, err := Parse(`[{"questionText":"a"},{"questionText":"b"}]`)
	require.NoError(t, err)
	assert.Len(t, p.questions(), 2)
	assert.Empty(t, p.title())
}

func TestPayload_ExamContentEnvelope(t *testing.T) {
	p, err := Parse(`{"title":"Prüfung","parts":[{"title":"Hörverstehen, Teil 2","questions":[{"questionText":"x"}]}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Hörverstehen, Teil 2", p.title())
	assert.Len(t, p.questions(), 1)
}

func TestPayload_SourceTextArrayJoined(t *testing.T) {
	p, err := Parse(`{"texts":[{"text":"Erster Text."},"Zweiter Text."]}`)
	require.NoError(t, err)
	assert.Equal(t, "Erster Text.\n\nZweiter Text.", p.sourceText())
}

func TestPayload_Candidates(t *testing.T) {
	p, err := Parse(`{"headings":{"a":"Neue Buslinie","b":"Streik im Hafen"}}`)
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{"a", "Neue Buslinie"}, {"b", "Streik im Hafen"}}, p.candidates())

	p, err = Parse(`{"anzeigen":[{"letter":"A","content":"Tanzkurs"},"Fahrradverleih"]}`)
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{"A", "Tanzkurs"}, {"", "Fahrradverleih"}}, p.candidates())
}
