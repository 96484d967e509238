package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookup(t *testing.T) {
	r := Default()

	bp, ok := r.Lookup(SectionReading, 2)
	require.True(t, ok)
	assert.Equal(t, TrueFalseNotStated, bp.OptionType)
	assert.Equal(t, 10, bp.QuestionCount)
	assert.Equal(t, []string{"richtig", "falsch", "steht nicht im Text"}, bp.CanonicalLabels())
	assert.Equal(t, 25.0, bp.MaxPoints)
}

func TestDefault_UnknownPair(t *testing.T) {
	r := Default()

	_, ok := r.Lookup(SectionReading, 4)
	assert.False(t, ok)
	_, ok = r.Lookup(Section("unknown-section"), 1)
	assert.False(t, ok)
}

func TestDefault_Shape(t *testing.T) {
	r := Default()

	counts := map[Section]int{}
	for _, bp := range r.All() {
		counts[bp.Section]++
	}
	assert.Equal(t, map[Section]int{
		SectionReading:   3,
		SectionLanguage:  2,
		SectionListening: 3,
		SectionWriting:   1,
		SectionSpeaking:  3,
	}, counts)

	var types []OptionType
	for _, bp := range r.Parts(SectionReading) {
		types = append(types, bp.OptionType)
	}
	assert.Equal(t, []OptionType{HeadingMatch, TrueFalseNotStated, LetterMatch}, types)
}

func TestDefault_Consistency(t *testing.T) {
	for _, bp := range Default().All() {
		t.Run(bp.Key(), func(t *testing.T) {
			if bp.OptionType.HasFixedLabels() {
				assert.NotEmpty(t, bp.CanonicalLabels())
			} else {
				assert.Nil(t, bp.CanonicalLabels())
			}
			if !bp.OptionType.HasQuestions() {
				assert.Zero(t, bp.QuestionCount)
			}
			assert.NotEmpty(t, bp.Title)
			assert.NotEmpty(t, bp.Instructions)
			assert.Positive(t, bp.MaxPoints)
		})
	}
}

func TestCanonicalLabels_ReturnsCopy(t *testing.T) {
	bp, _ := Default().Lookup(SectionReading, 3)
	labels := bp.CanonicalLabels()
	labels[0] = "Z"

	again, _ := Default().Lookup(SectionReading, 3)
	assert.Equal(t, "A", again.CanonicalLabels()[0])
	assert.Len(t, again.CanonicalLabels(), 12)
}

func TestNew_RejectsInconsistentBlueprints(t *testing.T) {
	tests := []struct {
		name string
		bp   Blueprint
	}{
		{"max points mismatch", Blueprint{Section: SectionReading, Part: 1, OptionType: FreeMultipleChoice, QuestionCount: 5, PointsPerQuestion: 5, MaxPoints: 20}},
		{"fixed labels missing", Blueprint{Section: SectionReading, Part: 1, OptionType: TrueFalse, QuestionCount: 1, PointsPerQuestion: 1, MaxPoints: 1}},
		{"free text with questions", Blueprint{Section: SectionWriting, Part: 1, OptionType: FreeText, QuestionCount: 2}},
		{"part zero", Blueprint{Section: SectionWriting, Part: 0, OptionType: FreeText}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, tt.bp)
			assert.Error(t, err)
		})
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	bp := Blueprint{Section: SectionWriting, Part: 1, OptionType: FreeText, MaxPoints: 45}
	_, err := New(nil, bp, bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestParseSection(t *testing.T) {
	for in, want := range map[string]Section{
		"lesen":    SectionReading,
		" LESEN ":  SectionReading,
		"hören":    SectionListening,
		"hoeren":   SectionListening,
		"sprechen": SectionSpeaking,
	} {
		got, err := ParseSection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSection("mathe")
	assert.Error(t, err)
}

func TestTimeLimit(t *testing.T) {
	r := Default()
	assert.Equal(t, 90, r.TimeLimit(SectionReading))
	assert.Equal(t, 15, r.TimeLimit(SectionSpeaking))
	assert.Zero(t, r.TimeLimit(Section("nope")))
}
