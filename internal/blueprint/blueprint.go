package blueprint

import (
	"fmt"
	"strings"
)

// Section identifies one section of the exam.
type Section string

const (
	SectionReading   Section = "lesen"
	SectionLanguage  Section = "sprachbausteine"
	SectionListening Section = "hoeren"
	SectionWriting   Section = "schreiben"
	SectionSpeaking  Section = "sprechen"
)

// sectionOrder is the order sections appear in a full exam.
var sectionOrder = []Section{
	SectionReading,
	SectionLanguage,
	SectionListening,
	SectionWriting,
	SectionSpeaking,
}

// ParseSection maps a user-supplied section name to a Section.
// Matching is case-insensitive and accepts "hören" for the listening section.
func ParseSection(s string) (Section, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "hören" {
		v = string(SectionListening)
	}
	for _, sec := range sectionOrder {
		if string(sec) == v {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// DisplayName returns the German section title shown to learners.
func (s Section) DisplayName() string {
	switch s {
	case SectionReading:
		return "Leseverstehen"
	case SectionLanguage:
		return "Sprachbausteine"
	case SectionListening:
		return "Hörverstehen"
	case SectionWriting:
		return "Schriftlicher Ausdruck"
	case SectionSpeaking:
		return "Mündlicher Ausdruck"
	}
	return string(s)
}

// OptionType is the closed set of answer-option shapes a part can use.
type OptionType string

const (
	// HeadingMatch: 5 passages, 6 candidate headings, one unused.
	HeadingMatch OptionType = "heading_match"

	// TrueFalseNotStated: richtig / falsch / steht nicht im Text.
	TrueFalseNotStated OptionType = "true_false_not_stated"

	// TrueFalse: richtig / falsch.
	TrueFalse OptionType = "true_false"

	// LetterMatch: scenarios matched to items labeled A–L.
	LetterMatch OptionType = "letter_match"

	// ABCGapFill: numbered gaps with three candidate fillers each.
	ABCGapFill OptionType = "abc_gap_fill"

	// FreeMultipleChoice: option text authored by the model.
	FreeMultipleChoice OptionType = "free_multiple_choice"

	// FreeText: extended writing task, no options.
	FreeText OptionType = "free_text"

	// Speaking: structured speaking task prompt, no options.
	Speaking OptionType = "speaking"
)

// HasFixedLabels reports whether questions of this type must use the
// blueprint's canonical label set as their options.
func (t OptionType) HasFixedLabels() bool {
	switch t {
	case HeadingMatch, TrueFalseNotStated, TrueFalse, LetterMatch, ABCGapFill:
		return true
	}
	return false
}

// HasQuestions reports whether parts of this type contain questions at all.
func (t OptionType) HasQuestions() bool {
	return t != FreeText && t != Speaking
}

// Blueprint is the declarative specification of one exam part.
type Blueprint struct {
	Section           Section
	Part              int
	Title             string
	QuestionCount     int
	OptionType        OptionType
	PointsPerQuestion float64
	MaxPoints         float64
	Instructions      string

	// canonicalLabels is nil for types without a fixed label set.
	canonicalLabels []string
}

// CanonicalLabels returns a copy of the fixed answer vocabulary, or nil.
func (b Blueprint) CanonicalLabels() []string {
	if b.canonicalLabels == nil {
		return nil
	}
	out := make([]string, len(b.canonicalLabels))
	copy(out, b.canonicalLabels)
	return out
}

// WithLabels returns a copy of b using the given canonical label set.
func (b Blueprint) WithLabels(labels ...string) Blueprint {
	b.canonicalLabels = append([]string(nil), labels...)
	return b
}

// Key returns "section/part", e.g. "lesen/2".
func (b Blueprint) Key() string {
	return fmt.Sprintf("%s/%d", b.Section, b.Part)
}
