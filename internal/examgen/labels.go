package examgen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/examiz/internal/blueprint"
)

// resolution says how a raw answer was mapped onto a canonical label.
type resolution int

const (
	resolvedExact resolution = iota
	resolvedCase
	resolvedHeuristic
	resolvedFallback
)

// labelHeuristic maps a free-form answer onto one of labels. rawOptions
// holds the option text the model wrote for the same question.
type labelHeuristic func(answer string, labels, rawOptions []string) (string, bool)

var (
	notStatedKeywords = []string{
		"steht nicht", "nicht im text", "nicht erwähnt", "nicht erwaehnt",
		"not stated", "not given", "not mentioned", "keine angabe",
	}
	// Negative phrases are checked and removed before positive ones so
	// "unwahr" and "stimmt nicht" do not count as "wahr" and "stimmt".
	negativeKeywords = []string{
		"falsch", "false", "unwahr", "unrichtig", "inkorrekt",
		"stimmt nicht", "nicht richtig", "nicht wahr", "nicht korrekt",
	}
	positiveKeywords = []string{"richtig", "true", "wahr", "stimmt", "korrekt"}
)

// resolveLabel coerces answer into labels: exact member, then trimmed
// case-insensitive match, then the type heuristic, then labels[0].
func resolveLabel(answer string, labels, rawOptions []string, h labelHeuristic) (string, resolution) {
	for _, l := range labels {
		if answer == l {
			return l, resolvedExact
		}
	}
	trimmed := strings.TrimSpace(answer)
	for _, l := range labels {
		if strings.EqualFold(trimmed, l) {
			return l, resolvedCase
		}
	}
	if h != nil && trimmed != "" {
		if l, ok := h(trimmed, labels, rawOptions); ok {
			return l, resolvedHeuristic
		}
	}
	return labels[0], resolvedFallback
}

// heuristicFor returns the keyword heuristic for a fixed-label type.
func heuristicFor(t blueprint.OptionType) labelHeuristic {
	switch t {
	case blueprint.TrueFalseNotStated:
		return trueFalseNotStated
	case blueprint.TrueFalse:
		return trueFalse
	case blueprint.LetterMatch:
		return upperLetterToken
	case blueprint.HeadingMatch:
		return anyCaseLetterToken
	case blueprint.ABCGapFill:
		return gapFill
	}
	return nil
}

// trueFalseNotStated expects labels ordered richtig, falsch, not stated.
func trueFalseNotStated(answer string, labels, _ []string) (string, bool) {
	s := strings.ToLower(answer)
	if len(labels) >= 3 && containsAny(s, notStatedKeywords) {
		return labels[2], true
	}
	return trueFalse(answer, labels, nil)
}

// trueFalse expects labels ordered richtig, falsch. An answer that reads
// both ways is left to the fallback.
func trueFalse(answer string, labels, _ []string) (string, bool) {
	if len(labels) < 2 {
		return "", false
	}
	s := strings.ToLower(answer)
	neg := containsAny(s, negativeKeywords)
	for _, k := range negativeKeywords {
		s = strings.ReplaceAll(s, k, " ")
	}
	pos := containsAny(s, positiveKeywords)
	switch {
	case pos && !neg:
		return labels[0], true
	case neg && !pos:
		return labels[1], true
	}
	return "", false
}

// upperLetterToken accepts exactly one distinct upper-case single-letter
// word that is a label, e.g. "Anzeige C passt am besten" resolves to "C".
func upperLetterToken(answer string, labels, _ []string) (string, bool) {
	return letterToken(answer, labels, false)
}

// anyCaseLetterToken is upperLetterToken ignoring case, e.g. "Überschrift B".
func anyCaseLetterToken(answer string, labels, _ []string) (string, bool) {
	return letterToken(answer, labels, true)
}

// gapFill maps an answer equal to the model's own filler word onto the
// label at the same position, then tries a letter token such as "b)".
func gapFill(answer string, labels, rawOptions []string) (string, bool) {
	for i, opt := range rawOptions {
		if i >= len(labels) {
			break
		}
		opt = strings.TrimSpace(opt)
		if rest, ok := cutLabelPrefix(opt, labels[i]); ok {
			opt = rest
		}
		if opt != "" && strings.EqualFold(opt, answer) {
			return labels[i], true
		}
	}
	return letterToken(answer, labels, true)
}

func letterToken(answer string, labels []string, foldCase bool) (string, bool) {
	words := letterWords(answer)

	found := ""
	for i, w := range words {
		if utf8.RuneCountInString(w.text) != 1 || w.abbreviation(words, i) {
			continue
		}
		for _, l := range labels {
			match := w.text == l || (foldCase && strings.EqualFold(w.text, l))
			if !match {
				continue
			}
			if found != "" && found != l {
				return "", false
			}
			found = l
		}
	}
	return found, found != ""
}

// word is a run of letters or digits. dotted is set when a period follows
// it directly.
type word struct {
	text   string
	dotted bool
}

func letterWords(s string) []word {
	var out []word
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, word{text: s[start:i], dotted: r == '.'})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, word{text: s[start:]})
	}
	return out
}

// abbreviation reports whether words[i] belongs to a dotted abbreviation
// such as "z. B." or "d.h.": two adjacent single-letter words, each
// followed by a period. A lone "C." is an answer, not an abbreviation.
func (w word) abbreviation(words []word, i int) bool {
	if !w.dotted {
		return false
	}
	dottedLetter := func(j int) bool {
		return j >= 0 && j < len(words) && words[j].dotted && utf8.RuneCountInString(words[j].text) == 1
	}
	return dottedLetter(i-1) || dottedLetter(i+1)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
