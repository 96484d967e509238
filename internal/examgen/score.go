package examgen

import (
	"strconv"
	"strings"

	"github.com/abhisek/examiz/internal/blueprint"
)

// CheckAnswer reports whether a learner's answer to q is correct.
//
// Fixed-label parts accept the same spellings the repair step accepts for
// model answers ("Richtig.", "b)", "Anzeige C") but never the fallback
// label, so an unreadable answer is wrong rather than defaulting to the
// first option. Free multiple choice accepts the option text or its
// 1-based position. Writing and speaking parts have no objective answer
// and always return false.
func CheckAnswer(bp blueprint.Blueprint, q GeneratedQuestion, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" || !bp.OptionType.HasQuestions() {
		return false
	}

	if labels := bp.CanonicalLabels(); labels != nil {
		got, how := resolveLabel(answer, labels, nil, heuristicFor(bp.OptionType))
		return how != resolvedFallback && got == q.CorrectAnswer
	}

	if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(q.Options) {
		answer = q.Options[idx-1]
	}
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
}

// Score is the result of marking one exam part.
type Score struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Points   float64 `json:"points"`
	Answered int     `json:"answered"`
}

// ScorePart marks a part's objective questions. answers is keyed by
// question id; unanswered questions score zero.
func ScorePart(bp blueprint.Blueprint, part ExamPartContent, answers map[string]string) Score {
	s := Score{Total: len(part.Questions)}
	for _, q := range part.Questions {
		a, ok := answers[q.ID]
		if !ok || strings.TrimSpace(a) == "" {
			continue
		}
		s.Answered++
		if CheckAnswer(bp, q, a) {
			s.Correct++
		}
	}
	s.Points = float64(s.Correct) * bp.PointsPerQuestion
	return s
}
