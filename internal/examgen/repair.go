package examgen

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/abhisek/examiz/internal/blueprint"
)

// ExplanationPlaceholder replaces missing explanations.
const ExplanationPlaceholder = "Für diese Aufgabe liegt keine Erklärung vor."

// RepairKind names one kind of correction applied to model output.
type RepairKind string

const (
	RepairOptionsOverwritten     RepairKind = "options_overwritten"
	RepairAnswerNormalized       RepairKind = "answer_normalized"
	RepairAnswerFallback         RepairKind = "answer_fallback"
	RepairAnswerCaseMatched      RepairKind = "answer_case_matched"
	RepairTruncated              RepairKind = "truncated"
	RepairExplanationPlaceholder RepairKind = "explanation_placeholder"
	RepairScoringOverwritten     RepairKind = "scoring_overwritten"
	RepairStructureOverwritten   RepairKind = "structure_overwritten"
	RepairQuestionsDropped       RepairKind = "questions_dropped"
	RepairIDAssigned             RepairKind = "id_assigned"
)

// Correction records one change Repair made. Question is the zero-based
// question index, or -1 for part-level fields.
type Correction struct {
	Kind     RepairKind `json:"kind"`
	Question int        `json:"question"`
	Before   string     `json:"before"`
	After    string     `json:"after"`
}

// RepairReport lists every correction applied to one part. A non-empty
// report means the model drifted from the blueprint.
type RepairReport struct {
	Corrections []Correction `json:"corrections,omitempty"`

	// Missing counts questions the model failed to produce. They are not
	// padded.
	Missing int `json:"missing,omitempty"`
}

// Applied reports whether any correction was made.
func (r RepairReport) Applied() bool {
	return len(r.Corrections) > 0
}

// Counts returns the number of corrections per kind.
func (r RepairReport) Counts() map[RepairKind]int {
	out := make(map[RepairKind]int)
	for _, c := range r.Corrections {
		out[c.Kind]++
	}
	return out
}

func (r *RepairReport) add(kind RepairKind, question int, before, after string) {
	r.Corrections = append(r.Corrections, Correction{Kind: kind, Question: question, Before: before, After: after})
}

// optionStrategy repairs the answer options of one question for a
// particular option type.
type optionStrategy interface {
	repairOptions(q *GeneratedQuestion, raw rawQuestion, idx int, rep *RepairReport)
}

// strategyFor picks the option strategy for a blueprint.
func strategyFor(bp blueprint.Blueprint) optionStrategy {
	switch {
	case bp.OptionType.HasFixedLabels():
		return fixedLabels{
			labels:        bp.CanonicalLabels(),
			heuristic:     heuristicFor(bp.OptionType),
			renderFillers: bp.OptionType == blueprint.ABCGapFill,
		}
	case bp.OptionType == blueprint.FreeMultipleChoice:
		return freeChoice{}
	}
	return nil
}

// fixedLabels discards the model's options in favour of the canonical
// labels and coerces the answer into them. With renderFillers, option words
// that are not labels are moved into the question text first.
type fixedLabels struct {
	labels        []string
	heuristic     labelHeuristic
	renderFillers bool
}

func (s fixedLabels) repairOptions(q *GeneratedQuestion, raw rawQuestion, idx int, rep *RepairReport) {
	if s.renderFillers {
		if line := fillerLine(raw.Options, s.labels); line != "" && !mentionsAll(q.QuestionText, raw.Options) {
			before := q.QuestionText
			q.QuestionText = strings.TrimSpace(q.QuestionText + "  " + line)
			rep.add(RepairStructureOverwritten, idx, before, q.QuestionText)
		}
	}
	if !slices.Equal(raw.Options, s.labels) {
		rep.add(RepairOptionsOverwritten, idx, strings.Join(raw.Options, " | "), strings.Join(s.labels, " | "))
	}
	q.Options = slices.Clone(s.labels)

	answer, how := resolveLabel(raw.Answer, s.labels, raw.Options, s.heuristic)
	switch how {
	case resolvedCase:
		rep.add(RepairAnswerCaseMatched, idx, raw.Answer, answer)
	case resolvedHeuristic:
		rep.add(RepairAnswerNormalized, idx, raw.Answer, answer)
	case resolvedFallback:
		rep.add(RepairAnswerFallback, idx, raw.Answer, answer)
	}
	q.CorrectAnswer = answer
}

// fillerLine renders gap fillers as "a) deshalb  b) obwohl  c) damit". It
// returns "" when the options are just the labels themselves.
func fillerLine(options, labels []string) string {
	if len(options) == 0 || isLabelList(options, labels) {
		return ""
	}
	var parts []string
	for i, opt := range options {
		if i >= len(labels) {
			break
		}
		opt = strings.TrimSpace(opt)
		if rest, ok := cutLabelPrefix(opt, labels[i]); ok {
			opt = rest
		}
		if opt != "" {
			parts = append(parts, labels[i]+") "+opt)
		}
	}
	return strings.Join(parts, "  ")
}

// isLabelList reports whether every option is a label, allowing "B" or "b)".
func isLabelList(options, labels []string) bool {
	for _, opt := range options {
		opt = strings.TrimSuffix(strings.TrimSpace(opt), ")")
		if !slices.ContainsFunc(labels, func(l string) bool { return strings.EqualFold(opt, l) }) {
			return false
		}
	}
	return true
}

// cutLabelPrefix strips a leading "a)" or "a." from opt.
func cutLabelPrefix(opt, label string) (string, bool) {
	n := len(label)
	if len(opt) <= n || !strings.EqualFold(opt[:n], label) || (opt[n] != ')' && opt[n] != '.') {
		return "", false
	}
	return strings.TrimSpace(opt[n+1:]), true
}

func mentionsAll(text string, options []string) bool {
	lower := strings.ToLower(text)
	for _, opt := range options {
		if !strings.Contains(lower, strings.ToLower(strings.TrimSpace(opt))) {
			return false
		}
	}
	return true
}

// freeChoice keeps model-authored options. An answer that matches no
// option even ignoring case is left as generated.
type freeChoice struct{}

func (freeChoice) repairOptions(q *GeneratedQuestion, raw rawQuestion, idx int, rep *RepairReport) {
	if raw.HasOptions {
		q.Options = slices.Clone(raw.Options)
	}
	q.CorrectAnswer = raw.Answer
	if slices.Contains(q.Options, raw.Answer) {
		return
	}
	trimmed := strings.TrimSpace(raw.Answer)
	for _, opt := range q.Options {
		if strings.EqualFold(strings.TrimSpace(opt), trimmed) {
			rep.add(RepairAnswerCaseMatched, idx, raw.Answer, opt)
			q.CorrectAnswer = opt
			return
		}
	}
}

// Repair turns a parsed payload into content that satisfies bp. It never
// fails: whatever the payload holds, the result has the blueprint's
// scoring, at most bp.QuestionCount questions, canonical options for
// fixed-label types and an explanation on every question. difficulty fills
// questions that carry none.
//
// Repair is idempotent: repairing PayloadFromPart of its own output
// yields the same content and an empty report.
func Repair(p *Payload, bp blueprint.Blueprint, difficulty string) (ExamPartContent, RepairReport) {
	var rep RepairReport
	if p == nil {
		p = newPayload("{}")
	}

	part := ExamPartContent{
		Section:           bp.Section,
		PartNumber:        bp.Part,
		Title:             bp.Title,
		Instructions:      bp.Instructions,
		SourceText:        p.sourceText(),
		MaxPoints:         bp.MaxPoints,
		PointsPerQuestion: bp.PointsPerQuestion,
		Questions:         []GeneratedQuestion{},
	}

	overwriteText(&rep, "title", p.title(), bp.Title)
	overwriteText(&rep, "instructions", p.instructions(), bp.Instructions)
	overwriteNumber(&rep, "maxPoints", p, aliasMaxPoints, bp.MaxPoints)
	overwriteNumber(&rep, "pointsPerQuestion", p, aliasPointsPerQ, bp.PointsPerQuestion)
	overwriteNumber(&rep, "partNumber", p, aliasPartNumber, float64(bp.Part))

	raws := p.questions()

	if !bp.OptionType.HasQuestions() {
		part.Task = p.task()
		if part.Task == "" {
			part.Task = bp.Instructions
		}
		if len(raws) > 0 {
			rep.add(RepairQuestionsDropped, -1, fmt.Sprint(len(raws)), "0")
		}
		return part, rep
	}

	if bp.OptionType == blueprint.HeadingMatch || bp.OptionType == blueprint.LetterMatch {
		part.Candidates = repairCandidates(p.candidates(), bp.CanonicalLabels(), &rep)
	}

	if len(raws) > bp.QuestionCount {
		rep.add(RepairTruncated, -1, fmt.Sprint(len(raws)), fmt.Sprint(bp.QuestionCount))
		raws = raws[:bp.QuestionCount]
	}
	rep.Missing = bp.QuestionCount - len(raws)

	strategy := strategyFor(bp)
	// Answers are keyed by id, so ids must be unique within the part.
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		q := GeneratedQuestion{
			ID:           raw.ID,
			QuestionText: raw.Text,
			Explanation:  raw.Explanation,
			Hint:         raw.Hint,
			Difficulty:   raw.Difficulty,
		}
		if q.ID == "" || seen[q.ID] {
			q.ID = freeID(seen, i+1)
			rep.add(RepairIDAssigned, i, raw.ID, q.ID)
		}
		seen[q.ID] = true
		if q.Explanation == "" {
			q.Explanation = ExplanationPlaceholder
			rep.add(RepairExplanationPlaceholder, i, "", q.Explanation)
		}
		if q.Difficulty == "" {
			q.Difficulty = difficulty
		}
		strategy.repairOptions(&q, raw, i, &rep)
		part.Questions = append(part.Questions, q)
	}

	return part, rep
}

// freeID returns the first of qN, qN+1, ... not yet in seen.
func freeID(seen map[string]bool, n int) string {
	for {
		id := fmt.Sprintf("q%d", n)
		if !seen[id] {
			return id
		}
		n++
	}
}

// repairCandidates maps headings or advertisements onto the canonical
// labels. Labels matching ignoring case are kept; unknown or duplicate ones
// get the next unused label. Candidates beyond the label set are dropped.
func repairCandidates(cands []Candidate, labels []string, rep *RepairReport) []Candidate {
	if len(cands) == 0 {
		return nil
	}
	if len(cands) > len(labels) {
		rep.add(RepairStructureOverwritten, -1, fmt.Sprintf("candidates: %d", len(cands)), fmt.Sprint(len(labels)))
		cands = cands[:len(labels)]
	}

	used := make(map[string]bool, len(labels))
	assigned := make([]string, len(cands))
	for i, c := range cands {
		for _, l := range labels {
			if !used[l] && strings.EqualFold(strings.TrimSpace(c.Label), l) {
				assigned[i] = l
				used[l] = true
				break
			}
		}
	}
	next := 0
	for i := range cands {
		if assigned[i] != "" {
			continue
		}
		for used[labels[next]] {
			next++
		}
		assigned[i] = labels[next]
		used[labels[next]] = true
	}

	out := make([]Candidate, len(cands))
	for i, c := range cands {
		if c.Label != assigned[i] {
			rep.add(RepairStructureOverwritten, -1, "candidate label: "+c.Label, assigned[i])
		}
		out[i] = Candidate{Label: assigned[i], Text: c.Text}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return slices.Index(labels, a.Label) - slices.Index(labels, b.Label)
	})
	return out
}

func overwriteText(rep *RepairReport, field, got, want string) {
	if got != "" && got != want {
		rep.add(RepairStructureOverwritten, -1, field+": "+got, want)
	}
}

func overwriteNumber(rep *RepairReport, field string, p *Payload, keys []string, want float64) {
	got, ok := p.number(keys)
	if ok && math.Abs(got-want) > 1e-9 {
		rep.add(RepairScoringOverwritten, -1, fmt.Sprintf("%s: %g", field, got), fmt.Sprintf("%g", want))
	}
}
