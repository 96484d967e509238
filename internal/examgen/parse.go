package examgen

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Field aliases accepted from model output, primary name first. The
// primary names match the JSON tags of ExamPartContent so repaired content
// parses back to itself.
var (
	aliasQuestions    = []string{"questions", "items", "statements", "aussagen", "gaps", "luecken", "tasks"}
	aliasTitle        = []string{"title", "titel"}
	aliasInstructions = []string{"instructions", "instruction", "anweisung", "anweisungen"}
	aliasSourceText   = []string{"sourceText", "source_text", "text", "passage", "passages", "transcript", "texts"}
	aliasTask         = []string{"task", "taskText", "task_text", "aufgabe", "prompt"}
	aliasCandidates   = []string{"candidates", "headings", "ueberschriften", "ads", "anzeigen"}
	aliasMaxPoints    = []string{"maxPoints", "max_points"}
	aliasPointsPerQ   = []string{"pointsPerQuestion", "points_per_question"}
	aliasPartNumber   = []string{"partNumber", "part_number", "part"}

	aliasID          = []string{"id", "number", "nr"}
	aliasText        = []string{"questionText", "question_text", "question", "statement", "text", "situation", "gap", "prompt"}
	aliasOptions     = []string{"options", "choices", "answers", "alternatives"}
	aliasAnswer      = []string{"correctAnswer", "correct_answer", "answer", "solution", "loesung", "correct"}
	aliasExplanation = []string{"explanation", "erklaerung", "rationale", "reason"}
	aliasHint        = []string{"hint", "tipp"}
	aliasDifficulty  = []string{"difficulty", "level"}
)

// Payload is the loosely structured intermediate form of a model reply.
// Nothing about its shape is guaranteed; Repair turns it into content.
type Payload struct {
	raw  string
	root gjson.Result
}

// Parse locates the first syntactically valid JSON object or array in raw
// model output, skipping prose and code fences around it. Arrays holding
// objects are preferred; an array of scalars is taken only when nothing
// else is found, so "[1]" in prose does not hide the payload after it.
func Parse(raw string) (*Payload, error) {
	var scalars json.RawMessage
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' && raw[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			continue
		}
		if raw[i] == '[' && !holdsObject(v) {
			// Inside a broken object it is an inner list, not the reply.
			if scalars == nil && strings.IndexByte(raw[:i], '{') < 0 {
				scalars = v
			}
			continue
		}
		return newPayload(string(v)), nil
	}
	if scalars != nil {
		return newPayload(string(scalars)), nil
	}
	return nil, &ParseError{Raw: raw}
}

func holdsObject(arr json.RawMessage) bool {
	found := false
	gjson.ParseBytes(arr).ForEach(func(_, v gjson.Result) bool {
		found = v.IsObject()
		return !found
	})
	return found
}

// PayloadFromPart converts already repaired content back into a Payload.
func PayloadFromPart(part ExamPartContent) *Payload {
	b, err := json.Marshal(part)
	if err != nil {
		// ExamPartContent holds only strings, numbers and slices.
		panic(err)
	}
	return newPayload(string(b))
}

func newPayload(js string) *Payload {
	root := gjson.Parse(js)
	// Some models mirror the ExamContent envelope; use its first part.
	if root.IsObject() && !firstOf(root, aliasQuestions).Exists() {
		if parts := root.Get("parts"); parts.IsArray() && len(parts.Array()) > 0 {
			root = parts.Array()[0]
		}
	}
	return &Payload{raw: js, root: root}
}

// JSON returns the extracted JSON text.
func (p *Payload) JSON() []byte {
	return []byte(p.raw)
}

func firstOf(obj gjson.Result, keys []string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func stringOf(obj gjson.Result, keys []string) string {
	v := firstOf(obj, keys)
	if v.IsArray() {
		// Multiple passages are joined into one source text.
		var parts []string
		for _, e := range v.Array() {
			if s := textOf(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n\n")
	}
	return textOf(v)
}

// textOf renders scalars as strings and objects by their text-like field.
func textOf(v gjson.Result) string {
	if v.IsObject() {
		return strings.TrimSpace(stringOf(v, []string{"text", "title", "content", "label"}))
	}
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

func (p *Payload) title() string        { return stringOf(p.root, aliasTitle) }
func (p *Payload) instructions() string { return stringOf(p.root, aliasInstructions) }
func (p *Payload) sourceText() string   { return stringOf(p.root, aliasSourceText) }
func (p *Payload) task() string         { return stringOf(p.root, aliasTask) }

// number returns a numeric field and whether it was present.
func (p *Payload) number(keys []string) (float64, bool) {
	v := firstOf(p.root, keys)
	if !v.Exists() {
		return 0, false
	}
	return v.Float(), true
}

// questions returns the raw question list. A top-level array is the list
// when it holds objects; a bare list of strings carries no questions.
func (p *Payload) questions() []rawQuestion {
	list := p.root
	if !list.IsArray() {
		list = firstOf(p.root, aliasQuestions)
	} else if !holdsObject(json.RawMessage(list.Raw)) {
		return nil
	}
	if !list.IsArray() {
		return nil
	}
	var out []rawQuestion
	for _, q := range list.Array() {
		out = append(out, parseQuestion(q))
	}
	return out
}

func (p *Payload) candidates() []Candidate {
	v := firstOf(p.root, aliasCandidates)
	var out []Candidate
	switch {
	case v.IsArray():
		for _, c := range v.Array() {
			if c.IsObject() {
				out = append(out, Candidate{
					Label: textOf(firstOf(c, []string{"label", "id", "letter"})),
					Text:  textOf(firstOf(c, []string{"text", "heading", "title", "content"})),
				})
				continue
			}
			out = append(out, Candidate{Text: textOf(c)})
		}
	case v.IsObject():
		v.ForEach(func(k, val gjson.Result) bool {
			out = append(out, Candidate{Label: k.String(), Text: textOf(val)})
			return true
		})
	}
	return out
}

// rawQuestion is one question as the model wrote it.
type rawQuestion struct {
	ID          string
	Text        string
	Options     []string
	HasOptions  bool
	Answer      string
	Explanation string
	Hint        string
	Difficulty  string
}

func parseQuestion(q gjson.Result) rawQuestion {
	if !q.IsObject() {
		return rawQuestion{Text: textOf(q)}
	}
	rq := rawQuestion{
		ID:          textOf(firstOf(q, aliasID)),
		Text:        stringOf(q, aliasText),
		Answer:      textOf(firstOf(q, aliasAnswer)),
		Explanation: textOf(firstOf(q, aliasExplanation)),
		Hint:        textOf(firstOf(q, aliasHint)),
		Difficulty:  textOf(firstOf(q, aliasDifficulty)),
	}
	opts := firstOf(q, aliasOptions)
	switch {
	case opts.IsArray():
		rq.HasOptions = true
		for _, o := range opts.Array() {
			rq.Options = append(rq.Options, textOf(o))
		}
	case opts.IsObject():
		// {"a": "in", "b": "an"} keeps the model's key order.
		rq.HasOptions = true
		opts.ForEach(func(_, val gjson.Result) bool {
			rq.Options = append(rq.Options, textOf(val))
			return true
		})
	}
	return rq
}
