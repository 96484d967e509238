package examgen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/store"
)

// conformingReply renders a model reply that already satisfies bp, with n
// questions.
func conformingReply(bp blueprint.Blueprint, n int) string {
	reply := map[string]any{
		"title":        bp.Title,
		"instructions": bp.Instructions,
	}
	if !bp.OptionType.HasQuestions() {
		reply["task"] = "Sie möchten an einem Sprachkurs teilnehmen. Schreiben Sie an die Sprachschule."
		if bp.OptionType == blueprint.Speaking {
			reply["sourceText"] = ""
		}
		return mustJSON(reply)
	}

	reply["sourceText"] = "Die Stadtbibliothek verlängert ab März ihre Öffnungszeiten."
	labels := bp.CanonicalLabels()
	if bp.OptionType == blueprint.HeadingMatch || bp.OptionType == blueprint.LetterMatch {
		var cands []map[string]any
		for _, l := range labels {
			cands = append(cands, map[string]any{"label": l, "text": "Kandidat " + l})
		}
		reply["candidates"] = cands
	}

	var qs []map[string]any
	for i := range n {
		q := map[string]any{
			"id":           fmt.Sprintf("q%d", i+1),
			"questionText": fmt.Sprintf("Aussage %d", i+1),
			"explanation":  "Siehe Absatz 2.",
			"hint":         "",
			"difficulty":   "B2",
		}
		if labels != nil {
			q["options"] = labels
			q["correctAnswer"] = labels[i%len(labels)]
		} else {
			opts := []string{"am Montag", "am Dienstag", "am Mittwoch"}
			q["options"] = opts
			q["correctAnswer"] = opts[i%len(opts)]
		}
		qs = append(qs, q)
	}
	reply["questions"] = qs
	return mustJSON(reply)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustLookup(section blueprint.Section, part int) blueprint.Blueprint {
	bp, ok := blueprint.Default().Lookup(section, part)
	if !ok {
		panic(fmt.Sprintf("no blueprint %s/%d", section, part))
	}
	return bp
}

// schemaKeyed answers each request by its schema name so concurrent
// calls get deterministic replies.
func schemaKeyed(replies map[string]llm.MockResponse) *llm.MockProvider {
	return llm.NewMockProviderFunc(func(req llm.Request) llm.MockResponse {
		name := ""
		if req.Schema != nil {
			name = req.Schema.Name
		}
		if resp, ok := replies[name]; ok {
			return resp
		}
		return llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: fmt.Errorf("no reply for %q", name)}}
	})
}

// blockingProvider waits for the context to end.
type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

// repairRecorder captures repair events.
type repairRecorder struct {
	store.EventRepo

	mu     sync.Mutex
	events []store.RepairEventData
}

func (r *repairRecorder) AppendRepairs(_ context.Context, events []store.RepairEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}
