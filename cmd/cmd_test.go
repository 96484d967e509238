package cmd

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/examgen"
	"github.com/abhisek/examiz/internal/store"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("EXAMIZ_CONFIG", t.TempDir()+"/missing.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	old := version
	version = "v1.2.0"
	t.Cleanup(func() { version = old })

	want := fmt.Sprintf("examiz v1.2.0 (%s %s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	assert.Equal(t, want, execute(t, "version"))
}

func TestBuildVersionFallback(t *testing.T) {
	old := version
	version = ""
	t.Cleanup(func() { version = old })

	assert.NotEmpty(t, buildVersion())
}

func TestBlueprintsCommand(t *testing.T) {
	out := execute(t, "blueprints", "--section", "lesen")
	assert.Contains(t, out, "Leseverstehen, Teil 2")
	assert.Contains(t, out, "true_false_not_stated")
	assert.Contains(t, out, "A B C D E F G H I J K L")
	assert.Contains(t, out, "3 parts")
	assert.NotContains(t, out, "hoeren")
}

func TestRenderExam(t *testing.T) {
	content := &examgen.ExamContent{
		RequestID:        "req-1",
		Title:            "Leseverstehen, Teil 2",
		TimeLimitMinutes: 90,
		MaxPoints:        25,
		Parts: []examgen.ExamPartContent{{
			Section:      blueprint.SectionReading,
			PartNumber:   2,
			Title:        "Leseverstehen, Teil 2",
			Instructions: "Lesen Sie den Text.",
			SourceText:   "Der Verein feiert sein Jubiläum.",
			MaxPoints:    25,
			Questions: []examgen.GeneratedQuestion{{
				ID:            "q1",
				QuestionText:  "Der Verein ist neu.",
				Options:       []string{"richtig", "falsch", "steht nicht im Text"},
				CorrectAnswer: "falsch",
				Explanation:   "Er feiert ein Jubiläum.",
			}},
		}},
	}

	var buf bytes.Buffer
	renderExam(&buf, content)
	out := buf.String()

	assert.Contains(t, out, "Zeit: 90 Minuten    Punkte: 25")
	assert.Contains(t, out, "1. Der Verein ist neu.\n   [richtig / falsch / steht nicht im Text]")
	assert.Contains(t, out, "Lösungen\n1. falsch  Er feiert ein Jubiläum.")
	assert.Less(t, strings.Index(out, "Der Verein feiert"), strings.Index(out, "1. Der Verein ist neu."))
}

func TestPrintRepairs(t *testing.T) {
	var buf bytes.Buffer
	printRepairs(&buf, map[string]examgen.RepairReport{
		"lesen/1": {},
		"lesen/2": {
			Corrections: []examgen.Correction{
				{Kind: examgen.RepairAnswerNormalized, Question: 0, Before: "Richtig.", After: "richtig"},
				{Kind: examgen.RepairAnswerNormalized, Question: 3, Before: "FALSCH", After: "falsch"},
				{Kind: examgen.RepairTruncated, Question: -1, Before: "12", After: "10"},
			},
			Missing: 0,
		},
		"hoeren/1": {Missing: 2},
	})

	assert.Equal(t,
		"repaired hoeren/1: 2 questions missing\n"+
			"repaired lesen/2: answer_normalized×2, truncated×1\n",
		buf.String())
}

func TestPoints(t *testing.T) {
	assert.Equal(t, "25", points(25))
	assert.Equal(t, "2.5", points(2.5))
	assert.Equal(t, "1.5", points(1.5))
	assert.Equal(t, "0", points(0))
}

func TestPrintLLMEvents(t *testing.T) {
	var buf bytes.Buffer
	printLLMEvents(&buf, nil)
	assert.Equal(t, "No model calls recorded.\n", buf.String())

	buf.Reset()
	printLLMEvents(&buf, []store.LLMEvent{{
		ID:        3,
		Timestamp: time.Now(),
		LLMRequestEventData: store.LLMRequestEventData{
			RequestID:   "0b6f2c1e-9d1a-4c55-8b0e-3f0c2f7b9d10",
			Model:       "claude-haiku-4-5",
			Purpose:     examgen.PurposeExamPart,
			InputTokens: 812,
			LatencyMs:   2300,
		},
	}})
	out := buf.String()
	assert.Contains(t, out, "0b6f2c1e ")
	assert.NotContains(t, out, "0b6f2c1e-")
	assert.Contains(t, out, "exam-part")
	assert.True(t, strings.HasSuffix(out, "failed\n"))
}

func TestPrintLLMEvent(t *testing.T) {
	var buf bytes.Buffer
	printLLMEvent(&buf, &store.LLMEvent{
		ID: 7,
		LLMRequestEventData: store.LLMRequestEventData{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			RequestBody: "[user]\nErstelle Leseverstehen, Teil 1.",
			Success:     true,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Provider: openai\n")
	assert.NotContains(t, out, "Request:")
	assert.NotContains(t, out, "Error:")
	assert.Contains(t, out, "Erstelle Leseverstehen, Teil 1.")
	assert.Contains(t, out, "(not captured)")
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf,
		[]store.PurposeUsage{{Purpose: "exam-part", Calls: 4, Failures: 1, InputTokens: 2000, OutputTokens: 6000}},
		[]store.ModelUsage{
			{Model: "gpt-4o-mini", Calls: 3, InputTokens: 1500, OutputTokens: 4500},
			{Model: "local-llama", Calls: 1, InputTokens: 500, OutputTokens: 1500},
		})
	out := buf.String()
	assert.Contains(t, out, "total (partial)")
	assert.Contains(t, out, "No pricing for: local-llama")
}

func TestPrintRepairStats(t *testing.T) {
	var buf bytes.Buffer
	printRepairStats(&buf, []store.RepairStat{
		{Section: "lesen", Part: 2, Kind: "answer_normalized", Requests: 3, Corrections: 5},
		{Section: "hoeren", Part: 1, Kind: "truncated", Requests: 1, Corrections: 1},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"total", "4", "6"}, strings.Fields(lines[4]))
}
