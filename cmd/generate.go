package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/examgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one exam part",
	Long: `Generate practice content for a single exam part.

The model reply is parsed and repaired against the part's blueprint before it
is printed. Repairs are summarised on stderr.`,
	Example: "  examiz generate --section lesen --part 2 --difficulty B2",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectionVal, _ := cmd.Flags().GetString("section")
		part, _ := cmd.Flags().GetInt("part")

		section, err := blueprint.ParseSection(sectionVal)
		if err != nil {
			return err
		}

		p, err := pipelineFor(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		res, err := p.generator.GenerateDetailed(cmd.Context(), examgen.Request{
			Section:    section,
			Part:       part,
			Difficulty: difficultyFor(cmd),
		})
		if err != nil {
			return describe(err)
		}
		return output(cmd, res)
	},
}

var examCmd = &cobra.Command{
	Use:     "exam",
	Short:   "Generate every part of a section",
	Example: "  examiz exam --section hoeren --json > hoeren.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectionVal, _ := cmd.Flags().GetString("section")
		section, err := blueprint.ParseSection(sectionVal)
		if err != nil {
			return err
		}

		p, err := pipelineFor(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		res, err := p.generator.GenerateSection(cmd.Context(), section, difficultyFor(cmd))
		if err != nil {
			return describe(err)
		}
		return output(cmd, res)
	},
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, examCmd} {
		c.Flags().String("section", "", "Section: lesen, sprachbausteine, hoeren, schreiben or sprechen (required)")
		c.Flags().String("difficulty", "", "Target level, e.g. B1 or B2 (default from config)")
		c.Flags().Bool("json", false, "Print ExamContent as JSON")
		c.Flags().Int("retries", 0, "Retry transient provider failures this many times")
		c.Flags().Bool("no-store", false, "Do not record LLM or repair events")
		_ = c.MarkFlagRequired("section")
	}
	generateCmd.Flags().Int("part", 1, "Part number within the section")
}

func pipelineFor(cmd *cobra.Command) (*pipeline, error) {
	noStore, _ := cmd.Flags().GetBool("no-store")
	retries, _ := cmd.Flags().GetInt("retries")
	return newPipeline(cmd.Context(), noStore, retries)
}

func difficultyFor(cmd *cobra.Command) string {
	if d, _ := cmd.Flags().GetString("difficulty"); d != "" {
		return d
	}
	return appConfig.Generation.Difficulty
}

// describe prefixes err with its kind so scripts can tell a quota
// problem from a bad request.
func describe(err error) error {
	return fmt.Errorf("%s: %w", examgen.KindOf(err), err)
}

func output(cmd *cobra.Command, res *examgen.Result) error {
	printRepairs(os.Stderr, res.Repairs)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(res.Content)
	}
	renderExam(cmd.OutOrStdout(), res.Content)
	return nil
}

func printRepairs(w io.Writer, repairs map[string]examgen.RepairReport) {
	keys := make([]string, 0, len(repairs))
	for k := range repairs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		rep := repairs[k]
		if !rep.Applied() && rep.Missing == 0 {
			continue
		}
		counts := rep.Counts()
		var items []string
		for kind, n := range counts {
			items = append(items, fmt.Sprintf("%s×%d", kind, n))
		}
		slices.Sort(items)
		if rep.Missing > 0 {
			items = append(items, fmt.Sprintf("%d questions missing", rep.Missing))
		}
		line := fmt.Sprintf("repaired %s: %s", k, strings.Join(items, ", "))
		fmt.Fprintln(w, line)
	}
}

// renderExam prints content the way a printed practice sheet reads.
func renderExam(w io.Writer, c *examgen.ExamContent) {
	rule := strings.Repeat("─", 72)

	fmt.Fprintln(w, c.Title)
	fmt.Fprintf(w, "Zeit: %d Minuten    Punkte: %s\n", c.TimeLimitMinutes, points(c.MaxPoints))
	if c.RequestID != "" {
		fmt.Fprintf(w, "ID: %s\n", c.RequestID)
	}

	for _, part := range c.Parts {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%s  (%s Punkte)\n", part.Title, points(part.MaxPoints))
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, part.Instructions)

		if part.SourceText != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, part.SourceText)
		}
		if len(part.Candidates) > 0 {
			fmt.Fprintln(w)
			for _, cand := range part.Candidates {
				fmt.Fprintf(w, "  %s) %s\n", cand.Label, cand.Text)
			}
		}
		if part.Task != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, part.Task)
		}

		if len(part.Questions) == 0 {
			continue
		}
		fmt.Fprintln(w)
		for i, q := range part.Questions {
			fmt.Fprintf(w, "%d. %s\n", i+1, q.QuestionText)
			if len(q.Options) > 0 {
				fmt.Fprintf(w, "   [%s]\n", strings.Join(q.Options, " / "))
			}
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Lösungen")
		for i, q := range part.Questions {
			fmt.Fprintf(w, "%d. %s  %s\n", i+1, q.CorrectAnswer, q.Explanation)
		}
	}
}

func points(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
