package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
	Long: `Inspect the model calls recorded in the event store.

Every call made by generate, exam and serve is stored with its prompt, raw
reply, token usage and latency, keyed by the generation request id.`,
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.RequestID, _ = cmd.Flags().GetString("request")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return err
		}
		printLLMEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw reply of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ev, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}
		if ev == nil {
			return fmt.Errorf("no call with id %d", id)
		}
		printLLMEvent(cmd.OutOrStdout(), ev)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.EventRepo()
		purposes, err := repo.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return err
		}
		models, err := repo.LLMUsageByModel(cmd.Context())
		if err != nil {
			return err
		}
		printUsage(cmd.OutOrStdout(), purposes, models)
		return nil
	},
}

func printLLMEvents(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No model calls recorded.")
		return
	}

	row := "%-5v  %-19v  %-8v  %-12v  %-28v  %6v  %6v  %7v  %v\n"
	fmt.Fprintf(w, row, "ID", "Time", "Request", "Purpose", "Model", "In", "Out", "Ms", "")
	fmt.Fprintln(w, strings.Repeat("─", 106))
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		fmt.Fprintf(w, row, e.ID, e.Timestamp.Local().Format(timeLayout), clip(e.RequestID, 8),
			e.Purpose, clip(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, status)
	}
}

func printLLMEvent(w io.Writer, e *store.LLMEvent) {
	fields := [][2]string{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"Time", e.Timestamp.Local().Format(timeLayout)},
		{"Request", e.RequestID},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Purpose", e.Purpose},
		{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Error", e.ErrorMessage},
	}
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(w, "%-9s %s\n", f[0]+":", f[1])
		}
	}

	for _, body := range [][2]string{{"PROMPT", e.RequestBody}, {"REPLY", e.ResponseBody}} {
		text := body[1]
		if text == "" {
			text = "(not captured)"
		}
		fmt.Fprintf(w, "\n── %s %s\n%s\n", body[0], strings.Repeat("─", 50), text)
	}
}

func printUsage(w io.Writer, purposes []store.PurposeUsage, models []store.ModelUsage) {
	if len(purposes) == 0 {
		fmt.Fprintln(w, "No model calls recorded.")
		return
	}

	rule := strings.Repeat("─", 72)
	row := "%-16v  %6v  %6v  %10v  %10v  %8v\n"
	fmt.Fprintf(w, row, "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
	fmt.Fprintln(w, rule)
	var calls, in, out int
	for _, u := range purposes {
		fmt.Fprintf(w, row, u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, row, "total", calls, "", in, out, "")

	if len(models) == 0 {
		return
	}

	fmt.Fprintln(w)
	row = "%-32v  %6v  %10v  %10v  %10v\n"
	fmt.Fprintf(w, row, "Model", "Calls", "Input", "Output", "Cost (USD)")
	fmt.Fprintln(w, rule)
	var total float64
	var unpriced []string
	for _, m := range models {
		cost := "?"
		if price := llm.LookupCost(m.Model); price != nil {
			c := price.Cost(m.InputTokens, m.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, m.Model)
		}
		fmt.Fprintf(w, row, clip(m.Model, 32), m.Calls, m.InputTokens, m.OutputTokens, cost)
	}
	fmt.Fprintln(w, rule)
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	fmt.Fprintf(w, row, label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose (e.g. exam-part)")
	llmListCmd.Flags().String("request", "", "Only calls made for this request id")
	llmListCmd.Flags().Duration("since", 0, "Only calls newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
