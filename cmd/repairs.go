package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/store"
)

var repairsCmd = &cobra.Command{
	Use:   "repairs",
	Short: "Show how often model output needed repair, per exam part",
	Long: `Show recorded repairs grouped by exam part and repair kind.

A part whose replies are repaired on most requests usually needs a prompt
change rather than more repair rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().RepairStats(cmd.Context())
		if err != nil {
			return err
		}
		printRepairStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func printRepairStats(w io.Writer, stats []store.RepairStat) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No repairs recorded.")
		return
	}

	row := "%-10v  %4v  %-22v  %8v  %11v\n"
	rule := strings.Repeat("─", 63)
	fmt.Fprintf(w, row, "Section", "Part", "Kind", "Requests", "Corrections")
	fmt.Fprintln(w, rule)
	var requests, corrections int
	for _, st := range stats {
		fmt.Fprintf(w, row, st.Section, st.Part, st.Kind, st.Requests, st.Corrections)
		requests += st.Requests
		corrections += st.Corrections
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, row, "total", "", "", requests, corrections)
}
