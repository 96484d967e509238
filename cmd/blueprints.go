package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/blueprint"
)

var blueprintsCmd = &cobra.Command{
	Use:   "blueprints",
	Short: "List exam parts and their scoring",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := blueprint.Default()

		bps := reg.All()
		if sectionVal, _ := cmd.Flags().GetString("section"); sectionVal != "" {
			section, err := blueprint.ParseSection(sectionVal)
			if err != nil {
				return err
			}
			bps = reg.Parts(section)
		}

		printBlueprints(cmd.OutOrStdout(), reg, bps)
		return nil
	},
}

func printBlueprints(w io.Writer, reg *blueprint.Registry, bps []blueprint.Blueprint) {
	fmt.Fprintf(w, "%-18s  %4s  %-26s  %-22s  %3s  %5s  %5s  %4s  %s\n",
		"Section", "Part", "Title", "Type", "Qs", "Pts/Q", "Max", "Min", "Labels")
	fmt.Fprintln(w, strings.Repeat("─", 118))

	for _, bp := range bps {
		title := bp.Title
		if len([]rune(title)) > 26 {
			title = string([]rune(title)[:23]) + "..."
		}
		fmt.Fprintf(w, "%-18s  %4d  %-26s  %-22s  %3d  %5s  %5s  %4d  %s\n",
			bp.Section, bp.Part, title, bp.OptionType, bp.QuestionCount,
			points(bp.PointsPerQuestion), points(bp.MaxPoints),
			reg.TimeLimit(bp.Section), strings.Join(bp.CanonicalLabels(), " "))
	}

	fmt.Fprintf(w, "\n%d parts\n", len(bps))
}

func init() {
	blueprintsCmd.Flags().String("section", "", "Only show parts of this section")
}
