package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a learner's recent attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.Attempts().Recent(cmd.Context(), user, limit)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No attempts found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-6s  %-19s  %-36s  %-6s  %-6s  %-4s  %7s  %s\n",
			"Seq", "Timestamp", "Item", "Guess", "Result", "Item", "Target", "Ms")
		fmt.Fprintln(out, strings.Repeat("─", 110))

		for _, r := range recs {
			guess := "legit"
			if r.GuessedDeceptive {
				guess = "phish"
			}
			ok := "✓"
			if !r.WasCorrect {
				ok = "✗"
			}
			ms := "-"
			if r.ResponseTimeMs != nil {
				ms = fmt.Sprintf("%d", *r.ResponseTimeMs)
			}
			item := r.ItemID
			if len(item) > 36 {
				item = item[:33] + "..."
			}
			fmt.Fprintf(out, "%-6d  %-19s  %-36s  %-6s  %-6s  %-4d  %7.2f  %s\n",
				r.Sequence, r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				item, guess, ok, r.ItemDifficulty, r.TargetDifficultyAtRequest, ms)
		}

		fmt.Fprintf(out, "\n%d attempts\n", len(recs))
		return nil
	},
}

func init() {
	historyCmd.Flags().String("user", "", "Learner id (required)")
	historyCmd.Flags().Int("limit", 20, "Maximum attempts to show (0 = all)")
}
