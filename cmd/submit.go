package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/phishdrill/internal/arcade"
	"github.com/abhisek/phishdrill/internal/rules"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Answer one email and print the outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		itemID, _ := cmd.Flags().GetString("item")

		sub := arcade.Submission{UserID: user, ItemID: itemID}
		if cmd.Flags().Changed("phish") {
			v, _ := cmd.Flags().GetBool("phish")
			sub.GuessedDeceptive = &v
		}
		if cmd.Flags().Changed("ms") {
			v, _ := cmd.Flags().GetInt("ms")
			sub.ResponseTimeMs = &v
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		outcome, err := newEngine(s).SubmitAttempt(cmd.Context(), sub)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		verdict := "incorrect"
		if outcome.WasCorrect {
			verdict = "correct"
		}
		fmt.Fprintf(out, "Result:     %s\n", verdict)
		fmt.Fprintf(out, "Difficulty: %.2f → %.2f (band %d)\n", outcome.PreviousDifficulty, outcome.NewDifficulty, outcome.NewBand)
		fmt.Fprintf(out, "Accuracy:   %.1f%%\n", outcome.RollingAccuracy*100)
		fmt.Fprintf(out, "Streak:     %+d\n", outcome.Streak)

		if h := outcome.Hint; h != nil {
			fmt.Fprintf(out, "\n%s (%s)\n", h.Title, h.Direction)
			for _, id := range h.RuleIDs {
				info := rules.Describe(id)
				fmt.Fprintf(out, "  - [%s] %s\n", id, info.Title)
			}
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().String("user", "", "Learner id (required)")
	submitCmd.Flags().String("item", "", "Item id from phishdrill trial (required)")
	submitCmd.Flags().Bool("phish", false, "Your verdict: --phish=true for phishing, --phish=false for legitimate")
	submitCmd.Flags().Int("ms", 0, "Response time in milliseconds")
}
