package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/phishdrill/internal/arcade"
)

var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Print the next email for a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		trial, err := newEngine(s).RequestTrial(cmd.Context(), user)
		if errors.Is(err, arcade.ErrNoContentAvailable) {
			return fmt.Errorf("no emails available; run phishdrill import first")
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		it := trial.Item
		fmt.Fprintf(out, "Item:       %s\n", it.ID)
		fmt.Fprintf(out, "Target:     %.2f (band %d, %s)\n", trial.TargetDifficulty, trial.TargetBand, trial.Tier)
		fmt.Fprintf(out, "From:       %s\n", it.Sender)
		fmt.Fprintf(out, "Subject:    %s\n", it.Subject)
		fmt.Fprintln(out, strings.Repeat("─", 60))
		fmt.Fprintln(out, it.Body)
		for _, l := range it.Links {
			fmt.Fprintf(out, "Link:       %s\n", l)
		}
		for _, a := range it.Attachments {
			fmt.Fprintf(out, "Attachment: %s\n", a)
		}
		return nil
	},
}

func init() {
	trialCmd.Flags().String("user", "", "Learner id (required)")
}
