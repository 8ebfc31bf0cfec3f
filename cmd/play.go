package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/phishdrill/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start an interactive training session",
	Long: `Show one email at a time and answer p (phishing) or l (legitimate).
Each answer adjusts the difficulty of the next email. Press q to stop.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("user", "", "Learner id (required)")
	playCmd.Flags().Int("width", 80, "Terminal width used until the first resize")
}

func runPlay(cmd *cobra.Command, args []string) error {
	user, err := requireUser(cmd)
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	m := app.New(cmd.Context(), newEngine(s), user, width)
	sum, err := app.Run(cmd.Context(), m, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "── Session: %d/%d correct ──\n", sum.Correct, sum.Answered)
	return nil
}
