package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/phishdrill/internal/ui/components"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a learner's difficulty and accuracy",
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

		eng := newEngine(s)
		st, err := eng.Stats(cmd.Context(), user)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if st == nil {
			fmt.Fprintf(out, "No attempts yet for %s.\n", user)
			return nil
		}

		dcfg := eng.Config()
		fmt.Fprintln(out, components.DifficultyMeter(st.Difficulty, dcfg.Min, dcfg.Max, 60).View())
		fmt.Fprintf(out, "Band:       %d\n", dcfg.Band(st.Difficulty))
		fmt.Fprintf(out, "Answered:   %d\n", st.TotalCount)
		fmt.Fprintf(out, "Correct:    %d (%.1f%%)\n", st.CorrectCount, st.Accuracy()*100)
		fmt.Fprintf(out, "Streak:     %+d\n", st.Streak)
		if st.LastItemID != "" {
			fmt.Fprintf(out, "Last item:  %s\n", st.LastItemID)
		}
		if !st.UpdatedAt.IsZero() {
			fmt.Fprintf(out, "Updated:    %s\n", st.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("user", "", "Learner id (required)")
}
