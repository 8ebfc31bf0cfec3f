package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a learner's difficulty state and attempt history",
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

		n, err := s.ResetUser(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("reset %s: %w", user, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %s: removed %d attempts\n", user, n)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("user", "", "Learner id (required)")
}
