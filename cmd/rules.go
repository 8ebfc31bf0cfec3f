package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/phishdrill/internal/hints"
	"github.com/abhisek/phishdrill/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the feedback rules and when they are shown",
	RunE: func(cmd *cobra.Command, args []string) error {
		missed := allowSet(hints.MissedDeception)
		falseAlarm := allowSet(hints.FalseAlarm)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-32s  %-6s  %-6s  %s\n", "ID", "Missed", "False", "Title")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, in := range rules.AllInfo() {
			fmt.Fprintf(out, "%-32s  %-6s  %-6s  %s\n", in.ID, mark(missed[in.ID]), mark(falseAlarm[in.ID]), in.Title)
		}
		return nil
	},
}

func allowSet(d hints.Direction) map[rules.ID]bool {
	m := make(map[rules.ID]bool)
	for _, id := range hints.AllowList(d) {
		m[id] = true
	}
	return m
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
