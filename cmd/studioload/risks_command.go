package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studioload/internal/forecast"
)

func newRisksCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "risks",
		Short: "List tasks that are at risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _, err := ctx.fetchInput(cmd.Context())
			if err != nil {
				return err
			}
			opts := forecast.OptionsFromConfig(ctx.configValue())
			findings := opts.Rules.ClassifyAll(in.Tasks, in.Today)
			if jsonOut {
				return writeJSON(cmd, findings)
			}

			out := cmd.OutOrStdout()
			if len(findings) == 0 {
				fmt.Fprintln(out, "No tasks at risk")
				return nil
			}
			rows := make([][]string, 0, len(findings))
			for _, f := range findings {
				assignee := f.Assignee
				if assignee == "" {
					assignee = "-"
				}
				rows = append(rows, []string{f.TaskID, f.TaskName, assignee, strings.Join(f.Reasons, "; ")})
			}
			title := fmt.Sprintf("%d at-risk tasks as of %s", len(findings), formatDay(in.Today))
			fmt.Fprintln(out, renderTable(title, []string{"ID", "Task", "Assignee", "Reasons"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
