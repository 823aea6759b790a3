package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"studioload/internal/forecast"
)

func newForecastCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var sections []string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Show heatmap, timeline, rollups and per-member load",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, snap, err := ctx.fetchInput(cmd.Context())
			if err != nil {
				return err
			}
			dash := forecast.Build(in, forecast.OptionsFromConfig(ctx.configValue()))
			if jsonOut {
				return writeJSON(cmd, dash)
			}

			want := make(map[string]bool, len(sections))
			for _, s := range sections {
				want[strings.ToLower(strings.TrimSpace(s))] = true
			}
			show := func(name string) bool { return len(want) == 0 || want[name] }

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Forecast for %s (team capacity %s per day, %d active tasks)\n",
				formatDay(dash.Today), formatPercent(dash.DailyCapacity), len(dash.Allocations))
			if len(snap.Issues) > 0 {
				fmt.Fprintf(out, "%d tracker records could not be fully read\n", len(snap.Issues))
			}
			if show("rollups") {
				printRollups(out, dash.Rollups, colorize)
			}
			if show("heatmap") {
				printHeatmap(out, dash.Heatmap, colorize)
			}
			if show("timeline") {
				printTimeline(out, dash.Timeline, colorize)
			}
			if show("members") {
				printMembers(out, dash.Members, colorize)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full dashboard as JSON")
	cmd.Flags().StringSliceVar(&sections, "section", nil, "Limit output to sections: rollups, heatmap, timeline, members")
	return cmd
}

func printRollups(out io.Writer, rollups []forecast.Rollup, colorize bool) {
	rows := make([][]string, 0, len(rollups))
	for _, r := range rollups {
		rows = append(rows, []string{
			fmt.Sprintf("Next %d days", r.Days),
			formatPercent(r.Utilization),
			strconv.Itoa(r.ActiveTasks),
			paint(bandLabel(string(r.Status)), statusColor(r.Status), colorize),
			r.RelativeNote,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable("Outlook", []string{"Window", "Utilization", "Tasks", "Status", "Note"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft}))
}

func printHeatmap(out io.Writer, heatmap forecast.Heatmap, colorize bool) {
	rows := make([][]string, 0, len(heatmap.Days))
	for _, d := range heatmap.Days {
		rows = append(rows, []string{
			formatDay(d.Date),
			d.Date.Weekday().String()[:3],
			formatPercent(d.Percent),
			formatPercent(d.Utilization),
			paint(bandLabel(string(d.Level)), heatColor(d.Level), colorize),
		})
	}
	title := fmt.Sprintf("Daily heatmap (scale max %.1f)", heatmap.Scale.VMax)
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(title, []string{"Date", "Day", "Load", "Utilization", "Level"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
}

func printTimeline(out io.Writer, timeline forecast.Timeline, colorize bool) {
	rows := make([][]string, 0, len(timeline.Weeks))
	for _, w := range timeline.Weeks {
		rows = append(rows, []string{
			formatDay(w.Start),
			formatDay(w.End),
			formatPercent(w.Utilization),
			strconv.Itoa(w.TaskCount),
			paint(bandLabel(string(w.Status)), timelineColor(w.Status), colorize),
		})
	}
	title := fmt.Sprintf("Weekly timeline (scale max %.1f)", timeline.Scale.VMax)
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(title, []string{"Week of", "Through", "Utilization", "Tasks", "Status"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
}

func printMembers(out io.Writer, members []forecast.MemberLoad, colorize bool) {
	if len(members) == 0 {
		return
	}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		name := m.Name
		if name == "" {
			name = "(unassigned)"
		}
		rows = append(rows, []string{
			name,
			formatPercent(m.MaxCapacity),
			formatPercent(m.Utilization),
			strconv.Itoa(m.TaskCount),
			paint(bandLabel(string(m.Status)), statusColor(m.Status), colorize),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable("Team", []string{"Member", "Capacity", "Utilization", "Tasks", "Status"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft}))
}
