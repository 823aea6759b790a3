package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"studioload/internal/capacity"
)

type allocateResponse struct {
	Phase             capacity.Phase `json:"phase"`
	Priority          int            `json:"priority"`
	Complexity        int            `json:"complexity"`
	AllocationPercent float64        `json:"allocationPercent"`
	DailyPercent      float64        `json:"dailyPercent"`
}

func newAllocateCommand(_ *commandContext) *cobra.Command {
	var (
		priority   int
		complexity int
		phaseFlag  string
		startFlag  string
		dueFlag    string
		broll      bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:         "allocate",
		Short:       "Compute the weekly allocation for one task",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, ok := capacity.ParsePhase(phaseFlag)
			if !ok {
				return fmt.Errorf("unknown phase %q", phaseFlag)
			}
			start, err := parseOptionalDay("start", startFlag)
			if err != nil {
				return err
			}
			due, err := parseOptionalDay("due", dueFlag)
			if err != nil {
				return err
			}

			percent := capacity.Allocate(capacity.AllocationInput{
				Priority:      priority,
				Complexity:    complexity,
				Phase:         phase,
				Start:         start,
				Due:           due,
				BRollRequired: broll,
			})
			resp := allocateResponse{
				Phase:             phase,
				Priority:          priority,
				Complexity:        complexity,
				AllocationPercent: percent,
				DailyPercent:      percent / capacity.WorkDaysPerWeek,
			}
			if jsonOut {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Phase:       %s\n", phase.Label())
			fmt.Fprintf(out, "B-roll:      %s\n", yesNo(broll))
			fmt.Fprintf(out, "Allocation:  %s per week\n", formatPercent(resp.AllocationPercent))
			fmt.Fprintf(out, "Daily load:  %s per work day\n", formatPercent(resp.DailyPercent))
			return nil
		},
	}

	cmd.Flags().IntVar(&priority, "priority", 0, "Task priority (1-12)")
	cmd.Flags().IntVar(&complexity, "complexity", 0, "Task complexity (1-12)")
	cmd.Flags().StringVar(&phaseFlag, "phase", string(capacity.PhaseProduction), "Phase: preproduction, production, postproduction, forecast")
	cmd.Flags().StringVar(&startFlag, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dueFlag, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&broll, "broll", false, "Task requires b-roll")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func parseOptionalDay(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	day := capacity.Day(parsed)
	return &day, nil
}
