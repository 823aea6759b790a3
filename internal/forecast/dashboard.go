package forecast

import (
	"time"

	"studioload/internal/capacity"
	"studioload/internal/risk"
)

// Input is a fully materialized tracker snapshot plus the reference day.
type Input struct {
	Tasks []capacity.Task
	Team  []capacity.TeamMember
	Today time.Time
}

// Dashboard bundles every computed view for one reference day.
type Dashboard struct {
	Today         time.Time                   `json:"today"`
	DailyCapacity float64                     `json:"dailyCapacity"`
	Allocations   []capacity.AllocationResult `json:"allocations"`
	Heatmap       Heatmap                     `json:"heatmap"`
	Timeline      Timeline                    `json:"timeline"`
	Rollups       []Rollup                    `json:"rollups"`
	Members       []MemberLoad                `json:"members"`
	Risks         []risk.Finding              `json:"risks"`
}

// Build computes a Dashboard from scratch. Completed tasks contribute to none
// of the views.
func Build(in Input, opts Options) Dashboard {
	opts = opts.withDefaults()
	today := capacity.Day(in.Today)
	active := capacity.Prepare(in.Tasks, today, opts.DefaultDurationDays)

	allocations := make([]capacity.AllocationResult, len(active))
	for i, t := range active {
		allocations[i] = capacity.AllocationResult{TaskID: t.Task.ID, Percent: t.Allocation}
	}

	return Dashboard{
		Today:         today,
		DailyCapacity: capacity.DailyCapacity(in.Team),
		Allocations:   allocations,
		Heatmap:       BuildHeatmap(active, in.Team, today, opts.HeatmapDays),
		Timeline:      BuildTimeline(active, in.Team, today, opts.TimelineWeeks),
		Rollups:       BuildRollups(active, in.Team, today, opts.RollupWindows, opts.Limits),
		Members:       BuildMembers(active, in.Team, today, opts.MemberWindowDays, opts.Limits),
		Risks:         opts.Rules.ClassifyAll(in.Tasks, today),
	}
}

// ActiveTasks resolves the non-completed tasks of in using opts.
func ActiveTasks(in Input, opts Options) []capacity.ActiveTask {
	opts = opts.withDefaults()
	return capacity.Prepare(in.Tasks, capacity.Day(in.Today), opts.DefaultDurationDays)
}
