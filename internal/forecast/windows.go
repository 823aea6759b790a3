package forecast

import (
	"strings"
	"time"

	"studioload/internal/capacity"
	"studioload/internal/scale"
)

const daysPerWeek = 7

// HeatDay is one cell of the daily heatmap.
type HeatDay struct {
	Date        time.Time       `json:"date"`
	Percent     float64         `json:"percent"`
	Utilization float64         `json:"utilization"`
	Level       scale.HeatLevel `json:"level"`
}

// Heatmap is a daily load series banded against its own peak.
type Heatmap struct {
	Days  []HeatDay   `json:"days"`
	Scale scale.Scale `json:"scale"`
}

// BuildHeatmap aggregates days consecutive days from today and bands each day
// on the five-level scale fitted to that window.
func BuildHeatmap(tasks []capacity.ActiveTask, team []capacity.TeamMember, today time.Time, days int) Heatmap {
	loads := capacity.Window(tasks, today, days)
	fitted := scale.Fit(capacity.Totals(loads))
	daily := capacity.DailyCapacity(team)

	out := Heatmap{Days: make([]HeatDay, len(loads)), Scale: fitted}
	for i, l := range loads {
		out.Days[i] = HeatDay{
			Date:        l.Date,
			Percent:     l.TotalPercent,
			Utilization: capacity.Utilization(l.TotalPercent, daily),
			Level:       fitted.Heat(l.TotalPercent),
		}
	}
	return out
}

// Week is one bucket of the long-range timeline.
type Week struct {
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	Utilization float64              `json:"utilization"`
	TaskCount   int                  `json:"taskCount"`
	Status      scale.TimelineStatus `json:"status"`
}

// Timeline is a run of weekly buckets sharing one adaptive scale.
type Timeline struct {
	Weeks []Week      `json:"weeks"`
	Scale scale.Scale `json:"scale"`
}

// BuildTimeline splits weeks×7 days from today into 7-day buckets. Each
// bucket's utilization is the mean of its daily utilizations.
func BuildTimeline(tasks []capacity.ActiveTask, team []capacity.TeamMember, today time.Time, weeks int) Timeline {
	if weeks <= 0 {
		return Timeline{Scale: scale.Fit(nil)}
	}
	daily := capacity.DailyCapacity(team)
	loads := capacity.Window(tasks, today, weeks*daysPerWeek)

	buckets := make([]Week, weeks)
	utils := make([]float64, weeks)
	for w := range buckets {
		slice := loads[w*daysPerWeek : (w+1)*daysPerWeek]
		start := slice[0].Date
		end := slice[len(slice)-1].Date
		buckets[w] = Week{
			Start:       start,
			End:         end,
			Utilization: meanUtilization(slice, daily),
			TaskCount:   countOverlapping(tasks, start, end),
		}
		utils[w] = buckets[w].Utilization
	}

	fitted := scale.Fit(utils)
	for w := range buckets {
		buckets[w].Status = fitted.Timeline(buckets[w].Utilization)
	}
	return Timeline{Weeks: buckets, Scale: fitted}
}

// Rollup summarizes one fixed look-ahead window. Status answers "are we over
// the hard cap"; RelativeNote answers "is this window unusually busy".
type Rollup struct {
	Days         int          `json:"days"`
	Utilization  float64      `json:"utilization"`
	ActiveTasks  int          `json:"activeTasks"`
	Status       scale.Status `json:"status"`
	RelativeNote string       `json:"relativeNote"`
	VMax         float64      `json:"vmax"`
}

// BuildRollups summarizes each window starting today. The relative note for
// every window comes from one scale fitted across all window utilizations.
func BuildRollups(tasks []capacity.ActiveTask, team []capacity.TeamMember, today time.Time, windows []int, limits scale.Limits) []Rollup {
	longest := 0
	for _, n := range windows {
		if n > longest {
			longest = n
		}
	}
	daily := capacity.DailyCapacity(team)
	loads := capacity.Window(tasks, today, longest)

	rollups := make([]Rollup, 0, len(windows))
	utils := make([]float64, 0, len(windows))
	for _, n := range windows {
		if n <= 0 {
			continue
		}
		util := meanUtilization(loads[:n], daily)
		rollups = append(rollups, Rollup{
			Days:        n,
			Utilization: util,
			ActiveTasks: countOverlapping(tasks, loads[0].Date, loads[n-1].Date),
			Status:      limits.Classify(util),
		})
		utils = append(utils, util)
	}

	fitted := scale.Fit(utils)
	for i := range rollups {
		rollups[i].RelativeNote = fitted.Relative(rollups[i].Utilization)
		rollups[i].VMax = fitted.VMax
	}
	return rollups
}

// MemberLoad is one person's utilization over the member window.
type MemberLoad struct {
	Name        string       `json:"name"`
	MaxCapacity float64      `json:"maxCapacity"`
	Utilization float64      `json:"utilization"`
	TaskCount   int          `json:"taskCount"`
	Status      scale.Status `json:"status"`
}

// BuildMembers computes each team member's mean daily utilization over days
// starting today. Tasks assigned to nobody on the team are grouped under an
// empty name with zero capacity.
func BuildMembers(tasks []capacity.ActiveTask, team []capacity.TeamMember, today time.Time, days int, limits scale.Limits) []MemberLoad {
	if days <= 0 {
		return nil
	}
	byMember := make(map[string][]capacity.ActiveTask, len(team))
	known := make(map[string]struct{}, len(team))
	for _, m := range team {
		known[memberKey(m.Name)] = struct{}{}
	}
	var orphans []capacity.ActiveTask
	for _, t := range tasks {
		key := memberKey(t.Task.Assignee)
		if _, ok := known[key]; ok {
			byMember[key] = append(byMember[key], t)
			continue
		}
		orphans = append(orphans, t)
	}

	end := capacity.AddDays(today, days-1)
	out := make([]MemberLoad, 0, len(team)+1)
	for _, m := range team {
		assigned := byMember[memberKey(m.Name)]
		util := meanUtilization(capacity.Window(assigned, today, days), m.MaxCapacity/capacity.WorkDaysPerWeek)
		out = append(out, MemberLoad{
			Name:        m.Name,
			MaxCapacity: m.MaxCapacity,
			Utilization: util,
			TaskCount:   countOverlapping(assigned, today, end),
			Status:      limits.Classify(util),
		})
	}
	if n := countOverlapping(orphans, today, end); n > 0 {
		out = append(out, MemberLoad{TaskCount: n, Status: scale.StatusGood})
	}
	return out
}

func meanUtilization(loads []capacity.DailyLoad, daily float64) float64 {
	if len(loads) == 0 {
		return 0
	}
	sum := 0.0
	for _, l := range loads {
		sum += capacity.Utilization(l.TotalPercent, daily)
	}
	return sum / float64(len(loads))
}

func countOverlapping(tasks []capacity.ActiveTask, from, to time.Time) int {
	seen := make(map[string]struct{}, len(tasks))
	count := 0
	for _, t := range tasks {
		if !t.Interval.Overlaps(from, to) {
			continue
		}
		key := t.Task.ID
		if key == "" {
			count++
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		count++
	}
	return count
}

func memberKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
