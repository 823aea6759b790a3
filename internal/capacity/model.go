package capacity

import (
	"strings"
	"time"
)

// Phase is the production stage a task belongs to.
type Phase string

const (
	PhasePreproduction  Phase = "preproduction"
	PhaseProduction     Phase = "production"
	PhasePostProduction Phase = "postproduction"
	PhaseForecast       Phase = "forecast"
)

// Phases lists every phase in pipeline order.
var Phases = []Phase{PhasePreproduction, PhaseProduction, PhasePostProduction, PhaseForecast}

// ParsePhase maps tracker spellings ("Pre-Production", "post production",
// "pipeline") onto a Phase.
func ParsePhase(value string) (Phase, bool) {
	switch normalizeKey(value) {
	case "preproduction", "pre_production", "pre":
		return PhasePreproduction, true
	case "production", "prod", "shoot":
		return PhaseProduction, true
	case "postproduction", "post_production", "post":
		return PhasePostProduction, true
	case "forecast", "pipeline":
		return PhaseForecast, true
	default:
		return "", false
	}
}

// Label returns a human-readable phase name.
func (p Phase) Label() string {
	switch p {
	case PhasePreproduction:
		return "Preproduction"
	case PhaseProduction:
		return "Production"
	case PhasePostProduction:
		return "Post-Production"
	case PhaseForecast:
		return "Forecast"
	default:
		return string(p)
	}
}

// ProgressStatus is the tracker's workflow status for a task.
type ProgressStatus string

const (
	StatusNeedsScheduling ProgressStatus = "needs_scheduling"
	StatusScheduled       ProgressStatus = "scheduled"
	StatusInProgress      ProgressStatus = "in_progress"
	StatusFilmed          ProgressStatus = "filmed"
	StatusOffloaded       ProgressStatus = "offloaded"
	StatusEditing         ProgressStatus = "editing"
	StatusInReview        ProgressStatus = "in_review"
	StatusComplete        ProgressStatus = "complete"
	StatusUnknown         ProgressStatus = "unknown"
)

// ParseProgressStatus maps a tracker status string onto a ProgressStatus.
// Unrecognised values become StatusUnknown, which no risk rule matches.
func ParseProgressStatus(value string) ProgressStatus {
	switch normalizeKey(value) {
	case "needs_scheduling", "to_schedule", "unscheduled":
		return StatusNeedsScheduling
	case "scheduled":
		return StatusScheduled
	case "in_progress", "inprogress", "active":
		return StatusInProgress
	case "filmed", "shot":
		return StatusFilmed
	case "offloaded":
		return StatusOffloaded
	case "editing", "in_edit":
		return StatusEditing
	case "in_review", "review":
		return StatusInReview
	case "complete", "completed", "done", "closed":
		return StatusComplete
	default:
		return StatusUnknown
	}
}

func normalizeKey(value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	return key
}

// Task is a tracker record as consumed by the engine. Pointer fields are
// optional in the tracker.
type Task struct {
	ID                  string
	Name                string
	Phase               Phase
	Assignee            string
	Priority            int
	Complexity          int
	StartDate           *time.Time
	DueDate             *time.Time
	Completed           bool
	Status              ProgressStatus
	EstimatedAllocation *float64
	ActualAllocation    *float64
	LastModified        time.Time
	BRollRequired       bool
}

// TeamMember is a person with a weekly capacity ceiling in percent.
type TeamMember struct {
	Name        string
	MaxCapacity float64
}

// AllocationResult pairs a task with its computed weekly allocation.
type AllocationResult struct {
	TaskID  string  `json:"taskId"`
	Percent float64 `json:"allocationPercent"`
}

// WorkInterval is the inclusive day range a task's load is active over.
type WorkInterval struct {
	Start time.Time `json:"start"`
	Due   time.Time `json:"due"`
}

// Covers reports whether day falls within the interval, inclusive.
func (w WorkInterval) Covers(day time.Time) bool {
	day = Day(day)
	return !day.Before(w.Start) && !day.After(w.Due)
}

// Overlaps reports whether the interval shares at least one day with [from, to].
func (w WorkInterval) Overlaps(from, to time.Time) bool {
	return !w.Due.Before(Day(from)) && !w.Start.After(Day(to))
}

// Days returns the inclusive length of the interval in days.
func (w WorkInterval) Days() int {
	return DaysBetween(w.Start, w.Due) + 1
}

// DailyLoad is the summed team load for one day.
type DailyLoad struct {
	Date         time.Time `json:"date"`
	TotalPercent float64   `json:"totalPercent"`
}

// ActiveTask is a non-completed task with its interval and allocation resolved.
type ActiveTask struct {
	Task       Task
	Interval   WorkInterval
	Allocation float64
}

// DailyPercent is the share of a weekly allocation consumed on one work day.
func (a ActiveTask) DailyPercent() float64 {
	return a.Allocation / WorkDaysPerWeek
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// AddDays returns the calendar day n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}
