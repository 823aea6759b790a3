package risk

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"studioload/internal/capacity"
)

// Default rule tunables.
const (
	DefaultDueSoonDays       = 7
	DefaultRecentUpdateDays  = 3
	DefaultVarianceThreshold = 20.0
)

// Rules holds the tunable windows and thresholds used by Classify.
type Rules struct {
	DueSoonDays       int
	RecentUpdateDays  int
	VarianceThreshold float64
}

// DefaultRules returns the standard 7-day / 3-day / 20% rule set.
func DefaultRules() Rules {
	return Rules{
		DueSoonDays:       DefaultDueSoonDays,
		RecentUpdateDays:  DefaultRecentUpdateDays,
		VarianceThreshold: DefaultVarianceThreshold,
	}
}

// Finding lists the reasons a task is at risk, in rule order.
type Finding struct {
	TaskID   string   `json:"taskId"`
	TaskName string   `json:"taskName,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Reasons  []string `json:"reasons"`
}

// AtRisk reports whether any reason survived classification.
func (f Finding) AtRisk() bool {
	return len(f.Reasons) > 0
}

// Classify evaluates one task against the rule layers as of today.
func (r Rules) Classify(t capacity.Task, today time.Time) Finding {
	finding := Finding{TaskID: t.ID, TaskName: t.Name, Assignee: t.Assignee}
	if t.Completed {
		return finding
	}
	today = capacity.Day(today)

	var overdue, dueSoon []string
	if t.DueDate != nil {
		due := capacity.Day(*t.DueDate)
		if due.Before(today) {
			overdue = append(overdue, fmt.Sprintf("Overdue by %d days", capacity.DaysBetween(due, today)))
		} else if days := capacity.DaysBetween(today, due); days <= r.dueSoonDays() {
			if reason, ok := dueSoonReason(t, days); ok {
				dueSoon = append(dueSoon, reason)
			}
		}
	}

	if t.Status == capacity.StatusInProgress {
		dueSoon = nil
	}
	if r.recentlyUpdated(t, today) {
		dueSoon = nil
	}

	finding.Reasons = append(finding.Reasons, overdue...)
	finding.Reasons = append(finding.Reasons, dueSoon...)
	if reason, ok := r.varianceReason(t); ok {
		finding.Reasons = append(finding.Reasons, reason)
	}
	return finding
}

// ClassifyAll returns findings for tasks that are at risk, preserving input order.
func (r Rules) ClassifyAll(tasks []capacity.Task, today time.Time) []Finding {
	findings := make([]Finding, 0)
	for _, t := range tasks {
		if f := r.Classify(t, today); f.AtRisk() {
			findings = append(findings, f)
		}
	}
	return findings
}

func dueSoonReason(t capacity.Task, days int) (string, bool) {
	switch t.Phase {
	case capacity.PhaseProduction:
		if t.Status == capacity.StatusNeedsScheduling {
			return fmt.Sprintf("Due in %d days, needs scheduling", days), true
		}
	case capacity.PhasePostProduction:
		switch t.Status {
		case capacity.StatusFilmed, capacity.StatusOffloaded:
			return fmt.Sprintf("Due in %d days, not yet in progress", days), true
		}
	case capacity.PhasePreproduction, capacity.PhaseForecast:
	}
	return "", false
}

func (r Rules) recentlyUpdated(t capacity.Task, today time.Time) bool {
	if t.LastModified.IsZero() {
		return false
	}
	return capacity.DaysBetween(t.LastModified, today) <= r.recentUpdateDays()
}

func (r Rules) varianceReason(t capacity.Task) (string, bool) {
	if t.EstimatedAllocation == nil || t.ActualAllocation == nil {
		return "", false
	}
	estimated := *t.EstimatedAllocation
	if estimated <= 0 {
		return "", false
	}
	// Compared at the precision it is reported with.
	variance := math.Round((*t.ActualAllocation-estimated)/estimated*1000) / 10
	if variance <= r.varianceThreshold() {
		return "", false
	}
	return "Over estimate by " + strconv.FormatFloat(variance, 'f', -1, 64) + "%", true
}

func (r Rules) dueSoonDays() int {
	if r.DueSoonDays <= 0 {
		return DefaultDueSoonDays
	}
	return r.DueSoonDays
}

func (r Rules) recentUpdateDays() int {
	if r.RecentUpdateDays <= 0 {
		return DefaultRecentUpdateDays
	}
	return r.RecentUpdateDays
}

func (r Rules) varianceThreshold() float64 {
	if r.VarianceThreshold <= 0 {
		return DefaultVarianceThreshold
	}
	return r.VarianceThreshold
}
