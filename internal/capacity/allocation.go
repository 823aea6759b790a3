package capacity

import (
	"math"
	"time"
)

const (
	// MinAllocation and MaxAllocation bound every non-zero allocation.
	MinAllocation = 5.0
	MaxAllocation = 80.0

	// WorkDaysPerWeek spreads a weekly allocation across working days.
	WorkDaysPerWeek = 5.0

	complexityWeight     = 3.5
	brollMultiplier      = 1.5
	defaultDurationWeeks = 2.0
	minDurationWeeks     = 0.5
)

// AllocationInput carries the task attributes the calculator depends on.
type AllocationInput struct {
	Priority      int
	Complexity    int
	Phase         Phase
	Start         *time.Time
	Due           *time.Time
	BRollRequired bool
}

// Allocate converts task attributes into a weekly allocation percentage.
// Missing priority or complexity yields exactly 0.
func Allocate(in AllocationInput) float64 {
	if in.Priority <= 0 || in.Complexity <= 0 {
		return 0
	}
	base := float64(in.Complexity) * complexityWeight * phaseMultiplier(in.Phase, in.BRollRequired)
	priorityFactor := 0.5 + float64(in.Priority)/24
	raw := base * priorityFactor / durationWeeks(in.Start, in.Due)
	return round1(clamp(raw, MinAllocation, MaxAllocation))
}

// AllocateTask runs Allocate over a task's own fields.
func AllocateTask(t Task) AllocationResult {
	return AllocationResult{
		TaskID: t.ID,
		Percent: Allocate(AllocationInput{
			Priority:      t.Priority,
			Complexity:    t.Complexity,
			Phase:         t.Phase,
			Start:         t.StartDate,
			Due:           t.DueDate,
			BRollRequired: t.BRollRequired,
		}),
	}
}

func phaseMultiplier(phase Phase, broll bool) float64 {
	switch phase {
	case PhasePreproduction:
		return 0.8
	case PhaseProduction:
		if broll {
			return 1.2 * brollMultiplier
		}
		return 1.2
	case PhasePostProduction:
		return 2.0
	case PhaseForecast:
		return 1.0
	default:
		return 1.0
	}
}

func durationWeeks(start, due *time.Time) float64 {
	if start == nil || due == nil {
		return defaultDurationWeeks
	}
	days := DaysBetween(*start, *due)
	if days < 1 {
		days = 1
	}
	return math.Max(float64(days)/7, minDurationWeeks)
}

func clamp(value, lo, hi float64) float64 {
	return math.Min(math.Max(value, lo), hi)
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
