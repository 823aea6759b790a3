package snapshot

import (
	"time"

	"studioload/internal/capacity"
	"studioload/internal/config"
)

// Row is one persisted daily snapshot entry.
type Row struct {
	Date          time.Time `json:"date"`
	Category      string    `json:"category"`
	ActualPercent float64   `json:"actualPercent"`
	TargetPercent float64   `json:"targetPercent"`
	Variance      float64   `json:"variance"`
	RunID         string    `json:"runId,omitempty"`
	RecordedAt    time.Time `json:"recordedAt,omitempty"`
}

// BuildRows produces one row per phase. ActualPercent is the phase's share of
// the total allocation across active tasks (0 when nothing is allocated);
// Variance is actual minus target.
func BuildRows(day time.Time, active []capacity.ActiveTask, targets map[capacity.Phase]float64, runID string) []Row {
	byPhase := make(map[capacity.Phase]float64, len(capacity.Phases))
	total := 0.0
	for _, t := range active {
		if t.Task.Completed {
			continue
		}
		byPhase[t.Task.Phase] += t.Allocation
		total += t.Allocation
	}

	day = capacity.Day(day)
	rows := make([]Row, 0, len(capacity.Phases))
	for _, phase := range capacity.Phases {
		actual := 0.0
		if total > 0 {
			actual = byPhase[phase] / total * 100
		}
		target := targets[phase]
		rows = append(rows, Row{
			Date:          day,
			Category:      string(phase),
			ActualPercent: actual,
			TargetPercent: target,
			Variance:      actual - target,
			RunID:         runID,
		})
	}
	return rows
}

// TargetsFromConfig returns the per-phase targets from the [targets] section.
func TargetsFromConfig(cfg *config.Config) map[capacity.Phase]float64 {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return map[capacity.Phase]float64{
		capacity.PhasePreproduction:  cfg.Targets.Preproduction,
		capacity.PhaseProduction:     cfg.Targets.Production,
		capacity.PhasePostProduction: cfg.Targets.PostProduction,
		capacity.PhaseForecast:       cfg.Targets.Forecast,
	}
}
