package forecast

import (
	"studioload/internal/capacity"
	"studioload/internal/config"
	"studioload/internal/risk"
	"studioload/internal/scale"
)

// Options tunes window sizes and thresholds.
type Options struct {
	DefaultDurationDays int
	HeatmapDays         int
	TimelineWeeks       int
	RollupWindows       []int
	MemberWindowDays    int
	Limits              scale.Limits
	Rules               risk.Rules
}

// DefaultOptions returns the standard reporting windows.
func DefaultOptions() Options {
	return Options{
		DefaultDurationDays: capacity.DefaultDurationDays,
		HeatmapDays:         30,
		TimelineWeeks:       26,
		RollupWindows:       []int{7, 14, 30},
		MemberWindowDays:    7,
		Limits:              scale.DefaultLimits(),
		Rules:               risk.DefaultRules(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DefaultDurationDays <= 0 {
		o.DefaultDurationDays = def.DefaultDurationDays
	}
	if o.HeatmapDays <= 0 {
		o.HeatmapDays = def.HeatmapDays
	}
	if o.TimelineWeeks <= 0 {
		o.TimelineWeeks = def.TimelineWeeks
	}
	if len(o.RollupWindows) == 0 {
		o.RollupWindows = def.RollupWindows
	}
	if o.MemberWindowDays <= 0 {
		o.MemberWindowDays = def.MemberWindowDays
	}
	return o
}

// OptionsFromConfig maps the [forecast] and [risk] sections onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	windows := append([]int(nil), cfg.Forecast.RollupWindows...)
	return Options{
		DefaultDurationDays: cfg.Forecast.DefaultDurationDays,
		HeatmapDays:         cfg.Forecast.HeatmapDays,
		TimelineWeeks:       cfg.Forecast.TimelineWeeks,
		RollupWindows:       windows,
		MemberWindowDays:    cfg.Forecast.MemberWindowDays,
		Limits: scale.Limits{
			Busy: cfg.Forecast.BusyThreshold,
			Over: cfg.Forecast.OverThreshold,
		},
		Rules: risk.Rules{
			DueSoonDays:       cfg.Risk.DueSoonDays,
			RecentUpdateDays:  cfg.Risk.RecentUpdateDays,
			VarianceThreshold: cfg.Risk.VarianceThreshold,
		},
	}
}
