package config

const (
	defaultConfigPath             = "~/.config/studioload/config.toml"
	defaultStateDir               = "~/.local/share/studioload"
	defaultLogDir                 = "~/.local/share/studioload/logs"
	defaultAPIBind                = "127.0.0.1:7497"
	defaultTrackerSource          = "file"
	defaultTrackerPath            = "~/.local/share/studioload/tasks.json"
	defaultTrackerTimeoutSeconds  = 30
	defaultTrackerRetryAttempts   = 3
	defaultDurationDays           = 30
	defaultHeatmapDays            = 30
	defaultTimelineWeeks          = 26
	defaultMemberWindowDays       = 7
	defaultBusyThreshold          = 70.0
	defaultOverThreshold          = 100.0
	defaultDueSoonDays            = 7
	defaultRecentUpdateDays       = 3
	defaultVarianceThreshold      = 20.0
	defaultNotifyRequestTimeout   = 10
	defaultRefreshIntervalSeconds = 900
	defaultCacheTTLSeconds        = 300
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

func defaultRollupWindows() []int {
	return []int{7, 14, 30}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Tracker: Tracker{
			Source:         defaultTrackerSource,
			Path:           defaultTrackerPath,
			TimeoutSeconds: defaultTrackerTimeoutSeconds,
			RetryAttempts:  defaultTrackerRetryAttempts,
		},
		Forecast: Forecast{
			DefaultDurationDays: defaultDurationDays,
			HeatmapDays:         defaultHeatmapDays,
			TimelineWeeks:       defaultTimelineWeeks,
			RollupWindows:       defaultRollupWindows(),
			MemberWindowDays:    defaultMemberWindowDays,
			BusyThreshold:       defaultBusyThreshold,
			OverThreshold:       defaultOverThreshold,
		},
		Risk: Risk{
			DueSoonDays:       defaultDueSoonDays,
			RecentUpdateDays:  defaultRecentUpdateDays,
			VarianceThreshold: defaultVarianceThreshold,
		},
		Targets: Targets{
			Preproduction:  25,
			Production:     35,
			PostProduction: 30,
			Forecast:       10,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			AtRisk:         true,
			OverCapacity:   true,
		},
		Daemon: Daemon{
			RefreshIntervalSeconds: defaultRefreshIntervalSeconds,
			CacheTTLSeconds:        defaultCacheTTLSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
