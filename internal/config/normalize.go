package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTracker(); err != nil {
		return err
	}
	c.normalizeTeam()
	c.normalizeForecast()
	c.normalizeRisk()
	c.normalizeNotifications()
	c.normalizeDaemon()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("STUDIOLOAD_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeTracker() error {
	c.Tracker.Source = strings.ToLower(strings.TrimSpace(c.Tracker.Source))
	if c.Tracker.Source == "" {
		c.Tracker.Source = defaultTrackerSource
	}
	if strings.TrimSpace(c.Tracker.Path) != "" {
		var err error
		if c.Tracker.Path, err = expandPath(strings.TrimSpace(c.Tracker.Path)); err != nil {
			return fmt.Errorf("tracker.path: %w", err)
		}
	}
	c.Tracker.URL = strings.TrimSpace(c.Tracker.URL)
	c.Tracker.Token = strings.TrimSpace(c.Tracker.Token)
	if c.Tracker.Token == "" {
		if value, ok := os.LookupEnv("STUDIOLOAD_TRACKER_TOKEN"); ok {
			c.Tracker.Token = strings.TrimSpace(value)
		}
	}
	if c.Tracker.TimeoutSeconds <= 0 {
		c.Tracker.TimeoutSeconds = defaultTrackerTimeoutSeconds
	}
	if c.Tracker.RetryAttempts <= 0 {
		c.Tracker.RetryAttempts = defaultTrackerRetryAttempts
	}
	return nil
}

func (c *Config) normalizeTeam() {
	members := make([]TeamMember, 0, len(c.Team))
	seen := make(map[string]int, len(c.Team))
	for _, m := range c.Team {
		name := strings.TrimSpace(m.Name)
		key := strings.ToLower(name)
		if idx, ok := seen[key]; ok {
			members[idx].MaxCapacity = m.MaxCapacity
			continue
		}
		seen[key] = len(members)
		members = append(members, TeamMember{Name: name, MaxCapacity: m.MaxCapacity})
	}
	c.Team = members
}

func (c *Config) normalizeForecast() {
	if c.Forecast.DefaultDurationDays <= 0 {
		c.Forecast.DefaultDurationDays = defaultDurationDays
	}
	if c.Forecast.HeatmapDays <= 0 {
		c.Forecast.HeatmapDays = defaultHeatmapDays
	}
	if c.Forecast.TimelineWeeks <= 0 {
		c.Forecast.TimelineWeeks = defaultTimelineWeeks
	}
	if len(c.Forecast.RollupWindows) == 0 {
		c.Forecast.RollupWindows = defaultRollupWindows()
	}
	if c.Forecast.MemberWindowDays <= 0 {
		c.Forecast.MemberWindowDays = defaultMemberWindowDays
	}
	if c.Forecast.BusyThreshold <= 0 {
		c.Forecast.BusyThreshold = defaultBusyThreshold
	}
	if c.Forecast.OverThreshold <= 0 {
		c.Forecast.OverThreshold = defaultOverThreshold
	}
}

func (c *Config) normalizeRisk() {
	if c.Risk.DueSoonDays <= 0 {
		c.Risk.DueSoonDays = defaultDueSoonDays
	}
	if c.Risk.RecentUpdateDays <= 0 {
		c.Risk.RecentUpdateDays = defaultRecentUpdateDays
	}
	if c.Risk.VarianceThreshold <= 0 {
		c.Risk.VarianceThreshold = defaultVarianceThreshold
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeDaemon() {
	if c.Daemon.RefreshIntervalSeconds <= 0 {
		c.Daemon.RefreshIntervalSeconds = defaultRefreshIntervalSeconds
	}
	if c.Daemon.CacheTTLSeconds < 0 {
		c.Daemon.CacheTTLSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
