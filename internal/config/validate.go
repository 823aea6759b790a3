package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateTeam(); err != nil {
		return err
	}
	if err := c.validateForecast(); err != nil {
		return err
	}
	if err := c.validateTargets(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTracker() error {
	switch c.Tracker.Source {
	case "file":
		if strings.TrimSpace(c.Tracker.Path) == "" {
			return errors.New("tracker.path must be set when tracker.source is \"file\"")
		}
	case "http":
		if c.Tracker.URL == "" {
			return errors.New("tracker.url must be set when tracker.source is \"http\"")
		}
		if !strings.HasPrefix(c.Tracker.URL, "http://") && !strings.HasPrefix(c.Tracker.URL, "https://") {
			return fmt.Errorf("tracker.url must be an http(s) URL, got %q", c.Tracker.URL)
		}
	default:
		return fmt.Errorf("tracker.source must be \"file\" or \"http\", got %q", c.Tracker.Source)
	}
	return nil
}

func (c *Config) validateTeam() error {
	for i, m := range c.Team {
		if m.Name == "" {
			return fmt.Errorf("team[%d].name must be set", i)
		}
		if m.MaxCapacity < 0 {
			return fmt.Errorf("team[%d].max_capacity must be >= 0", i)
		}
	}
	return nil
}

func (c *Config) validateForecast() error {
	for _, n := range c.Forecast.RollupWindows {
		if n <= 0 {
			return fmt.Errorf("forecast.rollup_windows must contain positive day counts, got %d", n)
		}
	}
	if c.Forecast.BusyThreshold >= c.Forecast.OverThreshold {
		return fmt.Errorf("forecast.busy_threshold (%.0f) must be below forecast.over_threshold (%.0f)",
			c.Forecast.BusyThreshold, c.Forecast.OverThreshold)
	}
	return nil
}

func (c *Config) validateTargets() error {
	targets := map[string]float64{
		"targets.preproduction":  c.Targets.Preproduction,
		"targets.production":     c.Targets.Production,
		"targets.postproduction": c.Targets.PostProduction,
		"targets.forecast":       c.Targets.Forecast,
	}
	for key, value := range targets {
		if value < 0 || value > 100 {
			return fmt.Errorf("%s must be between 0 and 100", key)
		}
	}
	return nil
}
