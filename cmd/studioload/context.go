package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"studioload/internal/capacity"
	"studioload/internal/config"
	"studioload/internal/forecast"
	"studioload/internal/logging"
	"studioload/internal/tracker"
)

type commandContext struct {
	configFlag *string
	todayFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	// now is replaced in tests.
	now func() time.Time
}

func newCommandContext(configFlag, todayFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		todayFlag:  todayFlag,
		now:        time.Now,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// today returns the reference day from --today, or the current UTC date.
func (c *commandContext) today() (time.Time, error) {
	if c.todayFlag != nil {
		if raw := strings.TrimSpace(*c.todayFlag); raw != "" {
			parsed, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", raw)
			}
			return capacity.Day(parsed), nil
		}
	}
	return capacity.Day(c.now()), nil
}

// cliLogger writes diagnostics to stderr so table and JSON output on stdout
// stay clean.
func (c *commandContext) cliLogger() *slog.Logger {
	cfg := c.configValue()
	if cfg == nil {
		return logging.NewNop()
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// fetchInput reads the tracker once and pairs the result with the reference day.
func (c *commandContext) fetchInput(ctx context.Context) (forecast.Input, tracker.Snapshot, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return forecast.Input{}, tracker.Snapshot{}, err
	}
	today, err := c.today()
	if err != nil {
		return forecast.Input{}, tracker.Snapshot{}, err
	}
	source, err := tracker.NewSource(cfg, c.cliLogger())
	if err != nil {
		return forecast.Input{}, tracker.Snapshot{}, fmt.Errorf("tracker source: %w", err)
	}
	snap, err := source.Fetch(ctx)
	if err != nil {
		return forecast.Input{}, tracker.Snapshot{}, fmt.Errorf("fetch tracker: %w", err)
	}
	return forecast.Input{Tasks: snap.Tasks, Team: snap.Team, Today: today}, snap, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
