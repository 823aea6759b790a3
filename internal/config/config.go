package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Tracker describes where task and team records come from.
type Tracker struct {
	// Source is "file" (JSON or YAML export) or "http" (JSON endpoint).
	Source         string `toml:"source"`
	Path           string `toml:"path"`
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// TeamMember overrides or extends the team reported by the tracker.
type TeamMember struct {
	Name        string  `toml:"name"`
	MaxCapacity float64 `toml:"max_capacity"`
}

// Forecast contains window sizes and absolute status thresholds.
type Forecast struct {
	DefaultDurationDays int     `toml:"default_duration_days"`
	HeatmapDays         int     `toml:"heatmap_days"`
	TimelineWeeks       int     `toml:"timeline_weeks"`
	RollupWindows       []int   `toml:"rollup_windows"`
	MemberWindowDays    int     `toml:"member_window_days"`
	BusyThreshold       float64 `toml:"busy_threshold"`
	OverThreshold       float64 `toml:"over_threshold"`
}

// Risk contains the at-risk rule tunables.
type Risk struct {
	DueSoonDays       int     `toml:"due_soon_days"`
	RecentUpdateDays  int     `toml:"recent_update_days"`
	VarianceThreshold float64 `toml:"variance_threshold"`
}

// Targets holds the desired share of allocated load per phase, in percent.
type Targets struct {
	Preproduction  float64 `toml:"preproduction"`
	Production     float64 `toml:"production"`
	PostProduction float64 `toml:"postproduction"`
	Forecast       float64 `toml:"forecast"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	AtRisk         bool   `toml:"at_risk"`
	OverCapacity   bool   `toml:"over_capacity"`
}

// Daemon contains refresh timing for the background service.
type Daemon struct {
	RefreshIntervalSeconds int `toml:"refresh_interval_seconds"`
	CacheTTLSeconds        int `toml:"cache_ttl_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for studioload.
//
// Configuration sections by subsystem:
//   - Paths: state/log directories and API bind address
//   - Tracker: task source (file export or HTTP endpoint)
//   - Team: capacity overrides per person
//   - Forecast: reporting windows and absolute busy/over thresholds
//   - Risk: due-soon, recent-update and variance rules
//   - Targets: per-phase load share targets for daily snapshots
//   - Notifications: ntfy push notification settings
//   - Daemon: refresh interval and dashboard cache TTL
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tracker       Tracker       `toml:"tracker"`
	Team          []TeamMember  `toml:"team"`
	Forecast      Forecast      `toml:"forecast"`
	Risk          Risk          `toml:"risk"`
	Targets       Targets       `toml:"targets"`
	Notifications Notifications `toml:"notifications"`
	Daemon        Daemon        `toml:"daemon"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("studioload.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
