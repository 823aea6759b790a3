package testsupport

import (
	"path/filepath"
	"testing"

	"studioload/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The tracker points at tasks.json inside the temp directory and the API binds
// to an ephemeral port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Tracker.Source = "file"
	cfgVal.Tracker.Path = filepath.Join(base, "tasks.json")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTeam replaces the configured team overrides.
func WithTeam(members ...config.TeamMember) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Team = append([]config.TeamMember(nil), members...)
	}
}

// WithHTTPTracker points the tracker at url.
func WithHTTPTracker(url, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tracker.Source = "http"
		b.cfg.Tracker.URL = url
		b.cfg.Tracker.Token = token
		b.cfg.Tracker.RetryAttempts = 1
	}
}

// WithNtfyTopic enables notifications against topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
