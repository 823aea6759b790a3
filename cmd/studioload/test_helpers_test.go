package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"studioload/internal/config"
	"studioload/internal/testsupport"
)

const testToday = "2026-10-15"

const testTasks = `{
  "tasks": [
    {"id": "T-1", "name": "Launch video", "phase": "production", "assignee": "Ana",
     "priority": 8, "complexity": 6, "startDate": "2026-10-05", "dueDate": "2026-10-10",
     "status": "editing", "lastModified": "2026-10-01"},
    {"id": "T-2", "name": "Podcast recut", "phase": "post-production", "assignee": "Ben",
     "priority": 4, "complexity": 3, "startDate": "2026-10-12", "dueDate": "2026-10-30",
     "status": "in progress", "lastModified": "2026-10-14"},
    {"id": "T-3", "name": "Archive", "phase": "forecast", "priority": 2, "complexity": 2,
     "completed": true}
  ],
  "team": [
    {"name": "Ana", "maxCapacity": 100},
    {"name": "Ben", "maxCapacity": 80}
  ]
}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	testsupport.WriteFile(t, cfg.Tracker.Path, testTasks)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, string(data))
}

// run executes the CLI with the env's config and fixed reference day.
func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"--config", e.configPath, "--today", testToday}, args...)
	return runCLI(t, full...)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
