package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studioload/internal/capacity"
	"studioload/internal/config"
	"studioload/internal/logging"
)

// ErrUnsupportedFormat reports a file export whose extension is not JSON or YAML.
var ErrUnsupportedFormat = errors.New("unsupported tracker export format")

// Snapshot is a fully materialized tracker read.
type Snapshot struct {
	Tasks     []capacity.Task
	Team      []capacity.TeamMember
	Issues    []DecodeIssue
	FetchedAt time.Time
}

// Source yields one Snapshot per call.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// NewSource builds the source configured in [tracker] and applies [[team]]
// overrides to every snapshot it returns.
func NewSource(cfg *config.Config, logger *slog.Logger) (Source, error) {
	if cfg == nil {
		return nil, errors.New("tracker source requires config")
	}
	logger = logging.NewComponentLogger(logger, "tracker")

	var inner Source
	switch strings.ToLower(strings.TrimSpace(cfg.Tracker.Source)) {
	case "file", "":
		inner = NewFileSource(cfg.Tracker.Path, WithFileLogger(logger))
	case "http":
		inner = NewHTTPSource(HTTPConfig{
			URL:            cfg.Tracker.URL,
			Token:          cfg.Tracker.Token,
			TimeoutSeconds: cfg.Tracker.TimeoutSeconds,
		}, WithLogger(logger), WithRetryMaxAttempts(cfg.Tracker.RetryAttempts))
	default:
		return nil, fmt.Errorf("tracker source %q not supported", cfg.Tracker.Source)
	}

	overrides := make([]capacity.TeamMember, 0, len(cfg.Team))
	for _, m := range cfg.Team {
		overrides = append(overrides, capacity.TeamMember{Name: m.Name, MaxCapacity: m.MaxCapacity})
	}
	return &teamOverrideSource{inner: inner, overrides: overrides}, nil
}

type teamOverrideSource struct {
	inner     Source
	overrides []capacity.TeamMember
}

func (s *teamOverrideSource) Fetch(ctx context.Context) (Snapshot, error) {
	snap, err := s.inner.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Team = MergeTeam(snap.Team, s.overrides)
	return snap, nil
}

// MergeTeam returns fetched with each override replacing the member of the
// same name (case-insensitive) or appended when absent.
func MergeTeam(fetched, overrides []capacity.TeamMember) []capacity.TeamMember {
	merged := append([]capacity.TeamMember(nil), fetched...)
	index := make(map[string]int, len(merged))
	for i, m := range merged {
		index[strings.ToLower(strings.TrimSpace(m.Name))] = i
	}
	for _, o := range overrides {
		key := strings.ToLower(strings.TrimSpace(o.Name))
		if i, ok := index[key]; ok {
			merged[i].MaxCapacity = o.MaxCapacity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, o)
	}
	return merged
}
