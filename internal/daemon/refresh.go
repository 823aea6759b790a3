package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studioload/internal/capacity"
	"studioload/internal/forecast"
	"studioload/internal/logging"
	"studioload/internal/risk"
	"studioload/internal/scale"
	"studioload/internal/snapshot"
)

// sharedComputeTimeout bounds a recompute that no longer follows the
// cancellation of the caller that started it.
const sharedComputeTimeout = 2 * time.Minute

// Dashboard returns the cached view, recomputing it from the tracker when it
// is older than the configured TTL. The recompute is shared by every waiting
// caller, so it runs detached from ctx's cancellation and keeps only its values.
func (d *Daemon) Dashboard(ctx context.Context) (View, error) {
	return d.cache.GetOrCompute(d.cacheTTL, func() (View, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedComputeTimeout)
		defer cancel()
		return d.compute(computeCtx)
	})
}

func (d *Daemon) compute(ctx context.Context) (View, error) {
	snap, err := d.source.Fetch(ctx)
	if err != nil {
		return View{}, fmt.Errorf("fetch tracker snapshot: %w", err)
	}
	in := forecast.Input{Tasks: snap.Tasks, Team: snap.Team, Today: d.now()}
	return View{
		Dashboard: forecast.Build(in, d.opts),
		Active:    forecast.ActiveTasks(in, d.opts),
		Issues:    len(snap.Issues),
		FetchedAt: snap.FetchedAt,
	}, nil
}

// Refresh runs one cycle: rebuild the dashboard, record today's snapshot if
// none exists yet, and send alerts for conditions not already reported.
func (d *Daemon) Refresh(ctx context.Context) (View, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, d.logger)

	view, err := d.Dashboard(ctx)
	d.mu.Lock()
	d.lastRefresh = d.now()
	d.lastRunID = runID
	if err != nil {
		d.lastError = err.Error()
	} else {
		d.lastError = ""
	}
	d.mu.Unlock()
	if err != nil {
		return View{}, err
	}

	inserted, err := d.recordSnapshot(ctx, view, runID)
	if err != nil {
		logger.Error("snapshot record failed", logging.Error(err))
	}

	d.notify(ctx, logger, view.Dashboard)

	logger.Info("refresh complete",
		logging.Int("tasks", len(view.Active)),
		logging.Int("at_risk", len(view.Dashboard.Risks)),
		logging.Int("snapshot_rows", inserted),
		logging.Int("decode_issues", view.Issues),
	)
	return view, nil
}

func (d *Daemon) recordSnapshot(ctx context.Context, view View, runID string) (int, error) {
	day := capacity.Day(view.Dashboard.Today)
	recorded, err := d.store.Recorded(ctx, day)
	if err != nil {
		return 0, err
	}
	if recorded {
		return 0, nil
	}
	rows := snapshot.BuildRows(day, view.Active, d.targets, runID)
	return d.store.Record(ctx, rows)
}

// notify alerts on findings and over-capacity windows that were not present in
// the previous cycle. A condition that clears and later returns alerts again.
func (d *Daemon) notify(ctx context.Context, logger *slog.Logger, dash forecast.Dashboard) {
	d.mu.Lock()
	var fresh []risk.Finding
	currentRisk := make(map[string]struct{}, len(dash.Risks))
	for _, f := range dash.Risks {
		currentRisk[f.TaskID] = struct{}{}
		if _, seen := d.notifiedRisk[f.TaskID]; !seen {
			fresh = append(fresh, f)
		}
	}
	d.notifiedRisk = currentRisk

	var over []forecast.Rollup
	currentOver := make(map[int]struct{})
	for _, r := range dash.Rollups {
		if r.Status != scale.StatusOver {
			continue
		}
		currentOver[r.Days] = struct{}{}
		if _, seen := d.notifiedOver[r.Days]; !seen {
			over = append(over, r)
		}
	}
	d.notifiedOver = currentOver
	d.mu.Unlock()

	if len(fresh) > 0 {
		if err := d.notifier.NotifyAtRisk(ctx, fresh); err != nil {
			logger.Warn("at-risk notification failed", logging.Error(err))
		}
	}
	for _, r := range over {
		if err := d.notifier.NotifyOverCapacity(ctx, r); err != nil {
			logger.Warn("over-capacity notification failed", logging.Error(err), logging.Int("window_days", r.Days))
		}
	}
}
