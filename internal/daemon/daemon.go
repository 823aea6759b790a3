package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"studioload/internal/capacity"
	"studioload/internal/config"
	"studioload/internal/dashcache"
	"studioload/internal/forecast"
	"studioload/internal/logging"
	"studioload/internal/notifications"
	"studioload/internal/snapshot"
	"studioload/internal/tracker"
)

// LockFileName is the single-instance lock inside the state directory.
const LockFileName = "studioload.lock"

// View is one computed dashboard together with the inputs needed to record
// a snapshot from it.
type View struct {
	Dashboard forecast.Dashboard    `json:"dashboard"`
	Active    []capacity.ActiveTask `json:"-"`
	Issues    int                   `json:"decodeIssues"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

// Daemon coordinates refresh cycles and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *snapshot.Store
	source   tracker.Source
	notifier notifications.Service
	opts     forecast.Options
	targets  map[capacity.Phase]float64

	cache    *dashcache.Cache[View]
	cacheTTL time.Duration
	interval time.Duration
	now      func() time.Time

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu           sync.Mutex
	lastRefresh  time.Time
	lastRunID    string
	lastError    string
	notifiedRisk map[string]struct{}
	notifiedOver map[int]struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool      `json:"running"`
	PID             int       `json:"pid"`
	LastRefresh     time.Time `json:"lastRefresh,omitempty"`
	LastRunID       string    `json:"lastRunId,omitempty"`
	LastError       string    `json:"lastError,omitempty"`
	CachedAt        time.Time `json:"cachedAt,omitempty"`
	SnapshotDBPath  string    `json:"snapshotDbPath"`
	LockFilePath    string    `json:"lockFilePath"`
	RefreshInterval string    `json:"refreshInterval"`
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithClock overrides the time source for refresh cycles and the cache.
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) {
		if now != nil {
			d.now = now
		}
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *snapshot.Store, source tracker.Source, notifier notifications.Service, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || source == nil {
		return nil, errors.New("daemon requires config, snapshot store, and tracker source")
	}
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, LockFileName)
	d := &Daemon{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "daemon"),
		store:        store,
		source:       source,
		notifier:     notifier,
		opts:         forecast.OptionsFromConfig(cfg),
		targets:      snapshot.TargetsFromConfig(cfg),
		cacheTTL:     time.Duration(cfg.Daemon.CacheTTLSeconds) * time.Second,
		interval:     time.Duration(cfg.Daemon.RefreshIntervalSeconds) * time.Second,
		now:          time.Now,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
		notifiedRisk: make(map[string]struct{}),
		notifiedOver: make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.interval <= 0 {
		d.interval = 15 * time.Minute
	}
	d.cache = dashcache.New(dashcache.WithClock[View](d.now))
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the API server, and launches the
// refresh loop. The first refresh runs immediately.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("ensure lock directory: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another studioload daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.wg.Add(1)
	go d.loop(runCtx)

	d.logger.Info("studioload daemon started",
		logging.String("lock", d.lockPath),
		logging.Duration("refresh_interval", d.interval),
	)
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("studioload daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or "" when the API is disabled or not started.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, cachedAt, _ := d.cache.Peek()
	return Status{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		LastRefresh:     d.lastRefresh,
		LastRunID:       d.lastRunID,
		LastError:       d.lastError,
		CachedAt:        cachedAt,
		SnapshotDBPath:  d.store.Path(),
		LockFilePath:    d.lockPath,
		RefreshInterval: d.interval.String(),
	}
}

func (d *Daemon) loop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.Refresh(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("refresh cycle failed", logging.Error(err))
			if notifyErr := d.notifier.NotifyError(ctx, err, "refresh"); notifyErr != nil {
				d.logger.Warn("error notification failed", logging.Error(notifyErr))
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
