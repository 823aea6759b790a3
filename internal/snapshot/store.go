package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"studioload/internal/config"
)

// DatabaseFile is the snapshot database name inside the state directory.
const DatabaseFile = "snapshots.db"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages snapshot persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the snapshot database in the configured
// state directory.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("snapshot store requires config")
	}
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.StateDir, DatabaseFile))
}

// OpenPath opens the database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts rows, skipping any (date, category) pair already stored.
// It returns the number of rows actually written.
func (s *Store) Record(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	ctx = ensureContext(ctx)

	inserted := 0
	err := retryOnBusy(ctx, func() error {
		inserted = 0
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		recordedAt := time.Now().UTC().Format(time.RFC3339Nano)
		for _, row := range rows {
			if strings.TrimSpace(row.Category) == "" {
				return errors.New("snapshot row category is required")
			}
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO snapshots (
                    snapshot_date, category, actual_percent, target_percent, variance, run_id, recorded_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				formatDate(row.Date),
				row.Category,
				row.ActualPercent,
				row.TargetPercent,
				row.Variance,
				nullableString(row.RunID),
				recordedAt,
			)
			if err != nil {
				return fmt.Errorf("insert snapshot %s/%s: %w", formatDate(row.Date), row.Category, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Recorded reports whether any row exists for the given day.
func (s *Store) Recorded(ctx context.Context, day time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT COUNT(1) FROM snapshots WHERE snapshot_date = ?", formatDate(day),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count snapshots: %w", err)
	}
	return count > 0, nil
}

// List returns rows with from <= date <= to ordered by date then category.
// A zero bound is open.
func (s *Store) List(ctx context.Context, from, to time.Time) ([]Row, error) {
	query := `SELECT snapshot_date, category, actual_percent, target_percent, variance, run_id, recorded_at FROM snapshots`
	var (
		clauses []string
		args    []any
	)
	if !from.IsZero() {
		clauses = append(clauses, "snapshot_date >= ?")
		args = append(args, formatDate(from))
	}
	if !to.IsZero() {
		clauses = append(clauses, "snapshot_date <= ?")
		args = append(args, formatDate(to))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY snapshot_date, category"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			dateRaw     string
			row         Row
			runID       sql.NullString
			recordedRaw string
		)
		if err := rows.Scan(&dateRaw, &row.Category, &row.ActualPercent, &row.TargetPercent, &row.Variance, &runID, &recordedRaw); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if parsed, err := time.Parse(time.DateOnly, dateRaw); err == nil {
			row.Date = parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, recordedRaw); err == nil {
			row.RecordedAt = parsed
		}
		row.RunID = runID.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func formatDate(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
