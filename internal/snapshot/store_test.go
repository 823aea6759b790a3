package snapshot_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"studioload/internal/capacity"
	"studioload/internal/snapshot"
	"studioload/internal/testsupport"
)

func TestRecordIsIdempotentPerDay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	day := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

	rows := []snapshot.Row{
		{Date: day, Category: "production", ActualPercent: 40, TargetPercent: 35, Variance: 5, RunID: "run-1"},
		{Date: day, Category: "forecast", ActualPercent: 10, TargetPercent: 10, Variance: 0, RunID: "run-1"},
	}
	n, err := store.Record(ctx, rows)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows inserted, got %d", n)
	}

	rows[0].ActualPercent = 99
	rows[0].RunID = "run-2"
	n, err = store.Record(ctx, rows)
	if err != nil {
		t.Fatalf("second Record failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected repeat record to insert nothing, got %d", n)
	}

	listed, err := store.List(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(listed))
	}
	if listed[0].Category != "forecast" || listed[1].Category != "production" {
		t.Fatalf("unexpected ordering: %+v", listed)
	}
	if listed[1].ActualPercent != 40 || listed[1].RunID != "run-1" {
		t.Fatalf("expected first write to win, got %+v", listed[1])
	}
	if !listed[1].Date.Equal(capacity.Day(day)) {
		t.Fatalf("unexpected stored date %s", listed[1].Date)
	}
}

func TestRecordedAndListRange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	base := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		day := base.AddDate(0, 0, i)
		if _, err := store.Record(ctx, []snapshot.Row{{Date: day, Category: "production"}}); err != nil {
			t.Fatalf("Record day %d: %v", i, err)
		}
	}

	ok, err := store.Recorded(ctx, base.AddDate(0, 0, 2))
	if err != nil || !ok {
		t.Fatalf("expected day recorded, ok=%v err=%v", ok, err)
	}
	ok, err = store.Recorded(ctx, base.AddDate(0, 0, 20))
	if err != nil || ok {
		t.Fatalf("expected day missing, ok=%v err=%v", ok, err)
	}

	listed, err := store.List(ctx, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 rows in range, got %d", len(listed))
	}
}

func TestRecordRejectsMissingCategory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if _, err := store.Record(context.Background(), []snapshot.Row{{Date: time.Now()}}); err == nil {
		t.Fatal("expected error for empty category")
	}
}

func TestReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, snapshot.DatabaseFile)
	store, err := snapshot.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	if _, err := store.Record(context.Background(), []snapshot.Row{{Date: day, Category: "production"}}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	store, err = snapshot.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	ok, err := store.Recorded(context.Background(), day)
	if err != nil || !ok {
		t.Fatalf("expected row after reopen, ok=%v err=%v", ok, err)
	}
}

func TestBuildRows(t *testing.T) {
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	active := []capacity.ActiveTask{
		{Task: capacity.Task{ID: "a", Phase: capacity.PhaseProduction}, Allocation: 30},
		{Task: capacity.Task{ID: "b", Phase: capacity.PhaseProduction}, Allocation: 30},
		{Task: capacity.Task{ID: "c", Phase: capacity.PhasePostProduction}, Allocation: 40},
	}
	targets := map[capacity.Phase]float64{
		capacity.PhasePreproduction:  20,
		capacity.PhaseProduction:     40,
		capacity.PhasePostProduction: 30,
		capacity.PhaseForecast:       10,
	}

	rows := snapshot.BuildRows(day, active, targets, "run")
	if len(rows) != len(capacity.Phases) {
		t.Fatalf("expected a row per phase, got %d", len(rows))
	}
	byCategory := map[string]snapshot.Row{}
	for _, r := range rows {
		byCategory[r.Category] = r
	}
	prod := byCategory[string(capacity.PhaseProduction)]
	if prod.ActualPercent != 60 || prod.Variance != 20 {
		t.Fatalf("unexpected production row %+v", prod)
	}
	pre := byCategory[string(capacity.PhasePreproduction)]
	if pre.ActualPercent != 0 || pre.Variance != -20 {
		t.Fatalf("unexpected preproduction row %+v", pre)
	}
	post := byCategory[string(capacity.PhasePostProduction)]
	if math.Abs(post.Variance-10) > 1e-9 {
		t.Fatalf("unexpected post row %+v", post)
	}

	empty := snapshot.BuildRows(day, nil, targets, "")
	for _, r := range empty {
		if r.ActualPercent != 0 {
			t.Fatalf("expected zero actuals with no load, got %+v", r)
		}
	}
}
