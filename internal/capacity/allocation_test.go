package capacity_test

import (
	"testing"
	"time"

	"studioload/internal/capacity"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestAllocateProductionScenario(t *testing.T) {
	due := time.Date(2026, 10, 29, 0, 0, 0, 0, time.UTC)
	start := due.AddDate(0, 0, -14)

	got := capacity.Allocate(capacity.AllocationInput{
		Priority:   6,
		Complexity: 7,
		Phase:      capacity.PhaseProduction,
		Start:      &start,
		Due:        &due,
	})
	if got != 11.0 {
		t.Fatalf("expected 11.0, got %v", got)
	}
}

func TestAllocateCases(t *testing.T) {
	due := time.Date(2026, 10, 29, 0, 0, 0, 0, time.UTC)
	twoWeeks := due.AddDate(0, 0, -14)
	sameDay := due

	tests := []struct {
		name string
		in   capacity.AllocationInput
		want float64
	}{
		{
			name: "missing priority",
			in:   capacity.AllocationInput{Complexity: 7, Phase: capacity.PhaseProduction},
			want: 0,
		},
		{
			name: "missing complexity",
			in:   capacity.AllocationInput{Priority: 6, Phase: capacity.PhaseProduction},
			want: 0,
		},
		{
			name: "broll production",
			in: capacity.AllocationInput{
				Priority: 6, Complexity: 7, Phase: capacity.PhaseProduction,
				Start: &twoWeeks, Due: &due, BRollRequired: true,
			},
			want: 16.5,
		},
		{
			name: "broll ignored outside production",
			in: capacity.AllocationInput{
				Priority: 12, Complexity: 12, Phase: capacity.PhasePreproduction, BRollRequired: true,
			},
			want: 16.8,
		},
		{
			name: "default duration preproduction",
			in:   capacity.AllocationInput{Priority: 12, Complexity: 12, Phase: capacity.PhasePreproduction},
			want: 16.8,
		},
		{
			name: "floor clamps tiny loads",
			in:   capacity.AllocationInput{Priority: 1, Complexity: 1, Phase: capacity.PhaseForecast},
			want: capacity.MinAllocation,
		},
		{
			name: "ceiling clamps short heavy post",
			in: capacity.AllocationInput{
				Priority: 12, Complexity: 12, Phase: capacity.PhasePostProduction,
				Start: &sameDay, Due: &due,
			},
			want: capacity.MaxAllocation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := capacity.Allocate(tc.in); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAllocateStaysWithinBounds(t *testing.T) {
	due := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	durations := []*time.Time{nil, datePtr(due), datePtr(due.AddDate(0, 0, -3)), datePtr(due.AddDate(0, 0, -90))}
	for _, phase := range capacity.Phases {
		for _, broll := range []bool{false, true} {
			for _, start := range durations {
				for p := 1; p <= 12; p++ {
					for c := 1; c <= 12; c++ {
						in := capacity.AllocationInput{
							Priority: p, Complexity: c, Phase: phase,
							Start: start, Due: &due, BRollRequired: broll,
						}
						got := capacity.Allocate(in)
						if got < capacity.MinAllocation || got > capacity.MaxAllocation {
							t.Fatalf("allocation %v out of bounds for %+v", got, in)
						}
						if again := capacity.Allocate(in); again != got {
							t.Fatalf("allocation not deterministic: %v vs %v", got, again)
						}
					}
				}
			}
		}
	}
}

func TestAllocateTaskUsesTaskFields(t *testing.T) {
	task := capacity.Task{ID: "t-1", Priority: 12, Complexity: 12, Phase: capacity.PhasePreproduction}
	res := capacity.AllocateTask(task)
	if res.TaskID != "t-1" || res.Percent != 16.8 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
