package risk_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"studioload/internal/capacity"
	"studioload/internal/risk"
)

var today = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func dayOffset(n int) *time.Time {
	d := capacity.AddDays(today, n)
	return &d
}

func floatPtr(v float64) *float64 { return &v }

func TestClassifyOverdueIgnoresOverrides(t *testing.T) {
	rules := risk.DefaultRules()
	task := capacity.Task{
		ID:           "t1",
		Phase:        capacity.PhaseProduction,
		DueDate:      dayOffset(-3),
		Status:       capacity.StatusInProgress,
		LastModified: today.Add(-2 * time.Hour),
	}
	f := rules.Classify(task, today)
	want := []string{"Overdue by 3 days"}
	if !reflect.DeepEqual(f.Reasons, want) {
		t.Fatalf("expected %v, got %v", want, f.Reasons)
	}
	if !f.AtRisk() {
		t.Fatal("expected overdue task at risk")
	}
}

func TestClassifyDueSoonPostProduction(t *testing.T) {
	rules := risk.DefaultRules()
	task := capacity.Task{
		ID:           "t2",
		Phase:        capacity.PhasePostProduction,
		DueDate:      dayOffset(4),
		Status:       capacity.StatusFilmed,
		LastModified: capacity.AddDays(today, -6),
	}
	f := rules.Classify(task, today)
	want := []string{"Due in 4 days, not yet in progress"}
	if !reflect.DeepEqual(f.Reasons, want) {
		t.Fatalf("expected %v, got %v", want, f.Reasons)
	}

	task.LastModified = capacity.AddDays(today, -1)
	if f := rules.Classify(task, today); f.AtRisk() {
		t.Fatalf("expected recently updated task to be cleared, got %v", f.Reasons)
	}
}

func TestClassifyDueSoonProductionNeedsScheduling(t *testing.T) {
	rules := risk.DefaultRules()
	task := capacity.Task{
		ID:      "t3",
		Phase:   capacity.PhaseProduction,
		DueDate: dayOffset(7),
		Status:  capacity.StatusNeedsScheduling,
	}
	f := rules.Classify(task, today)
	want := []string{"Due in 7 days, needs scheduling"}
	if !reflect.DeepEqual(f.Reasons, want) {
		t.Fatalf("expected %v, got %v", want, f.Reasons)
	}

	task.DueDate = dayOffset(8)
	if f := rules.Classify(task, today); f.AtRisk() {
		t.Fatalf("expected task outside due-soon window to be clear, got %v", f.Reasons)
	}
}

func TestClassifyDueSoonIgnoresOtherPhases(t *testing.T) {
	rules := risk.DefaultRules()
	for _, phase := range []capacity.Phase{capacity.PhasePreproduction, capacity.PhaseForecast} {
		task := capacity.Task{ID: "t", Phase: phase, DueDate: dayOffset(2), Status: capacity.StatusNeedsScheduling}
		if f := rules.Classify(task, today); f.AtRisk() {
			t.Fatalf("%s: expected no findings, got %v", phase, f.Reasons)
		}
	}
}

func TestClassifyInProgressClearsDueSoon(t *testing.T) {
	rules := risk.DefaultRules()
	task := capacity.Task{
		ID:      "t4",
		Phase:   capacity.PhasePostProduction,
		DueDate: dayOffset(2),
		Status:  capacity.StatusInProgress,
	}
	if f := rules.Classify(task, today); f.AtRisk() {
		t.Fatalf("expected in-progress task to be clear, got %v", f.Reasons)
	}
}

func TestClassifyVariance(t *testing.T) {
	rules := risk.DefaultRules()
	task := capacity.Task{
		ID:                  "t5",
		Phase:               capacity.PhasePreproduction,
		EstimatedAllocation: floatPtr(20),
		ActualAllocation:    floatPtr(26),
	}
	f := rules.Classify(task, today)
	want := []string{"Over estimate by 30%"}
	if !reflect.DeepEqual(f.Reasons, want) {
		t.Fatalf("expected %v, got %v", want, f.Reasons)
	}

	task.ActualAllocation = floatPtr(24)
	if f := rules.Classify(task, today); f.AtRisk() {
		t.Fatalf("expected 20%% variance to stay under threshold, got %v", f.Reasons)
	}

	task.ActualAllocation = nil
	if f := rules.Classify(task, today); f.AtRisk() {
		t.Fatalf("expected missing actual to skip variance, got %v", f.Reasons)
	}

	task.EstimatedAllocation = floatPtr(0)
	task.ActualAllocation = floatPtr(10)
	if f := rules.Classify(task, today); f.AtRisk() {
		t.Fatalf("expected zero estimate to skip variance, got %v", f.Reasons)
	}
}

func TestClassifyVarianceReportsTenths(t *testing.T) {
	rules := risk.DefaultRules()
	tests := []struct {
		name      string
		estimated float64
		actual    float64
		want      []string
	}{
		{name: "just over threshold", estimated: 25, actual: 30.1, want: []string{"Over estimate by 20.4%"}},
		{name: "rounds down to threshold", estimated: 1000, actual: 1200.4, want: nil},
		{name: "whole percent", estimated: 20, actual: 26, want: []string{"Over estimate by 30%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := capacity.Task{
				ID:                  "v",
				Phase:               capacity.PhaseProduction,
				EstimatedAllocation: floatPtr(tt.estimated),
				ActualAllocation:    floatPtr(tt.actual),
			}
			f := rules.Classify(task, today)
			if !reflect.DeepEqual(f.Reasons, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, f.Reasons)
			}
		})
	}
}

func TestClassifyOrdersReasons(t *testing.T) {
	rules := risk.DefaultRules()
	task := capacity.Task{
		ID:                  "t6",
		Phase:               capacity.PhaseProduction,
		DueDate:             dayOffset(-10),
		Status:              capacity.StatusNeedsScheduling,
		EstimatedAllocation: floatPtr(10),
		ActualAllocation:    floatPtr(20),
	}
	f := rules.Classify(task, today)
	if len(f.Reasons) != 2 || !strings.HasPrefix(f.Reasons[0], "Overdue by 10") || !strings.HasPrefix(f.Reasons[1], "Over estimate by 100") {
		t.Fatalf("unexpected reasons %v", f.Reasons)
	}
}

func TestClassifyAllSkipsCompletedAndClearTasks(t *testing.T) {
	rules := risk.DefaultRules()
	tasks := []capacity.Task{
		{ID: "done", DueDate: dayOffset(-5), Completed: true},
		{ID: "late", DueDate: dayOffset(-1)},
		{ID: "fine", DueDate: dayOffset(30)},
	}
	findings := rules.ClassifyAll(tasks, today)
	if len(findings) != 1 || findings[0].TaskID != "late" {
		t.Fatalf("unexpected findings %+v", findings)
	}
	if findings[0].Reasons[0] != "Overdue by 1 days" {
		t.Fatalf("unexpected reason %q", findings[0].Reasons[0])
	}
}

func TestInProgressOnlyAtRiskWhenOverdue(t *testing.T) {
	rules := risk.DefaultRules()
	for offset := -20; offset <= 20; offset++ {
		for _, phase := range capacity.Phases {
			task := capacity.Task{ID: "p", Phase: phase, DueDate: dayOffset(offset), Status: capacity.StatusInProgress}
			f := rules.Classify(task, today)
			if f.AtRisk() != (offset < 0) {
				t.Fatalf("offset %d phase %s: unexpected at-risk=%v reasons=%v", offset, phase, f.AtRisk(), f.Reasons)
			}
		}
	}
}
