// Package capacity holds the studio workload model and the pure math that
// turns tracker tasks into load figures.
//
// # Key Types
//
// Task: immutable tracker record (phase, priority, complexity, dates, status).
// TeamMember: person with a weekly capacity ceiling.
// WorkInterval: resolved [Start, Due] range, Start never after Due.
// ActiveTask: non-completed task with its resolved interval and allocation.
// DailyLoad: summed team load for one calendar day.
//
// # Entry Points
//
// Allocate / AllocateTask: priority, complexity, phase and duration to a
// weekly allocation percentage clamped to [5, 80] (0 when inputs are missing).
// ResolveInterval: fills missing start or due dates from a default duration.
// Prepare: filters completed tasks and resolves intervals and allocations once.
// DayLoad / Window: per-day load aggregation.
//
// Everything here is deterministic and side-effect free. Callers own fetching,
// caching, and persistence.
package capacity
