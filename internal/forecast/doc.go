// Package forecast composes daily workload aggregation over the fixed
// reporting windows: a 30-day daily heatmap, a 26-week timeline, 7/14/30-day
// rollups, and per-member utilization.
//
// Build bundles every view together with allocations and risk findings into a
// Dashboard. All functions are pure; the caller supplies a fully materialized
// task list and the reference day.
package forecast
