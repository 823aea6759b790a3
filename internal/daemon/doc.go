// Package daemon coordinates the long-running studioload process.
//
// It wires the tracker source, forecasting core, snapshot store, dashboard
// cache, and notifier into one lifecycle guarded by a flock-based lock so only
// a single instance refreshes and records snapshots. A periodic refresh cycle
// fetches tracker data, rebuilds the dashboard, records the day's snapshot at
// most once, and raises alerts for newly at-risk tasks and over-capacity
// windows. An HTTP JSON API serves the cached dashboard to other tools.
//
// Keep orchestration logic here: capacity math belongs in the core packages
// while the daemon focuses on startup, shutdown, and scheduling.
package daemon
