// Package tracker loads task and team records from the studio's project
// tracker and materializes them into a complete Snapshot before any capacity
// math runs.
//
// Two sources exist: FileSource reads a JSON or YAML export from disk and
// HTTPSource fetches a JSON export over HTTP with bearer auth and retry.
// Records that fail to decode are skipped individually and reported as
// DecodeIssue values so one malformed task never blocks the rest.
package tracker
