// Package logging assembles structured slog loggers and formatting helpers used
// across studioload.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so refresh cycles and API requests tag
// their log lines with run and request identifiers. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
