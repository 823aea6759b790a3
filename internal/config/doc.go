// Package config loads, normalizes, and validates studioload configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STUDIOLOAD_TRACKER_TOKEN. The Config type centralizes every knob the daemon
// and CLI need: where tasks come from, team capacity overrides, forecast
// windows, risk rules, snapshot targets, and notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
