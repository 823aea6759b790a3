// Package notifications delivers capacity alerts via ntfy.
//
// The ntfy implementation publishes to the topic configured in config.toml
// and degrades to a no-op when no topic is set. Alert kinds that are switched
// off in [notifications] are dropped silently so callers never branch on
// configuration themselves.
package notifications
