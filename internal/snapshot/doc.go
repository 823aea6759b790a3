// Package snapshot persists daily capacity snapshot rows in SQLite.
//
// Each row records, for one calendar day and one category (a production
// phase), the actual share of allocated load, the configured target share, and
// the variance between them. Rows are append-only and keyed by (date,
// category): recording the same day twice is a no-op, so the daemon can run
// its refresh cycle as often as it likes.
//
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package snapshot
