// Package sqlite records gesture sessions to a SQLite database: one row
// per session and one per processed frame, so a session can be replayed
// through the pipeline or summarised in a report.
//
// The schema is managed by golang-migrate from migrations embedded in the
// binary.
package sqlite
