// Package shell hosts the pipeline: a window that pulls frames, maps
// keys to synthetic actions and draws the scene, or a headless runner
// for recordings and batch replay.
//
// The window needs cgo. Builds without it get a RunWindow that reports
// ErrNoWindow so callers can fall back to headless mode.
package shell
