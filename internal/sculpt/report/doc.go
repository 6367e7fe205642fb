// Package report turns a recorded session into something a person can
// read: per-label confidence statistics, action counts, a PNG of
// confidence and streak over time, and an interactive HTML timeline.
//
// It reads sqlite.FrameRecord values and never touches the live
// pipeline.
package report
