// Package pipeline runs the per-frame control loop: landmark frame in,
// smoothing and gating, classification, cursor mapping, the gesture state
// machine, and at most one action applied to the scene engine. Keyboard
// actions are queued and applied between frames. Each post-apply
// snapshot is published atomically for the renderer.
package pipeline
