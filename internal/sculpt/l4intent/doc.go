// Package l4intent owns Layer 4 (Intent) of the gesture data model.
//
// Responsibilities: the per-frame gesture sample, the debounce/confirm
// state machine that turns a noisy label stream into edge-triggered
// actions, and the Action variant consumed by the scene engine and
// synthesized by the keyboard shell.
// Key types: Sample, Action, StateMachine, State, Stats.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
package l4intent
