// Package l5scene owns Layer 5 (Scene) of the gesture data model.
//
// Responsibilities: the sparse voxel grid, the active palette, the
// camera transform, and the bounded undo/redo history of reversible
// edits. The Engine applies l4intent actions synchronously and publishes
// deep-copied snapshots, with visible-face culling, for renderers running
// on other goroutines.
// Key types: Engine, Snapshot, History, Entry, Palette, Voxel.
//
// Dependency rule: L5 may depend on L1-L4, but never on adapters.
package l5scene
