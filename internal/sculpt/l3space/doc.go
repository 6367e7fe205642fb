// Package l3space owns Layer 3 (Space) of the gesture data model.
//
// Responsibilities: integer grid coordinates and the working-volume
// bounds, the orbit camera transform, and the cursor mapper that turns a
// normalized hand landmark into a grid cell under the current camera.
// Key types: GridCoord, Bounds, CameraTransform, CursorMapper, Cursor.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
package l3space
