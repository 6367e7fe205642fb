// Package render turns scene snapshots into screen-space drawing
// primitives and paints them.
//
// Responsibilities: a renderer-local smoothed view camera, perspective
// projection of the grid through mgl32, culling and painter's-order
// sorting of voxel faces, the cursor wireframe, the floor grid, and HUD
// text. Everything up to Scene is pure and testable without a GPU; the
// ebiten painter lives in draw.go and needs cgo.
//
// The smoothed camera never feeds back into the engine, which keeps the
// authoritative camera.
package render
