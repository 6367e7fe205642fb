package l5scene

import (
	"image/color"
	"sort"

	"github.com/banshee-data/handvox/internal/sculpt/l2gestures"
	"github.com/banshee-data/handvox/internal/sculpt/l3space"
)

// SnapshotVoxel is a voxel with its resolved color.
type SnapshotVoxel struct {
	Voxel
	RGBA color.RGBA
}

// Snapshot is an immutable deep copy of the scene for renderers.
// Voxels are sorted by coordinate.
type Snapshot struct {
	Revision     uint64
	Voxels       []SnapshotVoxel
	Cursor       l3space.Cursor
	Camera       l3space.CameraTransform
	Bounds       l3space.Bounds
	Palette      []color.RGBA
	PaletteIndex int
	PaletteColor color.RGBA
	UndoDepth    int
	RedoDepth    int
	Gesture      l2gestures.Label
}

// Snapshot returns a deep copy of the current scene.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	voxels := e.sortedVoxels()
	out := make([]SnapshotVoxel, len(voxels))
	for i, v := range voxels {
		out[i] = SnapshotVoxel{Voxel: v, RGBA: e.palette.Color(v.Color)}
	}
	return Snapshot{
		Revision:     e.revision,
		Voxels:       out,
		Cursor:       e.cursor,
		Camera:       e.camera,
		Bounds:       e.cfg.Bounds,
		Palette:      e.palette.Colors(),
		PaletteIndex: e.palette.Index(),
		PaletteColor: e.palette.Current(),
		UndoDepth:    e.history.UndoDepth(),
		RedoDepth:    e.history.RedoDepth(),
		Gesture:      e.gesture,
	}
}

// sortedVoxels lists the grid ordered by coordinate. Callers hold e.mu.
func (e *Engine) sortedVoxels() []Voxel {
	out := make([]Voxel, 0, len(e.grid))
	for pos, c := range e.grid {
		out = append(out, Voxel{Pos: pos, Color: c})
	}
	sortVoxels(out)
	return out
}

func sortVoxels(v []Voxel) {
	sort.Slice(v, func(i, j int) bool { return v[i].Pos.Less(v[j].Pos) })
}

// Grid returns the occupied cells as a map, for comparisons.
func (s Snapshot) Grid() map[l3space.GridCoord]int {
	m := make(map[l3space.GridCoord]int, len(s.Voxels))
	for _, v := range s.Voxels {
		m[v.Pos] = v.Color
	}
	return m
}
