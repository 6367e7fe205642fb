package l3space

import (
	"math"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cursor is the hand position in grid space. Pos is continuous; Cell is
// its floor and always lies within the mapper's bounds.
type Cursor struct {
	Pos   r3.Vec
	Cell  GridCoord
	Valid bool
}

// CursorMapper projects a normalized landmark into the working volume.
type CursorMapper struct {
	Bounds Bounds
	// DepthScale converts landmark z into cells.
	DepthScale float64
}

// CursorMapperFromTuning builds a mapper from the tuning config.
func CursorMapperFromTuning(cfg *config.TuningConfig) (CursorMapper, error) {
	b, err := NewBounds(cfg.GetGridMin(), cfg.GetGridMax())
	if err != nil {
		return CursorMapper{}, err
	}
	return CursorMapper{Bounds: b, DepthScale: cfg.GetDepthScale()}, nil
}

// Map scales the landmark about the image centre to the grid extent,
// rotates it out of the camera frame, and clamps it into the bounds.
// A non-finite landmark yields an invalid cursor at the grid centre.
func (m CursorMapper) Map(ref l1landmarks.Point, cam CameraTransform) Cursor {
	centre := m.Bounds.Center()
	if !finite(ref.X) || !finite(ref.Y) || !finite(ref.Z) {
		p := m.Bounds.clampPos(centre)
		return Cursor{Pos: p, Cell: Floor(p)}
	}

	ext := m.Bounds.Extent()
	local := r3.Vec{
		X: (ref.X - 0.5) * ext.X,
		Y: (0.5 - ref.Y) * ext.Y,
		Z: -ref.Z * m.DepthScale,
	}
	pos := m.Bounds.clampPos(r3.Add(centre, cam.ToWorld(local)))
	return Cursor{Pos: pos, Cell: Floor(pos), Valid: true}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
