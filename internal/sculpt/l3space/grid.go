package l3space

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GridCoord identifies one cell of the voxel working volume.
type GridCoord struct {
	X, Y, Z int
}

// Add returns c offset by d.
func (c GridCoord) Add(d GridCoord) GridCoord {
	return GridCoord{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
}

// Less orders coordinates by X, then Y, then Z.
func (c GridCoord) Less(o GridCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

func (c GridCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Vec returns the cell's minimum corner as a vector.
func (c GridCoord) Vec() r3.Vec {
	return r3.Vec{X: float64(c.X), Y: float64(c.Y), Z: float64(c.Z)}
}

// Bounds is the inclusive working volume.
type Bounds struct {
	Min, Max GridCoord
}

// NewBounds validates and builds bounds from per-axis corners.
func NewBounds(min, max [3]int) (Bounds, error) {
	for axis := 0; axis < 3; axis++ {
		if min[axis] > max[axis] {
			return Bounds{}, fmt.Errorf("grid min %v exceeds max %v on axis %d", min, max, axis)
		}
	}
	return Bounds{
		Min: GridCoord{X: min[0], Y: min[1], Z: min[2]},
		Max: GridCoord{X: max[0], Y: max[1], Z: max[2]},
	}, nil
}

// Contains reports whether c lies inside the bounds.
func (b Bounds) Contains(c GridCoord) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X &&
		c.Y >= b.Min.Y && c.Y <= b.Max.Y &&
		c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

// Clamp returns the nearest cell inside the bounds.
func (b Bounds) Clamp(c GridCoord) GridCoord {
	return GridCoord{
		X: clampInt(c.X, b.Min.X, b.Max.X),
		Y: clampInt(c.Y, b.Min.Y, b.Max.Y),
		Z: clampInt(c.Z, b.Min.Z, b.Max.Z),
	}
}

// Extent is the number of cells along each axis.
func (b Bounds) Extent() r3.Vec {
	return r3.Sub(r3.Add(b.Max.Vec(), r3.Vec{X: 1, Y: 1, Z: 1}), b.Min.Vec())
}

// Center is the geometric centre of the volume in continuous coordinates.
func (b Bounds) Center() r3.Vec {
	return r3.Add(b.Min.Vec(), r3.Scale(0.5, b.Extent()))
}

// clampPos confines a continuous position to [Min, Max+1) per axis so
// flooring always lands on a valid cell.
func (b Bounds) clampPos(p r3.Vec) r3.Vec {
	hi := r3.Add(b.Max.Vec(), r3.Vec{X: 1, Y: 1, Z: 1})
	return r3.Vec{
		X: clampOpen(p.X, float64(b.Min.X), hi.X),
		Y: clampOpen(p.Y, float64(b.Min.Y), hi.Y),
		Z: clampOpen(p.Z, float64(b.Min.Z), hi.Z),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampOpen(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v >= hi {
		return math.Nextafter(hi, lo)
	}
	return v
}

// Floor returns the cell containing p.
func Floor(p r3.Vec) GridCoord {
	return GridCoord{
		X: int(math.Floor(p.X)),
		Y: int(math.Floor(p.Y)),
		Z: int(math.Floor(p.Z)),
	}
}
