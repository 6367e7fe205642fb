package render

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"github.com/banshee-data/handvox/internal/sculpt/l5scene"
)

// FaceCorners returns the four corners of face f of the unit cube at
// pos, in order around the face.
func FaceCorners(pos l3space.GridCoord, f l5scene.Face) [4]r3.Vec {
	o := pos.Vec()
	n := f.Normal()
	var plane r3.Vec
	if n.X > 0 || n.Y > 0 || n.Z > 0 {
		plane = n.Vec()
	}

	// u and v span the face.
	var u, v r3.Vec
	switch {
	case n.X != 0:
		u, v = r3.Vec{Y: 1}, r3.Vec{Z: 1}
	case n.Y != 0:
		u, v = r3.Vec{X: 1}, r3.Vec{Z: 1}
	default:
		u, v = r3.Vec{X: 1}, r3.Vec{Y: 1}
	}
	base := r3.Add(o, plane)
	return [4]r3.Vec{
		base,
		r3.Add(base, u),
		r3.Add(base, r3.Add(u, v)),
		r3.Add(base, v),
	}
}

// FaceCenter returns the midpoint of face f of the cube at pos.
func FaceCenter(pos l3space.GridCoord, f l5scene.Face) r3.Vec {
	c := FaceCorners(pos, f)
	return r3.Scale(0.5, r3.Add(c[0], c[2]))
}

// FacesEye reports whether face f of the cube at pos is turned toward eye.
func FacesEye(pos l3space.GridCoord, f l5scene.Face, eye r3.Vec) bool {
	return r3.Dot(f.Normal().Vec(), r3.Sub(eye, FaceCenter(pos, f))) > 0
}

// cubeEdges index the corners of a unit cube, corner i having bit 0 as
// x, bit 1 as y and bit 2 as z.
var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// CubeEdges returns the twelve edges of the unit cube at pos.
func CubeEdges(pos l3space.GridCoord) [12][2]r3.Vec {
	o := pos.Vec()
	var corners [8]r3.Vec
	for i := range corners {
		corners[i] = r3.Add(o, r3.Vec{X: bit(i, 0), Y: bit(i, 1), Z: bit(i, 2)})
	}
	var out [12][2]r3.Vec
	for i, e := range cubeEdges {
		out[i] = [2]r3.Vec{corners[e[0]], corners[e[1]]}
	}
	return out
}

func bit(i, k int) float64 { return float64(i >> k & 1) }

// FloorLines returns the grid lines on the bottom face of the bounds.
func FloorLines(b l3space.Bounds) [][2]r3.Vec {
	y := float64(b.Min.Y)
	x0, x1 := float64(b.Min.X), float64(b.Max.X+1)
	z0, z1 := float64(b.Min.Z), float64(b.Max.Z+1)
	var out [][2]r3.Vec
	for x := b.Min.X; x <= b.Max.X+1; x++ {
		out = append(out, [2]r3.Vec{{X: float64(x), Y: y, Z: z0}, {X: float64(x), Y: y, Z: z1}})
	}
	for z := b.Min.Z; z <= b.Max.Z+1; z++ {
		out = append(out, [2]r3.Vec{{X: x0, Y: y, Z: float64(z)}, {X: x1, Y: y, Z: float64(z)}})
	}
	return out
}

// Light is an ambient term plus one directional light.
type Light struct {
	Ambient   float64
	Dir       r3.Vec // direction the light travels
	DirAmount float64
}

// DefaultLight shines down and away from the default camera.
var DefaultLight = Light{Ambient: 0.45, Dir: r3.Vec{X: -0.4, Y: -1, Z: -0.6}, DirAmount: 0.55}

// Intensity returns the brightness of a surface with normal n.
func (l Light) Intensity(n r3.Vec) float64 {
	amb := clamp01(l.Ambient)
	if r3.Norm(l.Dir) == 0 {
		return amb
	}
	d := math.Max(0, r3.Dot(r3.Unit(n), r3.Scale(-1, r3.Unit(l.Dir))))
	return clamp01(amb + d*clamp01(l.DirAmount))
}

// Shade scales c by the light falling on face f.
func (l Light) Shade(c color.RGBA, f l5scene.Face) color.RGBA {
	k := l.Intensity(f.Normal().Vec())
	return color.RGBA{
		R: uint8(math.Round(float64(c.R) * k)),
		G: uint8(math.Round(float64(c.G) * k)),
		B: uint8(math.Round(float64(c.B) * k)),
		A: c.A,
	}
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }
