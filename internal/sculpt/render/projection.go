package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/handvox/internal/sculpt/l3space"
)

// Lens parameters.
const (
	FieldOfViewDeg = 45
	NearPlane      = 0.1
	FarPlane       = 500
)

// Point is a projected screen position. Depth is the distance along the
// view axis, larger is further away.
type Point struct {
	X, Y  float32
	Depth float32
}

// Projector maps grid space onto a width x height screen.
type Projector struct {
	mvp    mgl32.Mat4
	eye    r3.Vec
	width  float32
	height float32
}

// NewProjector looks from cam's eye at target with +Y up.
func NewProjector(cam l3space.CameraTransform, target r3.Vec, width, height int) Projector {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	eye := cam.Eye(target)
	view := mgl32.LookAtV(vec32(eye), vec32(target), mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(FieldOfViewDeg), float32(width)/float32(height), NearPlane, FarPlane)
	return Projector{
		mvp:    proj.Mul4(view),
		eye:    eye,
		width:  float32(width),
		height: float32(height),
	}
}

// Eye returns the camera position in grid space.
func (p Projector) Eye() r3.Vec { return p.eye }

// Project returns the screen position of v. ok is false for points at
// or behind the near plane.
func (p Projector) Project(v r3.Vec) (pt Point, ok bool) {
	clip := p.mvp.Mul4x1(mgl32.Vec4{float32(v.X), float32(v.Y), float32(v.Z), 1})
	w := clip.W()
	if w <= NearPlane {
		return Point{}, false
	}
	ndcX, ndcY := clip.X()/w, clip.Y()/w
	return Point{
		X:     (ndcX*0.5 + 0.5) * p.width,
		Y:     (1 - (ndcY*0.5 + 0.5)) * p.height,
		Depth: w,
	}, true
}

func vec32(v r3.Vec) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
