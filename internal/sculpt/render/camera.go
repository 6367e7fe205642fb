package render

import (
	"math"

	"github.com/banshee-data/handvox/internal/sculpt/l3space"
)

// DefaultCameraSmoothing is the fraction of the remaining distance the
// view camera covers each frame.
const DefaultCameraSmoothing = 0.15

// snapEpsilon ends the approach once the view camera is this close.
const snapEpsilon = 1e-3

// SmoothedCamera eases the view camera toward the engine camera.
type SmoothedCamera struct {
	Alpha float64

	cur  l3space.CameraTransform
	have bool
}

// NewSmoothedCamera creates a smoother; alpha 1 follows exactly.
func NewSmoothedCamera(alpha float64) *SmoothedCamera {
	return &SmoothedCamera{Alpha: alpha}
}

// Follow moves one step toward target and returns the view camera. The
// first call snaps. Yaw takes the short way round.
func (s *SmoothedCamera) Follow(target l3space.CameraTransform) l3space.CameraTransform {
	if !s.have || s.Alpha >= 1 {
		s.cur, s.have = target, true
		return s.cur
	}
	dYaw := math.Remainder(target.Yaw-s.cur.Yaw, 360)
	dPitch := target.Pitch - s.cur.Pitch
	dDist := target.Distance - s.cur.Distance
	if math.Abs(dYaw) < snapEpsilon && math.Abs(dPitch) < snapEpsilon && math.Abs(dDist) < snapEpsilon {
		s.cur = target
		return s.cur
	}
	s.cur.Yaw = math.Remainder(s.cur.Yaw+s.Alpha*dYaw, 360)
	s.cur.Pitch += s.Alpha * dPitch
	s.cur.Distance += s.Alpha * dDist
	return s.cur
}

// Current returns the last view camera.
func (s *SmoothedCamera) Current() l3space.CameraTransform { return s.cur }
