package l1landmarks

import "gonum.org/v1/gonum/spatial/r3"

// Smoother applies a per-landmark exponential moving average. A landmark
// that moves further than JumpThreshold between frames is treated as a
// tracking glitch and restarts from its raw position; the others keep
// smoothing.
type Smoother struct {
	Alpha         float64
	JumpThreshold float64

	prev []Point
}

// NewSmoother creates a smoother. alpha weights the newest frame; 1
// disables smoothing.
func NewSmoother(alpha, jumpThreshold float64) *Smoother {
	return &Smoother{Alpha: alpha, JumpThreshold: jumpThreshold}
}

// Reset forgets the running average.
func (s *Smoother) Reset() { s.prev = nil }

// Apply returns the smoothed frame. Frames without a valid hand pass
// through unchanged and reset the average.
func (s *Smoother) Apply(f Frame) Frame {
	if f.Validate() != nil {
		s.Reset()
		return f
	}

	if s.prev == nil {
		s.prev = append([]Point(nil), f.Points...)
		return f.WithPoints(append([]Point(nil), f.Points...))
	}

	out := make([]Point, NumLandmarks)
	for i, p := range f.Points {
		if s.jumped(p, s.prev[i]) {
			out[i] = p
			continue
		}
		blended := r3.Add(r3.Scale(s.Alpha, p.Vec()), r3.Scale(1-s.Alpha, s.prev[i].Vec()))
		out[i] = PointFromVec(blended)
	}
	s.prev = out
	return f.WithPoints(append([]Point(nil), out...))
}

func (s *Smoother) jumped(p, prev Point) bool {
	if s.JumpThreshold <= 0 {
		return false
	}
	return r3.Norm(r3.Sub(p.Vec(), prev.Vec())) > s.JumpThreshold
}
