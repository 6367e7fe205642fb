package l1landmarks

import "gonum.org/v1/gonum/spatial/r3"

// VelocityGate rejects frames whose wrist moved implausibly fast since
// the last accepted frame, which is how a misdetection usually shows up.
type VelocityGate struct {
	// MaxSpeed is in normalized units per second; zero disables the gate.
	MaxSpeed float64

	have      bool
	lastWrist r3.Vec
	lastNanos int64
	rejected  uint64
}

// NewVelocityGate creates a gate with the given speed limit.
func NewVelocityGate(maxSpeed float64) *VelocityGate {
	return &VelocityGate{MaxSpeed: maxSpeed}
}

// Check returns the frame unchanged when plausible, otherwise the no-hand
// sentinel carrying the same sequence and timestamp. ok is false only for
// rejected frames.
func (g *VelocityGate) Check(f Frame) (out Frame, ok bool) {
	if f.Validate() != nil {
		g.have = false
		return f, true
	}

	wrist := f.Vec(Wrist)
	if g.MaxSpeed > 0 && g.have {
		dt := float64(f.TimestampNanos-g.lastNanos) / 1e9
		if dt > 0 && r3.Norm(r3.Sub(wrist, g.lastWrist))/dt > g.MaxSpeed {
			g.rejected++
			return NoHand(f.Seq, f.TimestampNanos), false
		}
	}

	g.have = true
	g.lastWrist = wrist
	g.lastNanos = f.TimestampNanos
	return f, true
}

// Rejected returns how many frames the gate has dropped.
func (g *VelocityGate) Rejected() uint64 { return g.rejected }
