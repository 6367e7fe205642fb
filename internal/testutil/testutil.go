// Package testutil provides shared test fixtures.
//
// The hand pose builders produce 21-landmark frames for each gesture so
// classifier, state machine and pipeline tests share the same geometry
// instead of hand-typing landmark arrays.
package testutil

import (
	"math"

	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
)

// Pose names a synthetic hand shape.
type Pose string

const (
	PosePalm  Pose = "palm"
	PosePinch Pose = "pinch"
	PosePoint Pose = "point"
	PosePeace Pose = "peace"
	PoseGrab  Pose = "grab"
	// PoseClaw half-curls every finger so no rule matches.
	PoseClaw Pose = "claw"
)

// FrameInterval is the spacing HandFrame uses between sequence numbers.
const FrameInterval = int64(33_333_333)

// HandOpts places the synthetic hand in the image.
type HandOpts struct {
	WristX, WristY, WristZ float64
	Scale                  float64 // wrist to middle MCP in image units
	RollDeg                float64 // rotation in the image plane
	YawDeg                 float64 // rotation about the hand's long axis
}

// DefaultHandOpts centres an upright hand facing the camera.
func DefaultHandOpts() HandOpts {
	return HandOpts{WristX: 0.5, WristY: 0.75, Scale: 0.1}
}

// hand-space vector: u to the right, v up the hand, w toward the camera
// is negative.
type hv struct{ u, v, w float64 }

func (a hv) add(b hv) hv { return hv{a.u + b.u, a.v + b.v, a.w + b.w} }

func (a hv) scale(s float64) hv { return hv{a.u * s, a.v * s, a.w * s} }

func (a hv) norm() float64 { return math.Sqrt(a.u*a.u + a.v*a.v + a.w*a.w) }

func (a hv) unit() hv { return a.scale(1 / a.norm()) }

func (a hv) plus(ds ...hv) hv {
	for _, d := range ds {
		a = a.add(d)
	}
	return a
}

func depth(w float64) hv { return hv{w: w} }

func along(d hv, s float64) hv { return d.scale(s) }

var wrist = hv{0, 0, 0}

var mcps = [4]hv{{-0.3, 0.95, 0}, {0, 1.0, 0}, {0.25, 0.95, 0}, {0.48, 0.85, 0}}

// lengths of extended digits, index..pinky.
var lengths = [4]float64{1.15, 1.15, 1.15, 1.1}

func extendedFinger(i int) [4]hv {
	mcp := mcps[i]
	d := mcp.unit()
	l := lengths[i]
	return [4]hv{
		mcp,
		mcp.plus(along(d, 0.45*l)),
		mcp.plus(along(d, 0.75*l)),
		mcp.plus(along(d, l)),
	}
}

func curledFinger(i int) [4]hv {
	mcp := mcps[i]
	d := mcp.unit()
	return [4]hv{
		mcp,
		mcp.plus(along(d, 0.4), depth(-0.1)),
		mcp.plus(along(d, 0.2), depth(-0.3)),
		mcp.plus(along(d, -0.15), depth(-0.2)),
	}
}

func clawFinger(i int) [4]hv {
	mcp := mcps[i]
	d := mcp.unit()
	return [4]hv{
		mcp,
		mcp.plus(along(d, 0.45), depth(-0.1)),
		mcp.plus(along(d, 0.5), depth(-0.4)),
		mcp.plus(along(d, 0.3), depth(-0.55)),
	}
}

func hookedIndex() [4]hv {
	mcp := mcps[0]
	d := mcp.unit()
	pip := mcp.plus(along(d, 0.5))
	dip := pip.plus(along(d, 0.3), depth(-0.15))
	tip := dip.plus(along(d, 0.05), depth(-0.25))
	return [4]hv{mcp, pip, dip, tip}
}

var (
	thumbOpen   = [4]hv{{-0.2, 0.25, 0}, {-0.5, 0.45, 0}, {-0.92, 0.5, 0}, {-1.35, 0.5, 0}}
	thumbTucked = [4]hv{{-0.2, 0.25, 0}, {-0.35, 0.5, 0}, {-0.15, 0.65, -0.15}, {0.05, 0.7, -0.2}}
)

func poseJoints(p Pose) (thumb [4]hv, fingers [4][4]hv) {
	thumb = thumbTucked
	switch p {
	case PosePalm:
		thumb = thumbOpen
		for i := range fingers {
			fingers[i] = extendedFinger(i)
		}
	case PosePinch:
		fingers[0] = hookedIndex()
		for i := 1; i < 4; i++ {
			fingers[i] = curledFinger(i)
		}
		tip := fingers[0][3].plus(hv{u: 0.02})
		thumb = [4]hv{{-0.2, 0.25, 0}, {-0.45, 0.55, 0}, {-0.55, 1.1, -0.2}, tip}
	case PosePoint:
		fingers[0] = extendedFinger(0)
		for i := 1; i < 4; i++ {
			fingers[i] = curledFinger(i)
		}
	case PosePeace:
		fingers[0] = extendedFinger(0)
		fingers[1] = extendedFinger(1)
		fingers[2] = curledFinger(2)
		fingers[3] = curledFinger(3)
	case PoseGrab:
		for i := range fingers {
			fingers[i] = curledFinger(i)
		}
	default:
		for i := range fingers {
			fingers[i] = clawFinger(i)
		}
	}
	return thumb, fingers
}

// HandPoints returns the 21 landmarks of pose p placed by o.
func HandPoints(p Pose, o HandOpts) []l1landmarks.Point {
	thumb, fingers := poseJoints(p)
	joints := make([]hv, l1landmarks.NumLandmarks)
	joints[l1landmarks.Wrist] = wrist
	for k, idx := range l1landmarks.Thumb.Joints {
		joints[idx] = thumb[k]
	}
	for i, finger := range l1landmarks.Fingers {
		for k, idx := range finger.Joints {
			joints[idx] = fingers[i][k]
		}
	}

	sy, cy := math.Sincos(o.YawDeg * math.Pi / 180)
	sr, cr := math.Sincos(o.RollDeg * math.Pi / 180)
	pts := make([]l1landmarks.Point, len(joints))
	for i, j := range joints {
		u := j.u*cy + j.w*sy
		w := -j.u*sy + j.w*cy
		u, v := u*cr-j.v*sr, u*sr+j.v*cr
		pts[i] = l1landmarks.Point{
			X: o.WristX + o.Scale*u,
			Y: o.WristY - o.Scale*v,
			Z: o.WristZ + o.Scale*w,
		}
	}
	return pts
}

// HandFrame wraps HandPoints in a frame stamped seq*FrameInterval.
func HandFrame(seq uint64, p Pose, o HandOpts) l1landmarks.Frame {
	return l1landmarks.Frame{
		Seq:            seq,
		TimestampNanos: int64(seq) * FrameInterval,
		Points:         HandPoints(p, o),
	}
}

// NoHandFrame returns the sentinel frame stamped like HandFrame.
func NoHandFrame(seq uint64) l1landmarks.Frame {
	return l1landmarks.NoHand(seq, int64(seq)*FrameInterval)
}
