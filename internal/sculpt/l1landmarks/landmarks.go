package l1landmarks

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NumLandmarks is the number of landmarks reported per hand.
const NumLandmarks = 21

// Landmark indices in provider order.
const (
	Wrist = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// Finger lists the four joints of one digit from base to tip.
type Finger struct {
	Name   string
	Joints [4]int
}

// Base returns the landmark index of the digit's first joint.
func (f Finger) Base() int { return f.Joints[0] }

// Tip returns the landmark index of the fingertip.
func (f Finger) Tip() int { return f.Joints[3] }

var (
	Thumb  = Finger{Name: "thumb", Joints: [4]int{ThumbCMC, ThumbMCP, ThumbIP, ThumbTip}}
	Index  = Finger{Name: "index", Joints: [4]int{IndexMCP, IndexPIP, IndexDIP, IndexTip}}
	Middle = Finger{Name: "middle", Joints: [4]int{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip}}
	Ring   = Finger{Name: "ring", Joints: [4]int{RingMCP, RingPIP, RingDIP, RingTip}}
	Pinky  = Finger{Name: "pinky", Joints: [4]int{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip}}
)

// Fingers are the four non-thumb digits, index first.
var Fingers = [4]Finger{Index, Middle, Ring, Pinky}

// Point is one landmark in normalized camera space: x and y in [0,1]
// image coordinates with y growing downward, z relative depth where
// smaller values are closer to the camera.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts the point to a gonum vector.
func (p Point) Vec() r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// PointFromVec is the inverse of Point.Vec.
func PointFromVec(v r3.Vec) Point { return Point{X: v.X, Y: v.Y, Z: v.Z} }

func (p Point) finite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Frame is one timestamped snapshot of a single hand. An empty Points
// slice is the "no hand" sentinel. Frames are treated as immutable:
// preprocessors return new frames and never modify Points in place.
type Frame struct {
	Seq            uint64  `json:"seq"`
	TimestampNanos int64   `json:"t"`
	Points         []Point `json:"points,omitempty"`
}

// NoHand builds the sentinel frame for a tick without a detected hand.
func NoHand(seq uint64, timestampNanos int64) Frame {
	return Frame{Seq: seq, TimestampNanos: timestampNanos}
}

// HasHand reports whether the frame carries any landmarks at all.
func (f Frame) HasHand() bool { return len(f.Points) > 0 }

// Point returns landmark i. Callers must Validate first.
func (f Frame) Point(i int) Point { return f.Points[i] }

// Vec returns landmark i as a vector. Callers must Validate first.
func (f Frame) Vec(i int) r3.Vec { return f.Points[i].Vec() }

// WithPoints returns a copy of the frame carrying pts.
func (f Frame) WithPoints(pts []Point) Frame {
	f.Points = pts
	return f
}

var (
	// ErrNoHand marks the sentinel frame.
	ErrNoHand = errors.New("no hand in frame")
	// ErrMalformed marks frames with the wrong point count or
	// non-finite coordinates.
	ErrMalformed = errors.New("malformed landmark frame")
)

// Validate reports whether the frame can be classified. The returned
// error wraps ErrNoHand or ErrMalformed.
func (f Frame) Validate() error {
	if !f.HasHand() {
		return ErrNoHand
	}
	if len(f.Points) != NumLandmarks {
		return fmt.Errorf("%w: %d points, want %d", ErrMalformed, len(f.Points), NumLandmarks)
	}
	for i, p := range f.Points {
		if !p.finite() {
			return fmt.Errorf("%w: landmark %d is not finite", ErrMalformed, i)
		}
	}
	return nil
}

// PalmCenter returns the mean of the wrist and the four finger MCP
// joints. Callers must Validate first.
func (f Frame) PalmCenter() r3.Vec {
	sum := f.Vec(Wrist)
	for _, finger := range Fingers {
		sum = r3.Add(sum, f.Vec(finger.Base()))
	}
	return r3.Scale(1.0/5.0, sum)
}
