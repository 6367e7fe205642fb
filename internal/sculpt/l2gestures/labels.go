package l2gestures

// Label is the gesture recognised in one frame.
type Label string

const (
	// LabelNone means no hand, a malformed frame, or an ambiguous pose.
	LabelNone Label = "none"
	// LabelPinch is thumb tip touching index tip (place a voxel).
	LabelPinch Label = "pinch"
	// LabelPalm is an open hand facing the camera (delete a voxel).
	LabelPalm Label = "palm"
	// LabelPoint is the index finger alone extended (move the cursor).
	LabelPoint Label = "point"
	// LabelPeace is index and middle extended (cycle the palette).
	LabelPeace Label = "peace"
	// LabelGrab is a closed fist (rotate the camera).
	LabelGrab Label = "grab"
)

// Labels lists every gesture label except LabelNone.
var Labels = []Label{LabelPinch, LabelPalm, LabelPoint, LabelPeace, LabelGrab}

// Valid reports whether l is a known label.
func (l Label) Valid() bool {
	if l == LabelNone {
		return true
	}
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Confidence levels used by callers that need a coarse bucket.
const (
	HighConfidence   = 0.85
	MediumConfidence = 0.70
	LowConfidence    = 0.50
)

// ConfidenceBucket maps a confidence onto a coarse bucket name for reports.
func ConfidenceBucket(c float64) string {
	switch {
	case c >= HighConfidence:
		return "high"
	case c >= MediumConfidence:
		return "medium"
	case c >= LowConfidence:
		return "low"
	default:
		return "very_low"
	}
}
