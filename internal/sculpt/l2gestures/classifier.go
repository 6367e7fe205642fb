package l2gestures

import (
	"math"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"gonum.org/v1/gonum/spatial/r3"
)

// minHandScale rejects frames whose reference bones have collapsed.
const minHandScale = 1e-4

// Config holds the classifier thresholds. Distances are in hand-scale
// units (the longer of wrist→index MCP and wrist→middle MCP).
type Config struct {
	CurlThreshold      float64 // fingertip closer than this to the palm centre is curled
	ExtendThreshold    float64 // fingertip at least this far from the palm centre may be extended
	PinchThreshold     float64 // thumb tip to index tip
	ThumbExtendMargin  float64 // extra reach of the thumb tip beyond the thumb MCP
	PalmFacingMin      float64 // |z| of the unit palm normal
	MaxExtendedBendDeg float64 // straightness required of an extended finger
	MarginBand         float64 // distance that maps to full confidence
}

// DefaultConfig returns the built-in thresholds.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds classifier thresholds from the tuning config.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		CurlThreshold:      cfg.GetCurlThreshold(),
		ExtendThreshold:    cfg.GetExtendThreshold(),
		PinchThreshold:     cfg.GetPinchThreshold(),
		ThumbExtendMargin:  cfg.GetThumbExtendMargin(),
		PalmFacingMin:      cfg.GetPalmFacingMin(),
		MaxExtendedBendDeg: cfg.GetMaxExtendedBendDeg(),
		MarginBand:         cfg.GetMarginBand(),
	}
}

// Features are the geometric measurements a frame is classified on.
// Finger arrays are ordered index, middle, ring, pinky.
type Features struct {
	Scale         float64    // hand scale in normalized image units
	TipDistance   [4]float64 // fingertip to palm centre
	BendDeg       [4]float64 // angle between MCP→PIP and DIP→TIP
	PinchDistance float64    // thumb tip to index tip
	ThumbReach    float64    // |thumb tip−index MCP| − |thumb MCP−index MCP|
	PalmFacing    float64    // 1 when the palm plane faces the camera
	Closed        bool       // every fingertip within the curl threshold
}

// Result holds the outcome of classifying one frame.
type Result struct {
	Label      Label
	Confidence float64
	Model      string
	Features   Features
}

// Classifier performs rule-based classification of landmark frames.
// It is safe for concurrent use; Classify has no side effects.
type Classifier struct {
	ModelVersion string
	cfg          Config
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{ModelVersion: "rule-based-v1.0", cfg: cfg}
}

// Config returns the classifier thresholds.
func (c *Classifier) Config() Config { return c.cfg }

// Classify labels a single frame. Missing, malformed or degenerate
// frames yield LabelNone with zero confidence; it never fails.
func (c *Classifier) Classify(frame l1landmarks.Frame) Result {
	result := Result{Label: LabelNone, Model: c.ModelVersion}
	if frame.Validate() != nil {
		return result
	}

	features, ok := c.extractFeatures(frame)
	if !ok {
		return result
	}
	result.Features = features

	// Rules are disjoint by construction; more than one match means the
	// thresholds were configured to overlap and the pose is ambiguous.
	matches := 0
	for _, r := range c.rules(features) {
		if ok, conf := r.eval(); ok {
			matches++
			result.Label = r.label
			result.Confidence = conf
		}
	}
	if matches != 1 {
		result.Label = LabelNone
		result.Confidence = 0
	}
	return result
}

func (c *Classifier) extractFeatures(frame l1landmarks.Frame) (Features, bool) {
	wrist := frame.Vec(l1landmarks.Wrist)
	indexMCP := frame.Vec(l1landmarks.IndexMCP)
	scale := math.Max(
		r3.Norm(r3.Sub(indexMCP, wrist)),
		r3.Norm(r3.Sub(frame.Vec(l1landmarks.MiddleMCP), wrist)),
	)
	if scale < minHandScale {
		return Features{}, false
	}

	f := Features{Scale: scale}
	centre := frame.PalmCenter()
	f.Closed = true
	for i, finger := range l1landmarks.Fingers {
		j := finger.Joints
		f.TipDistance[i] = r3.Norm(r3.Sub(frame.Vec(finger.Tip()), centre)) / scale
		f.BendDeg[i] = angleDeg(
			r3.Sub(frame.Vec(j[1]), frame.Vec(j[0])),
			r3.Sub(frame.Vec(j[3]), frame.Vec(j[2])),
		)
		if f.TipDistance[i] >= c.cfg.CurlThreshold {
			f.Closed = false
		}
	}

	thumbTip := frame.Vec(l1landmarks.ThumbTip)
	f.PinchDistance = r3.Norm(r3.Sub(thumbTip, frame.Vec(l1landmarks.IndexTip))) / scale
	f.ThumbReach = (r3.Norm(r3.Sub(thumbTip, indexMCP)) -
		r3.Norm(r3.Sub(frame.Vec(l1landmarks.ThumbMCP), indexMCP))) / scale

	normal := r3.Cross(r3.Sub(indexMCP, wrist), r3.Sub(frame.Vec(l1landmarks.PinkyMCP), wrist))
	if n := r3.Norm(normal); n > 0 {
		f.PalmFacing = math.Abs(normal.Z) / n
	}
	return f, true
}

// angleDeg returns the angle between a and b; zero-length bones count as straight.
func angleDeg(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	cos := r3.Dot(a, b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
