package l2gestures

import "math"

// condition is one threshold test with its normalized margin in [0,1].
type condition struct {
	ok     bool
	margin float64
}

func clampConfidence(value, min, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

func above(value, threshold, band float64) condition {
	return condition{ok: value >= threshold, margin: clampConfidence((value-threshold)/band, 0, 1)}
}

func below(value, threshold, band float64) condition {
	return condition{ok: value < threshold, margin: clampConfidence((threshold-value)/band, 0, 1)}
}

// allOf holds when every condition holds; its margin is the weakest one.
func allOf(conds ...condition) condition {
	out := condition{ok: true, margin: 1}
	for _, c := range conds {
		out.ok = out.ok && c.ok
		out.margin = math.Min(out.margin, c.margin)
	}
	return out
}

// anyOf holds when some condition holds; its margin is the strongest
// satisfied one.
func anyOf(conds ...condition) condition {
	var out condition
	for _, c := range conds {
		if c.ok {
			out.ok = true
			out.margin = math.Max(out.margin, c.margin)
		}
	}
	return out
}

type rule struct {
	label Label
	cond  condition
}

func (r rule) eval() (bool, float64) {
	if !r.cond.ok {
		return false, 0
	}
	return true, r.cond.margin
}

// Finger indices into Features arrays.
const (
	fIndex = iota
	fMiddle
	fRing
	fPinky
)

func (c *Classifier) extended(f Features, i int) condition {
	return allOf(
		above(f.TipDistance[i], c.cfg.ExtendThreshold, c.cfg.MarginBand),
		below(f.BendDeg[i], c.cfg.MaxExtendedBendDeg, c.cfg.MaxExtendedBendDeg),
	)
}

func (c *Classifier) notExtended(f Features, i int) condition {
	return anyOf(
		below(f.TipDistance[i], c.cfg.ExtendThreshold, c.cfg.MarginBand),
		above(f.BendDeg[i], c.cfg.MaxExtendedBendDeg, c.cfg.MaxExtendedBendDeg),
	)
}

func (c *Classifier) curled(f Features, i int) condition {
	return below(f.TipDistance[i], c.cfg.CurlThreshold, c.cfg.MarginBand)
}

func (c *Classifier) notCurled(f Features, i int) condition {
	return above(f.TipDistance[i], c.cfg.CurlThreshold, c.cfg.MarginBand)
}

// rules returns one mutually exclusive rule per gesture:
//   - pinch and point split on the pinch distance;
//   - point, peace and palm split on the middle and ring fingers;
//   - grab needs a curled index, which pinch and point forbid.
func (c *Classifier) rules(f Features) []rule {
	cfg := c.cfg
	facingBand := math.Max(1-cfg.PalmFacingMin, 1e-6)
	return []rule{
		{LabelPinch, allOf(
			below(f.PinchDistance, cfg.PinchThreshold, cfg.MarginBand),
			c.notCurled(f, fIndex),
			c.notExtended(f, fMiddle),
			c.notExtended(f, fRing),
			c.notExtended(f, fPinky),
		)},
		{LabelPalm, allOf(
			c.extended(f, fIndex),
			c.extended(f, fMiddle),
			c.extended(f, fRing),
			c.extended(f, fPinky),
			above(f.ThumbReach, cfg.ThumbExtendMargin, cfg.MarginBand),
			above(f.PalmFacing, cfg.PalmFacingMin, facingBand),
		)},
		{LabelPoint, allOf(
			c.extended(f, fIndex),
			c.curled(f, fMiddle),
			c.curled(f, fRing),
			c.curled(f, fPinky),
			above(f.PinchDistance, cfg.PinchThreshold, cfg.MarginBand),
		)},
		{LabelPeace, allOf(
			c.extended(f, fIndex),
			c.extended(f, fMiddle),
			c.curled(f, fRing),
			c.curled(f, fPinky),
		)},
		{LabelGrab, allOf(
			c.curled(f, fIndex),
			c.curled(f, fMiddle),
			c.curled(f, fRing),
			c.curled(f, fPinky),
		)},
	}
}
