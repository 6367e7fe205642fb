package l2gestures

import (
	"math"
	"testing"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/banshee-data/handvox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, pose testutil.Pose, opts testutil.HandOpts) Result {
	t.Helper()
	c := NewClassifier(DefaultConfig())
	return c.Classify(testutil.HandFrame(1, pose, opts))
}

// ---------------------------------------------------------------------------
// Gesture vocabulary
// ---------------------------------------------------------------------------

func TestClassify_Poses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pose testutil.Pose
		want Label
	}{
		{testutil.PosePalm, LabelPalm},
		{testutil.PosePinch, LabelPinch},
		{testutil.PosePoint, LabelPoint},
		{testutil.PosePeace, LabelPeace},
		{testutil.PoseGrab, LabelGrab},
		{testutil.PoseClaw, LabelNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.pose), func(t *testing.T) {
			t.Parallel()
			r := classify(t, tt.pose, testutil.DefaultHandOpts())
			assert.Equal(t, tt.want, r.Label)
			assert.Equal(t, "rule-based-v1.0", r.Model)
			if tt.want == LabelNone {
				assert.Zero(t, r.Confidence)
				return
			}
			assert.GreaterOrEqual(t, r.Confidence, 0.6, "synthetic poses should clear the default threshold")
			assert.LessOrEqual(t, r.Confidence, 1.0)
		})
	}
}

func TestClassify_InvariantToPlacement(t *testing.T) {
	t.Parallel()

	placements := map[string]testutil.HandOpts{
		"shifted":    {WristX: 0.2, WristY: 0.9, Scale: 0.1},
		"small hand": {WristX: 0.5, WristY: 0.75, Scale: 0.04},
		"rolled 30":  {WristX: 0.5, WristY: 0.75, Scale: 0.1, RollDeg: 30},
		"rolled -45": {WristX: 0.5, WristY: 0.75, Scale: 0.1, RollDeg: -45},
		"depth":      {WristX: 0.5, WristY: 0.75, WristZ: -0.2, Scale: 0.1},
	}

	for name, opts := range placements {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, pose := range []testutil.Pose{testutil.PosePalm, testutil.PosePinch, testutil.PosePoint, testutil.PosePeace, testutil.PoseGrab} {
				base := classify(t, pose, testutil.DefaultHandOpts())
				moved := classify(t, pose, opts)
				assert.Equal(t, base.Label, moved.Label, "pose %s", pose)
				assert.InDelta(t, base.Confidence, moved.Confidence, 1e-9, "pose %s", pose)
			}
		})
	}
}

func TestClassify_PalmMustFaceCamera(t *testing.T) {
	t.Parallel()

	opts := testutil.DefaultHandOpts()
	opts.YawDeg = 30
	r := classify(t, testutil.PosePalm, opts)
	assert.Equal(t, LabelPalm, r.Label)
	assert.InDelta(t, math.Cos(30*math.Pi/180), r.Features.PalmFacing, 1e-9)

	opts.YawDeg = 80
	r = classify(t, testutil.PosePalm, opts)
	assert.Equal(t, LabelNone, r.Label, "an edge-on open hand is ambiguous")
	assert.Zero(t, r.Confidence)
}

func TestClassify_ConfidenceDropsNearThreshold(t *testing.T) {
	t.Parallel()

	frame := testutil.HandFrame(1, testutil.PosePinch, testutil.DefaultHandOpts())
	strict := DefaultConfig()
	loose := strict
	loose.PinchThreshold = 0.5

	rs := NewClassifier(strict).Classify(frame)
	rl := NewClassifier(loose).Classify(frame)
	require.Equal(t, LabelPinch, rs.Label)
	require.Equal(t, LabelPinch, rl.Label)
	assert.Greater(t, rl.Confidence, rs.Confidence)

	tight := strict
	tight.PinchThreshold = 0.01
	assert.Equal(t, LabelNone, NewClassifier(tight).Classify(frame).Label)
}

// ---------------------------------------------------------------------------
// Malformed input
// ---------------------------------------------------------------------------

func TestClassify_MalformedFrames(t *testing.T) {
	t.Parallel()

	good := testutil.HandPoints(testutil.PosePalm, testutil.DefaultHandOpts())
	withNaN := append([]l1landmarks.Point(nil), good...)
	withNaN[l1landmarks.IndexTip].Y = math.NaN()
	collapsed := make([]l1landmarks.Point, l1landmarks.NumLandmarks)
	for i := range collapsed {
		collapsed[i] = l1landmarks.Point{X: 0.5, Y: 0.5}
	}

	frames := map[string]l1landmarks.Frame{
		"no hand":   l1landmarks.NoHand(1, 0),
		"20 points": {Points: good[:20]},
		"22 points": {Points: append(append([]l1landmarks.Point(nil), good...), good[0])},
		"NaN":       {Points: withNaN},
		"collapsed": {Points: collapsed},
	}

	c := NewClassifier(DefaultConfig())
	for name, f := range frames {
		t.Run(name, func(t *testing.T) {
			r := c.Classify(f)
			assert.Equal(t, LabelNone, r.Label)
			assert.Zero(t, r.Confidence)
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultConfig())
	frame := testutil.HandFrame(1, testutil.PosePeace, testutil.DefaultHandOpts())
	first := c.Classify(frame)
	c.Classify(testutil.HandFrame(2, testutil.PoseGrab, testutil.DefaultHandOpts()))
	assert.Equal(t, first, c.Classify(frame))
}

// ---------------------------------------------------------------------------
// Features and config
// ---------------------------------------------------------------------------

func TestExtractFeatures_Grab(t *testing.T) {
	t.Parallel()

	r := classify(t, testutil.PoseGrab, testutil.DefaultHandOpts())
	assert.True(t, r.Features.Closed)
	assert.InDelta(t, 0.1, r.Features.Scale, 1e-9)
	for i, d := range r.Features.TipDistance {
		assert.Less(t, d, DefaultConfig().CurlThreshold, "finger %d", i)
	}
}

func TestExtractFeatures_PalmStraightFingers(t *testing.T) {
	t.Parallel()

	r := classify(t, testutil.PosePalm, testutil.DefaultHandOpts())
	assert.False(t, r.Features.Closed)
	for i, bend := range r.Features.BendDeg {
		assert.InDelta(t, 0, bend, 1e-3, "finger %d", i)
	}
	assert.InDelta(t, 1.0, r.Features.PalmFacing, 1e-9)
}

func TestConfigFromTuning(t *testing.T) {
	t.Parallel()

	curl := 0.6
	cfg := ConfigFromTuning(&config.TuningConfig{CurlThreshold: &curl})
	assert.InDelta(t, 0.6, cfg.CurlThreshold, 1e-12)
	assert.InDelta(t, 1.05, cfg.ExtendThreshold, 1e-12)
	assert.InDelta(t, 0.4, cfg.MarginBand, 1e-12)
}

func TestConditionCombinators(t *testing.T) {
	t.Parallel()

	ok := above(1.0, 0.5, 1.0)
	assert.True(t, ok.ok)
	assert.InDelta(t, 0.5, ok.margin, 1e-12)

	fail := below(1.0, 0.5, 1.0)
	assert.False(t, fail.ok)

	all := allOf(ok, above(0.8, 0.5, 1.0))
	assert.True(t, all.ok)
	assert.InDelta(t, 0.3, all.margin, 1e-12)

	either := anyOf(fail, ok)
	assert.True(t, either.ok)
	assert.InDelta(t, 0.5, either.margin, 1e-12)

	assert.False(t, allOf(ok, fail).ok)
	assert.False(t, anyOf(fail).ok)
}

func TestLabels(t *testing.T) {
	t.Parallel()

	for _, l := range Labels {
		assert.True(t, l.Valid())
	}
	assert.True(t, LabelNone.Valid())
	assert.False(t, Label("wave").Valid())

	assert.Equal(t, "high", ConfidenceBucket(0.9))
	assert.Equal(t, "medium", ConfidenceBucket(0.7))
	assert.Equal(t, "low", ConfidenceBucket(0.55))
	assert.Equal(t, "very_low", ConfidenceBucket(0.1))
}
