package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/banshee-data/handvox/internal/sculpt/l2gestures"
	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
	"github.com/banshee-data/handvox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cornerHand puts the index tip far outside the image so the cursor
// clamps to the (0,0,0) cell whatever the pose.
var cornerHand = testutil.HandOpts{WristX: -1, WristY: 2, WristZ: 0.5, Scale: 0.1}

// testConfig uses the tuning defaults with an empty grid, an unrotated
// camera and smoothing disabled so pose changes take effect at once.
func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := ConfigFromTuning(config.DefaultTuningConfig())
	require.NoError(t, err)
	cfg.SmoothingAlpha = 1
	cfg.Engine.DemoPlatform = false
	cfg.Engine.Camera = l3space.CameraTransform{Distance: 35}
	return cfg
}

func newPipeline(t *testing.T, rec Recorder) *Pipeline {
	t.Helper()
	p, err := New(testConfig(t), rec)
	require.NoError(t, err)
	return p
}

func run(p *Pipeline, frames ...l1landmarks.Frame) []StepResult {
	out := make([]StepResult, len(frames))
	for i, f := range frames {
		out[i] = p.Process(context.Background(), f)
	}
	return out
}

func poseFrames(start uint64, n int, pose testutil.Pose, opts testutil.HandOpts) []l1landmarks.Frame {
	frames := make([]l1landmarks.Frame, n)
	for i := range frames {
		frames[i] = testutil.HandFrame(start+uint64(i), pose, opts)
	}
	return frames
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

func TestConfigFromTuning(t *testing.T) {
	t.Parallel()

	cfg, err := ConfigFromTuning(config.MustLoadDefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.SmoothingAlpha)
	assert.Equal(t, 3, cfg.Intent.ConfirmFrames)
	assert.Equal(t, 50.0, cfg.Mapper.DepthScale)
	assert.Len(t, cfg.Engine.Palette, 8)

	bad := config.DefaultTuningConfig()
	lo, hi := [3]int{5, 0, 0}, [3]int{1, 15, 15}
	bad.GridMin, bad.GridMax = &lo, &hi
	_, err = ConfigFromTuning(bad)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNew_PublishesInitialSnapshot(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	snap := p.Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Voxels)
	assert.Equal(t, l3space.GridCoord{X: 8, Y: 8, Z: 8}, snap.Cursor.Cell)
}

// ---------------------------------------------------------------------------
// Frame processing
// ---------------------------------------------------------------------------

func TestProcess_PlaceThenDelete(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	origin := l3space.GridCoord{}

	placed := run(p, poseFrames(1, 3, testutil.PosePinch, cornerHand)...)
	for _, r := range placed[:2] {
		assert.True(t, r.Action.IsNone())
	}
	assert.Equal(t, l4intent.Place(origin), placed[2].Action)
	assert.True(t, placed[2].Applied)
	assert.Equal(t, l4intent.PhaseCooldown, placed[2].State.Phase)

	snap := p.Snapshot()
	require.Len(t, snap.Voxels, 1)
	assert.Equal(t, origin, snap.Voxels[0].Pos)
	assert.Equal(t, 0, snap.Voxels[0].Color)
	assert.Equal(t, l2gestures.LabelPinch, snap.Gesture)

	deleted := run(p, poseFrames(4, 3, testutil.PosePalm, cornerHand)...)
	assert.Equal(t, l4intent.Delete(origin), deleted[2].Action)
	assert.True(t, deleted[2].Applied)
	assert.Empty(t, p.Snapshot().Voxels)

	st := p.Stats()
	assert.Equal(t, uint64(6), st.Frames)
	assert.Equal(t, uint64(2), st.Actions)
	assert.Equal(t, uint64(2), st.Applied)
}

func TestProcess_NoHandInvalidatesCursor(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	hand := p.Process(context.Background(), testutil.HandFrame(1, testutil.PosePoint, testutil.DefaultHandOpts()))
	assert.True(t, hand.Cursor.Valid)

	none := p.Process(context.Background(), testutil.NoHandFrame(2))
	assert.False(t, none.Cursor.Valid)
	assert.Equal(t, hand.Cursor.Cell, none.Cursor.Cell, "cursor keeps its last cell")
	assert.Equal(t, l2gestures.LabelNone, none.Gesture.Label)
	assert.False(t, p.Snapshot().Cursor.Valid)
}

func TestProcess_VelocityGate(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	opts := testutil.DefaultHandOpts()
	first := p.Process(context.Background(), testutil.HandFrame(1, testutil.PosePinch, opts))
	assert.False(t, first.Gated)

	opts.WristX += 0.5
	jumped := p.Process(context.Background(), testutil.HandFrame(2, testutil.PosePinch, opts))
	assert.True(t, jumped.Gated)
	assert.False(t, jumped.Frame.HasHand())
	assert.True(t, jumped.Raw.HasHand())
	assert.Equal(t, l2gestures.LabelNone, jumped.Gesture.Label)
	assert.Equal(t, uint64(1), p.Stats().Gated)
}

func TestProcess_GrabRotatesCamera(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	opts := testutil.DefaultHandOpts()
	var results []StepResult
	for seq := uint64(1); seq <= 5; seq++ {
		results = append(results, p.Process(context.Background(), testutil.HandFrame(seq, testutil.PoseGrab, opts)))
		opts.WristX += 0.01
	}

	for _, r := range results[:2] {
		assert.True(t, r.Action.IsNone())
	}
	for _, r := range results[2:] {
		assert.Equal(t, l4intent.ActionRotateCamera, r.Action.Kind)
		assert.InDelta(t, -2.0, r.Action.DeltaYaw, 1e-6)
		assert.InDelta(t, 0.0, r.Action.DeltaPitch, 1e-6)
	}
	assert.InDelta(t, -6.0, p.Engine().Camera().Yaw, 1e-6)
	assert.Empty(t, p.Snapshot().Voxels, "rotation never edits the grid")
}

// ---------------------------------------------------------------------------
// Keyboard injection
// ---------------------------------------------------------------------------

func TestInject_AppliedBeforeNextFrame(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	run(p, poseFrames(1, 3, testutil.PosePinch, cornerHand)...)
	require.Equal(t, 1, p.Engine().Len())

	require.True(t, p.Inject(l4intent.Undo()))
	assert.Equal(t, 1, p.Engine().Len(), "queued actions wait for the loop")
	assert.Equal(t, 1, p.ApplyPending())
	assert.Equal(t, 0, p.Engine().Len())
	assert.Empty(t, p.Snapshot().Voxels)

	require.True(t, p.Inject(l4intent.Redo()))
	p.Process(context.Background(), testutil.NoHandFrame(4))
	assert.Equal(t, 1, p.Engine().Len())
	assert.Equal(t, uint64(2), p.Stats().Injected)
}

func TestInject_QueueFull(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	for i := 0; i < pendingCap; i++ {
		require.True(t, p.Inject(l4intent.Undo()))
	}
	assert.False(t, p.Inject(l4intent.Undo()))
	assert.Equal(t, uint64(1), p.Stats().Dropped)

	assert.Equal(t, 0, p.ApplyPending(), "undo on empty history changes nothing")
	assert.True(t, p.Inject(l4intent.Undo()), "queue drained")
}

// ---------------------------------------------------------------------------
// Recording
// ---------------------------------------------------------------------------

type fakeRecorder struct {
	results []StepResult
	failOn  uint64
}

func (r *fakeRecorder) Record(_ context.Context, res StepResult) error {
	if res.Raw.Seq == r.failOn {
		return errors.New("disk full")
	}
	r.results = append(r.results, res)
	return nil
}

func TestProcess_RecordsEveryFrame(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{failOn: 2}
	p := newPipeline(t, rec)
	run(p, poseFrames(1, 3, testutil.PosePinch, cornerHand)...)

	require.Len(t, rec.results, 2)
	assert.Equal(t, uint64(1), rec.results[0].Raw.Seq)
	assert.Equal(t, l4intent.ActionPlace, rec.results[1].Action.Kind)
	assert.Equal(t, uint64(1), p.Stats().RecordErrors)
	assert.Equal(t, 1, p.Engine().Len(), "record failures never stop the loop")
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_UntilEOF(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	frames := append(poseFrames(1, 3, testutil.PosePinch, cornerHand), testutil.NoHandFrame(4))
	require.NoError(t, p.Run(context.Background(), sources.NewSliceSource(frames)))
	assert.Equal(t, uint64(4), p.Stats().Frames)
	assert.Equal(t, 1, p.Engine().Len())
}

func TestRun_AppliesPendingAtEOF(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	require.True(t, p.Inject(l4intent.CyclePalette()))
	require.NoError(t, p.Run(context.Background(), sources.NewSliceSource(nil)))
	assert.Equal(t, 1, p.Snapshot().PaletteIndex)
}

func TestRun_ContextCancelled(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Run(ctx, sources.NewSliceSource(poseFrames(1, 3, testutil.PosePinch, cornerHand)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.Stats().Frames)
}
