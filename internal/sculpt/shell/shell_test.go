package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
	"github.com/banshee-data/handvox/internal/testutil"
)

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	cfg, err := pipeline.ConfigFromTuning(config.DefaultTuningConfig())
	require.NoError(t, err)
	cfg.Engine.DemoPlatform = false
	p, err := pipeline.New(cfg, nil)
	require.NoError(t, err)
	return p
}

func pinches(n int) []l1landmarks.Frame {
	frames := make([]l1landmarks.Frame, n)
	for i := range frames {
		frames[i] = testutil.HandFrame(uint64(i+1), testutil.PosePinch, testutil.DefaultHandOpts())
	}
	return frames
}

// tickUntil ticks until want frames were processed or the source ended.
func tickUntil(t *testing.T, l *Loop, want int) int {
	t.Helper()
	n := 0
	deadline := time.Now().Add(5 * time.Second)
	for n < want && !l.Ended() {
		if time.Now().After(deadline) {
			t.Fatalf("processed %d of %d frames before the deadline", n, want)
		}
		if _, ok := l.Tick(context.Background()); ok {
			n++
		} else {
			time.Sleep(time.Millisecond)
		}
	}
	return n
}

type failingSource struct{ err error }

func (s failingSource) Next(context.Context) (l1landmarks.Frame, error) {
	return l1landmarks.Frame{}, s.err
}

func (failingSource) Close() error { return nil }

// ---------------------------------------------------------------------------
// Key bindings
// ---------------------------------------------------------------------------

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		kind l4intent.ActionKind
		quit bool
	}{
		{"Q", "", true},
		{"Escape", "", true},
		{"Z", l4intent.ActionUndo, false},
		{"Y", l4intent.ActionRedo, false},
		{"C", l4intent.ActionCyclePalette, false},
		{"R", l4intent.ActionReset, false},
		{"X", l4intent.ActionClear, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			b, ok := Lookup(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.quit, b.Quit)
			assert.Equal(t, tt.kind, b.Action.Kind)
		})
	}

	_, ok := Lookup("P")
	assert.False(t, ok)
}

func TestPressedKeys_BindingOrder(t *testing.T) {
	t.Parallel()

	held := map[string]bool{"X": true, "C": true, "Z": true, "P": true}
	for i := 0; i < 20; i++ {
		got := PressedKeys(func(key string) bool { return held[key] })
		require.Equal(t, []string{"Z", "C", "X"}, got)
	}
	assert.Empty(t, PressedKeys(func(string) bool { return false }))
}

func TestWindowConfigDefaults(t *testing.T) {
	t.Parallel()

	got := WindowConfig{Width: 640}.withDefaults()
	assert.Equal(t, WindowConfig{Title: "handvox", Width: 640, Height: 720, TPS: 60}, got)
}

// ---------------------------------------------------------------------------
// Feeder and loop
// ---------------------------------------------------------------------------

func TestFeeder_DeliversThenCloses(t *testing.T) {
	t.Parallel()

	feed := StartFeeder(context.Background(), sources.NewSliceSource(pinches(2)))
	var got []uint64
	for f := range feed.Frames() {
		got = append(got, f.Seq)
	}
	<-feed.Done()
	assert.Equal(t, []uint64{1, 2}, got)
	assert.NoError(t, feed.Err())
}

func TestFeeder_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("camera unplugged")
	feed := StartFeeder(context.Background(), failingSource{err: boom})
	<-feed.Done()
	assert.ErrorIs(t, feed.Err(), boom)
}

func TestFeeder_CancelIsClean(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	feed := StartFeeder(ctx, sources.NewSliceSource(pinches(10)))
	<-feed.Done()
	assert.NoError(t, feed.Err())
}

func TestLoop_OneFramePerTick(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	loop := NewLoop(p, StartFeeder(context.Background(), sources.NewSliceSource(pinches(3))))

	assert.Equal(t, 3, tickUntil(t, loop, 3))
	assert.Equal(t, uint64(3), p.Stats().Frames)
	assert.Equal(t, l4intent.ActionPlace, loop.Last().Action.Kind)
	assert.Equal(t, 1, p.Engine().Len())

	for !loop.Ended() {
		_, ok := loop.Tick(context.Background())
		assert.False(t, ok)
		time.Sleep(time.Millisecond)
	}
	_, ok := loop.Tick(context.Background())
	assert.False(t, ok, "ticks after the end process nothing")
}

func TestLoop_KeysApplyWithoutFrames(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	loop := NewLoop(p, StartFeeder(context.Background(), sources.NewSliceSource(pinches(3))))
	tickUntil(t, loop, 3)
	require.Equal(t, 1, p.Engine().Len())

	assert.False(t, loop.Key("Z"))
	assert.False(t, loop.Key("unbound"))
	loop.Tick(context.Background())
	assert.Equal(t, 0, p.Engine().Len(), "undo applied on the next tick")

	assert.True(t, loop.Key("Q"))
	assert.True(t, loop.Key("Escape"))
}

// ---------------------------------------------------------------------------
// Headless
// ---------------------------------------------------------------------------

func TestRunHeadless(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	n, err := RunHeadless(context.Background(), p, sources.NewSliceSource(pinches(5)), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 1, p.Engine().Len())
}

func TestRunHeadless_FrameBudget(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	src := sources.NewSliceSource(pinches(5))
	n, err := RunHeadless(context.Background(), p, src, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, p.Engine().Len(), "two frames never confirm")
}

func TestRunHeadless_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	n, err := RunHeadless(context.Background(), newPipeline(t), failingSource{err: boom}, 0)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
}

func TestRunHeadless_AppliesQueuedKeys(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	require.True(t, p.Inject(l4intent.CyclePalette()))
	_, err := RunHeadless(context.Background(), p, sources.NewSliceSource(nil), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Snapshot().PaletteIndex)
}
