package l3space

import (
	"math"
	"testing"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func defaultMapper(t *testing.T) CursorMapper {
	t.Helper()
	m, err := CursorMapperFromTuning(config.EmptyTuningConfig())
	require.NoError(t, err)
	return m
}

func assertVec(t *testing.T, want, got r3.Vec, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
	assert.InDelta(t, want.Z, got.Z, delta, "z")
}

// ---------------------------------------------------------------------------
// Bounds
// ---------------------------------------------------------------------------

func TestBounds(t *testing.T) {
	t.Parallel()

	b, err := NewBounds([3]int{0, 0, 0}, [3]int{15, 15, 15})
	require.NoError(t, err)

	assert.True(t, b.Contains(GridCoord{0, 0, 0}))
	assert.True(t, b.Contains(GridCoord{15, 15, 15}))
	assert.False(t, b.Contains(GridCoord{16, 0, 0}))
	assert.False(t, b.Contains(GridCoord{0, -1, 0}))

	assert.Equal(t, GridCoord{0, 15, 3}, b.Clamp(GridCoord{-4, 99, 3}))
	assertVec(t, r3.Vec{X: 16, Y: 16, Z: 16}, b.Extent(), 0)
	assertVec(t, r3.Vec{X: 8, Y: 8, Z: 8}, b.Center(), 0)

	_, err = NewBounds([3]int{5, 0, 0}, [3]int{4, 4, 4})
	assert.Error(t, err)
}

func TestGridCoordOrdering(t *testing.T) {
	t.Parallel()

	assert.True(t, GridCoord{0, 5, 5}.Less(GridCoord{1, 0, 0}))
	assert.True(t, GridCoord{1, 0, 9}.Less(GridCoord{1, 1, 0}))
	assert.False(t, GridCoord{1, 1, 1}.Less(GridCoord{1, 1, 1}))
	assert.Equal(t, "(1,-2,3)", GridCoord{1, -2, 3}.String())
	assert.Equal(t, GridCoord{2, 2, 2}, GridCoord{1, 1, 1}.Add(GridCoord{1, 1, 1}))
}

// ---------------------------------------------------------------------------
// Camera
// ---------------------------------------------------------------------------

func TestCameraRotated(t *testing.T) {
	t.Parallel()

	c := CameraTransform{Yaw: 170, Pitch: 70, Distance: 35}
	r := c.Rotated(20, 30, 80)
	assert.InDelta(t, -170, r.Yaw, 1e-9, "yaw wraps")
	assert.InDelta(t, 80, r.Pitch, 1e-9, "pitch clamps")
	assert.Equal(t, 35.0, r.Distance)
	assert.Equal(t, 170.0, c.Yaw, "receiver is not modified")

	r = c.Rotated(0, -200, 80)
	assert.InDelta(t, -80, r.Pitch, 1e-9)
}

func TestCameraToWorld(t *testing.T) {
	t.Parallel()

	right := r3.Vec{X: 1}
	up := r3.Vec{Y: 1}
	back := r3.Vec{Z: 1}

	identity := CameraTransform{}
	assertVec(t, right, identity.ToWorld(right), 1e-12)
	assertVec(t, up, identity.ToWorld(up), 1e-12)

	// Camera orbited to +X looks toward -X; its right vector is -Z.
	yawed := CameraTransform{Yaw: 90}
	assertVec(t, r3.Vec{Z: -1}, yawed.ToWorld(right), 1e-12)
	assertVec(t, r3.Vec{X: 1}, yawed.ToWorld(back), 1e-12)

	// Looking straight down, screen-up points away from the viewer.
	down := CameraTransform{Pitch: 90}
	assertVec(t, r3.Vec{Z: -1}, down.ToWorld(up), 1e-12)
	assertVec(t, r3.Vec{Y: 1}, down.ToWorld(back), 1e-12)
}

func TestCameraEyeMatchesToWorld(t *testing.T) {
	t.Parallel()

	cam := CameraTransform{Yaw: 45, Pitch: 30, Distance: 10}
	eye := cam.Eye(r3.Vec{})
	// The eye lies along the camera's "back" axis.
	assertVec(t, r3.Scale(10, cam.ToWorld(r3.Vec{Z: 1})), eye, 1e-9)
}

func TestCameraViewRoundTrip(t *testing.T) {
	t.Parallel()

	cam := CameraTransform{Yaw: -63, Pitch: 21}
	v := r3.Vec{X: 1.5, Y: -2, Z: 0.25}
	assertVec(t, v, cam.ToView(cam.ToWorld(v)), 1e-12)
}

// ---------------------------------------------------------------------------
// Cursor mapping
// ---------------------------------------------------------------------------

func TestCursorMap_Identity(t *testing.T) {
	t.Parallel()
	m := defaultMapper(t)
	cam := CameraTransform{}

	c := m.Map(l1landmarks.Point{X: 0.5, Y: 0.5}, cam)
	assert.True(t, c.Valid)
	assertVec(t, r3.Vec{X: 8, Y: 8, Z: 8}, c.Pos, 1e-12)
	assert.Equal(t, GridCoord{8, 8, 8}, c.Cell)

	// Image y grows downward, grid y grows upward.
	c = m.Map(l1landmarks.Point{X: 0.25, Y: 0.25, Z: 0.02}, cam)
	assertVec(t, r3.Vec{X: 4, Y: 12, Z: 7}, c.Pos, 1e-12)
	assert.Equal(t, GridCoord{4, 12, 7}, c.Cell)
}

func TestCursorMap_FollowsCameraYaw(t *testing.T) {
	t.Parallel()
	m := defaultMapper(t)

	// Moving the hand right moves the cursor along the camera's right axis.
	c := m.Map(l1landmarks.Point{X: 0.75, Y: 0.5}, CameraTransform{Yaw: 90})
	assertVec(t, r3.Vec{X: 8, Y: 8, Z: 4}, c.Pos, 1e-9)
	assert.Equal(t, GridCoord{8, 8, 4}, c.Cell)
}

func TestCursorMap_ClampsToBounds(t *testing.T) {
	t.Parallel()
	m := defaultMapper(t)

	refs := []l1landmarks.Point{
		{X: -3, Y: 4, Z: 2},
		{X: 5, Y: -4, Z: -2},
		{X: 1, Y: 0, Z: -0.5},
		{X: 0, Y: 1, Z: 0.5},
	}
	cams := []CameraTransform{{}, {Yaw: 45, Pitch: 30}, {Yaw: -135, Pitch: -80}}

	for _, cam := range cams {
		for _, ref := range refs {
			c := m.Map(ref, cam)
			assert.True(t, m.Bounds.Contains(c.Cell), "ref %+v cam %+v -> %v", ref, cam, c.Cell)
			assert.Less(t, c.Pos.X, 16.0)
			assert.GreaterOrEqual(t, c.Pos.X, 0.0)
		}
	}

	c := m.Map(l1landmarks.Point{X: -1, Y: 2, Z: 1}, CameraTransform{})
	assert.Equal(t, GridCoord{0, 0, 0}, c.Cell)
	c = m.Map(l1landmarks.Point{X: 2, Y: -1, Z: -1}, CameraTransform{})
	assert.Equal(t, GridCoord{15, 15, 15}, c.Cell)
}

func TestCursorMap_NonFinite(t *testing.T) {
	t.Parallel()
	m := defaultMapper(t)

	c := m.Map(l1landmarks.Point{X: math.NaN(), Y: 0.5}, CameraTransform{})
	assert.False(t, c.Valid)
	assert.True(t, m.Bounds.Contains(c.Cell))
}

func TestCursorMapperFromTuning_InvalidBounds(t *testing.T) {
	t.Parallel()

	_, err := CursorMapperFromTuning(&config.TuningConfig{GridMin: &[3]int{9, 0, 0}, GridMax: &[3]int{3, 3, 3}})
	assert.Error(t, err)
}
