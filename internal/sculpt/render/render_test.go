package render

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"github.com/banshee-data/handvox/internal/sculpt/l5scene"
)

var (
	testBounds = l3space.Bounds{Max: l3space.GridCoord{X: 15, Y: 15, Z: 15}}
	testCamera = l3space.CameraTransform{Yaw: 45, Pitch: 30, Distance: 35}
	red        = color.RGBA{R: 255, A: 255}
)

func snapshotWith(cells ...l3space.GridCoord) *l5scene.Snapshot {
	s := &l5scene.Snapshot{
		Camera:       testCamera,
		Bounds:       testBounds,
		Palette:      []color.RGBA{red},
		PaletteColor: red,
		Cursor:       l3space.Cursor{Cell: l3space.GridCoord{X: 8, Y: 8, Z: 8}, Valid: true},
		Gesture:      "pinch",
	}
	for _, c := range cells {
		s.Voxels = append(s.Voxels, l5scene.SnapshotVoxel{Voxel: l5scene.Voxel{Pos: c}, RGBA: red})
	}
	return s
}

// ---------------------------------------------------------------------------
// View camera
// ---------------------------------------------------------------------------

func TestSmoothedCamera(t *testing.T) {
	t.Parallel()

	c := NewSmoothedCamera(0.15)
	first := c.Follow(l3space.CameraTransform{Yaw: 0, Distance: 35})
	assert.Equal(t, 0.0, first.Yaw, "first call snaps")

	next := c.Follow(l3space.CameraTransform{Yaw: 100, Pitch: 20, Distance: 35})
	assert.InDelta(t, 15.0, next.Yaw, 1e-9)
	assert.InDelta(t, 3.0, next.Pitch, 1e-9)
	assert.InDelta(t, 35.0, next.Distance, 1e-9)
	assert.Equal(t, next, c.Current())
}

func TestSmoothedCamera_ShortWayRound(t *testing.T) {
	t.Parallel()

	c := NewSmoothedCamera(0.5)
	c.Follow(l3space.CameraTransform{Yaw: 170})
	got := c.Follow(l3space.CameraTransform{Yaw: -170})
	assert.InDelta(t, 180.0, got.Yaw, 1e-9)

	got = c.Follow(l3space.CameraTransform{Yaw: -170})
	assert.InDelta(t, -175.0, got.Yaw, 1e-9)
}

func TestSmoothedCamera_Converges(t *testing.T) {
	t.Parallel()

	c := NewSmoothedCamera(DefaultCameraSmoothing)
	c.Follow(l3space.CameraTransform{})
	target := l3space.CameraTransform{Yaw: -60, Pitch: 45, Distance: 40}
	var got l3space.CameraTransform
	for i := 0; i < 200; i++ {
		got = c.Follow(target)
	}
	assert.Equal(t, target, got)

	exact := NewSmoothedCamera(1)
	exact.Follow(l3space.CameraTransform{})
	assert.Equal(t, target, exact.Follow(target))
}

// ---------------------------------------------------------------------------
// Projection
// ---------------------------------------------------------------------------

func TestProjector(t *testing.T) {
	t.Parallel()

	target := testBounds.Center()
	p := NewProjector(testCamera, target, 800, 600)

	centre, ok := p.Project(target)
	require.True(t, ok)
	assert.InDelta(t, 400, centre.X, 1e-2)
	assert.InDelta(t, 300, centre.Y, 1e-2)
	assert.InDelta(t, 35, centre.Depth, 1e-3)

	above, ok := p.Project(r3.Add(target, r3.Vec{Y: 2}))
	require.True(t, ok)
	assert.Less(t, above.Y, centre.Y, "up is up on screen")

	behind := r3.Add(p.Eye(), r3.Sub(p.Eye(), target))
	_, ok = p.Project(behind)
	assert.False(t, ok)
}

func TestProjector_YawTurnsScene(t *testing.T) {
	t.Parallel()

	target := testBounds.Center()
	front := NewProjector(l3space.CameraTransform{Distance: 35}, target, 800, 600)
	right, ok := front.Project(r3.Add(target, r3.Vec{X: 3}))
	require.True(t, ok)
	assert.Greater(t, right.X, float32(400), "+x is to the right at zero yaw")

	turned := NewProjector(l3space.CameraTransform{Yaw: 180, Distance: 35}, target, 800, 600)
	right, ok = turned.Project(r3.Add(target, r3.Vec{X: 3}))
	require.True(t, ok)
	assert.Less(t, right.X, float32(400), "+x is to the left from behind")
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

func TestFaceCorners(t *testing.T) {
	t.Parallel()

	top := FaceCorners(l3space.GridCoord{}, l5scene.FacePosY)
	assert.Equal(t, [4]r3.Vec{{Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1, Z: 1}, {Y: 1, Z: 1}}, top)

	for _, c := range FaceCorners(l3space.GridCoord{X: 2, Y: 3, Z: 4}, l5scene.FaceNegX) {
		assert.Equal(t, 2.0, c.X)
	}
	for _, c := range FaceCorners(l3space.GridCoord{X: 2, Y: 3, Z: 4}, l5scene.FacePosZ) {
		assert.Equal(t, 5.0, c.Z)
	}
	assert.Equal(t, r3.Vec{X: 1, Y: 0.5, Z: 0.5}, FaceCenter(l3space.GridCoord{}, l5scene.FacePosX))
}

func TestFacesEye(t *testing.T) {
	t.Parallel()

	centre := testBounds.Center()
	eye := testCamera.Eye(centre)
	pos := l3space.Floor(centre)
	want := map[l5scene.Face]bool{
		l5scene.FacePosX: true, l5scene.FaceNegX: false,
		l5scene.FacePosY: true, l5scene.FaceNegY: false,
		l5scene.FacePosZ: true, l5scene.FaceNegZ: false,
	}
	for f, facing := range want {
		assert.Equal(t, facing, FacesEye(pos, f, eye), f.String())
	}
}

func TestCubeEdges(t *testing.T) {
	t.Parallel()

	edges := CubeEdges(l3space.GridCoord{X: 1, Y: 2, Z: 3})
	seen := make(map[[2]r3.Vec]bool)
	for _, e := range edges {
		assert.InDelta(t, 1.0, r3.Norm(r3.Sub(e[1], e[0])), 1e-12)
		seen[e] = true
	}
	assert.Len(t, seen, 12)
}

func TestFloorLines(t *testing.T) {
	t.Parallel()

	lines := FloorLines(testBounds)
	assert.Len(t, lines, 34)
	for _, l := range lines {
		assert.Zero(t, l[0].Y)
		assert.Zero(t, l[1].Y)
	}
}

func TestLight(t *testing.T) {
	t.Parallel()

	l := DefaultLight
	top := l.Intensity(r3.Vec{Y: 1})
	bottom := l.Intensity(r3.Vec{Y: -1})
	assert.Greater(t, top, bottom)
	assert.InDelta(t, l.Ambient, bottom, 1e-12, "unlit faces get ambient only")
	assert.LessOrEqual(t, top, 1.0)

	shaded := l.Shade(color.RGBA{R: 200, G: 100, B: 50, A: 255}, l5scene.FaceNegY)
	assert.Equal(t, color.RGBA{R: 90, G: 45, B: 23, A: 255}, shaded)

	flat := Light{Ambient: 0.5}
	assert.Equal(t, 0.5, flat.Intensity(r3.Vec{Y: 1}))
}

// ---------------------------------------------------------------------------
// Scene building
// ---------------------------------------------------------------------------

func TestBuild_SingleVoxel(t *testing.T) {
	t.Parallel()

	r := NewRenderer(800, 600)
	scene := r.Build(snapshotWith(l3space.GridCoord{X: 8, Y: 0, Z: 8}))

	require.Len(t, scene.Quads, 3, "three faces turn toward the default camera")
	faces := map[l5scene.Face]bool{}
	for _, q := range scene.Quads {
		faces[q.Face] = true
	}
	assert.Equal(t, map[l5scene.Face]bool{l5scene.FacePosX: true, l5scene.FacePosY: true, l5scene.FacePosZ: true}, faces)
	assert.Len(t, scene.Floor, 34)
	assert.Len(t, scene.Cursor, 12)
	assert.Equal(t, CursorColor, scene.Cursor[0].Color)
}

func TestBuild_PainterOrder(t *testing.T) {
	t.Parallel()

	r := NewRenderer(800, 600)
	var cells []l3space.GridCoord
	for x := 0; x < 3; x++ {
		for z := 0; z < 3; z++ {
			cells = append(cells, l3space.GridCoord{X: x * 2, Z: z * 2})
		}
	}
	scene := r.Build(snapshotWith(cells...))
	require.NotEmpty(t, scene.Quads)
	for i := 1; i < len(scene.Quads); i++ {
		assert.GreaterOrEqual(t, scene.Quads[i-1].Depth, scene.Quads[i].Depth)
	}
}

func TestBuild_LostCursorAndNil(t *testing.T) {
	t.Parallel()

	r := NewRenderer(800, 600)
	snap := snapshotWith()
	snap.Cursor.Valid = false
	scene := r.Build(snap)
	assert.Empty(t, scene.Quads)
	assert.Equal(t, CursorLostColor, scene.Cursor[0].Color)
	assert.Contains(t, scene.HUD[1], "(no hand)")

	assert.Equal(t, Scene{}, r.Build(nil))
}

func TestSortPainter_TiesUseGridOrder(t *testing.T) {
	t.Parallel()

	quads := []Quad{
		{Depth: 5, Pos: l3space.GridCoord{X: 2}},
		{Depth: 9, Pos: l3space.GridCoord{X: 3}},
		{Depth: 5, Pos: l3space.GridCoord{X: 1}},
		{Depth: 5, Pos: l3space.GridCoord{X: 1}, Face: l5scene.FaceNegX},
	}
	SortPainter(quads)
	assert.Equal(t, float32(9), quads[0].Depth)
	assert.Equal(t, l3space.GridCoord{X: 1}, quads[1].Pos)
	assert.Equal(t, l5scene.FacePosX, quads[1].Face)
	assert.Equal(t, l5scene.FaceNegX, quads[2].Face)
	assert.Equal(t, l3space.GridCoord{X: 2}, quads[3].Pos)
}

func TestHUDLines(t *testing.T) {
	t.Parallel()

	lines := HUDLines(snapshotWith(l3space.GridCoord{}))
	text := strings.Join(lines, "\n")
	assert.Contains(t, text, "gesture: pinch")
	assert.Contains(t, text, "color:   1/1 #ff0000")
	assert.Contains(t, text, "voxels:  1")
	assert.Contains(t, text, "yaw 45 pitch 30")
}
