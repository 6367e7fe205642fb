package render

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"github.com/banshee-data/handvox/internal/sculpt/l5scene"
)

// Fixed scene colors.
var (
	BackgroundColor = color.RGBA{R: 24, G: 26, B: 32, A: 255}
	FloorColor      = color.RGBA{R: 70, G: 74, B: 84, A: 255}
	CursorColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	CursorLostColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// Quad is one projected voxel face.
type Quad struct {
	Points [4]Point
	Depth  float32
	Fill   color.RGBA
	Pos    l3space.GridCoord
	Face   l5scene.Face
}

// Segment is one projected line.
type Segment struct {
	A, B  Point
	Color color.RGBA
}

// Scene is everything needed to paint one frame.
type Scene struct {
	Quads  []Quad // far to near
	Floor  []Segment
	Cursor []Segment
	HUD    []string
}

// Renderer builds scenes from snapshots. It owns the smoothed view
// camera, so one Renderer serves one window.
type Renderer struct {
	Width, Height int
	Light         Light

	camera *SmoothedCamera
}

// NewRenderer creates a renderer for a width x height screen.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		Width:  width,
		Height: height,
		Light:  DefaultLight,
		camera: NewSmoothedCamera(DefaultCameraSmoothing),
	}
}

// Camera returns the smoothed view camera.
func (r *Renderer) Camera() *SmoothedCamera { return r.camera }

// Build advances the view camera one step and projects snap.
func (r *Renderer) Build(snap *l5scene.Snapshot) Scene {
	if snap == nil {
		return Scene{}
	}
	view := r.camera.Follow(snap.Camera)
	proj := NewProjector(view, snap.Bounds.Center(), r.Width, r.Height)

	return Scene{
		Quads:  r.quads(snap, proj),
		Floor:  segments(proj, FloorLines(snap.Bounds), FloorColor),
		Cursor: cursorSegments(proj, snap.Cursor),
		HUD:    HUDLines(snap),
	}
}

func (r *Renderer) quads(snap *l5scene.Snapshot, proj Projector) []Quad {
	eye := proj.Eye()
	var out []Quad
	for _, vf := range snap.VisibleFaces() {
		if !FacesEye(vf.Voxel.Pos, vf.Face, eye) {
			continue
		}
		q, ok := projectFace(proj, vf.Voxel.Pos, vf.Face)
		if !ok {
			continue
		}
		q.Fill = r.Light.Shade(vf.Voxel.RGBA, vf.Face)
		out = append(out, q)
	}
	SortPainter(out)
	return out
}

func projectFace(proj Projector, pos l3space.GridCoord, f l5scene.Face) (Quad, bool) {
	q := Quad{Pos: pos, Face: f}
	for i, c := range FaceCorners(pos, f) {
		p, ok := proj.Project(c)
		if !ok {
			return Quad{}, false
		}
		q.Points[i] = p
		q.Depth += p.Depth / 4
	}
	return q, true
}

// SortPainter orders quads far to near. Equal depths fall back to grid
// order so frames are stable.
func SortPainter(quads []Quad) {
	sort.SliceStable(quads, func(i, j int) bool {
		if quads[i].Depth != quads[j].Depth {
			return quads[i].Depth > quads[j].Depth
		}
		if quads[i].Pos != quads[j].Pos {
			return quads[i].Pos.Less(quads[j].Pos)
		}
		return quads[i].Face < quads[j].Face
	})
}

func segments(proj Projector, lines [][2]r3.Vec, c color.RGBA) []Segment {
	out := make([]Segment, 0, len(lines))
	for _, l := range lines {
		a, okA := proj.Project(l[0])
		b, okB := proj.Project(l[1])
		if okA && okB {
			out = append(out, Segment{A: a, B: b, Color: c})
		}
	}
	return out
}

func cursorSegments(proj Projector, cur l3space.Cursor) []Segment {
	c := CursorColor
	if !cur.Valid {
		c = CursorLostColor
	}
	edges := CubeEdges(cur.Cell)
	return segments(proj, edges[:], c)
}

// HUDLines is the status text drawn over the scene.
func HUDLines(snap *l5scene.Snapshot) []string {
	c := snap.PaletteColor
	cursor := snap.Cursor.Cell.String()
	if !snap.Cursor.Valid {
		cursor += " (no hand)"
	}
	return []string{
		fmt.Sprintf("gesture: %s", snap.Gesture),
		fmt.Sprintf("cursor:  %s", cursor),
		fmt.Sprintf("color:   %d/%d #%02x%02x%02x", snap.PaletteIndex+1, len(snap.Palette), c.R, c.G, c.B),
		fmt.Sprintf("voxels:  %d", len(snap.Voxels)),
		fmt.Sprintf("history: undo %d redo %d", snap.UndoDepth, snap.RedoDepth),
		fmt.Sprintf("camera:  yaw %.0f pitch %.0f", snap.Camera.Yaw, snap.Camera.Pitch),
		"keys: Z undo  Y redo  C color  R reset  X clear  Q quit",
	}
}
