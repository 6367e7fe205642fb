//go:build cgo

package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/banshee-data/handvox/internal/sculpt/l5scene"
)

const (
	hudX, hudY   = 8, 8
	hudLineH     = 16
	floorWidth   = 1
	cursorWidth  = 2
	outlineWidth = 1
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Draw paints snap onto screen.
func (r *Renderer) Draw(screen *ebiten.Image, snap *l5scene.Snapshot) {
	screen.Fill(BackgroundColor)
	scene := r.Build(snap)

	for _, s := range scene.Floor {
		strokeSegment(screen, s, floorWidth)
	}
	for _, q := range scene.Quads {
		fillQuad(screen, q)
	}
	for _, s := range scene.Cursor {
		strokeSegment(screen, s, cursorWidth)
	}
	for i, line := range scene.HUD {
		ebitenutil.DebugPrintAt(screen, line, hudX, hudY+i*hudLineH)
	}
}

func strokeSegment(dst *ebiten.Image, s Segment, width float32) {
	vector.StrokeLine(dst, s.A.X, s.A.Y, s.B.X, s.B.Y, width, s.Color, true)
}

func fillQuad(dst *ebiten.Image, q Quad) {
	var path vector.Path
	path.MoveTo(q.Points[0].X, q.Points[0].Y)
	for _, p := range q.Points[1:] {
		path.LineTo(p.X, p.Y)
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(q.Fill.R) / 255
		vs[i].ColorG = float32(q.Fill.G) / 255
		vs[i].ColorB = float32(q.Fill.B) / 255
		vs[i].ColorA = float32(q.Fill.A) / 255
	}
	dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})

	edge := darken(q.Fill)
	for i := range q.Points {
		a, b := q.Points[i], q.Points[(i+1)%len(q.Points)]
		vector.StrokeLine(dst, a.X, a.Y, b.X, b.Y, outlineWidth, edge, true)
	}
}

func darken(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}
