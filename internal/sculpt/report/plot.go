package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
)

// ErrNoFrames is returned when a plot is requested for an empty session.
var ErrNoFrames = errors.New("session has no frames")

var (
	confidenceColor = color.RGBA{R: 50, G: 150, B: 255, A: 255}
	streakColor     = color.RGBA{R: 255, G: 100, B: 50, A: 255}
	actionColor     = color.RGBA{R: 30, G: 160, B: 60, A: 255}
)

// Output size for per-frame strip plots.
const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// TimelinePlot draws confidence and debounce streak against frame
// sequence, with a marker on every frame that emitted an action.
func TimelinePlot(title string, records []sqlite.FrameRecord) (*plot.Plot, error) {
	if len(records) == 0 {
		return nil, ErrNoFrames
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Confidence / streak"
	p.Add(plotter.NewGrid())

	conf := make(plotter.XYs, 0, len(records))
	streak := make(plotter.XYs, 0, len(records))
	var actions plotter.XYs
	for _, r := range records {
		x := float64(r.Seq)
		conf = append(conf, plotter.XY{X: x, Y: r.Confidence})
		streak = append(streak, plotter.XY{X: x, Y: float64(r.Streak)})
		if !r.Action.IsNone() {
			actions = append(actions, plotter.XY{X: x, Y: r.Confidence})
		}
	}

	confLine, err := plotter.NewLine(conf)
	if err != nil {
		return nil, err
	}
	confLine.Color = confidenceColor
	confLine.Width = vg.Points(1)
	p.Add(confLine)
	p.Legend.Add("confidence", confLine)

	streakLine, err := plotter.NewLine(streak)
	if err != nil {
		return nil, err
	}
	streakLine.Color = streakColor
	streakLine.Width = vg.Points(1)
	streakLine.StepStyle = plotter.PostStep
	p.Add(streakLine)
	p.Legend.Add("streak", streakLine)

	if len(actions) > 0 {
		marks, err := plotter.NewScatter(actions)
		if err != nil {
			return nil, err
		}
		marks.GlyphStyle.Shape = draw.CrossGlyph{}
		marks.GlyphStyle.Color = actionColor
		marks.GlyphStyle.Radius = vg.Points(4)
		p.Add(marks)
		p.Legend.Add("action", marks)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePNG renders the timeline plot as PNG to w.
func WritePNG(w io.Writer, title string, records []sqlite.FrameRecord) error {
	p, err := TimelinePlot(title, records)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("render timeline plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePNG writes the timeline plot to path, creating its directory.
func SavePNG(path, title string, records []sqlite.FrameRecord) error {
	p, err := TimelinePlot(title, records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save timeline plot: %w", err)
	}
	return nil
}
