package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
)

// printer writes one line per step result. It satisfies
// pipeline.Recorder so the pipeline drives it directly.
type printer struct {
	w     io.Writer
	all   bool
	kinds map[l4intent.ActionKind]*color.Color
	faint *color.Color
	noop  *color.Color
}

func newPrinter(w io.Writer, all, noColor bool) *printer {
	p := &printer{
		w:   w,
		all: all,
		kinds: map[l4intent.ActionKind]*color.Color{
			l4intent.ActionPlace:        color.New(color.FgGreen, color.Bold),
			l4intent.ActionDelete:       color.New(color.FgRed, color.Bold),
			l4intent.ActionRotateCamera: color.New(color.FgCyan),
			l4intent.ActionCyclePalette: color.New(color.FgMagenta),
			l4intent.ActionUndo:         color.New(color.FgYellow),
			l4intent.ActionRedo:         color.New(color.FgYellow),
		},
		faint: color.New(color.Faint),
		noop:  color.New(color.FgHiBlack),
	}
	if noColor {
		for _, c := range p.kinds {
			c.DisableColor()
		}
		p.faint.DisableColor()
		p.noop.DisableColor()
	}
	return p
}

var _ pipeline.Recorder = (*printer)(nil)

func (p *printer) Record(_ context.Context, r pipeline.StepResult) error {
	if r.Action.IsNone() {
		if !p.all {
			return nil
		}
		_, err := p.faint.Fprintf(p.w, "%6d  %-7s %.2f  %s\n", r.Raw.Seq, r.Gesture.Label, r.Gesture.Confidence, r.State)
		return err
	}

	c, ok := p.kinds[r.Action.Kind]
	if !ok {
		c = color.New(color.Reset)
		c.DisableColor()
	}
	line := fmt.Sprintf("%6d  %-7s %.2f  %s", r.Raw.Seq, r.Gesture.Label, r.Gesture.Confidence, r.Action)
	if !r.Applied {
		_, err := p.noop.Fprintf(p.w, "%s (no-op)\n", line)
		return err
	}
	_, err := c.Fprintln(p.w, line)
	return err
}
