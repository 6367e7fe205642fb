package shell

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
)

// feedBuffer bounds frames read ahead of the loop.
const feedBuffer = 4

// Feeder reads a source on its own goroutine so a tick never blocks.
type Feeder struct {
	frames chan l1landmarks.Frame
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// StartFeeder reads src until it is exhausted, fails or ctx ends.
func StartFeeder(ctx context.Context, src sources.Source) *Feeder {
	f := &Feeder{
		frames: make(chan l1landmarks.Frame, feedBuffer),
		done:   make(chan struct{}),
	}
	go f.run(ctx, src)
	return f
}

func (f *Feeder) run(ctx context.Context, src sources.Source) {
	defer close(f.done)
	defer close(f.frames)
	for {
		frame, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, io.EOF) {
				f.mu.Lock()
				f.err = err
				f.mu.Unlock()
				opsf("landmark source stopped: %v", err)
			} else {
				diagf("landmark source exhausted")
			}
			return
		}
		select {
		case f.frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// Frames delivers frames in order and is closed when the source ends.
func (f *Feeder) Frames() <-chan l1landmarks.Frame { return f.frames }

// Done is closed once the reader goroutine has exited.
func (f *Feeder) Done() <-chan struct{} { return f.done }

// Err returns the source failure, nil after io.EOF or cancellation.
func (f *Feeder) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Loop advances the pipeline by at most one frame per Tick and turns
// key presses into queued actions.
type Loop struct {
	p    *pipeline.Pipeline
	feed *Feeder

	ended bool
	last  pipeline.StepResult
}

// NewLoop drives p from feed.
func NewLoop(p *pipeline.Pipeline, feed *Feeder) *Loop {
	return &Loop{p: p, feed: feed}
}

// Tick processes the next frame if one is ready. Queued key actions are
// applied even when no frame arrives.
func (l *Loop) Tick(ctx context.Context) (res pipeline.StepResult, processed bool) {
	if !l.ended {
		select {
		case frame, ok := <-l.feed.Frames():
			if ok {
				l.last = l.p.Process(ctx, frame)
				tracef("tick seq=%d action=%s", frame.Seq, l.last.Action)
				return l.last, true
			}
			l.ended = true
			opsf("source ended after %d frames", l.p.Stats().Frames)
		default:
		}
	}
	l.p.ApplyPending()
	return pipeline.StepResult{}, false
}

// Ended reports whether the source is exhausted.
func (l *Loop) Ended() bool { return l.ended }

// Last returns the most recent step result.
func (l *Loop) Last() pipeline.StepResult { return l.last }

// Key handles a key press by name and reports whether it asks to quit.
func (l *Loop) Key(name string) (quit bool) {
	b, ok := Lookup(name)
	if !ok {
		return false
	}
	if b.Quit {
		diagf("key %s: quit", name)
		return true
	}
	if !l.p.Inject(b.Action) {
		opsf("key %s dropped, queue full", name)
	} else {
		diagf("key %s: %s", name, b.Action)
	}
	return false
}

// RunHeadless processes up to maxFrames frames (0 means no limit) from
// src and returns how many were processed. Source exhaustion is not an
// error.
func RunHeadless(ctx context.Context, p *pipeline.Pipeline, src sources.Source, maxFrames int) (int, error) {
	n := 0
	for maxFrames <= 0 || n < maxFrames {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		p.Process(ctx, frame)
		n++
	}
	p.ApplyPending()
	st := p.Stats()
	opsf("headless run done: frames=%d actions=%d applied=%d gated=%d", n, st.Actions, st.Applied, st.Gated)
	return n, nil
}
