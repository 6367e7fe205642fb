package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/banshee-data/handvox/internal/sculpt/l2gestures"
	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/l5scene"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
)

// pendingCap bounds the keyboard action queue.
const pendingCap = 32

// Config gathers the per-stage parameters.
type Config struct {
	SmoothingAlpha float64
	JumpThreshold  float64
	MaxWristSpeed  float64
	Classifier     l2gestures.Config
	Mapper         l3space.CursorMapper
	Intent         l4intent.Config
	Engine         l5scene.Config
}

// ConfigFromTuning builds every stage's parameters from the tuning config.
func ConfigFromTuning(cfg *config.TuningConfig) (Config, error) {
	mapper, err := l3space.CursorMapperFromTuning(cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	engine, err := l5scene.EngineConfigFromTuning(cfg)
	if err != nil {
		return Config{}, err
	}
	return Config{
		SmoothingAlpha: cfg.GetSmoothingAlpha(),
		JumpThreshold:  cfg.GetJumpThreshold(),
		MaxWristSpeed:  cfg.GetMaxWristSpeed(),
		Classifier:     l2gestures.ConfigFromTuning(cfg),
		Mapper:         mapper,
		Intent:         l4intent.StateMachineConfigFromTuning(cfg),
		Engine:         engine,
	}, nil
}

// StepResult describes what one frame did.
type StepResult struct {
	Raw     l1landmarks.Frame // as received from the source
	Frame   l1landmarks.Frame // after gating and smoothing
	Gated   bool              // rejected by the velocity gate
	Gesture l2gestures.Result
	Cursor  l3space.Cursor
	State   l4intent.State
	Action  l4intent.Action
	Applied bool
}

// Recorder persists step results. Failures are logged and never stop
// the control loop.
type Recorder interface {
	Record(ctx context.Context, r StepResult) error
}

// Stats counts pipeline activity.
type Stats struct {
	Frames       uint64
	Gated        uint64
	Actions      uint64
	Applied      uint64
	Injected     uint64
	Dropped      uint64
	RecordErrors uint64
}

// Pipeline owns one instance of every stage. Process and ApplyPending
// must run on a single goroutine; Inject and Snapshot are safe from any.
type Pipeline struct {
	smoother   *l1landmarks.Smoother
	gate       *l1landmarks.VelocityGate
	classifier *l2gestures.Classifier
	mapper     l3space.CursorMapper
	machine    *l4intent.StateMachine
	engine     *l5scene.Engine
	recorder   Recorder

	pending  chan l4intent.Action
	snapshot atomic.Pointer[l5scene.Snapshot]
	cursor   l3space.Cursor

	frames, gated, actions, applied atomic.Uint64
	injected, dropped, recordErrors atomic.Uint64
}

// New builds a pipeline. rec may be nil.
func New(cfg Config, rec Recorder) (*Pipeline, error) {
	machine, err := l4intent.NewStateMachine(cfg.Intent)
	if err != nil {
		return nil, err
	}
	engine, err := l5scene.NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		smoother:   l1landmarks.NewSmoother(cfg.SmoothingAlpha, cfg.JumpThreshold),
		gate:       l1landmarks.NewVelocityGate(cfg.MaxWristSpeed),
		classifier: l2gestures.NewClassifier(cfg.Classifier),
		mapper:     cfg.Mapper,
		machine:    machine,
		engine:     engine,
		recorder:   rec,
		pending:    make(chan l4intent.Action, pendingCap),
	}
	centre := engine.Bounds().Center()
	p.cursor = l3space.Cursor{Pos: centre, Cell: l3space.Floor(centre)}
	p.publish()
	return p, nil
}

// Process runs one frame through every stage. Queued keyboard actions
// are applied first so they never interleave with a frame.
func (p *Pipeline) Process(ctx context.Context, raw l1landmarks.Frame) StepResult {
	p.ApplyPending()
	p.frames.Add(1)

	res := StepResult{Raw: raw}
	frame, ok := p.gate.Check(raw)
	if !ok {
		res.Gated = true
		p.gated.Add(1)
		diagf("seq=%d rejected by velocity gate", raw.Seq)
	}
	frame = p.smoother.Apply(frame)
	res.Frame = frame

	res.Gesture = p.classifier.Classify(frame)

	sample := l4intent.Sample{
		Label:          res.Gesture.Label,
		Confidence:     res.Gesture.Confidence,
		TimestampNanos: frame.TimestampNanos,
	}
	if frame.Validate() == nil {
		p.cursor = p.mapper.Map(frame.Point(l1landmarks.IndexTip), p.engine.Camera())
		sample.Hand = frame.PalmCenter()
		sample.HandPresent = true
	} else {
		p.cursor.Valid = false
	}
	sample.Cursor = p.cursor
	res.Cursor = p.cursor

	res.Action = p.machine.Step(sample)
	res.State = p.machine.State()

	p.engine.SetCursor(p.cursor)
	p.engine.SetGesture(res.Gesture.Label)
	if !res.Action.IsNone() {
		p.actions.Add(1)
		res.Applied = p.engine.Apply(res.Action)
		if res.Applied {
			p.applied.Add(1)
		}
	}
	p.publish()

	tracef("seq=%d label=%s conf=%.2f cursor=%s state=%s action=%s applied=%t",
		raw.Seq, res.Gesture.Label, res.Gesture.Confidence, res.Cursor.Cell, res.State, res.Action, res.Applied)

	if p.recorder != nil {
		if err := p.recorder.Record(ctx, res); err != nil {
			p.recordErrors.Add(1)
			opsf("record seq=%d: %v", raw.Seq, err)
		}
	}
	return res
}

// Inject queues a keyboard action for the control loop. It reports
// false when the queue is full and the action was dropped.
func (p *Pipeline) Inject(a l4intent.Action) bool {
	select {
	case p.pending <- a:
		p.injected.Add(1)
		return true
	default:
		p.dropped.Add(1)
		opsf("keyboard queue full, dropped %s", a)
		return false
	}
}

// ApplyPending applies every queued keyboard action and returns how many
// changed the scene.
func (p *Pipeline) ApplyPending() int {
	changed := 0
	for {
		select {
		case a := <-p.pending:
			if p.engine.Apply(a) {
				changed++
			}
			diagf("keyboard %s", a)
		default:
			if changed > 0 {
				p.publish()
			}
			return changed
		}
	}
}

// Run processes frames from src until it is exhausted or ctx is done.
// Source exhaustion returns nil.
func (p *Pipeline) Run(ctx context.Context, src sources.Source) error {
	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			p.ApplyPending()
			return nil
		}
		if err != nil {
			return err
		}
		p.Process(ctx, frame)
	}
}

func (p *Pipeline) publish() {
	s := p.engine.Snapshot()
	p.snapshot.Store(&s)
}

// Snapshot returns the latest published scene. Callers must not modify it.
func (p *Pipeline) Snapshot() *l5scene.Snapshot { return p.snapshot.Load() }

// Engine returns the scene engine.
func (p *Pipeline) Engine() *l5scene.Engine { return p.engine }

// Machine returns the gesture state machine.
func (p *Pipeline) Machine() *l4intent.StateMachine { return p.machine }

// Stats returns a copy of the counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Frames:       p.frames.Load(),
		Gated:        p.gated.Load(),
		Actions:      p.actions.Load(),
		Applied:      p.applied.Load(),
		Injected:     p.injected.Load(),
		Dropped:      p.dropped.Load(),
		RecordErrors: p.recordErrors.Load(),
	}
}
