package l4intent

import (
	"fmt"
	"math"
	"sync"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l2gestures"
	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is the per-frame input to the state machine.
type Sample struct {
	Label      l2gestures.Label
	Confidence float64
	Cursor     l3space.Cursor
	// Hand is the palm centre in normalized image units.
	Hand           r3.Vec
	HandPresent    bool
	TimestampNanos int64
}

// Phase is the coarse state of the gesture state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCandidate Phase = "candidate"
	PhaseConfirmed Phase = "confirmed"
	PhaseCooldown  Phase = "cooldown"
)

// State is the full tagged state. Streak is meaningful in
// PhaseCandidate, Remaining in PhaseCooldown.
type State struct {
	Phase      Phase
	Label      l2gestures.Label
	Streak     int
	Remaining  int
	Recovering bool
}

func (s State) String() string {
	switch s.Phase {
	case PhaseCandidate:
		if s.Recovering {
			return fmt.Sprintf("candidate(%s,%d,recovering)", s.Label, s.Streak)
		}
		return fmt.Sprintf("candidate(%s,%d)", s.Label, s.Streak)
	case PhaseConfirmed:
		return fmt.Sprintf("confirmed(%s)", s.Label)
	case PhaseCooldown:
		return fmt.Sprintf("cooldown(%s,%d)", s.Label, s.Remaining)
	default:
		return string(PhaseIdle)
	}
}

// Stats counts state machine activity since construction.
type Stats struct {
	Frames        uint64
	Dips          uint64
	Confirmations uint64
	Actions       uint64
	Suppressed    uint64 // matching frames swallowed by cooldown
}

// Config holds the debounce parameters.
type Config struct {
	ConfirmFrames       int
	CooldownFrames      int
	ConfidenceThreshold float64
	// RotateGain converts palm displacement (image units) to degrees.
	RotateGain float64
}

// DefaultConfig returns the built-in debounce parameters.
func DefaultConfig() Config {
	return StateMachineConfigFromTuning(config.EmptyTuningConfig())
}

// StateMachineConfigFromTuning builds debounce parameters from the tuning config.
func StateMachineConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		ConfirmFrames:       cfg.GetConfirmFrames(),
		CooldownFrames:      cfg.GetCooldownFrames(),
		ConfidenceThreshold: cfg.GetConfidenceThreshold(),
		RotateGain:          cfg.GetRotateGain(),
	}
}

// Validate reports the first invalid parameter, wrapping config.ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.ConfirmFrames <= 0:
		return fmt.Errorf("%w: confirm_frames must be positive, got %d", config.ErrInvalidConfig, c.ConfirmFrames)
	case c.CooldownFrames < 0:
		return fmt.Errorf("%w: cooldown_frames must not be negative, got %d", config.ErrInvalidConfig, c.CooldownFrames)
	case math.IsNaN(c.ConfidenceThreshold) || c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidence_threshold must be in [0,1], got %v", config.ErrInvalidConfig, c.ConfidenceThreshold)
	case math.IsNaN(c.RotateGain) || math.IsInf(c.RotateGain, 0):
		return fmt.Errorf("%w: rotate_gain must be finite", config.ErrInvalidConfig)
	}
	return nil
}

// StateMachine debounces per-frame gesture labels into discrete actions.
//
// Discrete gestures (pinch, palm, peace) fire once on confirmation and are
// then held off for CooldownFrames. A dip below the confidence threshold
// while a candidate is building decays its streak by one; the first
// matching frame after a dip re-arms the candidate without counting.
// Grab is continuous: once confirmed it emits RotateCamera every frame.
//
// Step must be called from a single goroutine; State and Stats may be
// read concurrently.
type StateMachine struct {
	cfg Config

	mu    sync.RWMutex
	state State
	stats Stats

	lastGrab r3.Vec
	haveGrab bool
}

// NewStateMachine validates cfg and returns an idle state machine.
func NewStateMachine(cfg Config) (*StateMachine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StateMachine{cfg: cfg, state: State{Phase: PhaseIdle, Label: l2gestures.LabelNone}}, nil
}

// Config returns the debounce parameters.
func (m *StateMachine) Config() Config { return m.cfg }

// State returns the current state.
func (m *StateMachine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Stats returns a copy of the counters.
func (m *StateMachine) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Reset returns the machine to Idle. Counters are kept.
func (m *StateMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle()
}

// Step advances the machine by one frame and returns at most one action.
func (m *StateMachine) Step(s Sample) Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.Frames++
	label := s.Label
	dip := label == l2gestures.LabelNone || !label.Valid() || !(s.Confidence >= m.cfg.ConfidenceThreshold)
	if dip {
		label = l2gestures.LabelNone
		m.stats.Dips++
	}

	prev := m.state
	action := m.transition(label, dip, s)
	if label == l2gestures.LabelGrab && s.HandPresent {
		m.lastGrab = s.Hand
		m.haveGrab = true
	}
	if !action.IsNone() {
		m.stats.Actions++
	}

	if prev != m.state || !action.IsNone() {
		tracef("t=%d label=%s conf=%.2f %s -> %s action=%s",
			s.TimestampNanos, s.Label, s.Confidence, prev, m.state, action)
	}
	return action
}

func (m *StateMachine) transition(label l2gestures.Label, dip bool, s Sample) Action {
	st := &m.state
	switch st.Phase {
	case PhaseCandidate:
		switch {
		case dip:
			st.Streak--
			if st.Streak <= 0 {
				m.idle()
				return None()
			}
			st.Recovering = true
			return None()
		case label != st.Label:
			return m.begin(label, s)
		case st.Recovering:
			st.Recovering = false
			return None()
		}
		st.Streak++
		if st.Streak >= m.cfg.ConfirmFrames {
			return m.confirm(s)
		}
		return None()

	case PhaseCooldown:
		if !dip && label != st.Label {
			return m.begin(label, s)
		}
		if st.Remaining > 0 {
			st.Remaining--
		}
		if st.Remaining > 0 {
			if !dip {
				m.stats.Suppressed++
			}
			return None()
		}
		if dip {
			m.idle()
			return None()
		}
		*st = State{Phase: PhaseConfirmed, Label: label}
		if label == l2gestures.LabelGrab {
			return m.rotate(s)
		}
		return None()

	case PhaseConfirmed:
		switch {
		case dip:
			// One-frame release grace.
			*st = State{Phase: PhaseCooldown, Label: st.Label, Remaining: 1}
			return None()
		case label != st.Label:
			return m.begin(label, s)
		case label == l2gestures.LabelGrab:
			return m.rotate(s)
		}
		return None()

	default:
		if dip {
			return None()
		}
		return m.begin(label, s)
	}
}

// begin starts a new candidate, confirming at once when one frame suffices.
func (m *StateMachine) begin(label l2gestures.Label, s Sample) Action {
	m.haveGrab = false
	m.state = State{Phase: PhaseCandidate, Label: label, Streak: 1}
	if m.cfg.ConfirmFrames <= 1 {
		return m.confirm(s)
	}
	return None()
}

func (m *StateMachine) confirm(s Sample) Action {
	label := m.state.Label
	m.stats.Confirmations++

	if label == l2gestures.LabelGrab {
		m.state = State{Phase: PhaseConfirmed, Label: label}
		diagf("confirmed %s", label)
		return m.rotate(s)
	}

	if m.cfg.CooldownFrames > 0 {
		m.state = State{Phase: PhaseCooldown, Label: label, Remaining: m.cfg.CooldownFrames}
	} else {
		m.state = State{Phase: PhaseConfirmed, Label: label}
	}

	var action Action
	switch label {
	case l2gestures.LabelPinch:
		action = Place(s.Cursor.Cell)
	case l2gestures.LabelPalm:
		action = Delete(s.Cursor.Cell)
	case l2gestures.LabelPeace:
		action = CyclePalette()
	default:
		action = None()
	}
	diagf("confirmed %s -> %s", label, action)
	return action
}

// rotate converts the palm displacement since the previous grab frame
// into a camera rotation.
func (m *StateMachine) rotate(s Sample) Action {
	if !m.haveGrab || !s.HandPresent {
		return RotateCamera(0, 0)
	}
	d := r3.Sub(s.Hand, m.lastGrab)
	return RotateCamera(-d.X*m.cfg.RotateGain, d.Y*m.cfg.RotateGain)
}

func (m *StateMachine) idle() {
	m.state = State{Phase: PhaseIdle, Label: l2gestures.LabelNone}
	m.haveGrab = false
}
