package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_NewTimer(t *testing.T) {
	clock := RealClock{}
	timer := clock.NewTimer(10 * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Error("timer did not fire")
	}
}

func TestMockClock_TimerFiresOnAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	clock := NewMockClock(start)
	timer := clock.NewTimer(500 * time.Millisecond)

	clock.Advance(499 * time.Millisecond)
	select {
	case <-timer.C():
		t.Fatal("timer fired early")
	default:
	}

	clock.Advance(time.Millisecond)
	select {
	case got := <-timer.C():
		if !got.Equal(start.Add(500 * time.Millisecond)) {
			t.Errorf("fired at %v", got)
		}
	default:
		t.Fatal("timer did not fire at deadline")
	}
}

func TestMockClock_TimerResetAndStop(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	timer := clock.NewTimer(time.Second)

	clock.Advance(800 * time.Millisecond)
	if !timer.Reset(time.Second) {
		t.Error("Reset on an active timer should report true")
	}
	clock.Advance(800 * time.Millisecond)
	select {
	case <-timer.C():
		t.Fatal("reset timer fired before its new deadline")
	default:
	}

	if !timer.Stop() {
		t.Error("Stop on an active timer should report true")
	}
	clock.Advance(time.Hour)
	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestMockClock_Armed(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	timer := clock.NewTimer(time.Second)
	select {
	case <-clock.Armed():
	default:
		t.Fatal("NewTimer did not signal Armed")
	}

	timer.Reset(time.Second)
	select {
	case <-clock.Armed():
	default:
		t.Fatal("Reset did not signal Armed")
	}
}

func TestMockClock_Ticker(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	ticker := clock.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	clock.Advance(100 * time.Millisecond)
	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire")
	}

	clock.Advance(50 * time.Millisecond)
	select {
	case <-ticker.C():
		t.Fatal("ticker fired between intervals")
	default:
	}
}
