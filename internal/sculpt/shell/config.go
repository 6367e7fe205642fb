package shell

import "errors"

// ErrNoWindow is returned by RunWindow in builds without a window backend.
var ErrNoWindow = errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")

// WindowConfig sizes the editor window.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	// TPS is ticks per second; at most one frame is processed per tick.
	TPS int
}

// DefaultWindowConfig matches a 30 fps landmark provider with headroom.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{Title: "handvox", Width: 1280, Height: 720, TPS: 60}
}

func (c WindowConfig) withDefaults() WindowConfig {
	d := DefaultWindowConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.TPS <= 0 {
		c.TPS = d.TPS
	}
	return c
}
