// Package sculpt groups the gesture-to-voxel layers. It only carries the
// log wiring shared by its subpackages.
package sculpt

import (
	"io"
	"sync"

	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/l5scene"
	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/sculpt/shell"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var mu sync.Mutex

// SetLogWriters configures all three logging streams for every package
// that logs. Pass nil for any writer to disable that stream.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	l4intent.SetLogWriters(w.Ops, w.Diag, w.Trace)
	l5scene.SetLogWriters(w.Ops, w.Diag, w.Trace)
	sources.SetLogWriters(w.Ops, w.Diag, w.Trace)
	sqlite.SetLogWriters(w.Ops, w.Diag, w.Trace)
	pipeline.SetLogWriters(w.Ops, w.Diag, w.Trace)
	shell.SetLogWriters(w.Ops, w.Diag, w.Trace)
}
