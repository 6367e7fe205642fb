//go:build !cgo

package shell

import (
	"context"

	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
)

// RunWindow is unavailable without cgo.
func RunWindow(_ context.Context, _ WindowConfig, _ *pipeline.Pipeline, _ sources.Source) error {
	return ErrNoWindow
}
