package sculpt

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/testutil"
)

// TestSetLogWriters routes each stream to its own buffer and checks
// the package prefixes arrive. Not parallel: the loggers are globals.
func TestSetLogWriters(t *testing.T) {
	var ops, diag, trace bytes.Buffer
	SetLogWriters(LogWriters{Ops: &ops, Diag: &diag, Trace: &trace})
	defer SetLogWriters(LogWriters{})

	cfg, err := pipeline.ConfigFromTuning(config.DefaultTuningConfig())
	require.NoError(t, err)
	p, err := pipeline.New(cfg, nil)
	require.NoError(t, err)

	p.Inject(l4intent.Undo())
	p.Process(context.Background(), testutil.HandFrame(1, testutil.PosePalm, testutil.DefaultHandOpts()))

	assert.Contains(t, diag.String(), "[l5scene] ")
	assert.Contains(t, diag.String(), "undo: history empty")
	assert.Contains(t, diag.String(), "[pipeline] ")
	assert.Contains(t, diag.String(), "keyboard undo")
	assert.Contains(t, trace.String(), "seq=1 label=palm")
	assert.Contains(t, trace.String(), "[l4intent] ")
	assert.NotContains(t, ops.String(), "keyboard", "streams stay separate")

	SetLogWriters(LogWriters{})
	diag.Reset()
	p.Inject(l4intent.Undo())
	p.ApplyPending()
	assert.Empty(t, diag.String(), "nil writers disable the streams")
}
