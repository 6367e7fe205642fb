package sqlite

import (
	"context"

	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
)

// Recorder writes every pipeline step into one session.
type Recorder struct {
	store     *Store
	sessionID string
}

// NewRecorder records into sessionID, which must already exist.
func NewRecorder(store *Store, sessionID string) *Recorder {
	return &Recorder{store: store, sessionID: sessionID}
}

// SessionID returns the session being recorded.
func (r *Recorder) SessionID() string { return r.sessionID }

// Record stores the raw frame together with what the pipeline made of it.
func (r *Recorder) Record(ctx context.Context, res pipeline.StepResult) error {
	return r.store.RecordFrame(ctx, frameRecord(r.sessionID, res))
}

func frameRecord(sessionID string, res pipeline.StepResult) FrameRecord {
	return FrameRecord{
		SessionID:      sessionID,
		Seq:            res.Raw.Seq,
		TimestampNanos: res.Raw.TimestampNanos,
		Points:         res.Raw.Points,
		Label:          res.Gesture.Label,
		Confidence:     res.Gesture.Confidence,
		Phase:          res.State.Phase,
		Streak:         res.State.Streak,
		Cursor:         res.Cursor.Cell,
		CursorValid:    res.Cursor.Valid,
		Action:         res.Action,
		Applied:        res.Applied,
	}
}
