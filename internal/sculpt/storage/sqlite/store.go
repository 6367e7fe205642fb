package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/banshee-data/handvox/internal/sculpt/l2gestures"
	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// Session is one recorded run of the gesture pipeline.
type Session struct {
	SessionID  string `json:"session_id"`
	StartedAt  int64  `json:"started_at_ns"`
	EndedAt    *int64 `json:"ended_at_ns,omitempty"`
	Source     string `json:"source"`
	ConfigJSON string `json:"config_json"`
	FrameCount int    `json:"frame_count"`
}

// FrameRecord is one processed frame of a session.
type FrameRecord struct {
	SessionID      string
	Seq            uint64
	TimestampNanos int64
	Points         []l1landmarks.Point
	Label          l2gestures.Label
	Confidence     float64
	Phase          l4intent.Phase
	Streak         int
	Cursor         l3space.GridCoord
	CursorValid    bool
	Action         l4intent.Action
	Applied        bool
}

// Frame returns the raw landmark frame of the record.
func (r FrameRecord) Frame() l1landmarks.Frame {
	return l1landmarks.Frame{Seq: r.Seq, TimestampNanos: r.TimestampNanos, Points: r.Points}
}

// Store persists sessions and their frames.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path, applies pragmas
// and runs pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	opsf("session db ready at %s", path)
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion() (uint, bool, error) { return schemaVersion(s.db) }

// CreateSession starts a new session and returns it. An empty ID is
// replaced by a new UUID.
func (s *Store) CreateSession(ctx context.Context, sess Session) (Session, error) {
	if sess.SessionID == "" {
		sess.SessionID = uuid.New().String()
	}
	if sess.StartedAt == 0 {
		sess.StartedAt = s.now().UnixNano()
	}
	if sess.ConfigJSON == "" {
		sess.ConfigJSON = "{}"
	}
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO sessions (session_id, started_at_ns, source, config_json)
			VALUES (?, ?, ?, ?)`,
			sess.SessionID, sess.StartedAt, sess.Source, sess.ConfigJSON)
		return err
	})
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// EndSession stamps the session end time.
func (s *Store) EndSession(ctx context.Context, sessionID string) error {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var err error
		res, err = s.db.ExecContext(ctx,
			`UPDATE sessions SET ended_at_ns = ? WHERE session_id = ?`,
			s.now().UnixNano(), sessionID)
		return err
	})
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// RecordFrame appends one frame to a session.
func (s *Store) RecordFrame(ctx context.Context, r FrameRecord) error {
	points, err := sources.EncodePoints(r.Points)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}
	err = retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO session_frames (
				session_id, seq, t_ns, points_json, label, confidence, phase, streak,
				cursor_x, cursor_y, cursor_z, cursor_valid,
				action, action_x, action_y, action_z, delta_yaw, delta_pitch, applied
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.SessionID, int64(r.Seq), r.TimestampNanos, string(points),
			string(r.Label), r.Confidence, string(r.Phase), r.Streak,
			r.Cursor.X, r.Cursor.Y, r.Cursor.Z, boolInt(r.CursorValid),
			string(actionKind(r.Action)), r.Action.Pos.X, r.Action.Pos.Y, r.Action.Pos.Z,
			r.Action.DeltaYaw, r.Action.DeltaPitch, boolInt(r.Applied),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert frame %d: %w", r.Seq, err)
	}
	tracef("recorded session=%s seq=%d label=%s action=%s", r.SessionID, r.Seq, r.Label, r.Action)
	return nil
}

// GetSession returns one session with its frame count.
func (s *Store) GetSession(ctx context.Context, sessionID string) (Session, error) {
	row := s.db.QueryRowContext(ctx, sessionQuery+` WHERE s.session_id = ? GROUP BY s.session_id`, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, err
}

// ListSessions returns every session, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, sessionQuery+` GROUP BY s.session_id ORDER BY s.started_at_ns DESC, s.session_id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

const sessionQuery = `
	SELECT s.session_id, s.started_at_ns, s.ended_at_ns, s.source, s.config_json,
	       COUNT(f.frame_id)
	FROM sessions s
	LEFT JOIN session_frames f ON f.session_id = s.session_id`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(sc scanner) (Session, error) {
	var sess Session
	var ended sql.NullInt64
	if err := sc.Scan(&sess.SessionID, &sess.StartedAt, &ended, &sess.Source, &sess.ConfigJSON, &sess.FrameCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	if ended.Valid {
		sess.EndedAt = &ended.Int64
	}
	return sess, nil
}

// Frames returns the frames of a session in recording order.
func (s *Store) Frames(ctx context.Context, sessionID string) ([]FrameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, t_ns, points_json, label, confidence, phase, streak,
		       cursor_x, cursor_y, cursor_z, cursor_valid,
		       action, action_x, action_y, action_z, delta_yaw, delta_pitch, applied
		FROM session_frames
		WHERE session_id = ?
		ORDER BY frame_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var out []FrameRecord
	for rows.Next() {
		var r FrameRecord
		var seq int64
		var points, label, phase, action string
		var cursorValid, applied int
		err := rows.Scan(
			&r.SessionID, &seq, &r.TimestampNanos, &points, &label, &r.Confidence, &phase, &r.Streak,
			&r.Cursor.X, &r.Cursor.Y, &r.Cursor.Z, &cursorValid,
			&action, &r.Action.Pos.X, &r.Action.Pos.Y, &r.Action.Pos.Z,
			&r.Action.DeltaYaw, &r.Action.DeltaPitch, &applied,
		)
		if err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		if r.Points, err = sources.DecodePoints([]byte(points)); err != nil {
			return nil, fmt.Errorf("frame %d: %w", seq, err)
		}
		r.Seq = uint64(seq)
		r.Label = l2gestures.Label(label)
		r.Phase = l4intent.Phase(phase)
		r.Action.Kind = l4intent.ActionKind(action)
		r.CursorValid = cursorValid != 0
		r.Applied = applied != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// SessionFrames returns only the raw landmark frames of a session, for replay.
func (s *Store) SessionFrames(ctx context.Context, sessionID string) ([]l1landmarks.Frame, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	records, err := s.Frames(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	frames := make([]l1landmarks.Frame, len(records))
	for i, r := range records {
		frames[i] = r.Frame()
	}
	return frames, nil
}

// DeleteSession removes a session and its frames.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
		return err
	})
}

func actionKind(a l4intent.Action) l4intent.ActionKind {
	if a.Kind == "" {
		return l4intent.ActionNone
	}
	return a.Kind
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// retryOnBusy retries op while SQLite reports the database as busy or
// locked, backing off between attempts.
func retryOnBusy(ctx context.Context, op func() error) error {
	const attempts = 5
	backoff := 10 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil || !isBusy(err) {
			return err
		}
		diagf("database busy (attempt %d/%d): %v", i+1, attempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
