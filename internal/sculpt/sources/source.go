package sources

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
	"github.com/banshee-data/handvox/internal/timeutil"
)

// Source yields landmark frames in order. Next blocks until a frame is
// available and returns io.EOF once the source is exhausted.
type Source interface {
	Next(ctx context.Context) (l1landmarks.Frame, error)
	Close() error
}

// maxLineBytes bounds a single JSON line; 21 points need well under 2 KiB.
const maxLineBytes = 64 * 1024

// JSONLConfig configures a JSONLSource.
type JSONLConfig struct {
	// Clock defaults to timeutil.RealClock.
	Clock timeutil.Clock
	// NoHandTimeout turns provider silence into a no-hand frame; zero waits forever.
	NoHandTimeout time.Duration
}

type lineResult struct {
	line    []byte
	tooLong bool
	err     error
}

// JSONLSource reads frames from a JSON-lines stream. Lines are read on a
// background goroutine so Next can honour the context and the no-hand
// timeout. Malformed and oversized lines become no-hand frames.
type JSONLSource struct {
	clock   timeutil.Clock
	timeout time.Duration
	closer  io.Closer

	lines     chan lineResult
	done      chan struct{}
	closeOnce sync.Once

	seq       uint64
	malformed uint64
	timeouts  uint64
}

// NewJSONLSource starts reading r. If r is an io.Closer, Close closes it.
func NewJSONLSource(r io.Reader, cfg JSONLConfig) *JSONLSource {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	s := &JSONLSource{
		clock:   cfg.Clock,
		timeout: cfg.NoHandTimeout,
		lines:   make(chan lineResult),
		done:    make(chan struct{}),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	go s.read(r)
	return s
}

// OpenJSONL opens path for reading, or stdin when path is "-".
func OpenJSONL(path string, cfg JSONLConfig) (*JSONLSource, error) {
	if path == "-" {
		return NewJSONLSource(io.NopCloser(os.Stdin), cfg), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open landmark stream: %w", err)
	}
	return NewJSONLSource(f, cfg), nil
}

func (s *JSONLSource) read(r io.Reader) {
	defer close(s.lines)
	br := bufio.NewReaderSize(r, maxLineBytes)
	for {
		line, tooLong, err := readLine(br)
		if tooLong || len(line) > 0 {
			if !s.send(lineResult{line: append([]byte(nil), line...), tooLong: tooLong}) {
				return
			}
		}
		if err != nil {
			s.send(lineResult{err: err})
			return
		}
	}
}

// readLine returns the next line with surrounding space trimmed. The
// slice is only valid until the next read. A line that does not fit in
// the reader's buffer is skipped through its newline and reported as
// tooLong.
func readLine(br *bufio.Reader) ([]byte, bool, error) {
	line, err := br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = br.ReadSlice('\n')
		}
		return nil, true, err
	}
	return bytes.TrimSpace(line), false, err
}

func (s *JSONLSource) send(r lineResult) bool {
	select {
	case s.lines <- r:
		return true
	case <-s.done:
		return false
	}
}

// Next returns the next frame, a no-hand frame after NoHandTimeout of
// silence, or io.EOF at the end of the stream.
func (s *JSONLSource) Next(ctx context.Context) (l1landmarks.Frame, error) {
	var timeoutC <-chan time.Time
	if s.timeout > 0 {
		t := s.clock.NewTimer(s.timeout)
		defer t.Stop()
		timeoutC = t.C()
	}

	select {
	case <-ctx.Done():
		return l1landmarks.Frame{}, ctx.Err()
	case r, ok := <-s.lines:
		if !ok {
			return l1landmarks.Frame{}, io.EOF
		}
		if r.err != nil {
			if r.err != io.EOF {
				opsf("landmark stream read failed: %v", r.err)
			}
			return l1landmarks.Frame{}, r.err
		}
		if r.tooLong {
			s.malformed++
			s.seq++
			diagf("line %d exceeds %d bytes, dropped", s.seq, maxLineBytes)
			return l1landmarks.NoHand(s.seq, s.clock.Now().UnixNano()), nil
		}
		return s.decode(r.line), nil
	case <-timeoutC:
		s.timeouts++
		s.seq++
		tracef("no frame within %s, seq=%d", s.timeout, s.seq)
		return l1landmarks.NoHand(s.seq, s.clock.Now().UnixNano()), nil
	}
}

func (s *JSONLSource) decode(line []byte) l1landmarks.Frame {
	f, err := DecodeFrame(line)
	if err != nil {
		s.malformed++
		diagf("malformed line %d: %v", s.seq+1, err)
		f = l1landmarks.Frame{}
	}
	if f.Seq == 0 {
		f.Seq = s.seq + 1
	}
	if f.TimestampNanos == 0 {
		f.TimestampNanos = s.clock.Now().UnixNano()
	}
	s.seq = f.Seq
	return f
}

// Malformed returns the number of lines that failed to decode.
func (s *JSONLSource) Malformed() uint64 { return s.malformed }

// Timeouts returns the number of no-hand frames synthesized from silence.
func (s *JSONLSource) Timeouts() uint64 { return s.timeouts }

// Close stops the reader goroutine and closes the underlying reader.
func (s *JSONLSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}

// SliceSource serves a fixed list of frames.
type SliceSource struct {
	mu     sync.Mutex
	frames []l1landmarks.Frame
	next   int
}

// NewSliceSource serves frames in order, then io.EOF.
func NewSliceSource(frames []l1landmarks.Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

func (s *SliceSource) Next(ctx context.Context) (l1landmarks.Frame, error) {
	if err := ctx.Err(); err != nil {
		return l1landmarks.Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.frames) {
		return l1landmarks.Frame{}, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// Len returns the total number of frames.
func (s *SliceSource) Len() int { return len(s.frames) }

func (s *SliceSource) Close() error { return nil }

// FrameStore reads back the frames of a recorded session.
type FrameStore interface {
	SessionFrames(ctx context.Context, sessionID string) ([]l1landmarks.Frame, error)
}

// NewSessionSource loads a recorded session for replay.
func NewSessionSource(ctx context.Context, store FrameStore, sessionID string) (*SliceSource, error) {
	frames, err := store.SessionFrames(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	opsf("replaying session %s: %d frames", sessionID, len(frames))
	return NewSliceSource(frames), nil
}

// PacedSource releases frames from an underlying source no faster than
// one per tick, for real-time replay of recordings.
type PacedSource struct {
	src    Source
	ticker timeutil.Ticker
}

// NewPacedSource paces src at interval on clock.
func NewPacedSource(src Source, clock timeutil.Clock, interval time.Duration) *PacedSource {
	return &PacedSource{src: src, ticker: clock.NewTicker(interval)}
}

func (p *PacedSource) Next(ctx context.Context) (l1landmarks.Frame, error) {
	select {
	case <-ctx.Done():
		return l1landmarks.Frame{}, ctx.Err()
	case <-p.ticker.C():
	}
	return p.src.Next(ctx)
}

func (p *PacedSource) Close() error {
	p.ticker.Stop()
	return p.src.Close()
}
