package sources

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/handvox/internal/sculpt/l1landmarks"
)

// wireFrame is the JSON-lines representation of a frame:
//
//	{"seq":12,"t":1712345678901234567,"points":[[x,y,z],...]}
type wireFrame struct {
	Seq    uint64       `json:"seq"`
	T      int64        `json:"t"`
	Points [][3]float64 `json:"points,omitempty"`
}

// DecodeFrame parses one JSON line. A missing or empty points array
// decodes to the no-hand sentinel.
func DecodeFrame(line []byte) (l1landmarks.Frame, error) {
	var w wireFrame
	if err := json.Unmarshal(line, &w); err != nil {
		return l1landmarks.Frame{}, fmt.Errorf("decode landmark frame: %w", err)
	}
	f := l1landmarks.NoHand(w.Seq, w.T)
	if len(w.Points) == 0 {
		return f, nil
	}
	pts := make([]l1landmarks.Point, len(w.Points))
	for i, p := range w.Points {
		pts[i] = l1landmarks.Point{X: p[0], Y: p[1], Z: p[2]}
	}
	return f.WithPoints(pts), nil
}

// EncodeFrame renders f in the JSON-lines format, without a trailing newline.
func EncodeFrame(f l1landmarks.Frame) ([]byte, error) {
	w := wireFrame{Seq: f.Seq, T: f.TimestampNanos}
	if len(f.Points) > 0 {
		w.Points = make([][3]float64, len(f.Points))
		for i, p := range f.Points {
			w.Points[i] = [3]float64{p.X, p.Y, p.Z}
		}
	}
	return json.Marshal(w)
}

// EncodePoints renders only the points array, as stored by the session recorder.
func EncodePoints(pts []l1landmarks.Point) ([]byte, error) {
	out := make([][3]float64, len(pts))
	for i, p := range pts {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return json.Marshal(out)
}

// DecodePoints is the inverse of EncodePoints.
func DecodePoints(data []byte) ([]l1landmarks.Point, error) {
	var raw [][3]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode landmark points: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	pts := make([]l1landmarks.Point, len(raw))
	for i, p := range raw {
		pts[i] = l1landmarks.Point{X: p[0], Y: p[1], Z: p[2]}
	}
	return pts, nil
}
