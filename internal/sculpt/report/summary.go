package report

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/handvox/internal/sculpt/l2gestures"
	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
)

// LabelStats summarises the frames classified as one label.
type LabelStats struct {
	Label          l2gestures.Label
	Count          int
	MeanConfidence float64
	StdConfidence  float64
	// Buckets counts frames per l2gestures.ConfidenceBucket.
	Buckets map[string]int
}

// Summary describes a whole session.
type Summary struct {
	Frames        int
	HandFrames    int
	DurationNanos int64
	Labels        []LabelStats
	Actions       map[l4intent.ActionKind]int
	Applied       int
	// Noops counts actions the engine rejected (occupied cell, empty history).
	Noops int
}

// Summarize computes the session summary. Labels are listed in the
// classifier's vocabulary order followed by none; labels never seen are
// omitted.
func Summarize(records []sqlite.FrameRecord) Summary {
	s := Summary{Frames: len(records), Actions: make(map[l4intent.ActionKind]int)}
	if len(records) == 0 {
		return s
	}
	s.DurationNanos = records[len(records)-1].TimestampNanos - records[0].TimestampNanos

	confidences := make(map[l2gestures.Label][]float64)
	for _, r := range records {
		if len(r.Points) > 0 {
			s.HandFrames++
		}
		confidences[r.Label] = append(confidences[r.Label], r.Confidence)
		if r.Action.IsNone() {
			continue
		}
		s.Actions[r.Action.Kind]++
		if r.Applied {
			s.Applied++
		} else {
			s.Noops++
		}
	}

	order := append(append([]l2gestures.Label(nil), l2gestures.Labels...), l2gestures.LabelNone)
	for _, label := range order {
		values, ok := confidences[label]
		if !ok {
			continue
		}
		s.Labels = append(s.Labels, labelStats(label, values))
		delete(confidences, label)
	}
	// Anything left is a label this build does not know.
	var unknown []l2gestures.Label
	for label := range confidences {
		unknown = append(unknown, label)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, label := range unknown {
		s.Labels = append(s.Labels, labelStats(label, confidences[label]))
	}
	return s
}

func labelStats(label l2gestures.Label, values []float64) LabelStats {
	ls := LabelStats{Label: label, Count: len(values), Buckets: make(map[string]int)}
	if len(values) > 1 {
		ls.MeanConfidence, ls.StdConfidence = stat.MeanStdDev(values, nil)
	} else {
		ls.MeanConfidence = values[0]
	}
	if label != l2gestures.LabelNone {
		for _, v := range values {
			ls.Buckets[l2gestures.ConfidenceBucket(v)]++
		}
	}
	return ls
}

// WriteText prints the summary as a plain table.
func (s Summary) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "frames:   %d (%d with a hand)\n", s.Frames, s.HandFrames)
	fmt.Fprintf(w, "duration: %.2fs\n", float64(s.DurationNanos)/1e9)
	fmt.Fprintf(w, "\n%-8s %7s %9s %9s\n", "label", "frames", "mean", "stddev")
	for _, ls := range s.Labels {
		fmt.Fprintf(w, "%-8s %7d %9.3f %9.3f\n", ls.Label, ls.Count, ls.MeanConfidence, ls.StdConfidence)
	}

	fmt.Fprintf(w, "\n%-14s %6s\n", "action", "count")
	for _, kind := range l4intent.ActionKinds {
		if n := s.Actions[kind]; n > 0 {
			fmt.Fprintf(w, "%-14s %6d\n", kind, n)
		}
	}
	_, err := fmt.Fprintf(w, "applied %d, no-op %d\n", s.Applied, s.Noops)
	return err
}
