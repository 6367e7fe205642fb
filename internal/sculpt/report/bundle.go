package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/handvox/internal/fsutil"
	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
)

// Bundle file names written by WriteBundle.
const (
	SummaryFile  = "summary.txt"
	TimelinePNG  = "timeline.png"
	TimelineHTML = "timeline.html"
)

// WriteBundle writes the text summary, the timeline plot and the
// interactive timeline for one session into dir. It returns the paths
// written, in that order.
func WriteBundle(fsys fsutil.FileSystem, dir, title string, records []sqlite.FrameRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrNoFrames
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	summary := Summarize(records)
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{SummaryFile, summary.WriteText},
		{TimelinePNG, func(w io.Writer) error { return WritePNG(w, title, records) }},
		{TimelineHTML, func(w io.Writer) error { return WriteHTML(w, title, records) }},
	}

	var written []string
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(fsys, path, o.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
