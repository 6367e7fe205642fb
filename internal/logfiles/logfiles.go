// Package logfiles backs the ops, diag and trace log streams with
// size-rotated files.
package logfiles

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/banshee-data/handvox/internal/sculpt"
)

// File names inside the log directory.
const (
	OpsFile   = "ops.log"
	DiagFile  = "diag.log"
	TraceFile = "trace.log"
)

// Options configures Open.
type Options struct {
	// Dir holds the log files. Empty means no files: ops goes to Console
	// only and diag and trace are discarded.
	Dir string
	// Console mirrors the ops stream, typically os.Stderr. Nil disables it.
	Console io.Writer
	// Trace enables the per-frame trace file.
	Trace bool

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions rotates at 10 MB and keeps five compressed backups for
// thirty days.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:        dir,
		Console:    os.Stderr,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// Files owns the open rotators.
type Files struct {
	writers  sculpt.LogWriters
	rotators []*lumberjack.Logger
}

// Open creates the log directory and returns writers for each stream.
func Open(opts Options) (*Files, error) {
	f := &Files{}
	if opts.Dir == "" {
		if opts.Console != nil {
			f.writers.Ops = opts.Console
		}
		return f, nil
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	ops := f.rotator(opts, OpsFile)
	if opts.Console != nil {
		f.writers.Ops = io.MultiWriter(ops, opts.Console)
	} else {
		f.writers.Ops = ops
	}
	f.writers.Diag = f.rotator(opts, DiagFile)
	if opts.Trace {
		f.writers.Trace = f.rotator(opts, TraceFile)
	}
	return f, nil
}

func (f *Files) rotator(opts Options, name string) *lumberjack.Logger {
	l := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, name),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	f.rotators = append(f.rotators, l)
	return l
}

// Writers returns the stream writers for sculpt.SetLogWriters.
func (f *Files) Writers() sculpt.LogWriters { return f.writers }

// Rotate starts a new file for every stream, e.g. on SIGHUP.
func (f *Files) Rotate() error {
	var errs []error
	for _, l := range f.rotators {
		if err := l.Rotate(); err != nil {
			errs = append(errs, fmt.Errorf("rotate %s: %w", l.Filename, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every file.
func (f *Files) Close() error {
	var errs []error
	for _, l := range f.rotators {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
