// Command gesture-replay runs a recorded landmark stream through the
// gesture pipeline without a window and prints the actions it emits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/sculpt/shell"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
)

type replayOptions struct {
	configPath string
	input      string
	dbPath     string
	sessionID  string
	all        bool
	noColor    bool
}

func main() {
	var opts replayOptions
	flag.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "tuning config JSON")
	flag.StringVar(&opts.input, "input", "-", "landmark JSON-lines stream, - for stdin")
	flag.StringVar(&opts.dbPath, "db", "", "session database; replays -session instead of -input")
	flag.StringVar(&opts.sessionID, "session", "", "session ID to replay (default newest)")
	flag.BoolVar(&opts.all, "all", false, "print every frame, not only actions")
	flag.BoolVar(&opts.noColor, "no-color", color.NoColor, "disable colored output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := replay(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func replay(ctx context.Context, opts replayOptions, out io.Writer) error {
	tuning, err := config.LoadTuningConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg, err := pipeline.ConfigFromTuning(tuning)
	if err != nil {
		return err
	}

	src, err := openReplaySource(ctx, opts)
	if err != nil {
		return err
	}
	defer src.Close()

	pr := newPrinter(out, opts.all, opts.noColor)
	p, err := pipeline.New(cfg, pr)
	if err != nil {
		return err
	}
	if _, err := shell.RunHeadless(ctx, p, src, 0); err != nil {
		return err
	}

	st := p.Stats()
	_, err = fmt.Fprintf(out, "%d frames, %d actions (%d applied), %d voxels\n",
		st.Frames, st.Actions, st.Applied, len(p.Snapshot().Voxels))
	return err
}

func openReplaySource(ctx context.Context, opts replayOptions) (sources.Source, error) {
	if opts.dbPath == "" {
		return sources.OpenJSONL(opts.input, sources.JSONLConfig{})
	}
	store, err := sqlite.Open(opts.dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	id := opts.sessionID
	if id == "" {
		list, err := store.ListSessions(ctx)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("no sessions in %s", opts.dbPath)
		}
		id = list[0].SessionID
	}
	return sources.NewSessionSource(ctx, store, id)
}
