// Command handvox drives the voxel editor from a stream of hand landmarks.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/logfiles"
	"github.com/banshee-data/handvox/internal/sculpt"
	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/sculpt/shell"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
	"github.com/banshee-data/handvox/internal/timeutil"
	"github.com/banshee-data/handvox/internal/version"
)

var (
	configPath  = flag.String("config", "", "Tuning config JSON (default $HANDVOX_CONFIG or "+config.DefaultConfigPath+")")
	input       = flag.String("input", "-", "Landmark JSON-lines stream, - for stdin")
	grpcAddr    = flag.String("grpc", "", "Read landmarks from the gRPC landmark provider at this address instead of -input")
	replayID    = flag.String("replay", "", "Replay a session recorded in -session-db instead of reading -input")
	sessionDB   = flag.String("session-db", "", "SQLite file to record the session into (default $HANDVOX_SESSION_DB)")
	headless    = flag.Bool("headless", false, "Run without a window")
	maxFrames   = flag.Int("max-frames", 0, "Stop after this many frames in headless mode (0 = no limit)")
	logDir      = flag.String("log-dir", "", "Directory for rotated log files (default $HANDVOX_LOG_DIR)")
	traceLog    = flag.Bool("trace", false, "Write the per-frame trace log (needs a log dir)")
	width       = flag.Int("width", shell.DefaultWindowConfig().Width, "Window width in pixels")
	height      = flag.Int("height", shell.DefaultWindowConfig().Height, "Window height in pixels")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// replayInterval paces recorded sessions in the window at capture rate.
const replayInterval = 33 * time.Millisecond

type options struct {
	ConfigPath string
	Input      string
	GRPCAddr   string
	ReplayID   string
	SessionDB  string
	LogDir     string
	Trace      bool
	Headless   bool
	MaxFrames  int
	Window     shell.WindowConfig
}

// resolveOptions merges flags over the environment.
func resolveOptions(e config.Env) options {
	opts := options{
		ConfigPath: e.ConfigPath,
		Input:      *input,
		GRPCAddr:   *grpcAddr,
		ReplayID:   *replayID,
		SessionDB:  e.SessionDB,
		LogDir:     e.LogDir,
		Trace:      *traceLog,
		Headless:   *headless || e.Headless,
		MaxFrames:  *maxFrames,
		Window:     shell.DefaultWindowConfig(),
	}
	if *configPath != "" {
		opts.ConfigPath = *configPath
	}
	if *sessionDB != "" {
		opts.SessionDB = *sessionDB
	}
	if *logDir != "" {
		opts.LogDir = *logDir
	}
	opts.Window.Title = version.String()
	opts.Window.Width = *width
	opts.Window.Height = *height
	return opts
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}

	env, err := config.ParseEnv()
	if err != nil {
		log.Fatalf("%v", err)
	}
	opts := resolveOptions(env)

	logOpts := logfiles.DefaultOptions(opts.LogDir)
	logOpts.Trace = opts.Trace
	files, err := logfiles.Open(logOpts)
	if err != nil {
		log.Fatalf("Failed to open log files: %v", err)
	}
	defer files.Close()
	sculpt.SetLogWriters(files.Writers())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			if err := files.Rotate(); err != nil {
				log.Printf("log rotation: %v", err)
			}
		}
	}()

	if err := run(ctx, opts, os.Stdout); err != nil {
		files.Close()
		log.Fatalf("%v", err)
	}
}

// run wires one session: tuning, optional recording, the frame source
// and the window or headless loop. It prints a summary to out.
func run(ctx context.Context, opts options, out io.Writer) error {
	tuning, err := config.LoadTuningConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load tuning config: %w", err)
	}
	pcfg, err := pipeline.ConfigFromTuning(tuning)
	if err != nil {
		return err
	}

	var store *sqlite.Store
	if opts.SessionDB != "" {
		if store, err = sqlite.Open(opts.SessionDB); err != nil {
			return err
		}
		defer store.Close()
	}

	src, sourceName, err := openSource(ctx, opts, store, tuning)
	if err != nil {
		return err
	}
	defer src.Close()

	var rec pipeline.Recorder
	sessionID := ""
	if store != nil {
		cfgJSON, err := json.Marshal(tuning)
		if err != nil {
			return fmt.Errorf("encode tuning config: %w", err)
		}
		sess, err := store.CreateSession(ctx, sqlite.Session{Source: sourceName, ConfigJSON: string(cfgJSON)})
		if err != nil {
			return err
		}
		sessionID = sess.SessionID
		rec = sqlite.NewRecorder(store, sessionID)
		defer func() {
			if err := store.EndSession(context.Background(), sessionID); err != nil {
				log.Printf("end session %s: %v", sessionID, err)
			}
		}()
		log.Printf("recording session %s to %s", sessionID, opts.SessionDB)
	}

	p, err := pipeline.New(pcfg, rec)
	if err != nil {
		return err
	}

	runHeadless := opts.Headless
	if !runHeadless {
		err = shell.RunWindow(ctx, opts.Window, p, src)
		if errors.Is(err, shell.ErrNoWindow) {
			log.Printf("%v; running headless", err)
			runHeadless = true
		}
	}
	if runHeadless {
		_, err = shell.RunHeadless(ctx, p, src, opts.MaxFrames)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	writeSummary(out, p, sessionID)
	return nil
}

func openSource(ctx context.Context, opts options, store *sqlite.Store, tuning *config.TuningConfig) (sources.Source, string, error) {
	if opts.ReplayID == "" && opts.GRPCAddr != "" {
		src, err := sources.DialGRPC(opts.GRPCAddr, sources.JSONLConfig{NoHandTimeout: tuning.GetNoHandTimeout()})
		if err != nil {
			return nil, "", err
		}
		return src, "grpc:" + opts.GRPCAddr, nil
	}
	if opts.ReplayID == "" {
		src, err := sources.OpenJSONL(opts.Input, sources.JSONLConfig{NoHandTimeout: tuning.GetNoHandTimeout()})
		if err != nil {
			return nil, "", err
		}
		name := opts.Input
		if name == "-" {
			name = "stdin"
		}
		return src, name, nil
	}
	if store == nil {
		return nil, "", errors.New("-replay needs a session database")
	}
	replay, err := sources.NewSessionSource(ctx, store, opts.ReplayID)
	if err != nil {
		return nil, "", err
	}
	name := "replay:" + opts.ReplayID
	if opts.Headless {
		return replay, name, nil
	}
	return sources.NewPacedSource(replay, timeutil.RealClock{}, replayInterval), name, nil
}

func writeSummary(w io.Writer, p *pipeline.Pipeline, sessionID string) {
	st := p.Stats()
	snap := p.Snapshot()
	fmt.Fprintf(w, "frames:  %d (gated %d)\n", st.Frames, st.Gated)
	fmt.Fprintf(w, "actions: %d (applied %d, keyboard %d)\n", st.Actions, st.Applied, st.Injected)
	fmt.Fprintf(w, "voxels:  %d\n", len(snap.Voxels))
	if sessionID != "" {
		fmt.Fprintf(w, "session: %s\n", sessionID)
	}
	if st.RecordErrors > 0 {
		fmt.Fprintf(w, "record errors: %d\n", st.RecordErrors)
	}
}
