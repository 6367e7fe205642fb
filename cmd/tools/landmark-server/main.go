// Command landmark-server streams a recorded landmark file or session to
// gRPC clients, standing in for the live landmark provider. Each client
// gets the recording from the start, paced at capture rate.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/banshee-data/handvox/internal/sculpt/sources"
	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
	"github.com/banshee-data/handvox/internal/timeutil"
)

type serverOptions struct {
	listen    string
	input     string
	dbPath    string
	sessionID string
	interval  time.Duration
}

func main() {
	var opts serverOptions
	flag.StringVar(&opts.listen, "listen", "localhost:50061", "gRPC listen address")
	flag.StringVar(&opts.input, "input", "", "landmark JSON-lines file")
	flag.StringVar(&opts.dbPath, "db", "", "session database; serves -session instead of -input")
	flag.StringVar(&opts.sessionID, "session", "", "session ID to serve (default newest)")
	flag.DurationVar(&opts.interval, "interval", 33*time.Millisecond, "delay between frames, 0 for as fast as possible")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", opts.listen)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	if err := serve(ctx, lis, opts); err != nil {
		log.Fatalf("%v", err)
	}
}

// serve runs the landmark service on lis until ctx ends.
func serve(ctx context.Context, lis net.Listener, opts serverOptions) error {
	open, err := sourceOpener(opts)
	if err != nil {
		lis.Close()
		return err
	}
	gs := sources.NewGRPCServer()
	sources.NewLandmarkServer(open).Register(gs)

	errc := make(chan error, 1)
	go func() { errc <- gs.Serve(lis) }()
	log.Printf("serving landmarks on %s", lis.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	gs.GracefulStop()
	if err := <-errc; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// sourceOpener checks the recording once and returns a function that
// opens a fresh, paced copy of it for each client.
func sourceOpener(opts serverOptions) (func(ctx context.Context) (sources.Source, error), error) {
	pace := func(src sources.Source) sources.Source {
		if opts.interval <= 0 {
			return src
		}
		return sources.NewPacedSource(src, timeutil.RealClock{}, opts.interval)
	}

	if opts.dbPath == "" {
		if opts.input == "" {
			return nil, errors.New("need -input or -db")
		}
		probe, err := sources.OpenJSONL(opts.input, sources.JSONLConfig{})
		if err != nil {
			return nil, err
		}
		probe.Close()
		return func(context.Context) (sources.Source, error) {
			src, err := sources.OpenJSONL(opts.input, sources.JSONLConfig{})
			if err != nil {
				return nil, err
			}
			return pace(src), nil
		}, nil
	}

	store, err := sqlite.Open(opts.dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	ctx := context.Background()
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
	frames, err := store.SessionFrames(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("serving session %s (%d frames)", id, len(frames))
	return func(context.Context) (sources.Source, error) {
		return pace(sources.NewSliceSource(frames)), nil
	}, nil
}
