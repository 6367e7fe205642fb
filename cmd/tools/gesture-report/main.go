// Command gesture-report writes a summary, a timeline plot and an
// interactive timeline for a recorded session. With -sql-console it
// instead serves a live SQL console over the session database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/handvox/internal/fsutil"
	"github.com/banshee-data/handvox/internal/sculpt/report"
	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
	"github.com/banshee-data/handvox/internal/security"
)

func main() {
	dbPath := flag.String("db", "sessions.db", "session database")
	sessionID := flag.String("session", "", "session ID (default newest)")
	outDir := flag.String("out", "reports", "output directory; files go in <out>/<session>")
	list := flag.Bool("list", false, "list sessions and exit")
	console := flag.String("sql-console", "", "serve the debug SQL console on this address (e.g. localhost:8090) instead of writing a report")
	flag.Parse()

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case *console != "":
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		var lis net.Listener
		lis, err = net.Listen("tcp", *console)
		if err == nil {
			err = serveConsole(ctx, store, lis, os.Stdout)
		}
		stop()
	case *list:
		err = listSessions(ctx, store, os.Stdout)
	default:
		var paths []string
		paths, err = writeReport(ctx, store, fsutil.OSFileSystem{}, *sessionID, *outDir)
		for _, p := range paths {
			log.Printf("wrote %s", p)
		}
	}
	if err != nil {
		store.Close()
		log.Fatalf("%v", err)
	}
}

func listSessions(ctx context.Context, store *sqlite.Store, w io.Writer) error {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tDURATION\tFRAMES\tSOURCE")
	for _, s := range sessions {
		started := time.Unix(0, s.StartedAt).UTC()
		duration := "running"
		if s.EndedAt != nil {
			duration = time.Duration(*s.EndedAt - s.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.SessionID, started.Format(time.RFC3339), duration, s.FrameCount, s.Source)
	}
	return tw.Flush()
}

func writeReport(ctx context.Context, store *sqlite.Store, fsys fsutil.FileSystem, sessionID, outDir string) ([]string, error) {
	if sessionID == "" {
		sessions, err := store.ListSessions(ctx)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			return nil, errors.New("no sessions recorded")
		}
		sessionID = sessions[0].SessionID
	}
	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	records, err := store.Frames(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Session %s (%s)", sess.SessionID, time.Unix(0, sess.StartedAt).UTC().Format(time.RFC3339))
	dir := filepath.Join(outDir, security.SanitizeFilename(sessionID))
	if err := security.ValidatePathWithinDirectory(dir, outDir); err != nil {
		return nil, err
	}
	return report.WriteBundle(fsys, dir, title, records)
}

// serveConsole serves the store's debug routes on lis until ctx ends.
func serveConsole(ctx context.Context, store *sqlite.Store, lis net.Listener, w io.Writer) error {
	mux := http.NewServeMux()
	if err := store.AttachAdminRoutes(mux); err != nil {
		lis.Close()
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(lis) }()
	fmt.Fprintf(w, "SQL console at http://%s/debug/tailsql/\n", lis.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
