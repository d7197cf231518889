package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"PerfHarness/pkg/exporting"
	"PerfHarness/pkg/metrics"
	"PerfHarness/pkg/reptest"
	"PerfHarness/pkg/workloads"
)

var (
	serveAddr  string
	serveInput string
	serveSize  string
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Repeat the workload suite and expose results over HTTP",
		Long: `Run the built-in workloads in rounds until interrupted and serve the
latest results.

Endpoints:
  /          Status page with links
  /metrics   Prometheus metrics
  /results   Latest result per workload (JSON)

Example:
  perfh serve --addr :9090 --size 32MiB`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	Cfg.AddMeasurementFlags(cmd)
	Cfg.AddSystemFlags(cmd)
	cmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVarP(&serveInput, "input", "i", "", "Input file for the read workloads")
	cmd.Flags().StringVar(&serveSize, "size", "64MiB", "Bytes written by the memory workloads")

	return cmd
}

// resultServer holds the latest result of every workload.
type resultServer struct {
	metrics *metrics.Metrics

	mu     sync.RWMutex
	latest map[string]exporting.Record
	rounds int
}

func newResultServer() *resultServer {
	return &resultServer{
		metrics: metrics.New(metrics.DefaultNamespace),
		latest:  make(map[string]exporting.Record),
	}
}

func (s *resultServer) observe(r reptest.Result) {
	s.metrics.ObserveResult(r)
	rec := r.Record()
	rec[exporting.FieldSession] = Cfg.SessionID
	rec[exporting.FieldHostname] = Cfg.Hostname
	rec[exporting.FieldTimestamp] = time.Now().UnixMilli()

	s.mu.Lock()
	s.latest[r.Name] = rec
	s.mu.Unlock()
}

func (s *resultServer) endRound() {
	s.mu.Lock()
	s.rounds++
	s.mu.Unlock()
}

func (s *resultServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/results", s.handleResults)
	return mux
}

func (s *resultServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	rounds, measured := s.rounds, len(s.latest)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>perfh</title></head>
<body>
<h1>perfh benchmark server</h1>
<p>%s completed rounds, %d workloads measured</p>
<ul>
<li><a href="/metrics">Prometheus metrics</a></li>
<li><a href="/results">Latest results</a> (JSON)</li>
</ul>
</body>
</html>`, humanize.Comma(int64(rounds)), measured)
}

func (s *resultServer) handleResults(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	records := make([]exporting.Record, 0, len(s.latest))
	for _, rec := range s.latest {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return fmt.Sprint(records[i]["name"]) < fmt.Sprint(records[j]["name"])
	})
	writeJSONResponse(w, records)
}

func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("JSON error: %v", err), http.StatusInternalServerError)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	size, err := humanize.ParseBytes(serveSize)
	if err != nil || size == 0 {
		return fmt.Errorf("invalid --size %q", serveSize)
	}
	blocks, err := workloads.Suite(serveInput, int(size))
	if err != nil {
		return err
	}

	src, err := openClock()
	if err != nil {
		return err
	}
	tester, err := newTester(src, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer tester.Metrics().Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newResultServer()
	httpSrv := &http.Server{Addr: serveAddr, Handler: srv.handler()}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting benchmark server", "addr", serveAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Measurement stays on this goroutine, which openClock may have pinned.
loop:
	for {
		for _, b := range blocks {
			if ctx.Err() != nil {
				break loop
			}
			select {
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
			default:
			}
			b.Timeout = Cfg.Timeout
			res := tester.Repeat(ctx, b)
			if ctx.Err() != nil {
				break loop
			}
			srv.observe(res)
		}
		srv.endRound()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
