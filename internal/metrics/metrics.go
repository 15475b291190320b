package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/leadscan/internal/contact"
	"github.com/FranksOps/leadscan/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeDead  = "dead"
)

var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscan_fetches_total",
			Help: "Total number of homepage fetches by outcome",
		},
		[]string{"outcome", "status_code", "protection"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadscan_fetch_duration_seconds",
			Help:    "Duration of homepage fetches in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"outcome"},
	)

	ContactsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscan_contacts_found_total",
			Help: "Total number of distinct contacts found across pages",
		},
		[]string{"kind"},
	)

	RunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadscan_runs_total",
			Help: "Total number of completed enrichment runs",
		},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscan_proxy_failures_total",
			Help: "Total number of proxy failures during fetches",
		},
		[]string{"proxy_url"},
	)
)

// Outcome returns the outcome label for a record.
func Outcome(rec *storage.Record) string {
	switch {
	case rec.OK():
		return OutcomeOK
	case rec.Dead():
		return OutcomeDead
	default:
		return OutcomeError
	}
}

// RecordFetch updates the metrics for one enriched record.
func RecordFetch(rec *storage.Record) {
	if rec == nil {
		return
	}

	outcome := Outcome(rec)
	status := "none"
	if rec.StatusCode != 0 {
		status = strconv.Itoa(rec.StatusCode)
	}

	FetchesTotal.WithLabelValues(outcome, status, rec.Protection).Inc()
	FetchDuration.WithLabelValues(outcome).Observe((time.Duration(rec.DurationMS) * time.Millisecond).Seconds())

	if outcome == OutcomeOK {
		ContactsFound.WithLabelValues("email").Add(float64(Count(rec.Emails)))
		ContactsFound.WithLabelValues("phone").Add(float64(Count(rec.Phones)))
	}
}

// Count returns the number of entries in a joined contact field.
func Count(field string) int {
	if field == "" || field == storage.NoMatches || field == storage.NotAvailable {
		return 0
	}
	return strings.Count(field, contact.Separator) + 1
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Start begins listening on the specified port and exposes /metrics. Port 0
// picks a free port; see Addr.
func Start(port int) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("metrics: listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "err", err)
		}
	}()

	return &Server{srv: srv, ln: ln}, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
