// Package pipeline drives enrichment of an ordered list of domains.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/FranksOps/leadscan/internal/enrich"
	"github.com/FranksOps/leadscan/internal/metrics"
	"github.com/FranksOps/leadscan/internal/scraper"
	"github.com/FranksOps/leadscan/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrNilSink is returned by Run when no output sink is given.
var ErrNilSink = errors.New("pipeline: nil sink")

// Fetcher retrieves one URL. *scraper.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) scraper.Outcome
}

// Sink receives the finished batch. storage.Backend implements it.
type Sink interface {
	SaveBatch(ctx context.Context, records []*storage.Record) error
}

// Progress receives per-domain notifications, always in input order.
type Progress interface {
	Scanning(domain string)
	Finished(rec *storage.Record)
}

// Options tunes a Driver.
type Options struct {
	// Workers is the number of concurrent fetches. Values below 2 fetch
	// sequentially.
	Workers  int
	Logger   *slog.Logger
	Progress Progress
}

// Driver runs the per-domain steps: normalize, fetch, build a record.
type Driver struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

// New returns a Driver that fetches through f.
func New(f Fetcher, opts Options) *Driver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{fetcher: f, opts: opts, logger: logger}
}

// Run enriches domains and hands the records to sink in one SaveBatch call.
// The returned slice has one record per domain in input order. Individual
// fetch failures are recorded, never returned. If ctx is cancelled before
// every domain is done, Run returns the context error and sink is not called.
func (d *Driver) Run(ctx context.Context, domains []string, sink Sink) ([]*storage.Record, error) {
	if sink == nil {
		return nil, ErrNilSink
	}

	runID := uuid.NewString()
	d.logger.Info("enrichment started", "run_id", runID, "domains", len(domains), "workers", d.opts.Workers)

	records := make([]*storage.Record, len(domains))
	var err error
	if d.opts.Workers > 1 && len(domains) > 1 {
		err = d.runConcurrent(ctx, runID, domains, records)
	} else {
		err = d.runSequential(ctx, runID, domains, records)
	}
	if err != nil {
		d.logger.Warn("enrichment interrupted", "run_id", runID, "err", err)
		return nil, err
	}

	if err := sink.SaveBatch(ctx, records); err != nil {
		return records, fmt.Errorf("save batch: %w", err)
	}
	metrics.RunsTotal.Inc()
	d.logger.Info("enrichment finished", "run_id", runID, "records", len(records))
	return records, nil
}

func (d *Driver) runSequential(ctx context.Context, runID string, domains []string, records []*storage.Record) error {
	for i, domain := range domains {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.opts.Progress != nil {
			d.opts.Progress.Scanning(domain)
		}
		records[i] = d.process(ctx, runID, i, domain)
		if d.opts.Progress != nil {
			d.opts.Progress.Finished(records[i])
		}
	}
	return ctx.Err()
}

// runConcurrent fetches on a bounded pool. Each record lands in its input
// slot; progress for a domain is emitted once every earlier domain is done.
func (d *Driver) runConcurrent(ctx context.Context, runID string, domains []string, records []*storage.Record) error {
	var (
		mu   sync.Mutex
		next int
	)
	emit := func(i int, rec *storage.Record) {
		mu.Lock()
		defer mu.Unlock()
		records[i] = rec
		for next < len(records) && records[next] != nil {
			if d.opts.Progress != nil {
				d.opts.Progress.Scanning(domains[next])
				d.opts.Progress.Finished(records[next])
			}
			next++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i, domain := range domains {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(i, d.process(gctx, runID, i, domain))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (d *Driver) process(ctx context.Context, runID string, pos int, domain string) *storage.Record {
	url := scraper.NormalizeURL(domain)
	started := time.Now().UTC()

	out := d.fetcher.Fetch(ctx, url)
	switch out.Kind {
	case scraper.OutcomeNetworkFailure:
		d.logger.Debug("fetch failed", "domain", domain, "url", url, "err", out.Err)
	case scraper.OutcomeHTTPError:
		d.logger.Debug("non-200 response", "domain", domain, "url", url, "status", out.StatusCode, "protection", out.Protection)
	}

	rec := enrich.Build(domain, url, out)
	rec.ID = uuid.NewString()
	rec.RunID = runID
	rec.Position = pos
	rec.FetchedAt = started
	metrics.RecordFetch(rec)
	return rec
}
