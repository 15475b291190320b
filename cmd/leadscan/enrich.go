package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/FranksOps/leadscan/internal/config"
	"github.com/FranksOps/leadscan/internal/input"
	"github.com/FranksOps/leadscan/internal/metrics"
	"github.com/FranksOps/leadscan/internal/pipeline"
	"github.com/FranksOps/leadscan/internal/report"
	"github.com/FranksOps/leadscan/internal/scraper"
	"github.com/FranksOps/leadscan/internal/storage"
	"github.com/FranksOps/leadscan/pkg/proxy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func enrichCommand(cmd *cobra.Command, v *viper.Viper) error {
	cfg, logger, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}
	return runEnrich(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
}

// runEnrich loads the input, enriches every domain and saves the batch. The
// output backend is opened on the first save, so a missing input or a
// cancelled run never creates an output.
func runEnrich(ctx context.Context, cfg config.Config, stdout io.Writer, logger *slog.Logger) error {
	printer := report.NewPrinter(stdout, cfg.NoColor)
	printer.Starting()

	domains, err := input.ReadDomainsFile(cfg.Input, cfg.DomainColumn)
	if err != nil {
		return err
	}
	printer.Loaded(len(domains), cfg.Input)

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.MetricsPort > 0 {
		srv, err := metrics.Start(cfg.MetricsPort)
		if err != nil {
			return err
		}
		defer srv.Stop(context.Background())
		logger.Info("serving metrics", "addr", srv.Addr())
	}

	sink := &lazySink{cfg: cfg, printer: printer}
	defer sink.Close()

	driver := pipeline.New(fetcher, pipeline.Options{
		Workers:  cfg.Workers,
		Logger:   logger,
		Progress: printer,
	})
	records, err := driver.Run(ctx, domains, sink)
	if err != nil {
		return err
	}
	printer.Saved(cfg.Destination())

	if cfg.Summary != "" {
		format, err := report.ParseFormat(cfg.Summary)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		if err := report.Write(stdout, format, report.GenerateSummary(records)); err != nil {
			return err
		}
	}
	return nil
}

func newFetcher(cfg config.Config, logger *slog.Logger) (*scraper.Fetcher, error) {
	fc := scraper.FetchConfig{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: true,
		UserAgent:    cfg.UserAgent,
		Fingerprint:  cfg.Fingerprint,
		ProxyFailed: func(u *url.URL) {
			metrics.ProxyFailures.WithLabelValues(u.Redacted()).Inc()
			logger.Debug("proxy failed", "proxy", u.Redacted())
		},
	}

	if cfg.ProxyFile != "" {
		pool := proxy.NewPool(proxy.Config{})
		if err := pool.LoadFile(cfg.ProxyFile); err != nil {
			return nil, err
		}
		logger.Info("loaded proxies", "count", pool.Len())
		fc.ProxyPool = pool
	}

	return scraper.NewFetcher(fc)
}

// lazySink opens the configured backend when the batch arrives and prints
// the saving line right before writing it.
type lazySink struct {
	cfg     config.Config
	printer *report.Printer
	backend storage.Backend
}

func (s *lazySink) SaveBatch(ctx context.Context, records []*storage.Record) error {
	if s.backend == nil {
		b, err := openBackend(ctx, s.cfg)
		if err != nil {
			return err
		}
		s.backend = b
	}
	s.printer.Saving()
	return s.backend.SaveBatch(ctx, records)
}

func (s *lazySink) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
