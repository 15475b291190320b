package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/FranksOps/leadscan/internal/config"
	"github.com/FranksOps/leadscan/internal/fingerprint"
	"github.com/FranksOps/leadscan/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:   "leadscan",
		Short: "Enrich a list of domains with contact details from their home pages",
		Long: `leadscan reads domains from a CSV file, fetches each home page once and
records the email addresses and phone numbers found in its visible text.
Every input row yields exactly one output row, in input order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.ReadFile(v, configFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return enrichCommand(cmd, v)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML config file")
	pf.String(config.KeyOutput, "leads_enriched.csv", "output file for the csv and json backends")
	pf.String(config.KeyBackend, config.BackendCSV, "output backend: "+strings.Join(config.Backends, ", "))
	pf.String(config.KeyDSN, "", "data source for the sqlite and postgres backends")
	pf.String(config.KeyLogLevel, "warn", "log level: debug, info, warn, error")
	pf.Bool(config.KeyNoColor, false, "disable colored output")
	cobra.CheckErr(v.BindPFlags(pf))

	root.AddCommand(newEnrichCmd(v), newQueryCmd(v), newVersionCmd())
	addEnrichFlags(root, v)
	return root
}

func newEnrichCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fetch every domain in the input and write enriched records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return enrichCommand(cmd, v)
		},
	}
	addEnrichFlags(cmd, v)
	return cmd
}

// addEnrichFlags registers the enrichment flags on cmd. The root command and
// the enrich subcommand share one viper instance; only the flags of the
// command that runs are bound.
func addEnrichFlags(cmd *cobra.Command, v *viper.Viper) {
	profiles := make([]string, 0, len(fingerprint.Profiles()))
	for _, p := range fingerprint.Profiles() {
		profiles = append(profiles, string(p))
	}
	formats := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		formats = append(formats, string(f))
	}

	f := cmd.Flags()
	f.StringP(config.KeyInput, "i", "leads.csv", "input CSV with a domain column")
	f.String(config.KeyDomainColumn, "Domain", "header of the domain column (case-insensitive)")
	f.Duration(config.KeyTimeout, v.GetDuration(config.KeyTimeout), "per-domain fetch timeout")
	f.String(config.KeyUserAgent, "", "User-Agent header (default: desktop Chrome)")
	f.String(config.KeyFingerprint, "go", "TLS fingerprint: "+strings.Join(profiles, ", "))
	f.Int(config.KeyMaxRedirects, 0, "redirects to follow (0: default of 10, negative: none)")
	f.String(config.KeyProxyFile, "", "file with one proxy URL per line")
	f.IntP(config.KeyWorkers, "w", 1, "concurrent fetches")
	f.Int(config.KeyMetricsPort, 0, "serve Prometheus metrics on this port (0: disabled)")
	f.String(config.KeySummary, "", "print a run summary: "+strings.Join(formats, ", "))

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		return v.BindPFlags(cmd.Flags())
	}
}

// loadConfig resolves the configuration and sets up the default logger.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the leadscan version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "leadscan %s\n", version)
			return err
		},
	}
}
