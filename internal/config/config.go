// Package config assembles run settings from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/FranksOps/leadscan/internal/fingerprint"
	"github.com/FranksOps/leadscan/internal/input"
	"github.com/FranksOps/leadscan/internal/report"
	"github.com/FranksOps/leadscan/internal/scraper"
	"github.com/FranksOps/leadscan/pkg/useragent"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LEADSCAN_WORKERS.
const EnvPrefix = "LEADSCAN"

// Keys shared by flags, environment variables and the config file.
const (
	KeyInput        = "input"
	KeyOutput       = "output"
	KeyDomainColumn = "domain-column"
	KeyBackend      = "backend"
	KeyDSN          = "dsn"
	KeyTimeout      = "timeout"
	KeyUserAgent    = "user-agent"
	KeyFingerprint  = "fingerprint"
	KeyMaxRedirects = "max-redirects"
	KeyProxyFile    = "proxy-file"
	KeyWorkers      = "workers"
	KeyMetricsPort  = "metrics-port"
	KeySummary      = "summary"
	KeyLogLevel     = "log-level"
	KeyNoColor      = "no-color"
)

// Output backends.
const (
	BackendCSV      = "csv"
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Backends lists the supported output backends.
var Backends = []string{BackendCSV, BackendJSON, BackendSQLite, BackendPostgres}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration of one invocation.
type Config struct {
	Input        string
	Output       string
	DomainColumn string
	Backend      string
	DSN          string

	Timeout      time.Duration
	UserAgent    string
	Fingerprint  fingerprint.Profile
	MaxRedirects int
	ProxyFile    string
	Workers      int

	MetricsPort int
	Summary     string // empty disables the summary
	LogLevel    slog.Level
	NoColor     bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyInput, "leads.csv")
	v.SetDefault(KeyOutput, "leads_enriched.csv")
	v.SetDefault(KeyDomainColumn, input.DefaultColumn)
	v.SetDefault(KeyBackend, BackendCSV)
	v.SetDefault(KeyDSN, "")
	v.SetDefault(KeyTimeout, scraper.DefaultTimeout)
	v.SetDefault(KeyUserAgent, useragent.Default)
	v.SetDefault(KeyFingerprint, string(fingerprint.ProfileGo))
	v.SetDefault(KeyMaxRedirects, 0)
	v.SetDefault(KeyProxyFile, "")
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyMetricsPort, 0)
	v.SetDefault(KeySummary, "")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyNoColor, false)
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load resolves v into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Input:        v.GetString(KeyInput),
		Output:       v.GetString(KeyOutput),
		DomainColumn: v.GetString(KeyDomainColumn),
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		DSN:          v.GetString(KeyDSN),
		Timeout:      v.GetDuration(KeyTimeout),
		UserAgent:    v.GetString(KeyUserAgent),
		MaxRedirects: v.GetInt(KeyMaxRedirects),
		ProxyFile:    v.GetString(KeyProxyFile),
		Workers:      v.GetInt(KeyWorkers),
		MetricsPort:  v.GetInt(KeyMetricsPort),
		Summary:      strings.ToLower(strings.TrimSpace(v.GetString(KeySummary))),
		NoColor:      v.GetBool(KeyNoColor),
	}

	profile, err := fingerprint.ParseProfile(v.GetString(KeyFingerprint))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.Fingerprint = profile

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("%w: log level %q", ErrInvalid, v.GetString(KeyLogLevel))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first problem with c, wrapped in ErrInvalid.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Input) == "" {
		return invalid("input path is empty")
	}
	if strings.TrimSpace(c.DomainColumn) == "" {
		return invalid("domain column is empty")
	}
	if !slices.Contains(Backends, c.Backend) {
		return invalid("unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", "))
	}
	switch c.Backend {
	case BackendCSV, BackendJSON:
		if strings.TrimSpace(c.Output) == "" {
			return invalid("backend %s needs an output path", c.Backend)
		}
	case BackendSQLite, BackendPostgres:
		if strings.TrimSpace(c.DSN) == "" {
			return invalid("backend %s needs a dsn", c.Backend)
		}
	}
	if c.Timeout <= 0 {
		return invalid("timeout must be positive, got %s", c.Timeout)
	}
	if c.Workers < 1 {
		return invalid("workers must be at least 1, got %d", c.Workers)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return invalid("metrics port %d out of range", c.MetricsPort)
	}
	if c.Summary != "" {
		if _, err := report.ParseFormat(c.Summary); err != nil {
			return invalid("summary: %v", err)
		}
	}
	return nil
}

// Destination describes where results go, with any DSN password redacted.
func (c Config) Destination() string {
	switch c.Backend {
	case BackendSQLite:
		return "sqlite:" + c.DSN
	case BackendPostgres:
		if u, err := url.Parse(c.DSN); err == nil && u.Scheme != "" {
			return u.Redacted()
		}
		return "postgres"
	}
	return c.Output
}
