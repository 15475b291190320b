package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/leadscan/internal/bypass"
	"github.com/FranksOps/leadscan/internal/fingerprint"
	"github.com/FranksOps/leadscan/pkg/httpclient"
	"github.com/FranksOps/leadscan/pkg/proxy"
	"github.com/FranksOps/leadscan/pkg/useragent"
)

// DefaultTimeout bounds a single homepage fetch.
const DefaultTimeout = 5 * time.Second

// FetchConfig configures the homepage fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	// UseCookieJar keeps cookies set during a redirect chain for later hops.
	UseCookieJar bool
	UserAgent    string
	ProxyPool    *proxy.Pool
	Fingerprint  fingerprint.Profile
	// Detectors used on non-200 responses; nil selects bypass.DefaultDetectors.
	Detectors []bypass.Detector
	// ProxyFailed, if set, is called after a request through a proxy fails.
	ProxyFailed func(*url.URL)
}

// Fetcher performs one GET per URL and classifies what happened.
// It is safe for concurrent use.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a Fetcher. A single client is held across requests
// so connections are pooled.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = useragent.Default
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}
	if cfg.Detectors == nil {
		cfg.Detectors = bypass.DefaultDetectors()
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("scraper: setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: create client: %w", err)
	}

	return &Fetcher{config: cfg, client: client}, nil
}

// proxyFunc prefers the proxy picked for this request and otherwise honors
// the usual proxy environment variables.
func proxyFunc(req *http.Request) (*url.URL, error) {
	if u, _ := proxy.FromRequest(req); u != nil {
		return u, nil
	}
	return http.ProxyFromEnvironment(req)
}

// Fetch issues a single GET to targetURL. It never returns an error: every
// failure is folded into the returned Outcome.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) Outcome {
	start := time.Now()
	out := f.fetch(ctx, targetURL)
	out.URL = targetURL
	out.Duration = time.Since(start)
	return out
}

func (f *Fetcher) fetch(ctx context.Context, targetURL string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return Outcome{Kind: OutcomeNetworkFailure, Err: fmt.Errorf("build request: %w", err)}
	}
	useragent.Apply(req, f.config.UserAgent)

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		if activeProxy = f.config.ProxyPool.Next(); activeProxy != nil {
			req = req.WithContext(proxy.WithURL(req.Context(), activeProxy))
		}
	}

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		f.reportProxy(activeProxy, false)
		return Outcome{Kind: OutcomeNetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.reportProxy(activeProxy, false)
		return Outcome{Kind: OutcomeNetworkFailure, Err: fmt.Errorf("read body: %w", err)}
	}
	f.reportProxy(activeProxy, true)

	out := Outcome{
		Kind:       OutcomeSuccess,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}
	if resp.StatusCode != http.StatusOK {
		out.Kind = OutcomeHTTPError
		out.Protection = bypass.Detect(bypass.Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			Body:       body,
		}, f.config.Detectors)
	}
	return out
}

func (f *Fetcher) reportProxy(u *url.URL, ok bool) {
	if u == nil {
		return
	}
	_ = f.config.ProxyPool.Report(u, ok)
	if !ok && f.config.ProxyFailed != nil {
		f.config.ProxyFailed(u)
	}
}
