package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrUnknownProxy is returned when reporting on a URL the pool does not hold.
var ErrUnknownProxy = errors.New("proxy: not in pool")

// endpoint is a single proxy with health tracking.
type endpoint struct {
	url           *url.URL
	failures      int
	disabledUntil time.Time
}

// Config defines settings for the Proxy Pool.
type Config struct {
	// MaxFailures before disabling a proxy temporarily.
	MaxFailures int
	// Cooldown is how long a proxy remains disabled after hitting MaxFailures.
	Cooldown time.Duration
}

// Pool rotates outbound requests over a set of proxies, skipping proxies
// that are cooling down after repeated failures. It is safe for concurrent use.
type Pool struct {
	mu          sync.Mutex
	endpoints   []*endpoint
	next        int
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time
}

// NewPool creates an empty pool. Zero config values fall back to 3 failures and a 5 minute cooldown.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
		now:         time.Now,
	}
}

// LoadFile adds every proxy listed in path, one URL per line.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: open list: %w", err)
	}
	defer f.Close()
	return p.Load(f)
}

// Load adds proxies from r. Blank lines and lines starting with '#' are ignored.
func (p *Pool) Load(r io.Reader) error {
	var raws []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raws = append(raws, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("proxy: read list: %w", err)
	}
	return p.Add(raws...)
}

// Add parses raw proxy URLs and appends them. A missing scheme defaults to http.
func (p *Pool) Add(raws ...string) error {
	parsed := make([]*endpoint, 0, len(raws))
	for _, raw := range raws {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("proxy: parse %q: %w", raw, err)
		}
		parsed = append(parsed, &endpoint{url: u})
	}

	p.mu.Lock()
	p.endpoints = append(p.endpoints, parsed...)
	p.mu.Unlock()
	return nil
}

// Len reports how many proxies the pool holds, healthy or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}

// Next returns the next healthy proxy in round-robin order, or nil when the
// pool is empty or every proxy is cooling down.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for range p.endpoints {
		ep := p.endpoints[p.next]
		p.next = (p.next + 1) % len(p.endpoints)

		if !ep.disabledUntil.IsZero() && !now.Before(ep.disabledUntil) {
			ep.disabledUntil = time.Time{}
			ep.failures = 0
		}
		if ep.disabledUntil.IsZero() {
			return ep.url
		}
	}
	return nil
}

// Report records the result of a request routed through u. Repeated failures
// disable the proxy for the configured cooldown; a success forgives one failure.
func (p *Pool) Report(u *url.URL, ok bool) error {
	if u == nil {
		return ErrUnknownProxy
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ep := p.find(u)
	if ep == nil {
		return fmt.Errorf("%w: %s", ErrUnknownProxy, u)
	}

	if ok {
		if ep.failures > 0 {
			ep.failures--
		}
		return nil
	}

	ep.failures++
	if ep.failures >= p.maxFailures {
		ep.disabledUntil = p.now().Add(p.cooldown)
	}
	return nil
}

// must be called with p.mu held
func (p *Pool) find(u *url.URL) *endpoint {
	target := u.String()
	for _, ep := range p.endpoints {
		if ep.url.String() == target {
			return ep
		}
	}
	return nil
}

type ctxKey struct{}

// WithURL attaches the proxy chosen for a request to its context.
func WithURL(ctx context.Context, u *url.URL) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromRequest is an http.Transport Proxy func that routes a request through
// the proxy stored by WithURL, or directly when none is set.
func FromRequest(req *http.Request) (*url.URL, error) {
	if u, ok := req.Context().Value(ctxKey{}).(*url.URL); ok {
		return u, nil
	}
	return nil, nil
}
