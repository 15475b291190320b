package useragent

import (
	"net/http"
	"strings"
	"testing"
)

func TestHeaders_DefaultUA(t *testing.T) {
	h := Headers("")
	if got := h.Get("User-Agent"); got != Default {
		t.Errorf("expected default UA, got %q", got)
	}
	if !strings.Contains(h.Get("Accept"), "text/html") {
		t.Errorf("expected html Accept header, got %q", h.Get("Accept"))
	}
	if h.Get("Accept-Language") == "" {
		t.Errorf("expected Accept-Language header")
	}
}

func TestHeaders_CustomUA(t *testing.T) {
	h := Headers("TestBrowser/1.0")
	if got := h.Get("User-Agent"); got != "TestBrowser/1.0" {
		t.Errorf("expected custom UA, got %q", got)
	}
}

func TestHeaders_IndependentCopies(t *testing.T) {
	a := Headers("")
	a.Set("User-Agent", "mutated")

	b := Headers("")
	if b.Get("User-Agent") != Default {
		t.Errorf("mutation leaked between calls: %q", b.Get("User-Agent"))
	}
}

func TestApply(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("User-Agent", "Go-http-client/1.1")

	Apply(req, "")

	if got := req.Header.Get("User-Agent"); got != Default {
		t.Errorf("expected UA to be replaced, got %q", got)
	}
	if req.Header.Get("Accept-Language") != "en-US,en;q=0.5" {
		t.Errorf("unexpected Accept-Language %q", req.Header.Get("Accept-Language"))
	}
}
