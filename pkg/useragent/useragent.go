package useragent

import "net/http"

// Default is the desktop Chrome User-Agent sent with every homepage request.
const Default = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.5"
)

// Headers returns the fixed browser header set. An empty ua falls back to Default.
// A fresh map is returned on every call so callers may mutate it.
func Headers(ua string) http.Header {
	if ua == "" {
		ua = Default
	}
	h := make(http.Header, 3)
	h.Set("User-Agent", ua)
	h.Set("Accept", accept)
	h.Set("Accept-Language", acceptLanguage)
	return h
}

// Apply copies the browser header set onto req, replacing existing values.
func Apply(req *http.Request, ua string) {
	for k, vals := range Headers(ua) {
		req.Header[k] = vals
	}
}
