package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the part of an HTTP response the detectors inspect.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Detector reports the bot protection vendor that blocked or challenged a
// request, or "" when it sees none.
type Detector func(res Response) string

// DefaultDetectors returns the standard list of bot protection detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
	}
}

// Detect runs res through detectors in order and returns the first vendor found.
// Successful responses are never flagged.
func Detect(res Response, detectors []Detector) string {
	if res.StatusCode == http.StatusOK {
		return ""
	}
	for _, d := range detectors {
		if vendor := d(res); vendor != "" {
			return vendor
		}
	}
	return ""
}

func serverContains(h http.Header, needle string) bool {
	return strings.Contains(strings.ToLower(h.Get("Server")), needle)
}

func bodyContainsAny(body []byte, needles ...string) bool {
	for _, n := range needles {
		if bytes.Contains(body, []byte(n)) {
			return true
		}
	}
	return false
}

// Cloudflare challenges come back as 403 or 503.
func detectCloudflare(res Response) string {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return ""
	}
	if serverContains(res.Headers, "cloudflare") ||
		bodyContainsAny(res.Body,
			"cf-browser-verification",
			"cloudflare-nginx",
			"cf-turnstile",
			"Attention Required! | Cloudflare",
		) {
		return "Cloudflare"
	}
	return ""
}

func detectAkamai(res Response) string {
	if res.StatusCode != http.StatusForbidden {
		return ""
	}
	if serverContains(res.Headers, "akamai") {
		return "Akamai"
	}
	// generic Akamai block page
	if bodyContainsAny(res.Body, "Reference #") && bodyContainsAny(res.Body, "Access Denied") {
		return "Akamai"
	}
	return ""
}

func detectDataDome(res Response) string {
	if res.StatusCode != http.StatusForbidden {
		return ""
	}
	if serverContains(res.Headers, "datadome") ||
		res.Headers.Get("X-DataDome") != "" ||
		res.Headers.Get("X-DataDome-Response") != "" ||
		bodyContainsAny(res.Body, "geo.captcha-delivery.com", "datadome") {
		return "DataDome"
	}
	return ""
}

func detectPerimeterX(res Response) string {
	if res.StatusCode != http.StatusForbidden {
		return ""
	}
	if res.Headers.Get("X-Px-Captcha") != "" ||
		bodyContainsAny(res.Body, "client.perimeterx.net", "px-captcha", "_pxBlock") {
		return "PerimeterX"
	}
	return ""
}
