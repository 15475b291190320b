package scraper

import (
	"net/http"
	"time"
)

// OutcomeKind classifies a single fetch attempt.
type OutcomeKind int

const (
	// OutcomeNetworkFailure covers every transport-level fault: DNS, refused
	// connections, TLS, timeouts and truncated bodies.
	OutcomeNetworkFailure OutcomeKind = iota
	// OutcomeSuccess is a response with status 200.
	OutcomeSuccess
	// OutcomeHTTPError is a response with any other status.
	OutcomeHTTPError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPError:
		return "http_error"
	default:
		return "network_failure"
	}
}

// Outcome is the result of fetching one URL.
type Outcome struct {
	Kind       OutcomeKind
	URL        string
	StatusCode int // 0 for network failures
	Headers    http.Header
	Body       []byte
	// Protection names the bot protection vendor detected on a non-200 response.
	Protection string
	Err        error // set only for network failures
	Duration   time.Duration
}
