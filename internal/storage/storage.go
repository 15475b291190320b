package storage

import (
	"context"
	"strconv"
	"time"
)

// Field markers used in Emails and Phones.
const (
	// NoMatches marks a page that was fetched but contained no contacts.
	NoMatches = "None"
	// NotAvailable marks a page that could not be fetched.
	NotAvailable = "N/A"
)

// Status values for records whose fetch did not succeed.
const (
	StatusDead        = "Dead"
	statusErrorPrefix = "Error "
)

// Record is the enrichment result for one input domain. Every input row
// yields exactly one Record, whether or not its fetch succeeded.
type Record struct {
	ID       string `json:"id"`
	RunID    string `json:"run_id"`
	Position int    `json:"position"` // zero-based index in the input

	Domain string `json:"domain"`
	// Status is empty on success, "Error <code>" for non-200 responses and
	// "Dead" for transport failures.
	Status string `json:"status,omitempty"`
	Emails string `json:"emails"`
	Phones string `json:"phones"`

	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	Protection string    `json:"protection,omitempty"` // e.g. "Cloudflare"
	DurationMS int64     `json:"duration_ms"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// OK reports whether the record's page was fetched with status 200.
func (r *Record) OK() bool { return r.Status == "" }

// Dead reports whether the fetch failed at the transport level.
func (r *Record) Dead() bool { return r.Status == StatusDead }

// ErrorStatus formats the Status for a non-200 response.
func ErrorStatus(code int) string {
	return statusErrorPrefix + strconv.Itoa(code)
}

// Filter selects stored records.
type Filter struct {
	RunID  string
	Domain string
	Status string // exact match; "" matches every status
	OKOnly bool   // only records fetched with status 200
	Limit  int
	Offset int
}

// Match reports whether r passes the filter's field conditions. Limit and
// Offset are applied by the backend.
func (f Filter) Match(r *Record) bool {
	if f.RunID != "" && r.RunID != f.RunID {
		return false
	}
	if f.Domain != "" && r.Domain != f.Domain {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.OKOnly && !r.OK() {
		return false
	}
	return true
}

// Page applies Offset and Limit to an already ordered result set.
func (f Filter) Page(records []*Record) []*Record {
	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []*Record{}
		}
		records = records[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}

// Backend persists one batch of enrichment results and reads stored results back.
type Backend interface {
	// SaveBatch stores every record of a run, in order, in one operation.
	SaveBatch(ctx context.Context, records []*Record) error
	// Query returns matching records, newest run first and input order within a run.
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}
