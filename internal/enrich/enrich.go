// Package enrich turns a fetch outcome into the output record for a domain.
package enrich

import (
	"github.com/FranksOps/leadscan/internal/contact"
	"github.com/FranksOps/leadscan/internal/extract"
	"github.com/FranksOps/leadscan/internal/scraper"
	"github.com/FranksOps/leadscan/internal/storage"
)

// Build maps out to a Record for domain. Only a 200 response is scanned for
// contacts; HTTP errors and transport failures get "N/A" in both fields.
func Build(domain, url string, out scraper.Outcome) *storage.Record {
	rec := &storage.Record{
		Domain:     domain,
		URL:        url,
		StatusCode: out.StatusCode,
		Protection: out.Protection,
		DurationMS: out.Duration.Milliseconds(),
	}

	switch out.Kind {
	case scraper.OutcomeSuccess:
		c := contact.Extract(extract.VisibleText(out.Body))
		rec.Emails = contact.Join(c.Emails, storage.NoMatches)
		rec.Phones = contact.Join(c.Phones, storage.NoMatches)
	case scraper.OutcomeHTTPError:
		rec.Status = storage.ErrorStatus(out.StatusCode)
		rec.Emails = storage.NotAvailable
		rec.Phones = storage.NotAvailable
	default:
		rec.Status = storage.StatusDead
		rec.Emails = storage.NotAvailable
		rec.Phones = storage.NotAvailable
	}
	return rec
}
