package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FranksOps/leadscan/internal/storage"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Starting()
	p.Loaded(3, "leads.csv")
	p.Scanning("acme.test")
	p.Finished(&storage.Record{Domain: "acme.test", Emails: "a@acme.test, b@acme.test", Phones: storage.NoMatches, StatusCode: 200})
	p.Scanning("blocked.test")
	p.Finished(&storage.Record{Domain: "blocked.test", Status: "Error 403", StatusCode: 403, Protection: "Cloudflare"})
	p.Scanning("dead.test")
	p.Finished(&storage.Record{Domain: "dead.test", Status: storage.StatusDead})
	p.Saving()
	p.Saved("leads_enriched.csv")

	want := []string{
		"Lead enrichment starting...",
		"Loaded 3 leads from leads.csv.",
		"🔍 Scanning: acme.test...",
		"📧 Found emails: [a@acme.test, b@acme.test]",
		"📞 Found phones: None",
		"⚠️ Status Code: 403 (Cloudflare)",
		"❌ Connection Failed.",
		"💾 Saving data...",
		"✅ Data saved to 'leads_enriched.csv'",
	}
	out := buf.String()
	last := 0
	for _, w := range want {
		i := strings.Index(out[last:], w)
		if i < 0 {
			t.Fatalf("expected %q after offset %d in:\n%s", w, last, out)
		}
		last += i + len(w)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI escapes with color disabled")
	}
}
