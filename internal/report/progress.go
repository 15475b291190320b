package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/FranksOps/leadscan/internal/storage"
	"github.com/fatih/color"
)

// Printer writes the user-facing run transcript: one block per domain plus
// start and save lines. It implements pipeline.Progress.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	title *color.Color
	scan  *color.Color
	found *color.Color
	warn  *color.Color
	fail  *color.Color
	done  *color.Color
}

// NewPrinter returns a Printer writing to out. Colors are disabled when
// noColor is set; otherwise fatih/color decides from the terminal.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:   out,
		title: color.New(color.Bold),
		scan:  color.New(color.FgCyan),
		found: color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
		done:  color.New(color.FgGreen, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.title, p.scan, p.found, p.warn, p.fail, p.done} {
			c.DisableColor()
		}
	}
	return p
}

// Starting prints the banner line.
func (p *Printer) Starting() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title.Fprintln(p.out, "Lead enrichment starting...")
}

// Loaded reports how many leads were read from path.
func (p *Printer) Loaded(n int, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Loaded %d leads from %s.\n", n, path)
}

// Scanning announces the domain about to be fetched.
func (p *Printer) Scanning(domain string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scan.Fprintf(p.out, "\n🔍 Scanning: %s...\n", domain)
}

// Finished prints the contacts found for rec, or why none could be read.
func (p *Printer) Finished(rec *storage.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case rec.OK():
		p.found.Fprintf(p.out, "  📧 Found emails: %s\n", listing(rec.Emails))
		p.found.Fprintf(p.out, "  📞 Found phones: %s\n", listing(rec.Phones))
	case rec.Dead():
		p.fail.Fprintln(p.out, "  ❌ Connection Failed.")
	default:
		line := fmt.Sprintf("  ⚠️ Status Code: %d", rec.StatusCode)
		if rec.Protection != "" {
			line += " (" + rec.Protection + ")"
		}
		p.warn.Fprintln(p.out, line)
	}
}

// Saving announces the batch write.
func (p *Printer) Saving() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, "\n💾 Saving data...")
}

// Saved reports where the batch was written.
func (p *Printer) Saved(dest string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done.Fprintf(p.out, "✅ Data saved to '%s'\n", dest)
}

// listing renders a joined field as a bracketed list, or None.
func listing(field string) string {
	if field == "" || field == storage.NoMatches {
		return storage.NoMatches
	}
	return "[" + field + "]"
}
