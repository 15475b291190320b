package extract

import (
	"strings"
	"testing"
)

func TestVisibleText_StripsScriptsAndStyles(t *testing.T) {
	page := `<!doctype html>
	<html>
	  <head>
	    <title>Acme</title>
	    <style>.x { color: red }</style>
	    <script>var hidden = "admin@hidden.example";</script>
	  </head>
	  <body>
	    <h1>Welcome</h1>
	    <p>Contact us at <a href="mailto:sales@example.com">sales@example.com</a>.</p>
	    <script>trackVisitor("555 123 4567");</script>
	    <noscript>Enable JavaScript</noscript>
	  </body>
	</html>`

	text := VisibleText([]byte(page))

	for _, want := range []string{"Welcome", "Contact us at sales@example.com."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in extracted text, got %q", want, text)
		}
	}
	for _, unwanted := range []string{"color: red", "admin@hidden.example", "trackVisitor", "Enable JavaScript", "Acme"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("did not expect %q in extracted text, got %q", unwanted, text)
		}
	}
}

func TestVisibleText_SeparatesBlocks(t *testing.T) {
	page := `<div>info@example.com</div><div>Call today</div>`

	text := VisibleText([]byte(page))
	if strings.Contains(text, "example.comCall") {
		t.Errorf("adjacent blocks ran together: %q", text)
	}
	if text != "info@example.com\nCall today" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestVisibleText_KeepsInlineRuns(t *testing.T) {
	page := `<p>Phone: <b>+1</b> <span>212 555 0100</span></p>`

	if got := VisibleText([]byte(page)); got != "Phone: +1 212 555 0100" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestVisibleText_Malformed(t *testing.T) {
	tests := []string{
		`<html><body><p>unclosed <b>bold <div>nested</p></span>`,
		`<<<>>> &&& </ >`,
		"\x00\xff binary garbage",
		``,
	}
	for _, in := range tests {
		// must not panic
		_ = VisibleText([]byte(in))
	}

	got := VisibleText([]byte(`<p>unclosed <b>bold <div>nested</p>`))
	if !strings.Contains(got, "unclosed bold") || !strings.Contains(got, "nested") {
		t.Errorf("expected best-effort text, got %q", got)
	}
}

func TestVisibleText_PlainText(t *testing.T) {
	got := VisibleText([]byte("Contact us at sales@example.com or (212) 555-0100"))
	if got != "Contact us at sales@example.com or (212) 555-0100" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestVisibleText_NonBreakingSpaces(t *testing.T) {
	got := VisibleText([]byte("<p>Call 212&nbsp;555&nbsp;0100</p>"))
	if got != "Call 212 555 0100" {
		t.Errorf("unexpected text %q", got)
	}
}
