package storage

import (
	"context"
	"testing"
)

func TestErrorStatus(t *testing.T) {
	if got := ErrorStatus(404); got != "Error 404" {
		t.Errorf("ErrorStatus(404) = %q", got)
	}
	if got := ErrorStatus(503); got != "Error 503" {
		t.Errorf("ErrorStatus(503) = %q", got)
	}
}

func TestRecord_States(t *testing.T) {
	ok := &Record{Emails: NoMatches, Phones: NoMatches}
	if !ok.OK() || ok.Dead() {
		t.Errorf("expected ok record")
	}
	dead := &Record{Status: StatusDead, Emails: NotAvailable, Phones: NotAvailable}
	if dead.OK() || !dead.Dead() {
		t.Errorf("expected dead record")
	}
	httpErr := &Record{Status: ErrorStatus(500)}
	if httpErr.OK() || httpErr.Dead() {
		t.Errorf("expected http error record")
	}
}

func TestFilter_Match(t *testing.T) {
	r := &Record{RunID: "run1", Domain: "example.com", Status: "Error 404"}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"run match", Filter{RunID: "run1"}, true},
		{"run mismatch", Filter{RunID: "run2"}, false},
		{"domain match", Filter{Domain: "example.com"}, true},
		{"domain mismatch", Filter{Domain: "example.org"}, false},
		{"status match", Filter{Status: "Error 404"}, true},
		{"status mismatch", Filter{Status: StatusDead}, false},
		{"ok only", Filter{OKOnly: true}, false},
	}
	for _, tt := range tests {
		if got := tt.filter.Match(r); got != tt.want {
			t.Errorf("%s: Match = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFilter_Page(t *testing.T) {
	records := []*Record{{Position: 0}, {Position: 1}, {Position: 2}}

	if got := (Filter{}).Page(records); len(got) != 3 {
		t.Errorf("expected all records, got %d", len(got))
	}
	if got := (Filter{Limit: 2}).Page(records); len(got) != 2 || got[1].Position != 1 {
		t.Errorf("unexpected limit page %v", got)
	}
	if got := (Filter{Offset: 1, Limit: 1}).Page(records); len(got) != 1 || got[0].Position != 1 {
		t.Errorf("unexpected offset page %v", got)
	}
	if got := (Filter{Offset: 5}).Page(records); len(got) != 0 {
		t.Errorf("expected empty page, got %d", len(got))
	}
}

// Ensure Backend interface exists and is implementable
type mockBackend struct{}

func (m *mockBackend) SaveBatch(ctx context.Context, records []*Record) error { return nil }
func (m *mockBackend) Query(ctx context.Context, filter Filter) ([]*Record, error) {
	return nil, nil
}
func (m *mockBackend) Close() error { return nil }

func TestBackendInterface(t *testing.T) {
	var b Backend = &mockBackend{}
	_ = b
}
