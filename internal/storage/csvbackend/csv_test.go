package csvbackend

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FranksOps/leadscan/internal/storage"
)

func sampleRecords() []*storage.Record {
	return []*storage.Record{
		{Position: 0, Domain: "ok.example", Emails: "a@ok.example, b@ok.example", Phones: "+1 212 555 0100"},
		{Position: 1, Domain: "missing.example", Status: "Error 404", Emails: storage.NotAvailable, Phones: storage.NotAvailable},
		{Position: 2, Domain: "dead.example", Status: storage.StatusDead, Emails: storage.NotAvailable, Phones: storage.NotAvailable},
		{Position: 3, Domain: "quiet.example", Emails: storage.NoMatches, Phones: storage.NoMatches},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Domain,Status,Emails,Phones" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "" || rows[1][2] != "a@ok.example, b@ok.example" {
		t.Errorf("unexpected success row %v", rows[1])
	}
	if rows[2][1] != "Error 404" || rows[2][2] != "N/A" {
		t.Errorf("unexpected error row %v", rows[2])
	}
	if rows[3][1] != "Dead" || rows[3][3] != "N/A" {
		t.Errorf("unexpected dead row %v", rows[3])
	}
}

func TestCSVBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads_enriched.csv")

	b, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	defer b.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no output file before SaveBatch, stat err: %v", err)
	}

	ctx := context.Background()
	if err := b.SaveBatch(ctx, sampleRecords()); err != nil {
		t.Fatalf("Failed to save batch: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(all))
	}
	for i, r := range all {
		if r.Position != i {
			t.Errorf("expected input order, record %d has position %d", i, r.Position)
		}
	}
	if all[0].Domain != "ok.example" || all[0].Status != "" {
		t.Errorf("unexpected first record %+v", all[0])
	}

	dead, err := b.Query(ctx, storage.Filter{Status: storage.StatusDead})
	if err != nil {
		t.Fatalf("Failed to query by status: %v", err)
	}
	if len(dead) != 1 || dead[0].Domain != "dead.example" {
		t.Errorf("unexpected dead records %v", dead)
	}

	ok, err := b.Query(ctx, storage.Filter{OKOnly: true, Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query ok page: %v", err)
	}
	if len(ok) != 1 || ok[0].Domain != "quiet.example" {
		t.Errorf("unexpected ok page %v", ok)
	}
}

func TestCSVBackend_SaveBatchReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	b, _ := New(path)
	ctx := context.Background()

	if err := b.SaveBatch(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveBatch(ctx, sampleRecords()[:1]); err != nil {
		t.Fatal(err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("expected second batch to replace the first, got %d rows", len(all))
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the output file in dir, got %d entries", len(entries))
	}
}

func TestCSVBackend_QueryMissingFile(t *testing.T) {
	b, _ := New(filepath.Join(t.TempDir(), "never-written.csv"))
	got, err := b.Query(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestRead_ReorderedColumns(t *testing.T) {
	in := "Emails,Domain,Extra\nx@y.io,y.io,ignored\n"
	records, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Domain != "y.io" || records[0].Emails != "x@y.io" {
		t.Errorf("unexpected records %+v", records[0])
	}
}

func TestRead_MissingDomainColumn(t *testing.T) {
	if _, err := Read(strings.NewReader("Emails\nx@y.io\n")); err == nil {
		t.Fatal("expected error for missing Domain column")
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
