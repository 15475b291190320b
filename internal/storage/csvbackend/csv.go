package csvbackend

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/FranksOps/leadscan/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

// Header is the column order of the output file.
var Header = []string{"Domain", "Status", "Emails", "Phones"}

type csvBackend struct {
	mu   sync.Mutex
	path string
}

// New returns a CSV-backed storage.Backend writing to filePath. The file is
// not touched until SaveBatch is called.
func New(filePath string) (storage.Backend, error) {
	if filePath == "" {
		return nil, errors.New("csvbackend: empty output path")
	}
	return &csvBackend{path: filePath}, nil
}

// SaveBatch replaces the output file with records. The rows are written to a
// temporary file in the same directory and renamed into place, so a failed
// write never leaves a partial file behind.
func (b *csvBackend) SaveBatch(ctx context.Context, records []*storage.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("csvbackend: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("csvbackend: write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvbackend: close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("csvbackend: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("csvbackend: rename into place: %w", err)
	}
	return nil
}

// Write renders records as CSV with the Header row.
func Write(w io.Writer, records []*storage.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Domain, r.Status, r.Emails, r.Phones}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Query reads the output file back. Only the four CSV columns survive the
// round trip, so a RunID filter never matches.
func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Open(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*storage.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvbackend: open: %w", err)
	}
	defer f.Close()

	all, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	var matched []*storage.Record
	for _, r := range all {
		if filter.Match(r) {
			matched = append(matched, r)
		}
	}
	return filter.Page(matched), nil
}

// Read parses a file written by Write. Columns are located by header name, so
// files with reordered or extra columns are accepted.
func Read(r io.Reader) ([]*storage.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []*storage.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["domain"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "Domain")
	}

	var records []*storage.Record
	for pos := 0; ; pos++ {
		row, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		records = append(records, &storage.Record{
			Position: pos,
			Domain:   get("domain"),
			Status:   get("status"),
			Emails:   get("emails"),
			Phones:   get("phones"),
		})
	}
}

func (b *csvBackend) Close() error { return nil }
