package jsonbackend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/FranksOps/leadscan/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

type jsonBackend struct {
	mu   sync.Mutex
	file *os.File
}

// New creates a new NDJSON-backed storage.Backend. Batches are appended, one
// line per record.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("jsonbackend: open %s: %w", filePath, err)
	}

	return &jsonBackend{file: f}, nil
}

// SaveBatch encodes the whole batch up front and appends it in a single write.
func (b *jsonBackend) SaveBatch(ctx context.Context, records []*storage.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("jsonbackend: encode %s: %w", r.Domain, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("jsonbackend: write: %w", err)
	}
	return b.file.Sync()
}

func (b *jsonBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("jsonbackend: seek: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	// Runs are appended whole, so records of one run are contiguous.
	// Collect them per run in file order, then emit runs newest first.
	var runs [][]*storage.Record
	lastRun := ""

	scanner := bufio.NewScanner(b.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r storage.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("jsonbackend: decode: %w", err)
		}

		if len(runs) == 0 || r.RunID != lastRun {
			runs = append(runs, nil)
			lastRun = r.RunID
		}
		if filter.Match(&r) {
			runs[len(runs)-1] = append(runs[len(runs)-1], &r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonbackend: scan: %w", err)
	}

	var ordered []*storage.Record
	for i := len(runs) - 1; i >= 0; i-- {
		ordered = append(ordered, runs[i]...)
	}
	if ordered == nil {
		ordered = []*storage.Record{}
	}
	return filter.Page(ordered), nil
}

func (b *jsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
