// Package input reads the list of domains to enrich.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultColumn is the header name of the domain column.
const DefaultColumn = "Domain"

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ReadDomainsFile opens path and reads its domain column.
func ReadDomainsFile(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	domains, err := ReadDomains(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return domains, nil
}

// ReadDomains reads a CSV with a header row and returns the values of column,
// matched case-insensitively, in file order. Rows too short to reach the
// column yield an empty domain rather than an error so that every row still
// produces an output record.
func ReadDomains(r io.Reader, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := -1
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(col), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("missing required column %q", column)
	}

	domains := []string{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if idx >= len(rec) {
			domains = append(domains, "")
			continue
		}
		domains = append(domains, strings.TrimSpace(rec[idx]))
	}
	return domains, nil
}
