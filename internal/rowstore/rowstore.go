// Package rowstore abstracts the tabular side-table storage: named tables
// of string rows where the first row is always a header. Consumers locate
// columns by header name so tables survive column reordering.
package rowstore

import (
	"context"
	"fmt"
	"strings"
)

// RowStore reads and writes whole named tables. WriteRows replaces the
// table's contents; there is no row-level patching.
type RowStore interface {
	ReadRows(ctx context.Context, table string) ([][]string, error)
	WriteRows(ctx context.Context, table string, rows [][]string) error
}

// HeaderIndex maps the header row to column positions, matching
// case-insensitively on trimmed names. The first occurrence of a repeated
// header wins.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// Column returns the named cell of a row, or "" when the column is absent
// from the header or the row is too short.
func Column(idx map[string]int, row []string, name string) string {
	i, ok := idx[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// RequireColumns verifies that every named column exists in the header.
func RequireColumns(idx map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := idx[strings.ToLower(name)]; !ok {
			return fmt.Errorf("missing required column %q", name)
		}
	}
	return nil
}
