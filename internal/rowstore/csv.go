package rowstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVStore keeps each table as <dir>/<table>.csv.
type CSVStore struct {
	dir string
}

// NewCSVStore creates a store rooted at dir, creating it if needed.
func NewCSVStore(dir string) (*CSVStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("csv store: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv store: create %s: %w", dir, err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// ReadRows reads the whole table. A missing file is an error: callers
// treat an unreadable side-table as run-aborting rather than merging
// against silently empty data.
func (s *CSVStore) ReadRows(ctx context.Context, table string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(table))
	if err != nil {
		return nil, fmt.Errorf("csv store: open table %q: %w", table, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // side-tables are hand-edited, ragged rows happen
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv store: read table %q: %w", table, err)
	}
	return rows, nil
}

// WriteRows replaces the table atomically via temp file and rename.
func (s *CSVStore) WriteRows(ctx context.Context, table string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+table+"-*.tmp")
	if err != nil {
		return fmt.Errorf("csv store: temp file for table %q: %w", table, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("csv store: write table %q: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv store: close table %q: %w", table, err)
	}
	if err := os.Rename(tmpName, s.path(table)); err != nil {
		return fmt.Errorf("csv store: replace table %q: %w", table, err)
	}
	return nil
}
