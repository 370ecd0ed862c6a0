package rowstore

import (
	"context"
	"testing"
)

func TestCSVStoreRoundTrip(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore() error = %v", err)
	}
	ctx := context.Background()

	rows := [][]string{
		{"Title", "Runtime"},
		{"Detour", "68 minutes"},
		{"A Film, With Commas", "90 minutes"},
	}
	if err := store.WriteRows(ctx, "runtimes", rows); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}

	got, err := store.ReadRows(ctx, "runtimes")
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	if got[2][0] != "A Film, With Commas" {
		t.Errorf("quoting lost: got %q", got[2][0])
	}
}

func TestCSVStoreWriteReplacesTable(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.WriteRows(ctx, "t", [][]string{{"a"}, {"b"}, {"c"}}); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}
	if err := store.WriteRows(ctx, "t", [][]string{{"only"}}); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}

	got, err := store.ReadRows(ctx, "t")
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(got) != 1 || got[0][0] != "only" {
		t.Errorf("WriteRows must replace, got %v", got)
	}
}

func TestCSVStoreMissingTableIsError(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore() error = %v", err)
	}
	if _, err := store.ReadRows(context.Background(), "absent"); err == nil {
		t.Error("reading a missing side-table must error, not return empty rows")
	}
}

func TestCSVStoreRaggedRows(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.WriteRows(ctx, "ragged", [][]string{{"Title", "Runtime"}, {"Just A Title"}}); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}
	got, err := store.ReadRows(ctx, "ragged")
	if err != nil {
		t.Fatalf("hand-edited tables with short rows must still read: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d rows, want 2", len(got))
	}
}

func TestHeaderIndex(t *testing.T) {
	idx := HeaderIndex([]string{" Title ", "RUNTIME", "", "Title"})

	if i, ok := idx["title"]; !ok || i != 0 {
		t.Errorf("title -> %d, want first occurrence at 0", i)
	}
	if i, ok := idx["runtime"]; !ok || i != 1 {
		t.Errorf("runtime -> %d, want 1", i)
	}
	if _, ok := idx[""]; ok {
		t.Error("blank headers are not columns")
	}
}

func TestColumn(t *testing.T) {
	idx := HeaderIndex([]string{"Title", "Runtime"})
	row := []string{"Detour"}

	if got := Column(idx, row, "Title"); got != "Detour" {
		t.Errorf("Column(Title) = %q", got)
	}
	if got := Column(idx, row, "Runtime"); got != "" {
		t.Errorf("Column on a short row = %q, want empty", got)
	}
	if got := Column(idx, row, "Nope"); got != "" {
		t.Errorf("Column on a missing header = %q, want empty", got)
	}
}

func TestRequireColumns(t *testing.T) {
	idx := HeaderIndex([]string{"Title", "Runtime"})
	if err := RequireColumns(idx, "Title", "Runtime"); err != nil {
		t.Errorf("RequireColumns() error = %v", err)
	}
	if err := RequireColumns(idx, "Series"); err == nil {
		t.Error("missing column should be an error")
	}
}
