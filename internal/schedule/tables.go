package schedule

import (
	"fmt"

	"github.com/reelsync/reelsync/internal/rowstore"
)

// Column names the engine expects in the side-tables. Columns are located
// by header so tab reordering in the store never breaks a run.
const (
	ColTitle      = "Title"
	ColSeries     = "Series"
	ColSeriesName = "Series Name"
	ColRuntime    = "Runtime"
)

// ParseSeriesRows decodes the film-series side-table. The first row must
// be a header containing Title, Series and Series Name columns.
func ParseSeriesRows(rows [][]string) ([]SeriesRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("series side-table is empty")
	}
	idx := rowstore.HeaderIndex(rows[0])
	if err := rowstore.RequireColumns(idx, ColTitle, ColSeries, ColSeriesName); err != nil {
		return nil, fmt.Errorf("series side-table: %w", err)
	}

	out := make([]SeriesRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, SeriesRow{
			Title: rowstore.Column(idx, row, ColTitle),
			Tag:   rowstore.Column(idx, row, ColSeries),
			Name:  rowstore.Column(idx, row, ColSeriesName),
		})
	}
	return out, nil
}

// ParseRuntimeRows decodes the runtime side-table (Title, Runtime).
func ParseRuntimeRows(rows [][]string) ([]RuntimeRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("runtime side-table is empty")
	}
	idx := rowstore.HeaderIndex(rows[0])
	if err := rowstore.RequireColumns(idx, ColTitle, ColRuntime); err != nil {
		return nil, fmt.Errorf("runtime side-table: %w", err)
	}

	out := make([]RuntimeRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, RuntimeRow{
			Title:   rowstore.Column(idx, row, ColTitle),
			Runtime: rowstore.Column(idx, row, ColRuntime),
		})
	}
	return out, nil
}
