package rowstore

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore keeps each table as one tab of a Google spreadsheet. The
// table name is the tab name.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewSheetsStore builds a store over the given spreadsheet using
// service-account credentials.
func NewSheetsStore(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets store: spreadsheet ID is empty")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets store: create service: %w", err)
	}
	return &SheetsStore{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// ReadRows fetches the whole tab. Cell values come back as interface
// values from the API and are stringified as-is.
func (s *SheetsStore) ReadRows(ctx context.Context, table string) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, table).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets store: read tab %q: %w", table, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteRows clears the tab and writes the rows back in one RAW update.
func (s *SheetsStore) WriteRows(ctx context.Context, table string, rows [][]string) error {
	if _, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, table, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets store: clear tab %q: %w", table, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	_, err := s.srv.Spreadsheets.Values.
		Update(s.spreadsheetID, table, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets store: write tab %q: %w", table, err)
	}
	return nil
}
