package schedule

import "time"

// RawListing is one scraped screening row before normalization and
// enrichment. Date and Time keep the scraper's string forms; validation
// happens during merge.
type RawListing struct {
	Title string // raw title, may carry stray quotes
	Date  string // YYYY-MM-DD
	Time  string // HH:MM, 24-hour
	URL   string // absolute link to the screening's detail page
}

// SeriesRow is one row of the film-series side-table.
type SeriesRow struct {
	Title string // film title the series membership applies to
	Tag   string // short series tag, the join key
	Name  string // human-readable series name
}

// RuntimeRow is one row of the runtime side-table. Runtime is free text;
// only the "<N> minutes" form is machine-interpreted.
type RuntimeRow struct {
	Title   string
	Runtime string
}

// Event is the reconciliation unit: one screening as it should appear on
// the calendar. Events are rebuilt from scratch every run and carry no
// identity across runs.
type Event struct {
	Title       string // display form, title-cased
	Start       time.Time
	End         time.Time
	SeriesTag   string // empty when the title belongs to no series
	Description string
	Location    string
	SourceURL   string
	RecordedAt  time.Time
}

// Key returns the uniqueness key used by dedupe: display title plus the
// wall-clock date and time of the screening.
func (e Event) Key() string {
	return e.Title + "|" + e.Start.Format("2006-01-02") + "|" + e.Start.Format("15:04")
}
