package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// runtimePattern matches the machine-interpretable runtime form. Anything
// else in the runtime side-table is carried as opaque description text.
var runtimePattern = regexp.MustCompile(`(?i)^(\d+)\s*minutes$`)

const (
	// changeoverPad is added to a parsed runtime to cover trailers and
	// seat turnover. Calendar consumers rely on the resulting block
	// length, so this value is part of the contract.
	changeoverPad = 15 * time.Minute

	// defaultDuration is the block length used when no runtime parses,
	// sized for typical feature-length programming.
	defaultDuration = 2 * time.Hour
)

// Merger joins normalized listings with the side-table indexes to produce
// candidate events.
type Merger struct {
	loc        *time.Location
	location   string // fixed venue address written onto every event
	exclusions *Exclusions
	logger     zerolog.Logger
}

// NewMerger creates a merger for the venue at the given IANA time zone
// and street address.
func NewMerger(loc *time.Location, location string, exclusions *Exclusions, logger zerolog.Logger) *Merger {
	return &Merger{
		loc:        loc,
		location:   location,
		exclusions: exclusions,
		logger:     logger.With().Str("component", "merger").Logger(),
	}
}

// Merge builds candidate events from raw listings. Listings on the
// exclusion list are skipped; rows with missing fields are dropped with a
// warning and rows with unparseable date or time are dropped with an
// error log. RecordedAt is stamped once, here, and never recomputed.
func (m *Merger) Merge(listings []RawListing, seriesByTitle, seriesNames, runtimes map[string]string, now time.Time) []Event {
	events := make([]Event, 0, len(listings))

	for _, l := range listings {
		if m.exclusions.IsExcluded(l.Title) {
			m.logger.Debug().Str("title", l.Title).Msg("listing excluded by deny-list")
			continue
		}
		if l.Title == "" || l.Date == "" || l.Time == "" {
			m.logger.Warn().
				Str("title", l.Title).
				Str("date", l.Date).
				Str("time", l.Time).
				Msg("dropping listing with missing fields")
			continue
		}

		start, err := time.ParseInLocation("2006-01-02 15:04", l.Date+" "+l.Time, m.loc)
		if err != nil {
			m.logger.Error().
				Err(err).
				Str("title", l.Title).
				Str("date", l.Date).
				Str("time", l.Time).
				Msg("dropping listing with invalid date or time")
			continue
		}

		tag := seriesByTitle[NormalizeTitle(l.Title)]
		seriesName, known := seriesNames[tag]
		if tag != "" && !known {
			// Never emit a dangling reference to a series nobody defined.
			m.logger.Warn().Str("title", l.Title).Str("tag", tag).Msg("series tag has no series entry, clearing")
			tag = ""
		}

		runtimeText := lookupRuntime(runtimes, l.Title)
		end := start.Add(blockLength(runtimeText))

		events = append(events, Event{
			Title:       FormatTitle(l.Title),
			Start:       start,
			End:         end,
			SeriesTag:   tag,
			Description: buildDescription(runtimeText, seriesName, l.URL),
			Location:    m.location,
			SourceURL:   l.URL,
			RecordedAt:  now,
		})
	}

	return events
}

// lookupRuntime tries the exact scraped title first and the trimmed title
// second; the order matters when the side-table was populated from the
// same untrimmed source.
func lookupRuntime(runtimes map[string]string, title string) string {
	if rt, ok := runtimes[title]; ok {
		return rt
	}
	return runtimes[strings.TrimSpace(title)]
}

// blockLength converts runtime text to an event duration: parsed runtimes
// get the changeover pad, everything else falls back to the default.
func blockLength(runtimeText string) time.Duration {
	if m := runtimePattern.FindStringSubmatch(strings.TrimSpace(runtimeText)); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return time.Duration(n)*time.Minute + changeoverPad
		}
	}
	return defaultDuration
}

// buildDescription joins the present parts, one per line, with no blank
// lines and no trailing separator.
func buildDescription(runtimeText, seriesName, url string) string {
	var parts []string
	if runtimeText != "" {
		parts = append(parts, fmt.Sprintf("Runtime: %s", runtimeText))
	}
	if seriesName != "" {
		parts = append(parts, fmt.Sprintf("Film Series: %s", FormatTitle(seriesName)))
	}
	if url != "" {
		parts = append(parts, fmt.Sprintf("URL: %s", url))
	}
	return strings.Join(parts, "\n")
}
