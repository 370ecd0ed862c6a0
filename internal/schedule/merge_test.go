package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/reelsync/reelsync/internal/testutil"
)

func newTestMerger(t *testing.T) *Merger {
	t.Helper()
	exclusions := NewExclusions([]string{"Rent The Marquee"})
	return NewMerger(time.UTC, "123 Main St, Springfield", exclusions, testutil.NewTestLogger(t))
}

func TestMergeDurationFromRuntime(t *testing.T) {
	m := newTestMerger(t)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	listings := []RawListing{{Title: "The Red House", Date: "2025-05-01", Time: "19:00", URL: "https://venue.example/red-house"}}
	runtimes := map[string]string{"The Red House": "90 minutes"}

	events := m.Merge(listings, nil, nil, runtimes, now)
	if len(events) != 1 {
		t.Fatalf("Merge() returned %d events, want 1", len(events))
	}

	wantStart := time.Date(2025, 5, 1, 19, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 5, 1, 20, 45, 0, 0, time.UTC) // 90 + 15 minute pad
	if !events[0].Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", events[0].Start, wantStart)
	}
	if !events[0].End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", events[0].End, wantEnd)
	}
	if !events[0].Start.Before(events[0].End) {
		t.Error("Start must precede End")
	}
	if !events[0].RecordedAt.Equal(now) {
		t.Errorf("RecordedAt = %v, want merge instant %v", events[0].RecordedAt, now)
	}
}

func TestMergeDefaultDuration(t *testing.T) {
	m := newTestMerger(t)
	now := time.Now()

	cases := map[string]string{
		"no entry":       "",
		"free text":      "around an hour and a half",
		"wrong unit":     "2 hours",
		"trailing prose": "100 minutes plus intro",
	}
	for name, runtimeText := range cases {
		runtimes := map[string]string{}
		if runtimeText != "" {
			runtimes["Film"] = runtimeText
		}
		events := m.Merge([]RawListing{{Title: "Film", Date: "2025-05-01", Time: "19:00"}}, nil, nil, runtimes, now)
		if len(events) != 1 {
			t.Fatalf("%s: got %d events, want 1", name, len(events))
		}
		if got := events[0].End.Sub(events[0].Start); got != 2*time.Hour {
			t.Errorf("%s: duration = %v, want default 2h", name, got)
		}
	}
}

func TestMergeRuntimePatternIsCaseInsensitive(t *testing.T) {
	m := newTestMerger(t)
	runtimes := map[string]string{"Film": "105 Minutes"}

	events := m.Merge([]RawListing{{Title: "Film", Date: "2025-05-01", Time: "19:00"}}, nil, nil, runtimes, time.Now())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := events[0].End.Sub(events[0].Start); got != 120*time.Minute {
		t.Errorf("duration = %v, want 105+15 minutes", got)
	}
}

func TestMergeTrimmedRuntimeFallback(t *testing.T) {
	m := newTestMerger(t)
	// The side-table holds the trimmed title; the listing carries padding.
	runtimes := map[string]string{"Film": "60 minutes"}

	events := m.Merge([]RawListing{{Title: "  Film  ", Date: "2025-05-01", Time: "19:00"}}, nil, nil, runtimes, time.Now())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := events[0].End.Sub(events[0].Start); got != 75*time.Minute {
		t.Errorf("duration = %v, want 60+15 minutes via trimmed lookup", got)
	}
}

func TestMergeDescription(t *testing.T) {
	m := newTestMerger(t)
	seriesByTitle := map[string]string{"the red house": "noir"}
	seriesNames := map[string]string{"noir": "CLASSIC noir"}
	runtimes := map[string]string{"The Red House": "100 minutes"}

	events := m.Merge([]RawListing{{
		Title: "The Red House",
		Date:  "2025-05-01",
		Time:  "19:00",
		URL:   "https://venue.example/red-house",
	}}, seriesByTitle, seriesNames, runtimes, time.Now())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	want := strings.Join([]string{
		"Runtime: 100 minutes",
		"Film Series: Classic Noir",
		"URL: https://venue.example/red-house",
	}, "\n")
	if events[0].Description != want {
		t.Errorf("Description = %q, want %q", events[0].Description, want)
	}
	if events[0].SeriesTag != "noir" {
		t.Errorf("SeriesTag = %q, want %q", events[0].SeriesTag, "noir")
	}
}

func TestMergeDescriptionOmitsAbsentParts(t *testing.T) {
	m := newTestMerger(t)

	events := m.Merge([]RawListing{{Title: "Film", Date: "2025-05-01", Time: "19:00"}}, nil, nil, nil, time.Now())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Description != "" {
		t.Errorf("Description = %q, want empty with no parts present", events[0].Description)
	}

	events = m.Merge([]RawListing{{Title: "Film", Date: "2025-05-01", Time: "19:00", URL: "https://venue.example/f"}}, nil, nil, nil, time.Now())
	if got, want := events[0].Description, "URL: https://venue.example/f"; got != want {
		t.Errorf("Description = %q, want %q (single line, no separators)", got, want)
	}
}

func TestMergeClearsDanglingSeriesTag(t *testing.T) {
	m := newTestMerger(t)
	seriesByTitle := map[string]string{"film": "ghost"}
	// No seriesNames entry for "ghost".

	events := m.Merge([]RawListing{{Title: "Film", Date: "2025-05-01", Time: "19:00"}}, seriesByTitle, nil, nil, time.Now())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].SeriesTag != "" {
		t.Errorf("SeriesTag = %q, want empty for undefined series", events[0].SeriesTag)
	}
}

func TestMergeDropsBadRows(t *testing.T) {
	m := newTestMerger(t)
	listings := []RawListing{
		{Title: "", Date: "2025-05-01", Time: "19:00"},
		{Title: "No Date", Date: "", Time: "19:00"},
		{Title: "No Time", Date: "2025-05-01", Time: ""},
		{Title: "Bad Date", Date: "05/01/2025", Time: "19:00"},
		{Title: "Bad Time", Date: "2025-05-01", Time: "7pm"},
		{Title: "Rent The Marquee", Date: "2025-05-01", Time: "19:00"},
		{Title: "Good", Date: "2025-05-01", Time: "19:00"},
	}

	events := m.Merge(listings, nil, nil, nil, time.Now())
	if len(events) != 1 {
		t.Fatalf("got %d events, want only the valid row", len(events))
	}
	if events[0].Title != "Good" {
		t.Errorf("surviving title = %q, want %q", events[0].Title, "Good")
	}
}

func TestMergeTitleIsDisplayFormatted(t *testing.T) {
	m := newTestMerger(t)

	events := m.Merge([]RawListing{{Title: `"the RED house"`, Date: "2025-05-01", Time: "19:00"}}, nil, nil, nil, time.Now())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Title != "The Red House" {
		t.Errorf("Title = %q, want %q", events[0].Title, "The Red House")
	}
	if events[0].Location != "123 Main St, Springfield" {
		t.Errorf("Location = %q, want the venue address", events[0].Location)
	}
}
