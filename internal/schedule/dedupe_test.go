package schedule

import (
	"testing"
	"time"

	"github.com/reelsync/reelsync/internal/testutil"
)

func makeEvent(title, date, clock, marker string) Event {
	start, _ := time.Parse("2006-01-02 15:04", date+" "+clock)
	return Event{Title: title, Start: start, End: start.Add(2 * time.Hour), Description: marker}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	events := []Event{
		makeEvent("Film A", "2025-05-01", "19:00", "first"),
		makeEvent("Film A", "2025-05-01", "19:00", "second"),
		makeEvent("Film A", "2025-05-01", "21:30", "late show"),
		makeEvent("Film B", "2025-05-01", "19:00", "other title"),
		makeEvent("Film A", "2025-05-02", "19:00", "next day"),
		makeEvent("Film A", "2025-05-01", "19:00", "third"),
	}

	unique := Dedupe(events, testutil.NewTestLogger(t))

	if len(unique) != 4 {
		t.Fatalf("Dedupe() returned %d events, want 4 distinct keys", len(unique))
	}
	if unique[0].Description != "first" {
		t.Errorf("first occurrence should win, got %q", unique[0].Description)
	}

	// Input order is preserved for the survivors.
	wantOrder := []string{"first", "late show", "other title", "next day"}
	for i, want := range wantOrder {
		if unique[i].Description != want {
			t.Errorf("unique[%d] = %q, want %q", i, unique[i].Description, want)
		}
	}
}

func TestDedupeDisplayTitleSpellingsStayDistinct(t *testing.T) {
	// Normalization is only a join key; dedupe compares display titles.
	events := []Event{
		makeEvent("The Red House", "2025-05-01", "19:00", ""),
		makeEvent("THE RED HOUSE", "2025-05-01", "19:00", ""),
	}

	unique := Dedupe(events, testutil.NewTestLogger(t))
	if len(unique) != 2 {
		t.Fatalf("Dedupe() returned %d events, want 2: differing spellings are distinct", len(unique))
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	unique := Dedupe(nil, testutil.NewTestLogger(t))
	if len(unique) != 0 {
		t.Fatalf("Dedupe(nil) returned %d events, want 0", len(unique))
	}
}
