package schedule

import "time"

// FilterUpcoming drops events whose date is strictly before today in the
// venue time zone. Events dated today are kept regardless of time of day,
// so a run late in the evening still manages that evening's screenings.
// Past events are expected noise (screenings that happened since the last
// run) and are dropped silently.
func FilterUpcoming(events []Event, now time.Time, loc *time.Location) []Event {
	local := now.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	kept := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.Start.In(loc).Before(midnight) {
			kept = append(kept, e)
		}
	}
	return kept
}
