package schedule

import "github.com/rs/zerolog"

// Dedupe collapses events sharing a (title, date, time) key to the first
// occurrence in input order. The key uses the display title: differently
// spelled titles stay distinct here even if they normalize identically.
// Collisions are summarized in a single warning rather than logged one by
// one, which matters when a scrape returns a large duplicated batch.
func Dedupe(events []Event, logger zerolog.Logger) []Event {
	seen := make(map[string]struct{}, len(events))
	unique := make([]Event, 0, len(events))
	dropped := 0

	for _, e := range events {
		key := e.Key()
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, e)
	}

	if dropped > 0 {
		logger.Warn().
			Int("dropped", dropped).
			Int("unique", len(unique)).
			Msg("duplicate screenings collapsed")
	}

	return unique
}
