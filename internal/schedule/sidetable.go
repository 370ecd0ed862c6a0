package schedule

import (
	"strings"

	"github.com/rs/zerolog"
)

// BuildSeriesNameIndex maps series tag -> series name. A tag that appears
// more than once keeps its first name; the repeat is logged as a warning
// since upstream data entry occasionally duplicates rows.
func BuildSeriesNameIndex(rows []SeriesRow, logger zerolog.Logger) map[string]string {
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		tag := strings.TrimSpace(row.Tag)
		if tag == "" {
			continue
		}
		if prev, ok := names[tag]; ok {
			logger.Warn().
				Str("tag", tag).
				Str("kept", prev).
				Str("ignored", row.Name).
				Msg("duplicate series tag in side-table")
			continue
		}
		names[tag] = strings.TrimSpace(row.Name)
	}
	return names
}

// BuildSeriesByTitleIndex maps normalized title -> series tag. Duplicate
// (title, tag) pairs warn and keep the first occurrence.
func BuildSeriesByTitleIndex(rows []SeriesRow, logger zerolog.Logger) map[string]string {
	byTitle := make(map[string]string, len(rows))
	for _, row := range rows {
		key := NormalizeTitle(row.Title)
		tag := strings.TrimSpace(row.Tag)
		if key == "" || tag == "" {
			continue
		}
		if prev, ok := byTitle[key]; ok {
			logger.Warn().
				Str("title", row.Title).
				Str("kept", prev).
				Str("ignored", tag).
				Msg("duplicate title in series side-table")
			continue
		}
		byTitle[key] = tag
	}
	return byTitle
}

// BuildRuntimeIndex maps exact title -> runtime text. Later duplicates of
// a title are ignored with a warning.
func BuildRuntimeIndex(rows []RuntimeRow, logger zerolog.Logger) map[string]string {
	runtimes := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Title == "" {
			continue
		}
		if _, ok := runtimes[row.Title]; ok {
			logger.Warn().Str("title", row.Title).Msg("duplicate title in runtime side-table")
			continue
		}
		runtimes[row.Title] = strings.TrimSpace(row.Runtime)
	}
	return runtimes
}
