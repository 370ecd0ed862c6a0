package gcal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"

	"github.com/reelsync/reelsync/internal/schedule"
)

// wallClockLayout is the RFC 3339 form without an offset. Start and end
// are written as local wall time paired with the explicit TimeZone field;
// writing a UTC-converted instant as well would double-apply the offset.
const wallClockLayout = "2006-01-02T15:04:05"

// Reconciler replaces the future-dated portion of a calendar with the
// kept event set. It never patches: every run deletes the full managed
// horizon and reinserts from scratch, which trades a brief incomplete
// window and O(N) API calls for needing no stable external IDs.
type Reconciler struct {
	api      API
	timeZone string // IANA name written alongside each wall-clock time
	dryRun   bool
	logger   zerolog.Logger
}

// NewReconciler creates a reconciler writing times in the given IANA
// time zone. With dryRun set it logs the plan and touches nothing.
func NewReconciler(api API, timeZone string, dryRun bool, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		api:      api,
		timeZone: timeZone,
		dryRun:   dryRun,
		logger:   logger.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile deletes every calendar entry starting at or after now, then
// inserts each kept event, in that strict order: all deletions complete
// (best effort) before any insertion begins, which is what lets the
// engine treat the calendar as a clean slate. Individual delete or
// insert failures are logged and counted but never block their
// siblings. The returned error is non-nil only when the initial snapshot
// listing fails, since without it the horizon cannot be cleared safely.
func (r *Reconciler) Reconcile(ctx context.Context, kept []schedule.Event, now time.Time) (created, failed int, err error) {
	existing, err := r.api.ListFutureEvents(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("snapshot managed horizon: %w", err)
	}

	r.logger.Info().
		Int("existing", len(existing)).
		Int("kept", len(kept)).
		Bool("dryRun", r.dryRun).
		Msg("reconciling calendar")

	for _, ev := range existing {
		if r.dryRun {
			r.logger.Info().Str("summary", ev.Summary).Str("id", ev.Id).Msg("dry-run: would delete")
			continue
		}
		if err := r.api.DeleteEvent(ctx, ev.Id); err != nil {
			r.logger.Error().Err(err).Str("summary", ev.Summary).Str("id", ev.Id).Msg("failed to delete calendar entry")
		}
	}

	for _, e := range kept {
		entry := r.toCalendarEvent(e)
		if r.dryRun {
			r.logger.Info().Str("summary", entry.Summary).Str("start", entry.Start.DateTime).Msg("dry-run: would insert")
			created++
			continue
		}
		if err := r.api.InsertEvent(ctx, entry); err != nil {
			failed++
			logEvent := r.logger.Error().Err(err).Str("summary", entry.Summary)
			if hint := AuthHint(err); hint != "" {
				logEvent = logEvent.Str("hint", hint)
			}
			logEvent.Msg("failed to insert calendar entry")
			continue
		}
		created++
	}

	return created, failed, nil
}

func (r *Reconciler) toCalendarEvent(e schedule.Event) *calendar.Event {
	return &calendar.Event{
		Summary:     e.Title,
		Location:    e.Location,
		Description: e.Description,
		Start: &calendar.EventDateTime{
			DateTime: e.Start.Format(wallClockLayout),
			TimeZone: r.timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: e.End.Format(wallClockLayout),
			TimeZone: r.timeZone,
		},
	}
}
