// Package gcal owns the calendar side of a run: a thin client over the
// Google Calendar API and the replace-all reconciler built on it.
package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// API is the slice of calendar behavior the reconciler needs. Tests swap
// in a fake; production uses Client.
type API interface {
	ListFutureEvents(ctx context.Context, since time.Time) ([]*calendar.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	InsertEvent(ctx context.Context, event *calendar.Event) error
}

// Client wraps the Google Calendar v3 service for a single calendar.
type Client struct {
	srv        *calendar.Service
	calendarID string
}

// NewClient builds a client from service-account credentials.
func NewClient(ctx context.Context, calendarID, credentialsFile string) (*Client, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("gcal: calendar ID is empty")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcal: create service: %w", err)
	}
	return &Client{srv: srv, calendarID: calendarID}, nil
}

// ListFutureEvents returns every event starting at or after since. The
// listing is the full managed horizon, not a filtered view: the engine
// assumes it owns everything it gets back.
func (c *Client) ListFutureEvents(ctx context.Context, since time.Time) ([]*calendar.Event, error) {
	var events []*calendar.Event
	pageToken := ""
	for {
		call := c.srv.Events.List(c.calendarID).
			TimeMin(since.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("gcal: list events: %w", err)
		}
		events = append(events, resp.Items...)
		if resp.NextPageToken == "" {
			return events, nil
		}
		pageToken = resp.NextPageToken
	}
}

// DeleteEvent removes one event by ID.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcal: delete event %s: %w", eventID, err)
	}
	return nil
}

// InsertEvent creates one event.
func (c *Client) InsertEvent(ctx context.Context, event *calendar.Event) error {
	if _, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcal: insert event %q: %w", event.Summary, err)
	}
	return nil
}

// authHintSubstrings mark failures that are almost always a credentials
// or sharing problem rather than bad event data.
var authHintSubstrings = []string{
	"invalid_grant",
	"unauthorized",
	"forbidden",
	"accessNotConfigured",
	"notFound",
}

// AuthHint returns a troubleshooting hint when the error looks like an
// authentication or access problem, or "" otherwise.
func AuthHint(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sub := range authHintSubstrings {
		if strings.Contains(strings.ToLower(msg), strings.ToLower(sub)) {
			return "check that the service account key is valid and the calendar is shared with the service account email with 'Make changes to events' access"
		}
	}
	return ""
}
