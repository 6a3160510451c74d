// Package gcal wraps the Google Calendar API behind a session.Session.
//
// A Client points at one calendar at a time (the "current" calendar,
// defaulting to primary) and exposes calendar discovery, event listing over
// time and date ranges, and event mutation for sessions holding the full
// calendar scope.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/elemental-reasoning/gdevutils/internal/logger"
	"github.com/elemental-reasoning/gdevutils/session"
)

// DefaultCalendarID is the first calendar every Google account starts with.
const DefaultCalendarID = "primary"

// eventPageSize is the page size for event listing requests.
const eventPageSize = 250

var (
	// ErrCalendarNotFound indicates no calendar matched the requested name.
	ErrCalendarNotFound = errors.New("gcal: calendar not found")

	// ErrAmbiguousCalendar indicates more than one calendar matched the
	// requested name.
	ErrAmbiguousCalendar = errors.New("gcal: more than one calendar with that name")
)

// Client provides access to one account's calendars.
type Client struct {
	svc        *calendar.Service
	sess       *session.Session
	calendarID string

	// colors is fetched once and cached for the life of the client.
	colors *calendar.Colors
}

// New creates a Client over the given session.
func New(ctx context.Context, sess *session.Session) (*Client, error) {
	svc, err := sess.Calendar(ctx)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return NewWithService(svc, sess), nil
}

// NewWithService creates a Client from an existing API client. Useful when
// the service was built with custom options.
func NewWithService(svc *calendar.Service, sess *session.Session) *Client {
	return &Client{
		svc:        svc,
		sess:       sess,
		calendarID: DefaultCalendarID,
	}
}

// SetCalendar changes the calendar subsequent event operations target.
func (c *Client) SetCalendar(calendarID string) {
	c.calendarID = calendarID
}

// CurrentCalendar returns the calendar ID event operations target.
func (c *Client) CurrentCalendar() string {
	return c.calendarID
}

// Calendars returns all calendars on the account's calendar list.
func (c *Client) Calendars(ctx context.Context) ([]*calendar.CalendarListEntry, error) {
	var entries []*calendar.CalendarListEntry

	pageToken := ""
	for {
		var page *calendar.CalendarList
		err := c.sess.Do(ctx, session.ServiceCalendar, func() error {
			var err error
			page, err = c.svc.CalendarList.List().PageToken(pageToken).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list calendars: %w", err)
		}

		entries = append(entries, page.Items...)
		if page.NextPageToken == "" {
			return entries, nil
		}
		pageToken = page.NextPageToken
	}
}

// CalendarsNamed returns the calendars whose summary equals only.
// An empty filter returns every calendar.
func (c *Client) CalendarsNamed(ctx context.Context, only string) ([]*calendar.CalendarListEntry, error) {
	entries, err := c.Calendars(ctx)
	if err != nil {
		return nil, err
	}
	if only == "" {
		return entries, nil
	}

	var matched []*calendar.CalendarListEntry
	for _, e := range entries {
		if e.Summary == only {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// CalendarByName finds a calendar by summary, case-insensitively.
func (c *Client) CalendarByName(ctx context.Context, name string) (*calendar.CalendarListEntry, error) {
	entries, err := c.Calendars(ctx)
	if err != nil {
		return nil, err
	}
	return matchCalendar(entries, name)
}

// CalendarIDByName returns the ID of the calendar named name.
func (c *Client) CalendarIDByName(ctx context.Context, name string) (string, error) {
	cal, err := c.CalendarByName(ctx, name)
	if err != nil {
		return "", err
	}
	return cal.Id, nil
}

// CanonicalName returns the exact summary of the calendar matching name.
func (c *Client) CanonicalName(ctx context.Context, name string) (string, error) {
	cal, err := c.CalendarByName(ctx, name)
	if err != nil {
		return "", err
	}
	return cal.Summary, nil
}

// ColorForCalendar returns the background colour of the calendar named
// name. The colour palette is fetched once and cached.
func (c *Client) ColorForCalendar(ctx context.Context, name string) (string, error) {
	cal, err := c.CalendarByName(ctx, name)
	if err != nil {
		return "", err
	}

	if c.colors == nil {
		logger.Info("fetching calendar colour palette")
		err := c.sess.Do(ctx, session.ServiceCalendar, func() error {
			var err error
			c.colors, err = c.svc.Colors.Get().Context(ctx).Do()
			return err
		})
		if err != nil {
			return "", fmt.Errorf("get colours: %w", err)
		}
	}

	return lookupColor(c.colors, cal.ColorId)
}

// NextEvents returns the next count events on the current calendar,
// starting from now. Recurring events are expanded into instances.
func (c *Client) NextEvents(ctx context.Context, count int64) ([]*calendar.Event, error) {
	logger.Info("getting the upcoming %d events", count)

	var result *calendar.Events
	err := c.sess.Do(ctx, session.ServiceCalendar, func() error {
		var err error
		result, err = c.svc.Events.List(c.calendarID).
			TimeMin(time.Now().Format(time.RFC3339)).
			MaxResults(count).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return result.Items, nil
}

// EventsBetween returns all events on the current calendar that start
// within [start, end). Both times carry their own location; pagination is
// followed to completion.
func (c *Client) EventsBetween(ctx context.Context, start, end time.Time) ([]*calendar.Event, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("gcal: start %s is not before end %s", start, end)
	}
	logger.Debug("getting events on %s from %s to %s", c.calendarID, start.Format(time.RFC3339), end.Format(time.RFC3339))

	var events []*calendar.Event
	pageToken := ""
	for {
		var page *calendar.Events
		err := c.sess.Do(ctx, session.ServiceCalendar, func() error {
			var err error
			call := c.svc.Events.List(c.calendarID).
				TimeMin(start.Format(time.RFC3339)).
				TimeMax(end.Format(time.RFC3339)).
				MaxResults(eventPageSize).
				SingleEvents(true).
				OrderBy("startTime").
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}

		events = append(events, page.Items...)
		if page.NextPageToken == "" {
			if len(events) == 0 {
				logger.Info("no events found between %s and %s", start, end)
			}
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// EventsInDateRange returns all events from 00:00 on the start day through
// 23:59 on the end day. The time portions of start and end are ignored;
// their locations determine where the day boundaries fall.
func (c *Client) EventsInDateRange(ctx context.Context, start, end time.Time) ([]*calendar.Event, error) {
	dayStart, dayEnd := DateRangeBounds(start, end)
	return c.EventsBetween(ctx, dayStart, dayEnd)
}

// CreateEvent inserts an event into the current calendar.
// Requires the full calendar scope.
func (c *Client) CreateEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	var created *calendar.Event
	err := c.sess.Do(ctx, session.ServiceCalendar, func() error {
		var err error
		created, err = c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

// DeleteEvent removes an event from the current calendar.
// Requires the full calendar scope.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.sess.Do(ctx, session.ServiceCalendar, func() error {
		return c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

// matchCalendar finds the single calendar whose summary matches name,
// ignoring case.
func matchCalendar(entries []*calendar.CalendarListEntry, name string) (*calendar.CalendarListEntry, error) {
	var matched []*calendar.CalendarListEntry
	for _, e := range entries {
		if strings.EqualFold(e.Summary, name) {
			matched = append(matched, e)
		}
	}

	switch len(matched) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	case 1:
		return matched[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousCalendar, name)
	}
}

// lookupColor resolves a calendar colour ID against the palette.
func lookupColor(colors *calendar.Colors, colorID string) (string, error) {
	if colors == nil || colors.Calendar == nil {
		return "", fmt.Errorf("gcal: colour palette unavailable")
	}
	def, ok := colors.Calendar[colorID]
	if !ok {
		return "", fmt.Errorf("gcal: unknown colour id %q", colorID)
	}
	return def.Background, nil
}

// DateRangeBounds expands two instants to whole-day bounds: 00:00:00 on
// the start day through 23:59:59 on the end day, each in its own location.
func DateRangeBounds(start, end time.Time) (time.Time, time.Time) {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
	return dayStart, dayEnd
}

// EventTimes returns an event's start and end as RFC 3339 strings, falling
// back to the whole-day date for all-day events.
func EventTimes(event *calendar.Event) (start, end string) {
	if event.Start != nil {
		if event.Start.DateTime != "" {
			start = event.Start.DateTime
		} else {
			start = event.Start.Date
		}
	}
	if event.End != nil {
		if event.End.DateTime != "" {
			end = event.End.DateTime
		} else {
			end = event.End.Date
		}
	}
	return start, end
}
