// ABOUTME: Google Calendar client for follow-up events
// ABOUTME: Create, patch, delete, and list all-day events on the user's primary calendar
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harperreed/leadflow/models"
)

const (
	// PrimaryCalendar is the calendar id of the user's main calendar.
	PrimaryCalendar = "primary"

	// MaxUpcomingEvents caps ListUpcoming.
	MaxUpcomingEvents = 50

	// DefaultWindowDays is the upcoming window used by the dashboard routes.
	DefaultWindowDays = 30

	dateLayout = "2006-01-02"
)

// CalendarClient performs remote event operations for a user, obtaining a
// valid credential before every call.
type CalendarClient struct {
	credentials CredentialSource
	serviceOpts []option.ClientOption
	calendarID  string
	now         func() time.Time
}

// ClientOption configures a CalendarClient.
type ClientOption func(*CalendarClient)

// WithServiceOptions appends Google API client options (endpoint overrides in tests).
func WithServiceOptions(opts ...option.ClientOption) ClientOption {
	return func(c *CalendarClient) { c.serviceOpts = append(c.serviceOpts, opts...) }
}

// WithClientClock overrides time.Now for the upcoming window.
func WithClientClock(now func() time.Time) ClientOption {
	return func(c *CalendarClient) { c.now = now }
}

// NewCalendarClient creates a client that draws credentials from creds.
func NewCalendarClient(creds CredentialSource, opts ...ClientOption) *CalendarClient {
	c := &CalendarClient{
		credentials: creds,
		calendarID:  PrimaryCalendar,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// service builds a Calendar API service authorized with the user's current
// access token. The token is used as-is; refresh is the refresher's job.
func (c *CalendarClient) service(ctx context.Context, op, userID string) (*calendar.Service, error) {
	cred, err := c.credentials.ValidCredential(ctx, userID)
	if err != nil {
		var syncErr *Error
		if errors.As(err, &syncErr) {
			return nil, &Error{Op: op, Kind: syncErr.Kind, Err: syncErr.Err}
		}
		return nil, err
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.AccessToken, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, src))}, c.serviceOpts...)

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// CreateEvent creates an all-day event on input.Date with the lead and note ids
// embedded in the description.
func (c *CalendarClient) CreateEvent(ctx context.Context, userID string, input models.EventInput) (*calendar.Event, error) {
	const op = "create event"
	if input.Title == "" || input.Date == "" {
		return nil, validationError(op, "title and date are required")
	}
	if err := validateDate(input.Date); err != nil {
		return nil, validationError(op, "%v", err)
	}

	svc, err := c.service(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     input.Title,
		Description: BuildDescription(input.Description, input.LeadID, input.NoteID),
		Start:       &calendar.EventDateTime{Date: input.Date},
		End:         &calendar.EventDateTime{Date: input.Date},
	}

	created, err := svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, classify(op, err)
	}
	return created, nil
}

// UpdateEvent patches only the fields set in patch.
func (c *CalendarClient) UpdateEvent(ctx context.Context, userID, eventID string, patch models.EventPatch) (*calendar.Event, error) {
	const op = "update event"
	if eventID == "" {
		return nil, validationError(op, "event id is required")
	}
	if patch.IsEmpty() {
		return nil, validationError(op, "nothing to update")
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, validationError(op, "title cannot be empty")
	}
	if patch.Date != nil {
		if err := validateDate(*patch.Date); err != nil {
			return nil, validationError(op, "%v", err)
		}
	}

	svc, err := c.service(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{}
	if patch.Title != nil {
		event.Summary = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
		// An explicit empty description clears the remote one.
		event.ForceSendFields = append(event.ForceSendFields, "Description")
	}
	if patch.Date != nil {
		event.Start = &calendar.EventDateTime{Date: *patch.Date}
		event.End = &calendar.EventDateTime{Date: *patch.Date}
	}

	updated, err := svc.Events.Patch(c.calendarID, eventID, event).Context(ctx).Do()
	if err != nil {
		return nil, classify(op, err)
	}
	return updated, nil
}

// DeleteEvent removes an event. An already-deleted event yields ErrNotFound,
// which callers treat as success (see IsBenignDelete).
func (c *CalendarClient) DeleteEvent(ctx context.Context, userID, eventID string) error {
	const op = "delete event"
	if eventID == "" {
		return validationError(op, "event id is required")
	}

	svc, err := c.service(ctx, op, userID)
	if err != nil {
		return err
	}

	if err := svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return classify(op, err)
	}
	return nil
}

// ListUpcoming returns events starting between now and now+windowDays with
// recurring events expanded, ordered by start time, capped at MaxUpcomingEvents.
func (c *CalendarClient) ListUpcoming(ctx context.Context, userID string, windowDays int) ([]*calendar.Event, error) {
	const op = "list events"
	if windowDays <= 0 {
		return nil, validationError(op, "window must be at least one day, got %d", windowDays)
	}

	svc, err := c.service(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	events, err := svc.Events.List(c.calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, windowDays).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(MaxUpcomingEvents).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(op, err)
	}

	if events.Items == nil {
		return []*calendar.Event{}, nil
	}
	return events.Items, nil
}

// ToCalendarEvent trims a remote event for display, resolving the lead tag.
func ToCalendarEvent(event *calendar.Event) models.CalendarEvent {
	out := models.CalendarEvent{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		HTMLLink:    event.HtmlLink,
		LeadID:      ExtractLeadID(event.Description),
	}
	if event.Start != nil {
		if event.Start.Date != "" {
			out.Start = event.Start.Date
			out.AllDay = true
		} else {
			out.Start = event.Start.DateTime
		}
	}
	return out
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
	}
	return nil
}
