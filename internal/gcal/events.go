package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/minhajsf/Plan-it/internal/payload"
)

var ErrEventNotFound = errors.New("google calendar event not found")

// IsEventNotFound returns true when a Google Calendar event no longer exists.
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// EventFromPayload converts a provider-shaped payload into a Calendar event.
// Attendees may be plain addresses or {"email": ...} objects.
func EventFromPayload(p payload.Payload) (*calendar.Event, error) {
	fields := payload.Payload{}
	for k, v := range p {
		if k == "attendees" {
			continue
		}
		fields[k] = v
	}

	var event calendar.Event
	if err := json.Unmarshal([]byte(fields.JSON()), &event); err != nil {
		return nil, fmt.Errorf("failed to build event: %w", err)
	}

	if emails := p.Addresses("attendees"); len(emails) > 0 {
		event.Attendees = make([]*calendar.EventAttendee, len(emails))
		for i, email := range emails {
			event.Attendees[i] = &calendar.EventAttendee{Email: email}
		}
	}

	// An explicit useDefault=false would otherwise be dropped as a zero value
	if event.Reminders != nil && !event.Reminders.UseDefault {
		event.Reminders.ForceSendFields = append(event.Reminders.ForceSendFields, "UseDefault")
	}

	return &event, nil
}

func meetRequest() *calendar.ConferenceData {
	return &calendar.ConferenceData{
		CreateRequest: &calendar.CreateConferenceRequest{
			RequestId: uuid.NewString(),
			ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
				Type: "hangoutsMeet",
			},
		},
	}
}

// CreateEvent inserts an event. withMeet attaches a new Google Meet conference.
func (c *Client) CreateEvent(ctx context.Context, p payload.Payload, withMeet bool) (*calendar.Event, error) {
	event, err := EventFromPayload(p)
	if err != nil {
		return nil, err
	}

	call := c.service.Events.Insert(c.calendarID, event).SendUpdates("all").Context(ctx)
	if withMeet {
		event.ConferenceData = meetRequest()
		call = call.ConferenceDataVersion(1)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// UpdateEvent patches an event with the fields present in the payload.
// Patch keeps an existing Meet conference intact; withMeet adds one if the event has none.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, p payload.Payload, withMeet bool) (*calendar.Event, error) {
	event, err := EventFromPayload(p)
	if err != nil {
		return nil, err
	}

	call := c.service.Events.Patch(c.calendarID, eventID, event).SendUpdates("all").Context(ctx)
	if withMeet {
		call = call.ConferenceDataVersion(1)
	}

	updated, err := call.Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if withMeet && updated.HangoutLink == "" {
		patch := &calendar.Event{ConferenceData: meetRequest()}
		withLink, err := c.service.Events.Patch(c.calendarID, eventID, patch).
			ConferenceDataVersion(1).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to add meet link: %w", err)
		}
		updated = withLink
	}
	return updated, nil
}

// DeleteEvent deletes an event and notifies attendees
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.service.Events.Delete(c.calendarID, eventID).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// MeetLink returns the video link of an event, if any
func MeetLink(event *calendar.Event) string {
	if event == nil {
		return ""
	}
	if event.HangoutLink != "" {
		return event.HangoutLink
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep != nil && ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return ""
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone)
}
