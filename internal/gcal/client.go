package gcal

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const defaultCalendarID = "primary"

// Client wraps the Google Calendar API client for one user
type Client struct {
	service    *calendar.Service
	calendarID string
}

// NewClient creates a Calendar client on top of an authorized HTTP client.
// Extra options are appended, which lets tests point the service at a fake endpoint.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{service: service, calendarID: defaultCalendarID}, nil
}
