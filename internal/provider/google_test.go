package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/minhajsf/Plan-it/internal/gcal"
	"github.com/minhajsf/Plan-it/internal/gmail"
	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/service"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	cal, err := gcal.NewClient(ctx, srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	mail, err := gmail.NewClient(ctx, srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return NewGoogle(cal, mail)
}

func eventPayload() payload.Payload {
	return payload.Payload{
		"summary": "Meeting with Brooke",
		"start":   map[string]any{"dateTime": "2026-10-16T17:00:00Z"},
		"end":     map[string]any{"dateTime": "2026-10-16T17:30:00Z"},
	}
}

func TestGoogleRoutesByKind(t *testing.T) {
	var hits []string
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/calendars/"):
			_ = json.NewEncoder(w).Encode(calendar.Event{
				Id:          "evt-1",
				HtmlLink:    "https://calendar.google.com/e/1",
				HangoutLink: "https://meet.google.com/abc",
			})
		case strings.Contains(r.URL.Path, "/drafts"):
			_ = json.NewEncoder(w).Encode(gmailapi.Draft{Id: "draft-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	res, err := g.Insert(ctx, service.ServiceCalendar, eventPayload())
	require.NoError(t, err)
	assert.Equal(t, Result{ID: "evt-1", Link: "https://calendar.google.com/e/1"}, res)

	res, err = g.Insert(ctx, service.ServiceMeeting, eventPayload())
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/abc", res.Link)

	res, err = g.Insert(ctx, service.ServiceMail, payload.Payload{"subject": "Hi", "body": "x"})
	require.NoError(t, err)
	assert.Equal(t, Result{ID: "draft-1"}, res)

	res, err = g.Update(ctx, service.ServiceMail, "draft-1", payload.Payload{"subject": "Hi", "body": "y"})
	require.NoError(t, err)
	assert.Equal(t, "draft-1", res.ID)

	require.Len(t, hits, 4)
	assert.Contains(t, hits[0], "/calendars/primary/events")
	assert.Contains(t, hits[2], "/users/me/drafts")
}

func TestGoogleUnsupportedKind(t *testing.T) {
	g := NewGoogle(nil, nil)
	ctx := context.Background()

	_, err := g.Insert(ctx, service.ServiceUnknown, payload.Payload{})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = g.Update(ctx, service.ServiceUnknown, "x", payload.Payload{})
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.ErrorIs(t, g.Delete(ctx, service.ServiceUnknown, "x"), ErrUnsupported)
}

func TestGoogleUpdateKeepsIDWhenProviderOmitsIt(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	res, err := g.Update(context.Background(), service.ServiceCalendar, "evt-1", eventPayload())
	require.NoError(t, err)
	assert.Equal(t, "evt-1", res.ID)
}
