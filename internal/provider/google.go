package provider

import (
	"context"
	"net/http"

	"github.com/minhajsf/Plan-it/internal/gcal"
	"github.com/minhajsf/Plan-it/internal/gmail"
	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/service"
)

// Google routes calendar and meeting records to Calendar v3 and mail records to Gmail drafts
type Google struct {
	calendar *gcal.Client
	mail     *gmail.Client
}

// NewGoogle wraps already-constructed clients
func NewGoogle(calendar *gcal.Client, mail *gmail.Client) *Google {
	return &Google{calendar: calendar, mail: mail}
}

// NewGoogleFromHTTP builds both clients on one authorized HTTP client
func NewGoogleFromHTTP(ctx context.Context, httpClient *http.Client) (*Google, error) {
	cal, err := gcal.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	mail, err := gmail.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	return NewGoogle(cal, mail), nil
}

func (g *Google) Insert(ctx context.Context, kind service.Service, p payload.Payload) (Result, error) {
	switch kind {
	case service.ServiceCalendar, service.ServiceMeeting:
		event, err := g.calendar.CreateEvent(ctx, p, kind == service.ServiceMeeting)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: event.Id, Link: eventLink(kind, event.HtmlLink, gcal.MeetLink(event))}, nil
	case service.ServiceMail:
		draft, err := g.mail.CreateDraft(ctx, p)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: draft.Id}, nil
	default:
		return Result{}, unsupported(kind, "insert")
	}
}

func (g *Google) Update(ctx context.Context, kind service.Service, id string, p payload.Payload) (Result, error) {
	switch kind {
	case service.ServiceCalendar, service.ServiceMeeting:
		event, err := g.calendar.UpdateEvent(ctx, id, p, kind == service.ServiceMeeting)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: nonEmpty(event.Id, id), Link: eventLink(kind, event.HtmlLink, gcal.MeetLink(event))}, nil
	case service.ServiceMail:
		draft, err := g.mail.UpdateDraft(ctx, id, p)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: nonEmpty(draft.Id, id)}, nil
	default:
		return Result{}, unsupported(kind, "update")
	}
}

func (g *Google) Delete(ctx context.Context, kind service.Service, id string) error {
	switch kind {
	case service.ServiceCalendar, service.ServiceMeeting:
		return g.calendar.DeleteEvent(ctx, id)
	case service.ServiceMail:
		return g.mail.DeleteDraft(ctx, id)
	default:
		return unsupported(kind, "delete")
	}
}

func (g *Google) Send(ctx context.Context, id string) error {
	_, err := g.mail.SendDraft(ctx, id)
	return err
}

func eventLink(kind service.Service, htmlLink, meetLink string) string {
	if kind == service.ServiceMeeting && meetLink != "" {
		return meetLink
	}
	return htmlLink
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
