package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/minhajsf/Plan-it/internal/payload"
)

var ErrDraftNotFound = errors.New("gmail draft not found")

const me = "me"

// Client wraps the Gmail API client for one user's drafts
type Client struct {
	service *gmail.Service
}

// NewClient creates a Gmail client on top of an authorized HTTP client
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{service: service}, nil
}

// CreateDraft stores a new draft. Drafts rather than messages so they can be edited before sending.
func (c *Client) CreateDraft(ctx context.Context, p payload.Payload) (*gmail.Draft, error) {
	raw, err := BuildRawMessage(p)
	if err != nil {
		return nil, err
	}

	draft, err := c.service.Users.Drafts.Create(me, &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return draft, nil
}

// UpdateDraft replaces the content of an existing draft
func (c *Client) UpdateDraft(ctx context.Context, draftID string, p payload.Payload) (*gmail.Draft, error) {
	raw, err := BuildRawMessage(p)
	if err != nil {
		return nil, err
	}

	draft, err := c.service.Users.Drafts.Update(me, draftID, &gmail.Draft{
		Id:      draftID,
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	return draft, nil
}

// DeleteDraft permanently deletes a draft
func (c *Client) DeleteDraft(ctx context.Context, draftID string) error {
	err := c.service.Users.Drafts.Delete(me, draftID).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return ErrDraftNotFound
		}
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// SendDraft sends an existing draft. Gmail removes the draft once it is sent.
func (c *Client) SendDraft(ctx context.Context, draftID string) (*gmail.Message, error) {
	msg, err := c.service.Users.Drafts.Send(me, &gmail.Draft{Id: draftID}).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to send draft: %w", err)
	}
	return msg, nil
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone)
}
