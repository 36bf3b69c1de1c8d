package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/service"
)

// ErrUnsupported is returned for an operation the record kind does not have
var ErrUnsupported = errors.New("operation not supported for this service")

// Result is what the provider reports back after a write
type Result struct {
	// ID is the provider-issued identifier; it may change on update
	ID   string
	Link string
}

// Provider applies structured payloads to the remote calendar, meeting and mail service
type Provider interface {
	Insert(ctx context.Context, kind service.Service, p payload.Payload) (Result, error)
	Update(ctx context.Context, kind service.Service, id string, p payload.Payload) (Result, error)
	Delete(ctx context.Context, kind service.Service, id string) error
	Send(ctx context.Context, id string) error
}

func unsupported(kind service.Service, op string) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupported, op, kind)
}
