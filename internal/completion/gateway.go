package completion

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a backend has no credentials
var ErrNotConfigured = errors.New("completion backend is not configured")

// Request is a single stateless completion call. Every call must carry all
// of the context it needs; no conversation memory is kept between calls.
type Request struct {
	System string
	User   string
	// JSON asks the backend for constrained JSON output when it supports it
	JSON bool
}

// Gateway sends an instruction pair to a completion service and returns the raw text
type Gateway interface {
	Ask(ctx context.Context, req Request) (string, error)
}

// GatewayFunc adapts a function into a Gateway
type GatewayFunc func(ctx context.Context, req Request) (string, error)

func (f GatewayFunc) Ask(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
