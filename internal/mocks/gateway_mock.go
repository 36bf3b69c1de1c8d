package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/minhajsf/Plan-it/internal/completion"
	"github.com/stretchr/testify/mock"
)

var errScriptExhausted = errors.New("scripted gateway has no responses left")

// MockGateway is a mock implementation of the completion gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Ask(ctx context.Context, req completion.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// ScriptedGateway replays canned responses in order and records every request.
// It fails the call once the script is exhausted.
type ScriptedGateway struct {
	mu        sync.Mutex
	Responses []string
	Requests  []completion.Request
}

func (g *ScriptedGateway) Ask(ctx context.Context, req completion.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if len(g.Responses) == 0 {
		return "", errScriptExhausted
	}
	next := g.Responses[0]
	g.Responses = g.Responses[1:]
	return next, nil
}

// Calls returns how many requests were made
func (g *ScriptedGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Requests)
}
