package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/minhajsf/Plan-it/internal/gcal"
	"github.com/minhajsf/Plan-it/internal/gmail"
	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/service"
)

// Memory keeps provider state in process. It backs the test server and dry runs.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	sent  []payload.Payload
}

type memoryItem struct {
	kind    service.Service
	payload payload.Payload
}

// NewMemory creates an empty in-process provider
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem)}
}

func (m *Memory) Insert(ctx context.Context, kind service.Service, p payload.Payload) (Result, error) {
	if !service.IsValid(kind, service.ActionCreate) {
		return Result{}, unsupported(kind, "insert")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.items[id] = memoryItem{kind: kind, payload: p}
	return Result{ID: id, Link: memoryLink(kind, id)}, nil
}

func (m *Memory) Update(ctx context.Context, kind service.Service, id string, p payload.Payload) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok || item.kind != kind {
		return Result{}, notFound(kind, id)
	}
	m.items[id] = memoryItem{kind: kind, payload: p}
	return Result{ID: id, Link: memoryLink(kind, id)}, nil
}

func (m *Memory) Delete(ctx context.Context, kind service.Service, id string) error {
	if !service.IsValid(kind, service.ActionRemove) {
		return unsupported(kind, "delete")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok || item.kind != kind {
		return notFound(kind, id)
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) Send(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok || item.kind != service.ServiceMail {
		return notFound(service.ServiceMail, id)
	}
	delete(m.items, id)
	m.sent = append(m.sent, item.payload)
	return nil
}

// Get returns the stored payload for an id
func (m *Memory) Get(id string) (payload.Payload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	return item.payload, ok
}

// Len returns how many items are stored
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Sent returns the payloads of every sent draft, oldest first
func (m *Memory) Sent() []payload.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payload.Payload(nil), m.sent...)
}

// Reset drops every stored item
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]memoryItem)
	m.sent = nil
}

func notFound(kind service.Service, id string) error {
	if kind == service.ServiceMail {
		return fmt.Errorf("%w: %s", gmail.ErrDraftNotFound, id)
	}
	return fmt.Errorf("%w: %s", gcal.ErrEventNotFound, id)
}

func memoryLink(kind service.Service, id string) string {
	switch kind {
	case service.ServiceMeeting:
		return "https://meet.example.invalid/" + id[:8]
	case service.ServiceCalendar:
		return "https://calendar.example.invalid/event/" + id
	default:
		return ""
	}
}
