package mocks

import (
	"context"

	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/provider"
	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of provider.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Insert(ctx context.Context, kind service.Service, p payload.Payload) (provider.Result, error) {
	args := m.Called(ctx, kind, p)
	return args.Get(0).(provider.Result), args.Error(1)
}

func (m *MockProvider) Update(ctx context.Context, kind service.Service, id string, p payload.Payload) (provider.Result, error) {
	args := m.Called(ctx, kind, id, p)
	return args.Get(0).(provider.Result), args.Error(1)
}

func (m *MockProvider) Delete(ctx context.Context, kind service.Service, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockProvider) Send(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
