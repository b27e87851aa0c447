package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mescude1/skinly-ecomm/internal/events"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.OrderEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
