package mocks

import (
	"context"

	"graphics-server/internal/messaging"

	"github.com/stretchr/testify/mock"
)

var _ messaging.ImageEventPublisher = (*ImageEventPublisher)(nil)

// Mock ImageEventPublisher
type ImageEventPublisher struct {
	mock.Mock
}

func (m *ImageEventPublisher) PublishImageEvent(ctx context.Context, event messaging.ImageEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
