package mocks

import (
	"context"

	"github.com/distinctmentorship/payments/internal/model"
	"github.com/stretchr/testify/mock"
)

type ConfirmationPublisher struct {
	mock.Mock
}

func (m *ConfirmationPublisher) PublishConfirmed(ctx context.Context, tx *model.Transaction) {
	m.Called(ctx, tx)
}
