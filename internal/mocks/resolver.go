package mocks

import (
	"context"

	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/stretchr/testify/mock"
)

type Resolver struct {
	mock.Mock
}

func (m *Resolver) Resolve(ctx context.Context, checkoutID string) (provider.Result, error) {
	args := m.Called(ctx, checkoutID)
	return args.Get(0).(provider.Result), args.Error(1)
}
