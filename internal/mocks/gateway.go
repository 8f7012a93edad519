package mocks

import (
	"context"

	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/stretchr/testify/mock"
)

type Gateway struct {
	mock.Mock
}

func (m *Gateway) Provider() model.Provider {
	args := m.Called()
	return args.Get(0).(model.Provider)
}

func (m *Gateway) Initiate(ctx context.Context, cmd provider.InitiateCommand) (provider.InitiateResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(provider.InitiateResult), args.Error(1)
}

func (m *Gateway) QueryStatus(ctx context.Context, checkoutID string) (provider.Result, error) {
	args := m.Called(ctx, checkoutID)
	return args.Get(0).(provider.Result), args.Error(1)
}
