package mocks

import (
	"context"

	"github.com/distinctmentorship/payments/pkg/paystack"
	"github.com/stretchr/testify/mock"
)

type PaystackClient struct {
	mock.Mock
}

func (m *PaystackClient) Charge(ctx context.Context, cmd paystack.ChargeCommand) (paystack.ChargeResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(paystack.ChargeResult), args.Error(1)
}

func (m *PaystackClient) Verify(ctx context.Context, reference string) (paystack.VerifyResult, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(paystack.VerifyResult), args.Error(1)
}
