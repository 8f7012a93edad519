package mocks

import (
	"context"

	"github.com/distinctmentorship/payments/pkg/mpesa"
	"github.com/stretchr/testify/mock"
)

type MpesaClient struct {
	mock.Mock
}

func (m *MpesaClient) STKPush(ctx context.Context, cmd mpesa.StkPushCommand) (mpesa.StkPushResponse, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(mpesa.StkPushResponse), args.Error(1)
}

func (m *MpesaClient) STKQuery(ctx context.Context, checkoutRequestID string) (mpesa.StkQueryResponse, error) {
	args := m.Called(ctx, checkoutRequestID)
	return args.Get(0).(mpesa.StkQueryResponse), args.Error(1)
}
