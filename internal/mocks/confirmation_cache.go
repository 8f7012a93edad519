package mocks

import (
	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/stretchr/testify/mock"
)

type ConfirmationCache struct {
	mock.Mock
}

func (m *ConfirmationCache) Put(checkoutID string, result provider.Result) {
	m.Called(checkoutID, result)
}

func (m *ConfirmationCache) Get(checkoutID string) (provider.Result, bool) {
	args := m.Called(checkoutID)
	return args.Get(0).(provider.Result), args.Bool(1)
}

func (m *ConfirmationCache) Evict(checkoutID string) {
	m.Called(checkoutID)
}
