package mocks

import (
	"context"

	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/repository"
	"github.com/stretchr/testify/mock"
)

type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) FindByCheckoutID(ctx context.Context, checkoutID string) (*model.Transaction, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *TransactionRepository) Upsert(ctx context.Context, checkoutID string, fields repository.UpsertFields) (*model.Transaction, error) {
	args := m.Called(ctx, checkoutID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}
