package provider

import (
	"context"

	"github.com/distinctmentorship/payments/internal/model"
)

type InitiateCommand struct {
	Phone            string
	Amount           float64
	AccountReference string
	Description      string
	PayerName        string
}

type InitiateResult struct {
	Accepted          bool
	CheckoutID        string
	MerchantRequestID string
	CustomerMessage   string
}

// Gateway is the capability the reconciliation engine holds per provider.
// QueryStatus returns a pending Result when the provider legitimately has no
// terminal answer yet; it returns an error only for transport-level faults,
// which the caller absorbs into a pending answer.
type Gateway interface {
	Provider() model.Provider
	Initiate(ctx context.Context, cmd InitiateCommand) (InitiateResult, error)
	QueryStatus(ctx context.Context, checkoutID string) (Result, error)
}
