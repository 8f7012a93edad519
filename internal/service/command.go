package service

import "github.com/distinctmentorship/payments/internal/model"

type InitiateChargeCommand struct {
	Phone            string
	Amount           float64
	AccountReference string
	Description      string
	PayerName        string
	Provider         model.Provider
}

type InitiateChargeResult struct {
	Accepted          bool
	CheckoutID        string
	MerchantRequestID string
	CustomerMessage   string
}
