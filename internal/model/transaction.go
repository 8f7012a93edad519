package model

import "time"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Terminal reports whether no further status transition is expected.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

type Provider string

const (
	ProviderMpesa    Provider = "mpesa"
	ProviderPaystack Provider = "paystack"
)

// Transaction is one charge attempt. CheckoutID is the only correlation key
// shared by initiation, callbacks, the cache and status queries.
type Transaction struct {
	CheckoutID        string   `gorm:"primaryKey;size:64"`
	MerchantRequestID string   `gorm:"size:64"`
	Amount            float64  `gorm:"not null"`
	PayerPhone        string   `gorm:"size:16"`
	AccountReference  string   `gorm:"size:64"`
	Description       string   `gorm:"size:128"`
	PayerName         string   `gorm:"size:64"`
	Status            Status   `gorm:"type:varchar(10);default:'PENDING'"`
	ResultCode        *int     `gorm:"default:null"`
	ResultDesc        string   `gorm:"size:255"`
	ProviderReceiptID string   `gorm:"size:64"`
	SettledAt         string   `gorm:"size:32"`
	Provider          Provider `gorm:"type:varchar(10);not null"`
	RawConfirmation   string   `gorm:"type:text"`
	CreatedAt         time.Time
}
