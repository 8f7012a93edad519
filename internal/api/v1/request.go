package v1

type InitiateChargeRequest struct {
	Phone            string  `json:"phone" validate:"required,msisdn"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	AccountReference string  `json:"accountReference" validate:"required,max=64"`
	Description      string  `json:"description" validate:"max=128"`
	PayerName        string  `json:"payerName" validate:"max=64"`
	Provider         string  `json:"provider" validate:"omitempty,oneof=mpesa paystack"`
}

type StatusQueryRequest struct {
	CheckoutID string `json:"checkoutId" validate:"required,max=64"`
}
