package v1

type InitiateChargeResponse struct {
	Accepted          bool   `json:"accepted"`
	CheckoutID        string `json:"checkoutId"`
	MerchantRequestID string `json:"merchantRequestId,omitempty"`
	CustomerMessage   string `json:"customerMessage"`
}

// StatusResponse answers a status query. Pending responses reuse the same
// shape with the sentinel resultCode so clients poll on one contract.
type StatusResponse struct {
	Success           bool    `json:"success"`
	Pending           bool    `json:"pending"`
	CheckoutID        string  `json:"checkoutId"`
	ResultCode        int     `json:"resultCode"`
	ResultDesc        string  `json:"resultDesc"`
	ProviderReceiptID string  `json:"providerReceiptId,omitempty"`
	Amount            float64 `json:"amount,omitempty"`
	PayerPhone        string  `json:"payerPhone,omitempty"`
	SettledAt         string  `json:"settledAt,omitempty"`
}

type AcknowledgeResponse struct {
	Received bool `json:"received"`
}
