package paystack

import (
	"encoding/json"
	"errors"
	"fmt"
)

const EventChargeSuccess = "charge.success"

var ErrMalformedWebhook = errors.New("PAYSTACK_MALFORMED_WEBHOOK")

type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	PaidAt          string `json:"paid_at"`
	GatewayResponse string `json:"gateway_response"`
	Currency        string `json:"currency"`
	Customer        struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"customer"`
	Metadata struct {
		AccountReference string `json:"accountReference"`
		Description      string `json:"description"`
		PayerName        string `json:"payerName"`
	} `json:"metadata"`
}

// ParseWebhook decodes an already-authenticated webhook body. Callers filter
// on Event; only charge.success carries a meaningful outcome.
func ParseWebhook(raw []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	if event.Event == "" {
		return nil, ErrMalformedWebhook
	}

	return &event, nil
}
