package publishers

import (
	"context"
	"encoding/json"

	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/service"
	"github.com/distinctmentorship/payments/pkg/mq"
	"go.uber.org/zap"
)

const ConfirmedQueue = "payment.confirmed"

type confirmedEvent struct {
	CheckoutID        string  `json:"checkout_id"`
	Provider          string  `json:"provider"`
	Status            string  `json:"status"`
	ResultCode        *int    `json:"result_code"`
	ResultDesc        string  `json:"result_desc"`
	Amount            float64 `json:"amount"`
	PayerPhone        string  `json:"payer_phone"`
	ProviderReceiptID string  `json:"provider_receipt_id,omitempty"`
	SettledAt         string  `json:"settled_at,omitempty"`
}

type confirmationPublisher struct {
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewConfirmationPublisher(publisher mq.Publisher, logger *zap.Logger) service.ConfirmationPublisher {
	return &confirmationPublisher{publisher: publisher, logger: logger}
}

func (p *confirmationPublisher) PublishConfirmed(ctx context.Context, tx *model.Transaction) {
	if tx == nil || !tx.Status.Terminal() {
		return
	}

	event := confirmedEvent{
		CheckoutID:        tx.CheckoutID,
		Provider:          string(tx.Provider),
		Status:            string(tx.Status),
		ResultCode:        tx.ResultCode,
		ResultDesc:        tx.ResultDesc,
		Amount:            tx.Amount,
		PayerPhone:        tx.PayerPhone,
		ProviderReceiptID: tx.ProviderReceiptID,
		SettledAt:         tx.SettledAt,
	}

	body, _ := json.Marshal(event)
	if err := p.publisher.Publish(ctx, "", ConfirmedQueue, body); err != nil {
		p.logger.Error("Failed to publish confirmation",
			zap.Error(err),
			zap.String("checkout_id", tx.CheckoutID))
		return
	}

	p.logger.Info("Confirmation published",
		zap.String("checkout_id", tx.CheckoutID),
		zap.String("status", string(tx.Status)))
}
