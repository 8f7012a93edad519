package service

import (
	"context"
	"errors"
	"time"

	"github.com/distinctmentorship/payments/internal/cache"
	"github.com/distinctmentorship/payments/internal/constants"
	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/repository"
	"github.com/distinctmentorship/payments/pkg/mpesa"
	"github.com/distinctmentorship/payments/pkg/paystack"
	"go.uber.org/zap"

	"github.com/distinctmentorship/payments/internal/provider"
)

// IngestService absorbs asynchronous confirmations. Both handlers are
// idempotent: however many times a provider redelivers an outcome, the store
// converges on one terminal answer.
type IngestService interface {
	HandleMpesaCallback(ctx context.Context, raw []byte) error
	HandlePaystackWebhook(ctx context.Context, raw []byte, signature string) error
}

type ingestService struct {
	transactionRepo repository.TransactionRepository
	confirmations   cache.ConfirmationCache
	publisher       ConfirmationPublisher
	webhookSecret   string
	log             *zap.Logger
	metrics         *metrics.Metrics
}

func NewIngestService(transactionRepo repository.TransactionRepository, confirmations cache.ConfirmationCache,
	publisher ConfirmationPublisher, webhookSecret string, log *zap.Logger, metrics *metrics.Metrics) IngestService {
	return &ingestService{
		transactionRepo: transactionRepo,
		confirmations:   confirmations,
		publisher:       publisher,
		webhookSecret:   webhookSecret,
		log:             log,
		metrics:         metrics,
	}
}

// HandleMpesaCallback parses an STK push callback and records its outcome.
// The transport layer acknowledges the sender regardless of what happens
// here; an unidentifiable payload is logged and dropped, and polling
// resolves the charge independently.
func (s *ingestService) HandleMpesaCallback(ctx context.Context, raw []byte) error {
	parsed, err := mpesa.ParseCallback(raw)
	if err != nil {
		s.metrics.RecordConfirmationIngested("mpesa_callback", "malformed")
		s.log.Error("unidentifiable stk callback dropped", zap.Error(err))
		return NewServiceError(constants.ErrCodeMalformedPayload, err)
	}

	result := provider.FromMpesaCallback(parsed)

	s.log.Info("stk callback received",
		zap.String("checkout_id", result.CheckoutID),
		zap.Int("result_code", result.ResultCode),
		zap.String("receipt_id", result.ReceiptID),
	)

	s.absorb(ctx, result, model.ProviderMpesa, string(raw))
	s.metrics.RecordConfirmationIngested("mpesa_callback", string(result.Status()))

	return nil
}

// HandlePaystackWebhook authenticates, filters and records a signed webhook.
// Authentication strictly precedes parsing: nothing from an unsigned or
// mis-signed body is ever parsed or persisted.
func (s *ingestService) HandlePaystackWebhook(ctx context.Context, raw []byte, signature string) error {
	if !paystack.ValidSignature(s.webhookSecret, raw, signature) {
		s.metrics.RecordConfirmationIngested("paystack_webhook", "bad_signature")
		s.log.Warn("webhook rejected: invalid signature")
		return NewServiceError(constants.ErrCodeInvalidSignature, errors.New("signature mismatch"))
	}

	event, err := paystack.ParseWebhook(raw)
	if err != nil {
		s.metrics.RecordConfirmationIngested("paystack_webhook", "malformed")
		return NewServiceError(constants.ErrCodeMalformedPayload, err)
	}

	// Only a successful charge carries an outcome; every other event type is
	// acknowledged so the provider stops redelivering it.
	if event.Event != paystack.EventChargeSuccess {
		s.metrics.RecordConfirmationIngested("paystack_webhook", "ignored")
		s.log.Debug("webhook event ignored", zap.String("event", event.Event))
		return nil
	}

	if event.Data.Reference == "" {
		s.metrics.RecordConfirmationIngested("paystack_webhook", "malformed")
		s.log.Warn("charge.success webhook missing reference")
		return NewServiceError(constants.ErrCodeMalformedPayload, errors.New("missing reference"))
	}

	result := provider.FromPaystackWebhook(event.Data)

	s.log.Info("paystack webhook received",
		zap.String("checkout_id", result.CheckoutID),
		zap.Float64("amount", result.Amount),
	)

	s.absorb(ctx, result, model.ProviderPaystack, string(raw))
	s.metrics.RecordConfirmationIngested("paystack_webhook", string(result.Status()))

	return nil
}

// absorb writes the cache and the store as independent idempotent steps, in
// that order: the cache covers a poll racing the durable write. A store
// fault leaves the cached copy to answer until the next channel retries.
func (s *ingestService) absorb(ctx context.Context, result provider.Result, providerTag model.Provider, raw string) {
	s.confirmations.Put(result.CheckoutID, result)

	dbStart := time.Now()
	transaction, err := s.transactionRepo.Upsert(ctx, result.CheckoutID, upsertFields(result, providerTag, raw))
	if err != nil {
		s.metrics.RecordDBQuery("upsert", "transactions", "error", time.Since(dbStart))
		s.log.Error("failed to persist confirmation",
			zap.String("checkout_id", result.CheckoutID),
			zap.Error(err),
		)
		return
	}
	s.metrics.RecordDBQuery("upsert", "transactions", "success", time.Since(dbStart))

	s.publisher.PublishConfirmed(ctx, transaction)
}
