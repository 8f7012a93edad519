package service

import (
	"context"
	"errors"
	"time"

	"github.com/distinctmentorship/payments/internal/cache"
	"github.com/distinctmentorship/payments/internal/constants"
	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/distinctmentorship/payments/internal/repository"
	"go.uber.org/zap"
)

// Resolver answers "did this charge go through" for a checkout id.
type Resolver interface {
	Resolve(ctx context.Context, checkoutID string) (provider.Result, error)
}

type reconcileService struct {
	registry        *provider.Registry
	transactionRepo repository.TransactionRepository
	confirmations   cache.ConfirmationCache
	publisher       ConfirmationPublisher
	log             *zap.Logger
	metrics         *metrics.Metrics
}

func NewReconcileService(registry *provider.Registry, transactionRepo repository.TransactionRepository,
	confirmations cache.ConfirmationCache, publisher ConfirmationPublisher,
	log *zap.Logger, metrics *metrics.Metrics) Resolver {
	return &reconcileService{
		registry:        registry,
		transactionRepo: transactionRepo,
		confirmations:   confirmations,
		publisher:       publisher,
		log:             log,
		metrics:         metrics,
	}
}

// Resolve decides the canonical status in strict priority order: durable
// store first, then the in-process confirmation cache, then a provider
// query/verify. Transient provider faults come back as a pending result so
// the caller keeps polling instead of failing on a blip.
func (s *reconcileService) Resolve(ctx context.Context, checkoutID string) (provider.Result, error) {
	if checkoutID == "" {
		return provider.Result{}, NewServiceError(constants.ErrCodeValidationFailed,
			errors.New("missing checkout id"))
	}

	transaction, err := s.transactionRepo.FindByCheckoutID(ctx, checkoutID)
	if err != nil && !errors.Is(err, repository.ErrTransactionNotFound) {
		// Store unavailable: fall through to the other channels rather
		// than failing the poll.
		s.log.Error("store lookup failed", zap.String("checkout_id", checkoutID), zap.Error(err))
		transaction = nil
	}

	// 1. A settled store record is authoritative; no network call needed.
	if transaction != nil && transaction.Status.Terminal() {
		result := resultFromTransaction(transaction)
		s.metrics.RecordResolution("store", string(result.Status()))
		return result, nil
	}

	// 2. A confirmation that landed moments ago may not be durably visible
	// yet; the cache closes that window.
	if cached, ok := s.confirmations.Get(checkoutID); ok {
		if s.persistResult(ctx, cached, providerOf(transaction), "") {
			s.confirmations.Evict(checkoutID)
		}
		s.metrics.RecordResolution("cache", string(cached.Status()))
		return cached, nil
	}

	// 3. Ask the provider. With no record to name one (first poll racing the
	// first write), the push-confirm provider is queried: it tolerates
	// checkout ids it has never seen.
	providerTag := providerOf(transaction)
	if providerTag == "" {
		providerTag = model.ProviderMpesa
	}

	gateway, err := s.registry.Get(providerTag)
	if err != nil {
		return provider.Result{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	callStart := time.Now()
	result, err := gateway.QueryStatus(ctx, checkoutID)
	if err != nil {
		s.metrics.RecordProviderCall(string(providerTag), "query", "error", time.Since(callStart))
		s.log.Warn("provider status query failed, treating as pending",
			zap.String("provider", string(providerTag)),
			zap.String("checkout_id", checkoutID),
			zap.Error(err),
		)
		s.metrics.RecordResolution("provider", string(model.StatusPending))
		return provider.PendingResult(checkoutID), nil
	}

	s.metrics.RecordProviderCall(string(providerTag), "query", "success", time.Since(callStart))

	if result.Pending {
		s.metrics.RecordResolution("provider", string(model.StatusPending))
		return result, nil
	}

	if s.persistResult(ctx, result, providerTag, "") {
		s.confirmations.Evict(checkoutID)
	}
	s.metrics.RecordResolution("provider", string(result.Status()))

	return result, nil
}

// persistResult upserts a terminal outcome and announces it downstream,
// reporting whether the write went through. A store fault is logged and
// absorbed: the cache entry stays to answer until the next resolve retries
// persistence, and the caller still receives the provider-observed status.
func (s *reconcileService) persistResult(ctx context.Context, result provider.Result, providerTag model.Provider, raw string) bool {
	if result.Pending {
		return false
	}
	if providerTag == "" {
		providerTag = model.ProviderMpesa
	}

	dbStart := time.Now()
	transaction, err := s.transactionRepo.Upsert(ctx, result.CheckoutID, upsertFields(result, providerTag, raw))
	if err != nil {
		s.metrics.RecordDBQuery("upsert", "transactions", "error", time.Since(dbStart))
		s.log.Error("failed to persist confirmation",
			zap.String("checkout_id", result.CheckoutID),
			zap.Error(err),
		)
		return false
	}
	s.metrics.RecordDBQuery("upsert", "transactions", "success", time.Since(dbStart))

	s.publisher.PublishConfirmed(ctx, transaction)
	return true
}

func upsertFields(result provider.Result, providerTag model.Provider, raw string) repository.UpsertFields {
	return repository.UpsertFields{
		Provider:   providerTag,
		Status:     result.Status(),
		ResultCode: result.ResultCode,
		ResultDesc: result.ResultDesc,
		Amount:     result.Amount,
		Phone:      result.Phone,
		ReceiptID:  result.ReceiptID,
		SettledAt:  result.SettledAt,
		Raw:        raw,
	}
}

func resultFromTransaction(tx *model.Transaction) provider.Result {
	code := 1
	if tx.ResultCode != nil {
		code = *tx.ResultCode
	} else if tx.Status == model.StatusSuccess {
		code = 0
	}

	desc := tx.ResultDesc
	if desc == "" {
		if tx.Status == model.StatusSuccess {
			desc = "Success"
		} else {
			desc = "Failed"
		}
	}

	return provider.Result{
		CheckoutID: tx.CheckoutID,
		ResultCode: code,
		ResultDesc: desc,
		Amount:     tx.Amount,
		ReceiptID:  tx.ProviderReceiptID,
		Phone:      tx.PayerPhone,
		SettledAt:  tx.SettledAt,
	}
}

func providerOf(tx *model.Transaction) model.Provider {
	if tx == nil {
		return ""
	}
	return tx.Provider
}
