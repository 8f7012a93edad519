package service

import (
	"context"
	"errors"
	"time"

	"github.com/distinctmentorship/payments/internal/constants"
	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/distinctmentorship/payments/internal/repository"
	"go.uber.org/zap"
)

type ChargeService interface {
	Initiate(ctx context.Context, cmd InitiateChargeCommand) (InitiateChargeResult, error)
}

type chargeService struct {
	registry        *provider.Registry
	defaultProvider model.Provider
	transactionRepo repository.TransactionRepository
	log             *zap.Logger
	metrics         *metrics.Metrics
}

func NewChargeService(registry *provider.Registry, defaultProvider model.Provider,
	transactionRepo repository.TransactionRepository, log *zap.Logger, metrics *metrics.Metrics) ChargeService {
	return &chargeService{
		registry:        registry,
		defaultProvider: defaultProvider,
		transactionRepo: transactionRepo,
		log:             log,
		metrics:         metrics,
	}
}

// Initiate starts a charge against the payer's phone and records the attempt
// as PENDING under the checkout id the provider hands back. A store failure
// after the provider accepted is logged, not surfaced: the caller gets the
// checkout id either way and polling re-creates the record if needed.
func (s *chargeService) Initiate(ctx context.Context, cmd InitiateChargeCommand) (InitiateChargeResult, error) {
	start := time.Now()

	providerTag := cmd.Provider
	if providerTag == "" {
		providerTag = s.defaultProvider
	}

	gateway, err := s.registry.Get(providerTag)
	if err != nil {
		return InitiateChargeResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	description := cmd.Description
	if description == "" {
		description = cmd.AccountReference
	}

	callStart := time.Now()
	initiation, err := gateway.Initiate(ctx, provider.InitiateCommand{
		Phone:            cmd.Phone,
		Amount:           cmd.Amount,
		AccountReference: cmd.AccountReference,
		Description:      description,
		PayerName:        cmd.PayerName,
	})
	if err != nil {
		s.metrics.RecordProviderCall(string(providerTag), "initiate", "error", time.Since(callStart))
		s.metrics.RecordChargeInitiated(string(providerTag), "rejected")
		s.log.Error("charge initiation rejected",
			zap.String("provider", string(providerTag)),
			zap.Error(err),
		)
		return InitiateChargeResult{}, NewServiceError(constants.ErrCodeChargeRejected, err)
	}

	s.metrics.RecordProviderCall(string(providerTag), "initiate", "success", time.Since(callStart))

	status := model.StatusPending
	if !initiation.Accepted {
		status = model.StatusFailed
	}

	transaction := model.Transaction{
		CheckoutID:        initiation.CheckoutID,
		MerchantRequestID: initiation.MerchantRequestID,
		Amount:            cmd.Amount,
		PayerPhone:        cmd.Phone,
		AccountReference:  cmd.AccountReference,
		Description:       description,
		PayerName:         cmd.PayerName,
		Status:            status,
		Provider:          providerTag,
		CreatedAt:         time.Now(),
	}

	dbStart := time.Now()
	if err := s.transactionRepo.Create(ctx, &transaction); err != nil {
		s.metrics.RecordDBQuery("insert", "transactions", "error", time.Since(dbStart))
		if errors.Is(err, repository.ErrTransactionExists) {
			s.log.Warn("charge attempt already recorded",
				zap.String("checkout_id", initiation.CheckoutID))
		} else {
			// The provider accepted; prefer answering the caller over
			// failing on a store fault. Reconciliation recreates the record.
			s.log.Error("failed to record charge attempt",
				zap.String("checkout_id", initiation.CheckoutID),
				zap.Error(err),
			)
		}
	} else {
		s.metrics.RecordDBQuery("insert", "transactions", "success", time.Since(dbStart))
	}

	s.metrics.RecordChargeInitiated(string(providerTag), "accepted")

	s.log.Info("charge initiated",
		zap.String("provider", string(providerTag)),
		zap.String("checkout_id", initiation.CheckoutID),
		zap.Float64("amount", cmd.Amount),
		zap.Duration("duration", time.Since(start)),
	)

	return InitiateChargeResult{
		Accepted:          initiation.Accepted,
		CheckoutID:        initiation.CheckoutID,
		MerchantRequestID: initiation.MerchantRequestID,
		CustomerMessage:   initiation.CustomerMessage,
	}, nil
}
