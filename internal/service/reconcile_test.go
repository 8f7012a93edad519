package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/distinctmentorship/payments/internal/constants"
	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/mocks"
	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/distinctmentorship/payments/internal/repository"
	"github.com/distinctmentorship/payments/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Collectors register once per test binary.
var testMetrics = metrics.NewMetrics()

func newMpesaRegistry(gateway *mocks.Gateway) *provider.Registry {
	gateway.On("Provider").Return(model.ProviderMpesa)
	return provider.NewRegistry(gateway)
}

func intPtr(v int) *int { return &v }

func TestReconcile_Resolve(t *testing.T) {
	logger := zap.NewNop()
	checkoutID := "ws_CO_191220191020363925"

	successResult := provider.Result{
		CheckoutID: checkoutID,
		ResultCode: 0,
		ResultDesc: "The service request is processed successfully.",
		Amount:     150,
		ReceiptID:  "NLJ7RT61SV",
		Phone:      "254708374149",
		SettledAt:  "20191219102115",
	}

	successFields := repository.UpsertFields{
		Provider:   model.ProviderMpesa,
		Status:     model.StatusSuccess,
		ResultCode: 0,
		ResultDesc: successResult.ResultDesc,
		Amount:     successResult.Amount,
		Phone:      successResult.Phone,
		ReceiptID:  successResult.ReceiptID,
		SettledAt:  successResult.SettledAt,
	}

	t.Run("missing checkout id fails validation", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		_, err := svc.Resolve(context.Background(), "")

		assert.Error(t, err)

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeValidationFailed, serviceErr.Code)

		mockRepo.AssertNotCalled(t, "FindByCheckoutID")
	})

	t.Run("terminal store record answers without provider call", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		stored := &model.Transaction{
			CheckoutID:        checkoutID,
			Status:            model.StatusSuccess,
			ResultCode:        intPtr(0),
			ResultDesc:        "The service request is processed successfully.",
			Amount:            150,
			ProviderReceiptID: "NLJ7RT61SV",
			Provider:          model.ProviderMpesa,
		}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).Return(stored, nil)

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.True(t, result.Success())
		assert.Equal(t, checkoutID, result.CheckoutID)
		assert.Equal(t, "NLJ7RT61SV", result.ReceiptID)

		mockCache.AssertNotCalled(t, "Get")
		mockGateway.AssertNotCalled(t, "QueryStatus")
		mockRepo.AssertExpectations(t)
	})

	t.Run("failed store record answers with stored code", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		stored := &model.Transaction{
			CheckoutID: checkoutID,
			Status:     model.StatusFailed,
			ResultCode: intPtr(1032),
			ResultDesc: "Request cancelled by user",
			Provider:   model.ProviderMpesa,
		}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).Return(stored, nil)

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.False(t, result.Success())
		assert.False(t, result.Pending)
		assert.Equal(t, 1032, result.ResultCode)

		mockGateway.AssertNotCalled(t, "QueryStatus")
	})

	t.Run("cache hit persists evicts and answers", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		persisted := &model.Transaction{CheckoutID: checkoutID, Status: model.StatusSuccess}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).
			Return(nil, repository.ErrTransactionNotFound)
		mockCache.On("Get", checkoutID).Return(successResult, true)
		mockRepo.On("Upsert", context.Background(), checkoutID, successFields).Return(persisted, nil)
		mockPublisher.On("PublishConfirmed", context.Background(), persisted).Return()
		mockCache.On("Evict", checkoutID).Return()

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.Equal(t, successResult, result)

		mockGateway.AssertNotCalled(t, "QueryStatus")
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("provider query persists terminal answer", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		queried := provider.Result{
			CheckoutID: checkoutID,
			ResultCode: 0,
			ResultDesc: "The service request is processed successfully.",
		}

		persisted := &model.Transaction{CheckoutID: checkoutID, Status: model.StatusSuccess}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).
			Return(nil, repository.ErrTransactionNotFound)
		mockCache.On("Get", checkoutID).Return(provider.Result{}, false)
		mockGateway.On("QueryStatus", context.Background(), checkoutID).Return(queried, nil)
		mockRepo.On("Upsert", context.Background(), checkoutID, mock.AnythingOfType("repository.UpsertFields")).
			Return(persisted, nil)
		mockPublisher.On("PublishConfirmed", context.Background(), persisted).Return()
		mockCache.On("Evict", checkoutID).Return()

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.True(t, result.Success())

		mockRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("provider pending answer is not persisted", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).
			Return(nil, repository.ErrTransactionNotFound)
		mockCache.On("Get", checkoutID).Return(provider.Result{}, false)
		mockGateway.On("QueryStatus", context.Background(), checkoutID).
			Return(provider.PendingResult(checkoutID), nil)

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.True(t, result.Pending)
		assert.Equal(t, provider.ResultCodePending, result.ResultCode)

		mockRepo.AssertNotCalled(t, "Upsert")
		mockPublisher.AssertNotCalled(t, "PublishConfirmed")
	})

	t.Run("provider fault answers pending instead of failing", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).
			Return(nil, repository.ErrTransactionNotFound)
		mockCache.On("Get", checkoutID).Return(provider.Result{}, false)
		mockGateway.On("QueryStatus", context.Background(), checkoutID).
			Return(provider.Result{}, errors.New("connection reset"))

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.True(t, result.Pending)

		mockRepo.AssertNotCalled(t, "Upsert")
	})

	t.Run("store fault falls through to cache", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		persisted := &model.Transaction{CheckoutID: checkoutID, Status: model.StatusSuccess}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).
			Return(nil, errors.New("connection refused"))
		mockCache.On("Get", checkoutID).Return(successResult, true)
		mockRepo.On("Upsert", context.Background(), checkoutID, successFields).Return(persisted, nil)
		mockPublisher.On("PublishConfirmed", context.Background(), persisted).Return()
		mockCache.On("Evict", checkoutID).Return()

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.Equal(t, successResult, result)
	})

	t.Run("persist fault still answers the provider status", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mockGateway := &mocks.Gateway{}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).
			Return(nil, repository.ErrTransactionNotFound)
		mockCache.On("Get", checkoutID).Return(successResult, true)
		mockRepo.On("Upsert", context.Background(), checkoutID, successFields).
			Return(nil, errors.New("deadlock"))

		svc := service.NewReconcileService(newMpesaRegistry(mockGateway), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.Equal(t, successResult, result)

		// The cached copy must survive a failed durable write so it can keep
		// answering until persistence is retried.
		mockCache.AssertNotCalled(t, "Evict")
		mockPublisher.AssertNotCalled(t, "PublishConfirmed")
	})

	t.Run("stored record routes the query to its own provider", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}
		mpesaGateway := &mocks.Gateway{}
		paystackGateway := &mocks.Gateway{}

		mpesaGateway.On("Provider").Return(model.ProviderMpesa)
		paystackGateway.On("Provider").Return(model.ProviderPaystack)
		registry := provider.NewRegistry(mpesaGateway, paystackGateway)

		stored := &model.Transaction{
			CheckoutID: checkoutID,
			Status:     model.StatusPending,
			Provider:   model.ProviderPaystack,
		}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).Return(stored, nil)
		mockCache.On("Get", checkoutID).Return(provider.Result{}, false)
		paystackGateway.On("QueryStatus", context.Background(), checkoutID).
			Return(provider.PendingResult(checkoutID), nil)

		svc := service.NewReconcileService(registry, mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		result, err := svc.Resolve(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.True(t, result.Pending)

		mpesaGateway.AssertNotCalled(t, "QueryStatus")
		paystackGateway.AssertExpectations(t)
	})

	t.Run("unregistered provider fails the operation", func(t *testing.T) {
		mockRepo := &mocks.TransactionRepository{}
		mockCache := &mocks.ConfirmationCache{}
		mockPublisher := &mocks.ConfirmationPublisher{}

		mockRepo.On("FindByCheckoutID", context.Background(), checkoutID).
			Return(nil, repository.ErrTransactionNotFound)
		mockCache.On("Get", checkoutID).Return(provider.Result{}, false)

		svc := service.NewReconcileService(provider.NewRegistry(), mockRepo, mockCache,
			mockPublisher, logger, testMetrics)

		_, err := svc.Resolve(context.Background(), checkoutID)

		assert.Error(t, err)

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeOperationFailed, serviceErr.Code)
	})
}
