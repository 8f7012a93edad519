package v1

import (
	"time"

	"github.com/distinctmentorship/payments/internal/api/contract"
	"github.com/distinctmentorship/payments/internal/api/validator"
	"github.com/distinctmentorship/payments/internal/constants"
	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/distinctmentorship/payments/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger        *zap.Logger
	chargeService service.ChargeService
	resolver      service.Resolver
	ingestService service.IngestService
	poller        service.Poller
	XValidator    validator.IXValidator
	metrics       *metrics.Metrics
}

func NewHandler(logger *zap.Logger, chargeService service.ChargeService, resolver service.Resolver,
	ingestService service.IngestService, poller service.Poller, XValidator validator.IXValidator,
	metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:        logger,
		chargeService: chargeService,
		resolver:      resolver,
		ingestService: ingestService,
		poller:        poller,
		XValidator:    XValidator,
		metrics:       metrics,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) InitiateCharge(c *fiber.Ctx) error {
	start := time.Now()

	var handlerRequest InitiateChargeRequest
	validationStart := time.Now()

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	h.metrics.RecordValidationDuration("initiate_charge", time.Since(validationStart))

	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.InitiateChargeCommand{
		Phone:            handlerRequest.Phone,
		Amount:           handlerRequest.Amount,
		AccountReference: handlerRequest.AccountReference,
		Description:      handlerRequest.Description,
		PayerName:        handlerRequest.PayerName,
		Provider:         model.Provider(handlerRequest.Provider),
	}

	initiation, err := h.chargeService.Initiate(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.logger.Info("Charge initiated",
		zap.String("checkout_id", initiation.CheckoutID),
		zap.Duration("duration", time.Since(start)),
	)

	result := InitiateChargeResponse{
		Accepted:          initiation.Accepted,
		CheckoutID:        initiation.CheckoutID,
		MerchantRequestID: initiation.MerchantRequestID,
		CustomerMessage:   initiation.CustomerMessage,
	}

	return c.JSON(contract.Response{Code: "success", Message: "charge initiated", Result: result})
}

func (h *Handler) QueryStatus(c *fiber.Ctx) error {
	var handlerRequest StatusQueryRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	resolved, err := h.resolver.Resolve(c.UserContext(), handlerRequest.CheckoutID)
	if err != nil {
		return err
	}

	return c.JSON(statusResponse(resolved))
}

// ConfirmCharge blocks until the charge settles or polling gives up. The
// timeout answer is a verdict on the waiting, not on the charge, and maps to
// its own error code so clients can distinguish it from a failed payment.
func (h *Handler) ConfirmCharge(c *fiber.Ctx) error {
	var handlerRequest StatusQueryRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	resolved, err := h.poller.PollUntilTerminal(c.UserContext(), handlerRequest.CheckoutID)
	if err != nil {
		return err
	}

	return c.JSON(statusResponse(resolved))
}

// MpesaCallback ingests the push confirmation. The sender only honors a
// success acknowledgement, so internal failures are logged and swallowed;
// answering anything else triggers a retry storm.
func (h *Handler) MpesaCallback(c *fiber.Ctx) error {
	if err := h.ingestService.HandleMpesaCallback(c.UserContext(), c.Body()); err != nil {
		h.logger.Error("stk callback not absorbed", zap.Error(err))
		return c.JSON(AcknowledgeResponse{Received: false})
	}

	return c.JSON(AcknowledgeResponse{Received: true})
}

// PaystackWebhook ingests the signed confirmation. This sender honors
// negative responses, so authentication and payload errors surface as
// client errors through the error middleware.
func (h *Handler) PaystackWebhook(c *fiber.Ctx) error {
	signature := c.Get("x-paystack-signature")

	if err := h.ingestService.HandlePaystackWebhook(c.UserContext(), c.Body(), signature); err != nil {
		return err
	}

	return c.JSON(AcknowledgeResponse{Received: true})
}

func statusResponse(result provider.Result) StatusResponse {
	return StatusResponse{
		Success:           result.Success(),
		Pending:           result.Pending,
		CheckoutID:        result.CheckoutID,
		ResultCode:        result.ResultCode,
		ResultDesc:        result.ResultDesc,
		ProviderReceiptID: result.ReceiptID,
		Amount:            result.Amount,
		PayerPhone:        result.Phone,
		SettledAt:         result.SettledAt,
	}
}
