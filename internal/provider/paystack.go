package provider

import (
	"context"

	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/pkg/paystack"
	"go.uber.org/zap"
)

const defaultCustomerMessage = "A payment request has been sent to your phone. Please complete the authorization."

// paystackGateway is the verify-confirm variant: webhooks are signed, and a
// guaranteed-fresh status is available on demand through the verify call.
type paystackGateway struct {
	client paystack.Client
	logger *zap.Logger
}

func NewPaystackGateway(client paystack.Client, logger *zap.Logger) Gateway {
	return &paystackGateway{client: client, logger: logger}
}

func (g *paystackGateway) Provider() model.Provider {
	return model.ProviderPaystack
}

func (g *paystackGateway) Initiate(ctx context.Context, cmd InitiateCommand) (InitiateResult, error) {
	charge, err := g.client.Charge(ctx, paystack.ChargeCommand{
		Phone:            cmd.Phone,
		Amount:           cmd.Amount,
		AccountReference: cmd.AccountReference,
		Description:      cmd.Description,
		PayerName:        cmd.PayerName,
	})
	if err != nil {
		return InitiateResult{}, err
	}

	message := charge.DisplayText
	if message == "" {
		message = defaultCustomerMessage
	}

	return InitiateResult{
		Accepted:          charge.Reference != "",
		CheckoutID:        charge.Reference,
		MerchantRequestID: charge.Reference,
		CustomerMessage:   message,
	}, nil
}

func (g *paystackGateway) QueryStatus(ctx context.Context, checkoutID string) (Result, error) {
	verification, err := g.client.Verify(ctx, checkoutID)
	if err != nil {
		return Result{}, err
	}

	// Transient states (pending, ongoing, send_otp, ...) are not a verdict.
	if !paystack.TerminalStatus(verification.Status) {
		return PendingResult(checkoutID), nil
	}

	code := 1
	if verification.Status == paystack.StatusSuccess {
		code = 0
	}

	desc := verification.GatewayResponse
	if desc == "" {
		desc = verification.Status
	}

	result := Result{
		CheckoutID: checkoutID,
		ResultCode: code,
		ResultDesc: desc,
		Amount:     verification.Amount,
		Phone:      verification.CustomerPhone,
		SettledAt:  verification.PaidAt,
	}

	if result.Success() {
		result.ReceiptID = verification.Reference
	}

	return result, nil
}
