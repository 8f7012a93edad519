package provider

import (
	"context"
	"errors"

	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/pkg/mpesa"
	"go.uber.org/zap"
)

// mpesaGateway is the push-confirm variant: the outcome normally arrives as
// an unsolicited STK callback, and the query API only has an answer once the
// payer has acted on the push.
type mpesaGateway struct {
	client mpesa.Client
	logger *zap.Logger
}

func NewMpesaGateway(client mpesa.Client, logger *zap.Logger) Gateway {
	return &mpesaGateway{client: client, logger: logger}
}

func (g *mpesaGateway) Provider() model.Provider {
	return model.ProviderMpesa
}

func (g *mpesaGateway) Initiate(ctx context.Context, cmd InitiateCommand) (InitiateResult, error) {
	response, err := g.client.STKPush(ctx, mpesa.StkPushCommand{
		Phone:            cmd.Phone,
		Amount:           cmd.Amount,
		AccountReference: cmd.AccountReference,
		Description:      cmd.Description,
	})
	if err != nil {
		return InitiateResult{}, err
	}

	return InitiateResult{
		Accepted:          response.ResponseCode == "0",
		CheckoutID:        response.CheckoutRequestID,
		MerchantRequestID: response.MerchantRequestID,
		CustomerMessage:   response.CustomerMessage,
	}, nil
}

func (g *mpesaGateway) QueryStatus(ctx context.Context, checkoutID string) (Result, error) {
	response, err := g.client.STKQuery(ctx, checkoutID)
	if err != nil {
		// "Not found yet" is a normal in-flight answer, not a fault.
		if errors.Is(err, mpesa.ErrResultPending) {
			return PendingResult(checkoutID), nil
		}
		return Result{}, err
	}

	code, err := response.ResultCode.Int64()
	if err != nil {
		return Result{}, err
	}

	return Result{
		CheckoutID: checkoutID,
		ResultCode: int(code),
		ResultDesc: response.ResultDesc,
	}, nil
}
