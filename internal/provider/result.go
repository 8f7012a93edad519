package provider

import (
	"fmt"

	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/pkg/mpesa"
	"github.com/distinctmentorship/payments/pkg/paystack"
)

// ResultCodePending is the sentinel code for "no terminal answer yet".
// Providers use 0 for success and small positive codes for failures.
const ResultCodePending = -1

const PendingDesc = "Status not yet available. Keep waiting."

// Result is the canonical outcome shape shared by all three reconciliation
// paths (callback/webhook, cache, provider query), regardless of which
// provider produced it. Amount, ReceiptID, Phone and SettledAt are zero when
// the originating payload did not carry them.
type Result struct {
	CheckoutID string
	Pending    bool
	ResultCode int
	ResultDesc string
	Amount     float64
	ReceiptID  string
	Phone      string
	SettledAt  string
}

// Status classifies the result for persistence. Pending results never map to
// a terminal status.
func (r Result) Status() model.Status {
	if r.Pending {
		return model.StatusPending
	}
	if r.ResultCode == 0 {
		return model.StatusSuccess
	}
	return model.StatusFailed
}

func (r Result) Success() bool {
	return !r.Pending && r.ResultCode == 0
}

// PendingResult is the answer handed to pollers while no confirmation
// channel has produced a terminal outcome.
func PendingResult(checkoutID string) Result {
	return Result{
		CheckoutID: checkoutID,
		Pending:    true,
		ResultCode: ResultCodePending,
		ResultDesc: PendingDesc,
	}
}

// FromMpesaCallback normalizes an STK push callback.
func FromMpesaCallback(cb *mpesa.CallbackResult) Result {
	return Result{
		CheckoutID: cb.CheckoutRequestID,
		ResultCode: cb.ResultCode,
		ResultDesc: cb.ResultDesc,
		Amount:     cb.Amount,
		ReceiptID:  cb.ReceiptNumber,
		Phone:      cb.Phone,
		SettledAt:  cb.TransactionDate,
	}
}

// FromPaystackWebhook normalizes a charge.success webhook. The reference
// doubles as the receipt id; the amount arrives in minor units.
func FromPaystackWebhook(data paystack.WebhookData) Result {
	desc := data.GatewayResponse
	if desc == "" {
		desc = "Payment successful"
	}

	return Result{
		CheckoutID: data.Reference,
		ResultCode: 0,
		ResultDesc: desc,
		Amount:     paystack.MinorToMajor(data.Amount),
		ReceiptID:  data.Reference,
		Phone:      data.Customer.Phone,
		SettledAt:  data.PaidAt,
	}
}

func (r Result) String() string {
	if r.Pending {
		return fmt.Sprintf("pending(%s)", r.CheckoutID)
	}
	return fmt.Sprintf("%s(%s code=%d)", r.Status(), r.CheckoutID, r.ResultCode)
}
