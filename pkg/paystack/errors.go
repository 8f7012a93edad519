package paystack

import "errors"

const (
	ErrCodeChargeFailed = "PAYSTACK_CHARGE_FAILED"
	ErrCodeVerifyFailed = "PAYSTACK_VERIFY_FAILED"
	ErrCodeTimeout      = "PAYSTACK_TIMEOUT"
)

var (
	ErrChargeFailed = errors.New(ErrCodeChargeFailed)
	ErrVerifyFailed = errors.New(ErrCodeVerifyFailed)
	ErrTimeout      = errors.New(ErrCodeTimeout)
)
