package mpesa

import (
	"errors"
	"strings"
)

const (
	ErrCodeTokenFailed   = "MPESA_TOKEN_FAILED"
	ErrCodePushRejected  = "MPESA_PUSH_REJECTED"
	ErrCodeResultPending = "MPESA_RESULT_PENDING"
	ErrCodeServerError   = "MPESA_SERVER_ERROR"
)

var (
	ErrTokenFailed  = errors.New(ErrCodeTokenFailed)
	ErrPushRejected = errors.New(ErrCodePushRejected)

	// ErrResultPending means the provider has no final answer for the
	// checkout id yet. Callers treat it as "keep polling", not a fault.
	ErrResultPending = errors.New(ErrCodeResultPending)

	ErrServerError = errors.New(ErrCodeServerError)
)

// Daraja reports an in-flight STK transaction as an error payload rather
// than a pending status. 500.001.1001 is "the transaction is being
// processed"; the 404.* family covers checkout ids the API has not seen yet.
func pendingErrorCode(code string) bool {
	if code == "500.001.1001" {
		return true
	}
	return strings.HasPrefix(code, "404.")
}
