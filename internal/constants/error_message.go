package constants

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeChargeRejected      = "CHARGE_REJECTED"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeMalformedPayload    = "MALFORMED_PAYLOAD"
	ErrCodeOperationFailed     = "OPERATION_FAILED"
	ErrCodeConfirmationTimeout = "CONFIRMATION_TIMEOUT"
)

const (
	ErrMsgChargeRejected      = "the payment could not be started, check the details and try again"
	ErrMsgInvalidSignature    = "webhook signature verification failed"
	ErrMsgMalformedPayload    = "confirmation payload could not be identified"
	ErrMsgOperationFailed     = "operation failed"
	ErrMsgConfirmationTimeout = "we could not confirm the payment status in time"
)

var errorMessages = map[string]string{
	ErrCodeChargeRejected:      ErrMsgChargeRejected,
	ErrCodeInvalidSignature:    ErrMsgInvalidSignature,
	ErrCodeMalformedPayload:    ErrMsgMalformedPayload,
	ErrCodeOperationFailed:     ErrMsgOperationFailed,
	ErrCodeConfirmationTimeout: ErrMsgConfirmationTimeout,
}

func GetErrorMessage(code string) string {
	msg, exists := errorMessages[code]
	if !exists {
		return ""
	}
	return msg
}
