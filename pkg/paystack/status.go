package paystack

// Transaction statuses the API reports as final. Anything else (pending,
// ongoing, processing, queued, send_otp, ...) means the charge is still in
// flight and must be treated as pending.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
	StatusReversed  = "reversed"
)

func TerminalStatus(status string) bool {
	switch status {
	case StatusSuccess, StatusFailed, StatusAbandoned, StatusReversed:
		return true
	}
	return false
}
