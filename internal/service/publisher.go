package service

import (
	"context"

	"github.com/distinctmentorship/payments/internal/model"
)

// ConfirmationPublisher announces a terminal transaction to downstream
// consumers (receipts, notifications). Publishing is best-effort: failures
// are the publisher's to log, never the reconciliation path's to fail on.
type ConfirmationPublisher interface {
	PublishConfirmed(ctx context.Context, tx *model.Transaction)
}
