package repository

import (
	"context"
	"errors"

	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/model"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransactionExists   = errors.New("TRANSACTION_EXISTS")
	ErrTransactionNotFound = errors.New("TRANSACTION_NOT_FOUND")
)

// UpsertFields carries one confirmation outcome into the store. Zero-valued
// optional fields (Amount, Phone, ReceiptID, SettledAt, Raw) leave the
// stored values untouched.
type UpsertFields struct {
	Provider   model.Provider
	Status     model.Status
	ResultCode int
	ResultDesc string
	Amount     float64
	Phone      string
	ReceiptID  string
	SettledAt  string
	Raw        string
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByCheckoutID(ctx context.Context, checkoutID string) (*model.Transaction, error)
	Upsert(ctx context.Context, checkoutID string, fields UpsertFields) (*model.Transaction, error)
}

type transaction struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewTransactionRepository(db *gorm.DB, logger *zap.Logger, metrics *metrics.Metrics) TransactionRepository {
	return &transaction{db: db, logger: logger, metrics: metrics}
}

func (t *transaction) Create(ctx context.Context, tx *model.Transaction) error {
	err := t.db.WithContext(ctx).Create(tx).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrTransactionExists
	}

	return err
}

func (t *transaction) FindByCheckoutID(ctx context.Context, checkoutID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := t.db.WithContext(ctx).Where("checkout_id = ?", checkoutID).First(&tx).Error
	if err == nil {
		return &tx, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

// Upsert applies a confirmation outcome idempotently. The row is locked for
// the read-merge-write so concurrent confirmation channels converge on one
// terminal answer; a terminal status never regresses. A conflicting terminal
// write keeps the first verdict and is logged as an anomaly, though audit
// fields from the late write are still recorded.
func (t *transaction) Upsert(ctx context.Context, checkoutID string, fields UpsertFields) (*model.Transaction, error) {
	var merged *model.Transaction

	err := t.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var existing model.Transaction
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("checkout_id = ?", checkoutID).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			created := newFromFields(checkoutID, fields)
			if err := db.Create(created).Error; err != nil {
				return err
			}
			merged = created
			return nil
		}
		if err != nil {
			return err
		}

		t.merge(&existing, fields)

		if err := db.Save(&existing).Error; err != nil {
			return err
		}

		merged = &existing
		return nil
	})

	if err != nil {
		return nil, err
	}

	return merged, nil
}

func (t *transaction) merge(existing *model.Transaction, fields UpsertFields) {
	next, conflict := model.NextStatus(existing.Status, fields.Status)

	if conflict {
		if t.metrics != nil {
			t.metrics.RecordStatusConflict()
		}
		t.logger.Warn("conflicting terminal write retained first verdict",
			zap.String("checkout_id", existing.CheckoutID),
			zap.String("stored_status", string(existing.Status)),
			zap.String("incoming_status", string(fields.Status)),
			zap.Int("incoming_result_code", fields.ResultCode),
		)
	}

	applied := next == fields.Status && fields.Status != model.StatusPending

	existing.Status = next
	if applied {
		code := fields.ResultCode
		existing.ResultCode = &code
		existing.ResultDesc = fields.ResultDesc
	}

	// Provider-reported details win when present; absent ones never blank
	// out what an earlier channel already recorded.
	if applied || !existing.Status.Terminal() {
		if fields.Amount > 0 {
			existing.Amount = fields.Amount
		}
		if fields.Phone != "" {
			existing.PayerPhone = fields.Phone
		}
		if fields.ReceiptID != "" {
			existing.ProviderReceiptID = fields.ReceiptID
		}
		if fields.SettledAt != "" {
			existing.SettledAt = fields.SettledAt
		}
	}

	if fields.Raw != "" {
		existing.RawConfirmation = fields.Raw
	}
}

func newFromFields(checkoutID string, fields UpsertFields) *model.Transaction {
	status := fields.Status
	if status == "" {
		status = model.StatusPending
	}

	tx := &model.Transaction{
		CheckoutID:        checkoutID,
		Provider:          fields.Provider,
		Status:            status,
		ResultDesc:        fields.ResultDesc,
		Amount:            fields.Amount,
		PayerPhone:        fields.Phone,
		ProviderReceiptID: fields.ReceiptID,
		SettledAt:         fields.SettledAt,
		RawConfirmation:   fields.Raw,
	}

	if status.Terminal() {
		code := fields.ResultCode
		tx.ResultCode = &code
	}

	return tx
}
