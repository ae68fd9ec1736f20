package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// BillingService defines unit and bill operations
type BillingService interface {
	// CreateUnit registers a new billing unit
	CreateUnit(ctx context.Context, tenantCode, name, ownerName string) (*billing.Unit, error)

	// GetUnitByID retrieves a unit by its ID
	// Returns ErrUnitNotFound if the unit doesn't exist
	GetUnitByID(ctx context.Context, id uuid.UUID) (*billing.Unit, error)

	// CreateBill creates a bill for a unit
	// Returns ErrUnitNotFound if the unit doesn't exist
	CreateBill(ctx context.Context, unitID uuid.UUID, period string, dueDate time.Time, groupKey string, baseAmount int64, penaltyRate float64, gracePeriodDays int) (*billing.Bill, error)

	// ListUnpaidBills returns the unit's outstanding bills in allocation
	// priority order, with the penalty owed per bill freshly evaluated at asOf
	ListUnpaidBills(ctx context.Context, unitID uuid.UUID, asOf time.Time) ([]*billing.Bill, map[uuid.UUID]int64, error)
}

// CreditService defines credit ledger administration operations. All
// mutations are synchronous: they load the unit's journal, apply the pure
// ledger operation, and persist the outcome in one transaction.
type CreditService interface {
	// GetLedger returns the unit's projected balance and full journal
	GetLedger(ctx context.Context, unitID uuid.UUID) (int64, []creditledger.Entry, error)

	// AddAdjustment appends a manual adjustment entry; adjustments are the
	// one entry type allowed to drive the balance negative
	AddAdjustment(ctx context.Context, unitID uuid.UUID, amount int64, notes string) (*creditledger.Entry, error)

	// DeleteByTransactionID removes every entry linked to the transaction
	// and returns how many were removed
	DeleteByTransactionID(ctx context.Context, unitID, transactionID uuid.UUID) (int64, error)

	// UpdateEntry edits an entry's mutable fields
	// Returns ErrEntryNotFound if the entry doesn't exist
	UpdateEntry(ctx context.Context, unitID, entryID uuid.UUID, fields creditledger.UpdateFields) (*creditledger.Entry, error)

	// Rollover archives the journal at year end and seeds the fresh one with
	// a starting_balance entry equal to the closing balance
	Rollover(ctx context.Context, unitID uuid.UUID, closedAt time.Time) (*creditledger.Entry, error)
}

// PaymentService defines payment submission and settlement lookup operations
type PaymentService interface {
	// SubmitPayment queues a payment request for asynchronous settlement,
	// with idempotency support.
	// Returns transaction ID, existing audit record (if found via
	// idempotencyKey), and any error
	SubmitPayment(ctx context.Context, paymentRequest *shared.PaymentRequest) (string, *audit.Record, error)

	// GetPaymentByID retrieves a settlement audit record by transaction ID
	// Returns nil if the record is not found
	GetPaymentByID(ctx context.Context, transactionID uuid.UUID) (*audit.Record, error)

	// GetPaymentsByUnitID retrieves paginated settlement history for a unit
	// Returns records, total count, and any error
	GetPaymentsByUnitID(ctx context.Context, unitID uuid.UUID, page, perPage int) ([]*audit.Record, int64, error)

	// PreviewSettlement runs the penalty evaluation and allocation against
	// the unit's current state without persisting anything
	PreviewSettlement(ctx context.Context, unitID uuid.UUID, amount int64, paymentDate time.Time, policy settlement.GroupPolicy) (*settlement.AllocationResult, error)
}
