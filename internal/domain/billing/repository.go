package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UnitRepository defines billing-unit persistence operations
type UnitRepository interface {
	Create(ctx context.Context, unit *Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	WithTx(tx pgx.Tx) UnitRepository
}

// BillRepository defines bill persistence operations
type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// ListUnpaidByUnit returns the unit's outstanding bills in allocation
	// priority order: earliest due date first, then group key, then id.
	ListUnpaidByUnit(ctx context.Context, unitID uuid.UUID) ([]*Bill, error)

	// LockUnpaidForSettlement acquires row locks on the unit's outstanding
	// bills for the read-compute-commit settlement cycle. Must run inside a
	// transaction obtained via WithTx.
	LockUnpaidForSettlement(ctx context.Context, unitID uuid.UUID) ([]*Bill, error)

	// RecordPayment persists the paid amounts and status of a settled bill
	RecordPayment(ctx context.Context, bill *Bill) error

	WithTx(tx pgx.Tx) BillRepository
}

// ErrUnitNotFound indicates a missing billing unit
type ErrUnitNotFound struct {
	UnitID uuid.UUID
}

func (e ErrUnitNotFound) Error() string {
	return "billing unit not found: " + e.UnitID.String()
}

// Is implements the errors.Is interface for ErrUnitNotFound
func (e ErrUnitNotFound) Is(target error) bool {
	t, ok := target.(ErrUnitNotFound)
	if !ok {
		return false
	}
	if t.UnitID == uuid.Nil {
		return true
	}
	return e.UnitID == t.UnitID
}

// ErrBillNotFound indicates a missing bill
type ErrBillNotFound struct {
	BillID uuid.UUID
}

func (e ErrBillNotFound) Error() string {
	return "bill not found: " + e.BillID.String()
}

// Is implements the errors.Is interface for ErrBillNotFound
func (e ErrBillNotFound) Is(target error) bool {
	t, ok := target.(ErrBillNotFound)
	if !ok {
		return false
	}
	if t.BillID == uuid.Nil {
		return true
	}
	return e.BillID == t.BillID
}
