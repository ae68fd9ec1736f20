package billing

import (
	"time"

	"github.com/google/uuid"
)

// Status defines the payment state of a bill. Transitions are strictly
// forward (unpaid -> partial -> paid) under the allocator; reversal happens
// only through an external refund/void flow.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// Bill represents one billing period's obligation for a unit.
//
// BaseAmount, BasePaid and PenaltyPaid are stored in centavos. There is
// deliberately no stored penalty field: the penalty owed is always recomputed
// from the current unpaid principal and an evaluation date, so a correction
// to BaseAmount can never leave a stale penalty behind.
type Bill struct {
	ID              uuid.UUID `json:"id"`
	UnitID          uuid.UUID `json:"unit_id"`
	Period          string    `json:"period"`    // opaque period key, e.g. "2026-07"
	DueDate         time.Time `json:"due_date"`  // calendar date, midnight UTC
	GroupKey        string    `json:"group_key"` // bills sharing a due date, e.g. a quarter
	BaseAmount      int64     `json:"base_amount"`
	BasePaid        int64     `json:"base_paid"`
	PenaltyPaid     int64     `json:"penalty_paid"`
	PenaltyRate     float64   `json:"penalty_rate"` // per-month fraction, e.g. 0.05
	GracePeriodDays int       `json:"grace_period_days"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewBill creates a bill at billing time: base amount fixed, nothing paid.
func NewBill(unitID uuid.UUID, period string, dueDate time.Time, groupKey string, baseAmount int64, penaltyRate float64, gracePeriodDays int) (*Bill, error) {
	if baseAmount < 0 {
		return nil, ErrNegativeAmount
	}
	if penaltyRate < 0 || penaltyRate >= 1 {
		return nil, ErrInvalidRate
	}
	if gracePeriodDays < 0 {
		return nil, ErrInvalidGraceDays
	}
	if dueDate.IsZero() {
		return nil, ErrMissingDueDate
	}

	now := time.Now()
	return &Bill{
		ID:              uuid.New(),
		UnitID:          unitID,
		Period:          period,
		DueDate:         dueDate.UTC().Truncate(24 * time.Hour),
		GroupKey:        groupKey,
		BaseAmount:      baseAmount,
		PenaltyRate:     penaltyRate,
		GracePeriodDays: gracePeriodDays,
		Status:          StatusUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// BaseOwed returns the unpaid principal in centavos.
func (b *Bill) BaseOwed() int64 {
	return b.BaseAmount - b.BasePaid
}

// PaidAmount returns the total applied to this bill so far.
func (b *Bill) PaidAmount() int64 {
	return b.BasePaid + b.PenaltyPaid
}

// GraceEnd returns the last day on which no penalty accrues.
func (b *Bill) GraceEnd() time.Time {
	return b.DueDate.AddDate(0, 0, b.GracePeriodDays)
}

// ApplyPayment records an allocation against this bill and moves the status
// forward. basePaid must not exceed the unpaid principal.
func (b *Bill) ApplyPayment(basePaid, penaltyPaid int64, newStatus Status) error {
	if basePaid < 0 || penaltyPaid < 0 {
		return ErrNegativeAmount
	}
	if basePaid > b.BaseOwed() {
		return ErrPaymentExceedsDue
	}

	b.BasePaid += basePaid
	b.PenaltyPaid += penaltyPaid
	b.Status = newStatus
	b.UpdatedAt = time.Now()
	return nil
}
