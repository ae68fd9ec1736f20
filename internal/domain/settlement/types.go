package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
)

// GroupPolicy names how funds are applied to bills that share a due date.
// Both policies exist in the field: quarterly billing that must never show a
// half-paid quarter uses the atomic policy, everything else pays per bill.
type GroupPolicy string

const (
	// PolicyPerBillPartial processes bills one at a time regardless of
	// grouping; a bill may end up partially paid when funds run out. This is
	// the default.
	PolicyPerBillPartial GroupPolicy = "per_bill_partial"

	// PolicyAtomicGroup settles a due-date group only when available funds
	// cover the group's entire remaining total; otherwise the whole group is
	// skipped and the funds roll forward to credit.
	PolicyAtomicGroup GroupPolicy = "atomic_group"
)

// ParseGroupPolicy maps a configuration string to a GroupPolicy. The empty
// string selects the default.
func ParseGroupPolicy(s string) (GroupPolicy, error) {
	switch GroupPolicy(s) {
	case "":
		return PolicyPerBillPartial, nil
	case PolicyPerBillPartial:
		return PolicyPerBillPartial, nil
	case PolicyAtomicGroup:
		return PolicyAtomicGroup, nil
	}
	return "", ErrValidation{Reason: "unknown group policy: " + s}
}

// AllocationRequest is the value object handed to the allocator: bills
// already priority-sorted, penalties already evaluated, amounts in centavos.
// Nothing in it is mutated.
type AllocationRequest struct {
	UnitID               uuid.UUID
	TransactionID        uuid.UUID
	Bills                []*billing.Bill
	Penalties            map[uuid.UUID]int64 // penalty owed per bill id, from PenaltyCalculator
	PaymentAmount        int64
	CurrentCreditBalance int64
	PaymentDate          time.Time
	Policy               GroupPolicy
}

// BillPayment records how one bill was settled
type BillPayment struct {
	BillID         uuid.UUID      `json:"bill_id"`
	Period         string         `json:"period"`
	AmountPaid     int64          `json:"amount_paid"`
	BaseChargePaid int64          `json:"base_charge_paid"`
	PenaltyPaid    int64          `json:"penalty_paid"`
	NewStatus      billing.Status `json:"new_status"`
}

// AllocationResult is everything the caller must persist: per-bill payment
// records, aggregate settlement totals, and the credit ledger entries to
// append. Exactly one of CreditUsed and Overpayment is nonzero for any
// allocation that touched the credit balance.
type AllocationResult struct {
	UnitID               uuid.UUID           `json:"unit_id"`
	TransactionID        uuid.UUID           `json:"transaction_id"`
	BillPayments         []BillPayment       `json:"bill_payments"`
	TotalBaseCharges     int64               `json:"total_base_charges"`
	TotalPenalties       int64               `json:"total_penalties"`
	TotalApplied         int64               `json:"total_applied"`
	CreditUsed           int64               `json:"credit_used"`
	Overpayment          int64               `json:"overpayment"`
	CurrentCreditBalance int64               `json:"current_credit_balance"`
	NewCreditBalance     int64               `json:"new_credit_balance"`
	TotalBillsDue        int64               `json:"total_bills_due"`
	LedgerEntries        []creditledger.Entry `json:"ledger_entries"`
}
