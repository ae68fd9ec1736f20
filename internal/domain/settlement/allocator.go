package settlement

import (
	"math"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// LedgerEntrySource tags the credit entries this allocator emits.
const LedgerEntrySource = "payment_allocator"

// Allocator distributes incoming funds across a unit's outstanding bills in
// priority order: penalty before principal within each bill, oldest due date
// first across bills. It is a stateless service value and never retries: the
// computation is pure and deterministic, so the caller must refresh its
// input before trying again after an error.
type Allocator struct{}

// NewAllocator creates a payment allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate applies paymentAmount plus the unit's credit balance to the
// request's bills and returns everything the caller must persist. The input
// bills are not mutated; per-bill outcomes live in the result's
// BillPayments.
func (a *Allocator) Allocate(req *AllocationRequest) (*AllocationResult, error) {
	if err := a.validate(req); err != nil {
		return nil, err
	}

	totalAvailable := req.PaymentAmount + req.CurrentCreditBalance
	if totalAvailable < 0 || totalAvailable < req.PaymentAmount {
		return nil, shared.AmountRangeError{Detail: "available funds overflow the minor-unit range"}
	}

	remaining := totalAvailable
	result := &AllocationResult{
		UnitID:               req.UnitID,
		TransactionID:        req.TransactionID,
		CurrentCreditBalance: req.CurrentCreditBalance,
	}

	for _, b := range req.Bills {
		result.TotalBillsDue += req.Penalties[b.ID] + b.BaseOwed()
	}

	switch req.Policy {
	case PolicyAtomicGroup:
		a.allocateAtomicGroups(req, result, &remaining)
	default:
		a.allocatePerBill(req, result, &remaining)
	}

	a.settle(req, result)
	return result, nil
}

// allocatePerBill implements the default policy: bills are processed one at
// a time in priority order, and the last bill reached may end up partial.
func (a *Allocator) allocatePerBill(req *AllocationRequest, result *AllocationResult, remaining *int64) {
	for _, bill := range req.Bills {
		if *remaining <= 0 {
			break
		}
		a.applyToBill(bill, req.Penalties[bill.ID], result, remaining)
	}
}

// allocateAtomicGroups implements the atomic policy: a due-date group (or a
// lone bill) is settled only when remaining funds cover its entire total;
// otherwise it is skipped whole and the funds roll forward to credit.
func (a *Allocator) allocateAtomicGroups(req *AllocationRequest, result *AllocationResult, remaining *int64) {
	groups, order, _ := groupBills(req.Bills) // validated already

	for _, key := range order {
		for _, members := range splitSingletons(key, groups[key]) {
			var groupTotal int64
			for _, b := range members {
				groupTotal += req.Penalties[b.ID] + b.BaseOwed()
			}
			if groupTotal > *remaining {
				continue
			}
			for _, b := range members {
				a.applyToBill(b, req.Penalties[b.ID], result, remaining)
			}
		}
	}
}

// applyToBill applies funds to a single bill, penalty first then principal
func (a *Allocator) applyToBill(bill *billing.Bill, penaltyOwed int64, result *AllocationResult, remaining *int64) {
	owed := penaltyOwed + bill.BaseOwed()
	if owed <= 0 {
		return
	}

	apply := min64(*remaining, owed)
	penaltyPaid := min64(apply, penaltyOwed)
	basePaid := apply - penaltyPaid
	*remaining -= apply

	status := billing.StatusPartial
	if apply >= owed {
		status = billing.StatusPaid
	}

	result.BillPayments = append(result.BillPayments, BillPayment{
		BillID:         bill.ID,
		Period:         bill.Period,
		AmountPaid:     apply,
		BaseChargePaid: basePaid,
		PenaltyPaid:    penaltyPaid,
		NewStatus:      status,
	})
	result.TotalBaseCharges += basePaid
	result.TotalPenalties += penaltyPaid
	result.TotalApplied += apply
}

// settle computes the aggregate credit movement once all bills are
// processed. Exactly one of creditUsed/overpayment can be nonzero, and the
// matching ledger entry is emitted for the caller to append.
func (a *Allocator) settle(req *AllocationRequest, result *AllocationResult) {
	if req.PaymentAmount >= result.TotalApplied {
		result.Overpayment = req.PaymentAmount - result.TotalApplied
	} else {
		result.CreditUsed = result.TotalApplied - req.PaymentAmount
	}
	result.NewCreditBalance = req.CurrentCreditBalance - result.CreditUsed + result.Overpayment

	transactionID := req.TransactionID
	switch {
	case result.CreditUsed > 0:
		result.LedgerEntries = append(result.LedgerEntries, creditledger.Entry{
			ID:            uuid.New(),
			UnitID:        req.UnitID,
			Amount:        -result.CreditUsed,
			Timestamp:     creditledger.CanonicalTimestamp(req.PaymentDate),
			TransactionID: &transactionID,
			Type:          creditledger.EntryTypeCreditUsed,
			Source:        LedgerEntrySource,
			Notes:         "credit applied to bill settlement",
		})
	case result.Overpayment > 0:
		result.LedgerEntries = append(result.LedgerEntries, creditledger.Entry{
			ID:            uuid.New(),
			UnitID:        req.UnitID,
			Amount:        result.Overpayment,
			Timestamp:     creditledger.CanonicalTimestamp(req.PaymentDate),
			TransactionID: &transactionID,
			Type:          creditledger.EntryTypeCreditAdded,
			Source:        LedgerEntrySource,
			Notes:         "overpayment converted to credit",
		})
	}
}

func (a *Allocator) validate(req *AllocationRequest) error {
	if req == nil {
		return ErrValidation{Reason: "request is nil"}
	}
	if req.Bills == nil {
		return ErrValidation{Reason: "bills must be a list, not nil"}
	}
	if req.PaymentAmount < 0 {
		return ErrValidation{Reason: "payment amount must not be negative"}
	}
	if req.CurrentCreditBalance < 0 {
		return ErrValidation{Reason: "credit balance must not be negative"}
	}
	if req.Policy != "" && req.Policy != PolicyPerBillPartial && req.Policy != PolicyAtomicGroup {
		return ErrValidation{Reason: "unknown group policy: " + string(req.Policy)}
	}

	seen := make(map[uuid.UUID]bool, len(req.Bills))
	for _, b := range req.Bills {
		if b == nil {
			return ErrValidation{Reason: "bill entry is nil"}
		}
		if seen[b.ID] {
			return ErrValidation{Reason: "bill referenced twice: " + b.ID.String()}
		}
		seen[b.ID] = true

		penalty, ok := req.Penalties[b.ID]
		if !ok {
			return ErrValidation{Reason: "missing penalty evaluation for bill " + b.ID.String()}
		}
		if penalty < 0 {
			return ErrValidation{Reason: "penalty must not be negative for bill " + b.ID.String()}
		}
		if penalty > math.MaxInt64-b.BaseOwed() {
			return shared.AmountRangeError{Detail: "bill total overflows the minor-unit range"}
		}
	}

	// groups must agree on due date before any funds move
	if _, _, err := groupBills(req.Bills); err != nil {
		return err
	}
	return nil
}

// splitSingletons treats ungrouped bills (empty key) as one-bill groups so
// the atomic policy still settles them individually.
func splitSingletons(key string, members []*billing.Bill) [][]*billing.Bill {
	if key != "" {
		return [][]*billing.Bill{members}
	}
	split := make([][]*billing.Bill, 0, len(members))
	for _, b := range members {
		split = append(split, []*billing.Bill{b})
	}
	return split
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
