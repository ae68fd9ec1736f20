// Package settlement holds the pure computation core of the billing
// platform: penalty accrual and priority-ordered payment allocation. All
// arithmetic is integer centavos; nothing here performs I/O or mutates its
// inputs, so a caller wraps one read-compute-commit cycle in a transaction.
package settlement

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// PenaltyCalculator computes compounding late penalties. It is a stateless
// service value: construct once, share freely.
type PenaltyCalculator struct{}

// NewPenaltyCalculator creates a penalty calculator
func NewPenaltyCalculator() *PenaltyCalculator {
	return &PenaltyCalculator{}
}

// MonthsOverdue returns the number of whole calendar months a bill is late
// at the evaluation date. Inside the grace window (dueDate + graceDays,
// inclusive) the answer is exactly 0. Past the window, months are counted
// from the due date itself: penalties accrue for the grace month too once
// the window is missed.
func (c *PenaltyCalculator) MonthsOverdue(dueDate time.Time, graceDays int, asOf time.Time) int {
	graceEnd := dueDate.AddDate(0, 0, graceDays)
	if !asOf.After(graceEnd) {
		return 0
	}

	months := (asOf.Year()-dueDate.Year())*12 + int(asOf.Month()) - int(dueDate.Month())
	if asOf.Day() < dueDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Compound accrues the monthly-compounding penalty on an unpaid principal:
// each month's penalty is computed on principal plus all prior penalties,
// rounded to whole centavos. Returns the total penalty owed.
func (c *PenaltyCalculator) Compound(principal int64, rate float64, months int) (int64, error) {
	if principal < 0 {
		return 0, ErrValidation{Reason: "principal must not be negative"}
	}
	if rate < 0 || rate >= 1 {
		return 0, ErrValidation{Reason: "penalty rate must be in [0, 1)"}
	}

	running := principal
	var total int64
	for m := 0; m < months; m++ {
		monthly := int64(math.Round(float64(running) * rate))
		if monthly < 0 || running > math.MaxInt64-monthly {
			return 0, shared.AmountRangeError{Detail: "compounded penalty overflows the minor-unit range"}
		}
		total += monthly
		running += monthly
	}
	return total, nil
}

// ForBill computes the penalty owed on a single bill at the evaluation date,
// always from the bill's current unpaid principal. Stored penalty fields do
// not exist anywhere in this system; recomputing here is what keeps a
// corrected base amount from leaving a stale penalty behind.
func (c *PenaltyCalculator) ForBill(bill *billing.Bill, asOf time.Time) (int64, error) {
	months := c.MonthsOverdue(bill.DueDate, bill.GracePeriodDays, asOf)
	return c.Compound(bill.BaseOwed(), bill.PenaltyRate, months)
}

// Distribute splits a group penalty across n member bills: floor(total/n)
// for every member except the last, which absorbs the remainder so the
// shares sum exactly to the computed total.
func (c *PenaltyCalculator) Distribute(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	shares := make([]int64, n)
	per := total / int64(n)
	var assigned int64
	for i := 0; i < n-1; i++ {
		shares[i] = per
		assigned += per
	}
	shares[n-1] = total - assigned
	return shares
}

// Evaluate computes the penalty owed per bill at the evaluation date.
// Bills sharing a non-empty group key are penalized jointly: one compounding
// run on the summed unpaid principal, distributed back to the members in
// their sort order. Ungrouped bills are penalized independently.
func (c *PenaltyCalculator) Evaluate(bills []*billing.Bill, asOf time.Time) (map[uuid.UUID]int64, error) {
	penalties := make(map[uuid.UUID]int64, len(bills))

	groups, order, err := groupBills(bills)
	if err != nil {
		return nil, err
	}

	for _, key := range order {
		members := groups[key]
		if key == "" || len(members) == 1 {
			for _, b := range members {
				owed, err := c.ForBill(b, asOf)
				if err != nil {
					return nil, err
				}
				penalties[b.ID] = owed
			}
			continue
		}

		head := members[0]
		var principal int64
		for _, b := range members {
			principal += b.BaseOwed()
		}

		months := c.MonthsOverdue(head.DueDate, head.GracePeriodDays, asOf)
		total, err := c.Compound(principal, head.PenaltyRate, months)
		if err != nil {
			return nil, err
		}

		for i, share := range c.Distribute(total, len(members)) {
			penalties[members[i].ID] = share
		}
	}

	return penalties, nil
}

// groupBills collects bills by group key preserving input order, and
// rejects groups whose members disagree on the due date.
func groupBills(bills []*billing.Bill) (map[string][]*billing.Bill, []string, error) {
	groups := make(map[string][]*billing.Bill)
	var order []string

	for _, b := range bills {
		key := b.GroupKey
		if existing, ok := groups[key]; ok {
			if key != "" && !existing[0].DueDate.Equal(b.DueDate) {
				return nil, nil, ErrValidation{Reason: "group " + key + " members disagree on due date"}
			}
		} else {
			order = append(order, key)
		}
		groups[key] = append(groups[key], b)
	}

	return groups, order, nil
}
