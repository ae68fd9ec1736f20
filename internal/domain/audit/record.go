package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// Record is the durable trace of one settlement attempt: what came in, how
// it was allocated, and what balance resulted. Amounts are centavos.
type Record struct {
	TransactionID       uuid.UUID                `json:"transaction_id" bson:"transaction_id"`
	UnitID              uuid.UUID                `json:"unit_id" bson:"unit_id"`
	PaymentAmount       int64                    `json:"payment_amount" bson:"payment_amount"`
	PaymentDate         time.Time                `json:"payment_date" bson:"payment_date"`
	GroupPolicy         string                   `json:"group_policy,omitempty" bson:"group_policy,omitempty"`
	IdempotencyKey      string                   `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CorrelationID       string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Status              shared.PaymentStatus     `json:"status" bson:"status"`
	FailureReason       string                   `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	BillPayments        []settlement.BillPayment `json:"bill_payments,omitempty" bson:"bill_payments,omitempty"`
	TotalBaseCharges    int64                    `json:"total_base_charges" bson:"total_base_charges"`
	TotalPenalties      int64                    `json:"total_penalties" bson:"total_penalties"`
	TotalApplied        int64                    `json:"total_applied" bson:"total_applied"`
	CreditUsed          int64                    `json:"credit_used" bson:"credit_used"`
	Overpayment         int64                    `json:"overpayment" bson:"overpayment"`
	CreditBalanceBefore int64                    `json:"credit_balance_before" bson:"credit_balance_before"`
	CreditBalanceAfter  int64                    `json:"credit_balance_after" bson:"credit_balance_after"`
	Summary             string                   `json:"summary,omitempty" bson:"summary,omitempty"`
	CreatedAt           time.Time                `json:"created_at" bson:"created_at"`
	ProcessedAt         *time.Time               `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}

// NewSettledRecord builds the audit record for a committed allocation,
// including the operator-facing summary line.
func NewSettledRecord(req *shared.PaymentRequest, result *settlement.AllocationResult) *Record {
	return &Record{
		TransactionID:       req.TransactionID,
		UnitID:              req.UnitID,
		PaymentAmount:       req.Amount,
		PaymentDate:         req.PaymentDate,
		GroupPolicy:         req.GroupPolicy,
		IdempotencyKey:      req.IdempotencyKey,
		CorrelationID:       req.CorrelationID,
		Status:              shared.PaymentStatusSettled,
		BillPayments:        result.BillPayments,
		TotalBaseCharges:    result.TotalBaseCharges,
		TotalPenalties:      result.TotalPenalties,
		TotalApplied:        result.TotalApplied,
		CreditUsed:          result.CreditUsed,
		Overpayment:         result.Overpayment,
		CreditBalanceBefore: result.CurrentCreditBalance,
		CreditBalanceAfter:  result.NewCreditBalance,
		Summary:             summarize(req, result),
		CreatedAt:           req.Timestamp,
	}
}

// NewFailedRecord builds the audit record for a settlement that was rejected
// for a deterministic business reason.
func NewFailedRecord(req *shared.PaymentRequest, reason string) *Record {
	now := time.Now()
	return &Record{
		TransactionID:  req.TransactionID,
		UnitID:         req.UnitID,
		PaymentAmount:  req.Amount,
		PaymentDate:    req.PaymentDate,
		GroupPolicy:    req.GroupPolicy,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  req.CorrelationID,
		Status:         shared.PaymentStatusFailed,
		FailureReason:  reason,
		CreatedAt:      req.Timestamp,
		ProcessedAt:    &now,
	}
}

// summarize renders the one-line human-readable note kept alongside the
// structured settlement data.
func summarize(req *shared.PaymentRequest, result *settlement.AllocationResult) string {
	return fmt.Sprintf(
		"payment of %.2f applied to %d bill(s): %.2f base, %.2f penalties; credit used %.2f, overpayment %.2f, balance %.2f -> %.2f",
		shared.ToPesos(req.Amount),
		len(result.BillPayments),
		shared.ToPesos(result.TotalBaseCharges),
		shared.ToPesos(result.TotalPenalties),
		shared.ToPesos(result.CreditUsed),
		shared.ToPesos(result.Overpayment),
		shared.ToPesos(result.CurrentCreditBalance),
		shared.ToPesos(result.NewCreditBalance),
	)
}
