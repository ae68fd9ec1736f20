package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/mlandesman/SAMS-sub008/internal/payment_processor/service"
)

// SettlementManagerImpl implements the SettlementManager interface. All reads
// and writes go through the caller's transaction: the bills are row-locked,
// the allocation is computed against the locked state, and the bill updates
// plus ledger appends commit together.
type SettlementManagerImpl struct {
	unitRepo      billing.UnitRepository
	billRepo      billing.BillRepository
	ledgerRepo    creditledger.Repository
	penalty       *settlement.PenaltyCalculator
	allocator     *settlement.Allocator
	defaultPolicy settlement.GroupPolicy
	logger        *slog.Logger
}

// NewSettlementManager creates a new SettlementManagerImpl
func NewSettlementManager(
	unitRepo billing.UnitRepository,
	billRepo billing.BillRepository,
	ledgerRepo creditledger.Repository,
	defaultPolicy settlement.GroupPolicy,
	logger *slog.Logger,
) service.SettlementManager {
	return &SettlementManagerImpl{
		unitRepo:      unitRepo,
		billRepo:      billRepo,
		ledgerRepo:    ledgerRepo,
		penalty:       settlement.NewPenaltyCalculator(),
		allocator:     settlement.NewAllocator(),
		defaultPolicy: defaultPolicy,
		logger:        logger,
	}
}

// Settle locks the unit's outstanding bills, evaluates penalties as of the
// payment date, allocates the funds, and persists the per-bill payments and
// credit ledger entries inside tx
func (m *SettlementManagerImpl) Settle(ctx context.Context, tx pgx.Tx, request *shared.PaymentRequest) (*settlement.AllocationResult, error) {
	logger := m.logger
	if request.CorrelationID != "" {
		logger = m.logger.With("correlation_id", request.CorrelationID)
	}

	unitRepoTx := m.unitRepo.WithTx(tx)
	billRepoTx := m.billRepo.WithTx(tx)
	ledgerRepoTx := m.ledgerRepo.WithTx(tx)

	if _, err := unitRepoTx.GetByID(ctx, request.UnitID); err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{UnitID: request.UnitID}) {
			logger.Warn("Unit not found for settlement", "req_id", request.TransactionID.String(), "unit_id", request.UnitID.String())
			return nil, err
		}
		logger.Error("Failed to load unit", "req_id", request.TransactionID.String(), "unit_id", request.UnitID.String(), "error", err)
		return nil, fmt.Errorf("failed to load unit %s: %w", request.UnitID.String(), err)
	}

	bills, err := billRepoTx.LockUnpaidForSettlement(ctx, request.UnitID)
	if err != nil {
		logger.Error("Failed to lock bills", "req_id", request.TransactionID.String(), "unit_id", request.UnitID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock bills for unit %s: %w", request.UnitID.String(), err)
	}
	logger.Info("Bills locked for settlement", "req_id", request.TransactionID.String(), "unit_id", request.UnitID.String(), "bill_count", len(bills))

	history, err := ledgerRepoTx.ListByUnit(ctx, request.UnitID)
	if err != nil {
		logger.Error("Failed to load credit history", "req_id", request.TransactionID.String(), "unit_id", request.UnitID.String(), "error", err)
		return nil, fmt.Errorf("failed to load credit history for unit %s: %w", request.UnitID.String(), err)
	}

	penalties, err := m.penalty.Evaluate(bills, request.PaymentDate)
	if err != nil {
		return nil, err
	}

	policy := m.defaultPolicy
	if request.GroupPolicy != "" {
		policy, err = settlement.ParseGroupPolicy(request.GroupPolicy)
		if err != nil {
			return nil, err
		}
	}

	result, err := m.allocator.Allocate(&settlement.AllocationRequest{
		UnitID:               request.UnitID,
		TransactionID:        request.TransactionID,
		Bills:                bills,
		Penalties:            penalties,
		PaymentAmount:        request.Amount,
		CurrentCreditBalance: creditledger.Balance(history),
		PaymentDate:          request.PaymentDate,
		Policy:               policy,
	})
	if err != nil {
		return nil, err
	}

	// Persist per-bill outcomes against the locked rows
	billsByID := make(map[string]*billing.Bill, len(bills))
	for _, b := range bills {
		billsByID[b.ID.String()] = b
	}
	for _, bp := range result.BillPayments {
		bill := billsByID[bp.BillID.String()]
		if bill == nil {
			return nil, fmt.Errorf("allocation references unknown bill %s", bp.BillID.String())
		}
		if err := bill.ApplyPayment(bp.BaseChargePaid, bp.PenaltyPaid, bp.NewStatus); err != nil {
			return nil, fmt.Errorf("failed to apply payment to bill %s: %w", bp.BillID.String(), err)
		}
		if err := billRepoTx.RecordPayment(ctx, bill); err != nil {
			logger.Error("Failed to record bill payment", "req_id", request.TransactionID.String(), "bill_id", bp.BillID.String(), "error", err)
			return nil, fmt.Errorf("failed to record payment for bill %s: %w", bp.BillID.String(), err)
		}
	}

	// Append the credit ledger entries the allocation produced
	for i := range result.LedgerEntries {
		if err := ledgerRepoTx.Insert(ctx, &result.LedgerEntries[i]); err != nil {
			logger.Error("Failed to insert credit ledger entry", "req_id", request.TransactionID.String(), "entry_id", result.LedgerEntries[i].ID.String(), "error", err)
			return nil, fmt.Errorf("failed to insert credit entry for tx %s: %w", request.TransactionID.String(), err)
		}
	}

	logger.Info("Allocation persisted",
		"req_id", request.TransactionID.String(),
		"unit_id", request.UnitID.String(),
		"bills_paid", len(result.BillPayments),
		"total_applied", result.TotalApplied,
		"credit_used", result.CreditUsed,
		"overpayment", result.Overpayment,
	)

	return result, nil
}
