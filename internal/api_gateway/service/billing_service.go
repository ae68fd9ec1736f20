package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
)

// BillingServiceImpl implements the BillingService interface
type BillingServiceImpl struct {
	unitRepo billing.UnitRepository
	billRepo billing.BillRepository
	penalty  *settlement.PenaltyCalculator
}

// NewBillingService creates a new billing service
func NewBillingService(unitRepo billing.UnitRepository, billRepo billing.BillRepository) BillingService {
	return &BillingServiceImpl{
		unitRepo: unitRepo,
		billRepo: billRepo,
		penalty:  settlement.NewPenaltyCalculator(),
	}
}

// CreateUnit registers a new billing unit
func (s *BillingServiceImpl) CreateUnit(ctx context.Context, tenantCode, name, ownerName string) (*billing.Unit, error) {
	unit, err := billing.NewUnit(tenantCode, name, ownerName)
	if err != nil {
		return nil, err
	}

	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	return unit, nil
}

// GetUnitByID retrieves a unit by its ID, returns ErrUnitNotFound if not found
func (s *BillingServiceImpl) GetUnitByID(ctx context.Context, id uuid.UUID) (*billing.Unit, error) {
	return s.unitRepo.GetByID(ctx, id)
}

// CreateBill creates a bill for a unit after verifying the unit exists
func (s *BillingServiceImpl) CreateBill(ctx context.Context, unitID uuid.UUID, period string, dueDate time.Time, groupKey string, baseAmount int64, penaltyRate float64, gracePeriodDays int) (*billing.Bill, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	bill, err := billing.NewBill(unitID, period, dueDate, groupKey, baseAmount, penaltyRate, gracePeriodDays)
	if err != nil {
		return nil, err
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}

	return bill, nil
}

// ListUnpaidBills returns the unit's outstanding bills in priority order
// with penalties freshly evaluated at asOf. Penalties are never stored, so
// every listing recomputes them from the current unpaid principal.
func (s *BillingServiceImpl) ListUnpaidBills(ctx context.Context, unitID uuid.UUID, asOf time.Time) ([]*billing.Bill, map[uuid.UUID]int64, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, nil, err
	}

	bills, err := s.billRepo.ListUnpaidByUnit(ctx, unitID)
	if err != nil {
		return nil, nil, err
	}

	penalties, err := s.penalty.Evaluate(bills, asOf)
	if err != nil {
		return nil, nil, err
	}

	return bills, penalties, nil
}
