package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/platform/persistence"
)

const billColumns = "id, unit_id, period, due_date, group_key, base_amount, base_paid, penalty_paid, penalty_rate, grace_period_days, status, created_at, updated_at"

// BillRepository implements the billing.BillRepository interface for PostgreSQL
type BillRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBillRepository creates a new PostgreSQL bill repository
func NewBillRepository(logger *slog.Logger, db *persistence.PostgresDB) billing.BillRepository {
	return &BillRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so bill updates commit
// atomically with the ledger appends of the same settlement.
func (r *BillRepository) WithTx(tx pgx.Tx) billing.BillRepository {
	return &BillRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new bill in the database
func (r *BillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	query := `
		INSERT INTO bills (id, unit_id, period, due_date, group_key, base_amount, base_paid, penalty_paid, penalty_rate, grace_period_days, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		bill.ID,
		bill.UnitID,
		bill.Period,
		bill.DueDate,
		bill.GroupKey,
		bill.BaseAmount,
		bill.BasePaid,
		bill.PenaltyPaid,
		bill.PenaltyRate,
		bill.GracePeriodDays,
		bill.Status,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", "error", err)
		return fmt.Errorf("failed to create bill: %w", err)
	}

	return nil
}

// GetByID retrieves a bill by its ID
func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE id = $1
	`

	bill, err := r.scanBill(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrBillNotFound{BillID: id}
		}
		r.logger.Error("Failed to get bill", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// ListUnpaidByUnit returns the unit's outstanding bills in allocation
// priority order: earliest due date first, then group key, then id.
func (r *BillRepository) ListUnpaidByUnit(ctx context.Context, unitID uuid.UUID) ([]*billing.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE unit_id = $1 AND status != $2
		ORDER BY due_date ASC, group_key ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, unitID, billing.StatusPaid)
	if err != nil {
		r.logger.Error("Failed to list unpaid bills", "unit_id", unitID.String(), "error", err)
		return nil, fmt.Errorf("failed to list unpaid bills: %w", err)
	}
	defer rows.Close()

	return r.collectBills(rows)
}

// LockUnpaidForSettlement acquires row locks on the unit's outstanding bills
// so concurrent settlements for the same unit serialize on the database.
// Must run inside a transaction obtained via WithTx.
func (r *BillRepository) LockUnpaidForSettlement(ctx context.Context, unitID uuid.UUID) ([]*billing.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE unit_id = $1 AND status != $2
		ORDER BY due_date ASC, group_key ASC, id ASC
		FOR UPDATE
	`

	rows, err := r.querier.Query(ctx, query, unitID, billing.StatusPaid)
	if err != nil {
		r.logger.Error("Failed to lock bills for settlement", "unit_id", unitID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock bills for settlement: %w", err)
	}
	defer rows.Close()

	return r.collectBills(rows)
}

// RecordPayment persists the paid amounts and status of a settled bill
func (r *BillRepository) RecordPayment(ctx context.Context, bill *billing.Bill) error {
	query := `
		UPDATE bills
		SET base_paid = $1, penalty_paid = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		bill.BasePaid,
		bill.PenaltyPaid,
		bill.Status,
		bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		r.logger.Error("Failed to record bill payment", "id", bill.ID.String(), "error", err)
		return fmt.Errorf("failed to record bill payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return billing.ErrBillNotFound{BillID: bill.ID}
	}

	return nil
}

func (r *BillRepository) scanBill(row pgx.Row) (*billing.Bill, error) {
	var bill billing.Bill
	err := row.Scan(
		&bill.ID,
		&bill.UnitID,
		&bill.Period,
		&bill.DueDate,
		&bill.GroupKey,
		&bill.BaseAmount,
		&bill.BasePaid,
		&bill.PenaltyPaid,
		&bill.PenaltyRate,
		&bill.GracePeriodDays,
		&bill.Status,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *BillRepository) collectBills(rows pgx.Rows) ([]*billing.Bill, error) {
	var bills []*billing.Bill
	for rows.Next() {
		bill, err := r.scanBill(rows)
		if err != nil {
			r.logger.Error("Failed to scan bill", "error", err)
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over bills", "error", err)
		return nil, fmt.Errorf("error iterating over bills: %w", err)
	}

	return bills, nil
}
