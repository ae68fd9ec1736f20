package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
)

var billTestColumns = []string{
	"id", "unit_id", "period", "due_date", "group_key",
	"base_amount", "base_paid", "penalty_paid", "penalty_rate",
	"grace_period_days", "status", "created_at", "updated_at",
}

func billRow(b *billing.Bill) []any {
	return []any{
		b.ID, b.UnitID, b.Period, b.DueDate, b.GroupKey,
		b.BaseAmount, b.BasePaid, b.PenaltyPaid, b.PenaltyRate,
		b.GracePeriodDays, b.Status, b.CreatedAt, b.UpdatedAt,
	}
}

func testBill(unitID uuid.UUID, period string, due time.Time) *billing.Bill {
	now := time.Now()
	return &billing.Bill{
		ID:              uuid.New(),
		UnitID:          unitID,
		Period:          period,
		DueDate:         due,
		GroupKey:        "",
		BaseAmount:      1_500_000,
		PenaltyRate:     0.05,
		GracePeriodDays: 30,
		Status:          billing.StatusUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestBillRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BillRepository{querier: mock, logger: logger}
	bill := testBill(uuid.New(), "2026-07", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))

	query := `
		INSERT INTO bills \(id, unit_id, period, due_date, group_key, base_amount, base_paid, penalty_paid, penalty_rate, grace_period_days, status, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11, \$12, \$13\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(bill.ID, bill.UnitID, bill.Period, bill.DueDate, bill.GroupKey, bill.BaseAmount, bill.BasePaid, bill.PenaltyPaid, bill.PenaltyRate, bill.GracePeriodDays, bill.Status, bill.CreatedAt, bill.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, bill)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(bill.ID, bill.UnitID, bill.Period, bill.DueDate, bill.GroupKey, bill.BaseAmount, bill.BasePaid, bill.PenaltyPaid, bill.PenaltyRate, bill.GracePeriodDays, bill.Status, bill.CreatedAt, bill.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, bill)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create bill")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBillRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BillRepository{querier: mock, logger: logger}
	bill := testBill(uuid.New(), "2026-07", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))

	query := `
		SELECT id, unit_id, period, due_date, group_key, base_amount, base_paid, penalty_paid, penalty_rate, grace_period_days, status, created_at, updated_at
		FROM bills
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(billTestColumns).AddRow(billRow(bill)...)
		mock.ExpectQuery(query).WithArgs(bill.ID).WillReturnRows(rows)

		got, err := repo.GetByID(ctx, bill.ID)
		assert.NoError(t, err)
		assert.Equal(t, bill, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(bill.ID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, bill.ID)
		assert.Error(t, err)
		assert.Nil(t, got)
		var notFoundErr billing.ErrBillNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, bill.ID, notFoundErr.BillID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBillRepository_ListUnpaidByUnit(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BillRepository{querier: mock, logger: logger}
	unitID := uuid.New()
	first := testBill(unitID, "2026-06", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	second := testBill(unitID, "2026-07", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))

	query := `
		SELECT id, unit_id, period, due_date, group_key, base_amount, base_paid, penalty_paid, penalty_rate, grace_period_days, status, created_at, updated_at
		FROM bills
		WHERE unit_id = \$1 AND status != \$2
		ORDER BY due_date ASC, group_key ASC, id ASC
	`

	t.Run("success preserves priority order", func(t *testing.T) {
		rows := pgxmock.NewRows(billTestColumns).
			AddRow(billRow(first)...).
			AddRow(billRow(second)...)
		mock.ExpectQuery(query).WithArgs(unitID, billing.StatusPaid).WillReturnRows(rows)

		bills, err := repo.ListUnpaidByUnit(ctx, unitID)
		assert.NoError(t, err)
		require.Len(t, bills, 2)
		assert.Equal(t, first.ID, bills[0].ID)
		assert.Equal(t, second.ID, bills[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no unpaid bills", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(unitID, billing.StatusPaid).
			WillReturnRows(pgxmock.NewRows(billTestColumns))

		bills, err := repo.ListUnpaidByUnit(ctx, unitID)
		assert.NoError(t, err)
		assert.Empty(t, bills)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("query failed")
		mock.ExpectQuery(query).WithArgs(unitID, billing.StatusPaid).WillReturnError(dbErr)

		bills, err := repo.ListUnpaidByUnit(ctx, unitID)
		assert.Error(t, err)
		assert.Nil(t, bills)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBillRepository_LockUnpaidForSettlement(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BillRepository{querier: mock, logger: logger}
	unitID := uuid.New()
	bill := testBill(unitID, "2026-07", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))

	query := `
		SELECT id, unit_id, period, due_date, group_key, base_amount, base_paid, penalty_paid, penalty_rate, grace_period_days, status, created_at, updated_at
		FROM bills
		WHERE unit_id = \$1 AND status != \$2
		ORDER BY due_date ASC, group_key ASC, id ASC
		FOR UPDATE
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(billTestColumns).AddRow(billRow(bill)...)
		mock.ExpectQuery(query).WithArgs(unitID, billing.StatusPaid).WillReturnRows(rows)

		bills, err := repo.LockUnpaidForSettlement(ctx, unitID)
		assert.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, bill.ID, bills[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("lock failed")
		mock.ExpectQuery(query).WithArgs(unitID, billing.StatusPaid).WillReturnError(dbErr)

		bills, err := repo.LockUnpaidForSettlement(ctx, unitID)
		assert.Error(t, err)
		assert.Nil(t, bills)
		assert.Contains(t, err.Error(), "failed to lock bills for settlement")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBillRepository_RecordPayment(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BillRepository{querier: mock, logger: logger}
	bill := testBill(uuid.New(), "2026-07", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	bill.BasePaid = 1_500_000
	bill.PenaltyPaid = 153_750
	bill.Status = billing.StatusPaid

	query := `
		UPDATE bills
		SET base_paid = \$1, penalty_paid = \$2, status = \$3, updated_at = \$4
		WHERE id = \$5
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(bill.BasePaid, bill.PenaltyPaid, bill.Status, bill.UpdatedAt, bill.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.RecordPayment(ctx, bill)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(bill.BasePaid, bill.PenaltyPaid, bill.Status, bill.UpdatedAt, bill.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.RecordPayment(ctx, bill)
		assert.Error(t, err)
		var notFoundErr billing.ErrBillNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, bill.ID, notFoundErr.BillID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
