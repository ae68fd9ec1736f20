package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *billing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*billing.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Unit), args.Error(1)
}

func (m *MockUnitRepository) WithTx(tx pgx.Tx) billing.UnitRepository {
	return m
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) GetByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) ListUnpaidByUnit(ctx context.Context, unitID uuid.UUID) ([]*billing.Bill, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) LockUnpaidForSettlement(ctx context.Context, unitID uuid.UUID) ([]*billing.Bill, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) RecordPayment(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) WithTx(tx pgx.Tx) billing.BillRepository {
	return m
}

type MockCreditLedgerRepository struct {
	mock.Mock
}

func (m *MockCreditLedgerRepository) Insert(ctx context.Context, entry *creditledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCreditLedgerRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]creditledger.Entry, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]creditledger.Entry), args.Error(1)
}

func (m *MockCreditLedgerRepository) DeleteByTransactionID(ctx context.Context, unitID, transactionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, unitID, transactionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditLedgerRepository) DeleteByID(ctx context.Context, unitID, entryID uuid.UUID) error {
	args := m.Called(ctx, unitID, entryID)
	return args.Error(0)
}

func (m *MockCreditLedgerRepository) Update(ctx context.Context, entry *creditledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCreditLedgerRepository) ArchiveAndReset(ctx context.Context, unitID uuid.UUID, archived, fresh []creditledger.Entry) error {
	args := m.Called(ctx, unitID, archived, fresh)
	return args.Error(0)
}

func (m *MockCreditLedgerRepository) WithTx(tx pgx.Tx) creditledger.Repository {
	return m
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, record *audit.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*audit.Record, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Record), args.Error(1)
}

func (m *MockAuditRepository) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*audit.Record, error) {
	args := m.Called(ctx, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Record), args.Error(1)
}

func (m *MockAuditRepository) GetByUnitID(ctx context.Context, unitID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	args := m.Called(ctx, unitID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Record), args.Error(1)
}

func (m *MockAuditRepository) CountByUnitID(ctx context.Context, unitID uuid.UUID) (int64, error) {
	args := m.Called(ctx, unitID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) UpdateStatus(ctx context.Context, transactionID uuid.UUID, status shared.PaymentStatus, reason string) error {
	args := m.Called(ctx, transactionID, status, reason)
	return args.Error(0)
}

type MockMessagingProducer struct {
	mock.Mock
}

func (m *MockMessagingProducer) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagingProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fakeTransactor runs the callback directly; the repository mocks ignore the
// nil transaction handle.
type fakeTransactor struct {
	err error
}

func (f *fakeTransactor) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}
