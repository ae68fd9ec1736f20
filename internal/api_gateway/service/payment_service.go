package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/mlandesman/SAMS-sub008/internal/platform/messaging/producers"
)

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	auditRepo  audit.Repository
	producer   producers.MessagePublisher
	unitRepo   billing.UnitRepository
	billRepo   billing.BillRepository
	ledgerRepo creditledger.Repository
	penalty    *settlement.PenaltyCalculator
	allocator  *settlement.Allocator
	logger     *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(logger *slog.Logger, auditRepo audit.Repository, producer producers.MessagePublisher, unitRepo billing.UnitRepository, billRepo billing.BillRepository, ledgerRepo creditledger.Repository) PaymentService {
	return &PaymentServiceImpl{
		auditRepo:  auditRepo,
		producer:   producer,
		unitRepo:   unitRepo,
		billRepo:   billRepo,
		ledgerRepo: ledgerRepo,
		penalty:    settlement.NewPenaltyCalculator(),
		allocator:  settlement.NewAllocator(),
		logger:     logger,
	}
}

// SubmitPayment queues a payment request for asynchronous settlement,
// supporting idempotency via idempotencyKey.
// Returns transaction ID, existing audit record (if found via idempotencyKey),
// and any error
func (s *PaymentServiceImpl) SubmitPayment(ctx context.Context, paymentRequest *shared.PaymentRequest) (string, *audit.Record, error) {
	idempotencyKey := paymentRequest.IdempotencyKey

	if idempotencyKey != "" {
		existingRecord, err := s.auditRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			s.logger.Error("Failed to check for existing payment with idempotency key",
				"idempotency_key", idempotencyKey,
				"error", err,
			)
			return "", nil, err
		}

		if existingRecord != nil {
			s.logger.Info("Found existing payment with idempotency key",
				"idempotency_key", idempotencyKey,
				"transaction_id", existingRecord.TransactionID,
				"status", string(existingRecord.Status),
			)
			return existingRecord.TransactionID.String(), existingRecord, nil
		}
	}

	key := paymentRequest.TransactionID.String()
	if err := s.producer.Publish(ctx, key, paymentRequest); err != nil {
		s.logger.Error("Failed to publish payment request",
			"unit_id", paymentRequest.UnitID,
			"amount", paymentRequest.Amount,
			"error", err,
		)
		return "", nil, err
	}

	s.logger.Info("Payment request published",
		"transaction_id", paymentRequest.TransactionID,
		"unit_id", paymentRequest.UnitID,
		"amount", paymentRequest.Amount,
	)

	return paymentRequest.TransactionID.String(), nil, nil
}

// GetPaymentByID retrieves a settlement audit record by transaction ID.
// Returns nil if not found
func (s *PaymentServiceImpl) GetPaymentByID(ctx context.Context, transactionID uuid.UUID) (*audit.Record, error) {
	res, err := s.auditRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		var errRecordNotFound audit.ErrRecordNotFound
		if errors.As(err, &errRecordNotFound) {
			s.logger.Info("Payment not found", "transaction_id", transactionID.String())
			return nil, nil
		}
		s.logger.Error("Failed to get payment by ID", "transaction_id", transactionID.String(), "error", err)
		return nil, err
	}
	return res, nil
}

// GetPaymentsByUnitID retrieves paginated settlement history for a unit
// Returns records, total count, and any error
func (s *PaymentServiceImpl) GetPaymentsByUnitID(ctx context.Context, unitID uuid.UUID, page, perPage int) ([]*audit.Record, int64, error) {
	offset := (page - 1) * perPage

	records, err := s.auditRepo.GetByUnitID(ctx, unitID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.auditRepo.CountByUnitID(ctx, unitID)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// PreviewSettlement runs penalty evaluation and allocation against the unit's
// current state without persisting anything. The preview uses the same code
// path the processor commits with, so the numbers shown are the numbers a
// real payment would produce.
func (s *PaymentServiceImpl) PreviewSettlement(ctx context.Context, unitID uuid.UUID, amount int64, paymentDate time.Time, policy settlement.GroupPolicy) (*settlement.AllocationResult, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	bills, err := s.billRepo.ListUnpaidByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	history, err := s.ledgerRepo.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	penalties, err := s.penalty.Evaluate(bills, paymentDate)
	if err != nil {
		return nil, err
	}

	return s.allocator.Allocate(&settlement.AllocationRequest{
		UnitID:               unitID,
		TransactionID:        uuid.New(),
		Bills:                bills,
		Penalties:            penalties,
		PaymentAmount:        amount,
		CurrentCreditBalance: creditledger.Balance(history),
		PaymentDate:          paymentDate,
		Policy:               policy,
	})
}
