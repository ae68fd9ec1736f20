package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/mlandesman/SAMS-sub008/internal/platform/persistence"
)

type ProcessingServiceImpl struct {
	pgDB              *persistence.PostgresDB
	validator         PaymentValidator
	settlementManager SettlementManager
	outboxManager     OutboxManager
	failureRecorder   FailureRecorder
	logger            *slog.Logger
}

func NewProcessingService(
	pgDB *persistence.PostgresDB,
	validator PaymentValidator,
	settlementManager SettlementManager,
	outboxManager OutboxManager,
	failureRecorder FailureRecorder,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		pgDB:              pgDB,
		validator:         validator,
		settlementManager: settlementManager,
		outboxManager:     outboxManager,
		failureRecorder:   failureRecorder,
		logger:            logger,
	}
}

// ProcessPayment handles the core logic for settling a payment.
func (s *ProcessingServiceImpl) ProcessPayment(ctx context.Context, request *shared.PaymentRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing payment", "transaction_id", request.TransactionID.String(), "unit_id", request.UnitID.String())

	// 1. Validate the payment request
	if err := s.validator.Validate(ctx, request); err != nil {
		logger.Error("Payment validation failed", "transaction_id", request.TransactionID.String(), "error", err)

		// Record the failure based on the specific error
		var failureReason string
		if errors.Is(err, shared.ErrInvalidGroupPolicy) || errors.Is(err, shared.ErrMissingPaymentDate) {
			failureReason = string(shared.FailureReasonUnknownError)
		} else {
			failureReason = string(shared.FailureReasonInvalidAmount)
		}

		if recordErr := s.failureRecorder.RecordFailure(ctx, request, failureReason); recordErr != nil {
			logger.Error("Failed to record payment failure", "transaction_id", request.TransactionID.String(), "error", recordErr)
		}

		return nil // Return nil to Kafka consumer to acknowledge the message
	}

	// 2. Check idempotency
	skip, err := s.validator.CheckIdempotency(ctx, request)
	if err != nil {
		return err // Let Kafka retry
	}
	if skip {
		return nil // Already settled, return success
	}

	// 3. Begin database transaction
	var tx pgx.Tx
	tx, err = s.pgDB.Pool().Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin database transaction", "transaction_id", request.TransactionID.String(), "error", err)
		return fmt.Errorf("failed to begin DB transaction for %s: %w", request.TransactionID.String(), err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back transaction", "panic", p, "transaction_id", request.TransactionID.String())
			_ = tx.Rollback(ctx)
			panic(p) // Re-panic
		} else if err != nil {
			logger.Error("Error occurred, rolling back transaction", "error", err, "transaction_id", request.TransactionID.String())
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error("Failed to rollback transaction after error", "rollback_error", rbErr, "original_error", err, "transaction_id", request.TransactionID.String())
			}
		}
	}()

	// 4. Lock the unit's bills and run the allocation
	result, err := s.settlementManager.Settle(ctx, tx, request)
	if err != nil {
		// Handle deterministic business errors: record the failure and
		// acknowledge the message, retrying cannot change the outcome
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			if recordErr := s.failureRecorder.RecordFailure(ctx, request, string(shared.FailureReasonUnitNotFound)); recordErr != nil {
				logger.Error("Failed to record unit not found failure", "transaction_id", request.TransactionID.String(), "error", recordErr)
			}
			return nil // Return nil to Kafka consumer
		} else if errors.Is(err, settlement.ErrValidation{}) {
			if recordErr := s.failureRecorder.RecordFailure(ctx, request, string(shared.FailureReasonInvalidBills)); recordErr != nil {
				logger.Error("Failed to record invalid bills failure", "transaction_id", request.TransactionID.String(), "error", recordErr)
			}
			return nil // Return nil to Kafka consumer
		} else if errors.Is(err, shared.AmountRangeError{}) {
			if recordErr := s.failureRecorder.RecordFailure(ctx, request, string(shared.FailureReasonInvalidAmount)); recordErr != nil {
				logger.Error("Failed to record amount range failure", "transaction_id", request.TransactionID.String(), "error", recordErr)
			}
			return nil // Return nil to Kafka consumer
		}

		// For other errors, let them propagate for retry
		return err
	}

	// 5. Stage the settled audit record in the outbox
	if err = s.outboxManager.CreateOutboxEntry(ctx, tx, request, result); err != nil {
		return err // Let the defer handle rollback
	}

	// 6. Commit transaction
	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit database transaction",
			"req_id", request.TransactionID.String(),
			"unit_id", request.UnitID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to commit DB transaction for tx %s: %w", request.TransactionID.String(), err)
	}

	logger.Info("Settlement committed",
		"req_id", request.TransactionID.String(),
		"unit_id", request.UnitID.String(),
		"bills_paid", len(result.BillPayments),
		"total_applied", result.TotalApplied,
		"new_credit_balance", result.NewCreditBalance,
	)
	return nil // SUCCESS!
}
