package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/mlandesman/SAMS-sub008/internal/payment_processor/service"
)

type PaymentValidatorImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

func NewPaymentValidator(auditRepo audit.Repository, logger *slog.Logger) service.PaymentValidator {
	return &PaymentValidatorImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Validate checks payment request validity
func (v *PaymentValidatorImpl) Validate(ctx context.Context, request *shared.PaymentRequest) error {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	if request.Amount <= 0 {
		logger.Error("Invalid amount", "req_id", request.TransactionID.String(), "amount", request.Amount)
		return fmt.Errorf("amount must be positive: %d", request.Amount)
	}

	if request.PaymentDate.IsZero() {
		logger.Error("Missing payment date", "req_id", request.TransactionID.String())
		return shared.ErrMissingPaymentDate
	}

	if _, err := settlement.ParseGroupPolicy(request.GroupPolicy); err != nil {
		logger.Error("Unknown group policy", "req_id", request.TransactionID.String(), "group_policy", request.GroupPolicy)
		return shared.ErrInvalidGroupPolicy
	}

	return nil
}

// CheckIdempotency checks if the payment was already settled
func (v *PaymentValidatorImpl) CheckIdempotency(ctx context.Context, request *shared.PaymentRequest) (bool, error) {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	existingRecord, err := v.auditRepo.GetByTransactionID(ctx, request.TransactionID)
	if err != nil && !errors.Is(err, audit.ErrRecordNotFound{}) {
		logger.Error("Failed to check audit log for idempotency", "transaction_id", request.TransactionID.String(), "error", err)
		return false, fmt.Errorf("idempotency check failed for payment %s: %w", request.TransactionID.String(), err)
	}

	if existingRecord != nil {
		if existingRecord.Status == shared.PaymentStatusSettled || existingRecord.Status == shared.PaymentStatusFailed {
			logger.Info("Payment already processed (idempotency)", "transaction_id", request.TransactionID.String(), "status", existingRecord.Status)
			return true, nil // Skip processing
		}
		logger.Info("Payment found in audit log with non-terminal status, proceeding", "transaction_id", request.TransactionID.String(), "status", existingRecord.Status)
	}

	return false, nil // Continue processing
}
