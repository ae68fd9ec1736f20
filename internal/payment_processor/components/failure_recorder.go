package components

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/mlandesman/SAMS-sub008/internal/payment_processor/service"
)

type FailureRecorderImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

func NewFailureRecorder(auditRepo audit.Repository, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// RecordFailure records a failed settlement in the audit log
func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, request *shared.PaymentRequest, failureReason string) error {
	logger := r.logger
	if request.CorrelationID != "" {
		logger = r.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Recording failed settlement", "transaction_id", request.TransactionID.String(), "reason", failureReason)

	existingRecord, err := r.auditRepo.GetByTransactionID(ctx, request.TransactionID)
	if err != nil && !errors.Is(err, audit.ErrRecordNotFound{}) {
		logger.Error("Failed to get existing audit record for failed settlement", "transaction_id", request.TransactionID.String(), "error", err)
	}

	if existingRecord != nil {
		if existingRecord.Status != shared.PaymentStatusFailed {
			logger.Info("Updating existing audit record to FAILED", "transaction_id", request.TransactionID.String())
			updateErr := r.auditRepo.UpdateStatus(ctx, request.TransactionID, shared.PaymentStatusFailed, failureReason)
			if updateErr != nil {
				logger.Error("Failed to update audit record to FAILED", "transaction_id", request.TransactionID.String(), "error", updateErr)
				return updateErr
			}
			logger.Info("Successfully updated audit record to FAILED", "transaction_id", request.TransactionID.String())
			return nil
		}
		logger.Info("Audit record already marked as FAILED", "transaction_id", request.TransactionID.String())
		return nil
	}

	logger.Info("Creating new FAILED audit record", "transaction_id", request.TransactionID.String())
	record := audit.NewFailedRecord(request, failureReason)
	createErr := r.auditRepo.Create(ctx, record)
	if createErr != nil {
		logger.Error("Failed to create FAILED audit record", "transaction_id", request.TransactionID.String(), "error", createErr)
		return createErr
	}
	logger.Info("Successfully created FAILED audit record", "transaction_id", request.TransactionID.String())
	return nil
}
