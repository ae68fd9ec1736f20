package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/outbox"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// AuditPublisher publishes outbox messages to the settlement audit log
type AuditPublisher interface {
	PublishToAuditLog(ctx context.Context, message *outbox.Message) error
}

// AuditPublisherImpl implements AuditPublisher
type AuditPublisherImpl struct {
	outboxRepo outbox.Repository
	auditRepo  audit.Repository
	logger     *slog.Logger
}

// NewAuditPublisher creates a new publisher
func NewAuditPublisher(
	outboxRepo outbox.Repository,
	auditRepo audit.Repository,
	logger *slog.Logger,
) AuditPublisher {
	return &AuditPublisherImpl{
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// PublishToAuditLog processes and publishes a message to the audit log
func (p *AuditPublisherImpl) PublishToAuditLog(ctx context.Context, message *outbox.Message) error {
	var recordToPublish audit.Record
	if err := json.Unmarshal(message.Payload, &recordToPublish); err != nil {
		p.logger.Error("Failed to unmarshal audit record from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if recordToPublish.CorrelationID != "" {
		logger = p.logger.With("correlation_id", recordToPublish.CorrelationID)
	}

	logger.Info("Attempting to publish outbox message to audit log", "outbox_id", message.ID, "transaction_id", message.TransactionID)

	recordToPublish.Status = shared.PaymentStatusSettled
	now := time.Now().UTC()
	recordToPublish.ProcessedAt = &now

	existingRecord, err := p.auditRepo.GetByTransactionID(ctx, recordToPublish.TransactionID)
	if err != nil && !errors.Is(err, audit.ErrRecordNotFound{}) {
		logger.Error("Failed to check existing audit record before publishing", "transaction_id", recordToPublish.TransactionID, "error", err)
		return fmt.Errorf("failed to check existing audit record %s: %w", recordToPublish.TransactionID, err)
	}

	if existingRecord != nil {
		if existingRecord.Status == shared.PaymentStatusSettled {
			logger.Info("Audit record already SETTLED", "transaction_id", recordToPublish.TransactionID)
		} else {
			// Update existing record status
			err = p.auditRepo.UpdateStatus(ctx, recordToPublish.TransactionID, shared.PaymentStatusSettled, "") // Empty reason for success
			if err != nil {
				logger.Error("Failed to update existing audit record to SETTLED", "transaction_id", recordToPublish.TransactionID, "error", err)
				return fmt.Errorf("failed to update audit record %s to SETTLED: %w", recordToPublish.TransactionID, err)
			}
			logger.Info("Updated existing audit record to SETTLED", "transaction_id", recordToPublish.TransactionID)
		}
	} else {
		// Create new audit record
		err = p.auditRepo.Create(ctx, &recordToPublish) // recordToPublish already has status=SETTLED and ProcessedAt set
		if err != nil {
			logger.Error("Failed to create audit record in MongoDB", "transaction_id", recordToPublish.TransactionID, "error", err)
			return fmt.Errorf("failed to create audit record %s: %w", recordToPublish.TransactionID, err)
		}
		logger.Info("Successfully created audit record in MongoDB", "transaction_id", recordToPublish.TransactionID)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("audit write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Info("Outbox message successfully processed and marked as PROCESSED", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
