package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/outbox"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/mlandesman/SAMS-sub008/internal/payment_processor/service"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry stages the settled audit record for publishing to the
// audit log after the settlement transaction commits
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *shared.PaymentRequest, result *settlement.AllocationResult) error {
	logger := m.logger
	if request.CorrelationID != "" {
		logger = m.logger.With("correlation_id", request.CorrelationID)
	}

	outboxRepoTx := m.outboxRepo.WithTx(tx)

	record := audit.NewSettledRecord(request, result)

	outboxMessage, err := outbox.NewMessage(record)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"req_id", request.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for tx %s: %w", request.TransactionID.String(), err)
	}

	if err = outboxRepoTx.Create(ctx, outboxMessage); err != nil {
		logger.Error("Failed to create outbox message",
			"req_id", request.TransactionID.String(),
			"unit_id", request.UnitID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for tx %s: %w", request.TransactionID.String(), err)
	}
	logger.Info("Outbox message created successfully",
		"req_id", request.TransactionID.String(),
		"outbox_id", outboxMessage.ID,
	)

	return nil
}
