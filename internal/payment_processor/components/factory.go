package components

import (
	"log/slog"

	"github.com/mlandesman/SAMS-sub008/internal/config"
	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/domain/outbox"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/payment_processor/service"
	"github.com/mlandesman/SAMS-sub008/internal/platform/persistence"
)

// CreateProcessingService creates a new ProcessingService with all its dependencies.
func CreateProcessingService(
	pgDB *persistence.PostgresDB,
	unitRepo billing.UnitRepository,
	billRepo billing.BillRepository,
	ledgerRepo creditledger.Repository,
	outboxRepo outbox.Repository,
	auditRepo audit.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	// The policy string was validated at config load time
	defaultPolicy, _ := settlement.ParseGroupPolicy(cfg.Settlement.DefaultGroupPolicy)

	validator := NewPaymentValidator(auditRepo, logger)
	settlementManager := NewSettlementManager(unitRepo, billRepo, ledgerRepo, defaultPolicy, logger)
	outboxManager := NewOutboxManager(outboxRepo, logger)
	failureRecorder := NewFailureRecorder(auditRepo, logger)

	baseService := service.NewProcessingService(
		pgDB,
		validator,
		settlementManager,
		outboxManager,
		failureRecorder,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
