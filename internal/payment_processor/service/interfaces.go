package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// ProcessingService defines the interface for processing payment requests.
type ProcessingService interface {
	ProcessPayment(ctx context.Context, request *shared.PaymentRequest) error
}

// PaymentValidator validates payment requests before settlement
type PaymentValidator interface {
	Validate(ctx context.Context, request *shared.PaymentRequest) error
	CheckIdempotency(ctx context.Context, request *shared.PaymentRequest) (bool, error)
}

// SettlementManager runs the locked read-compute-commit settlement cycle
// inside the caller's database transaction
type SettlementManager interface {
	Settle(ctx context.Context, tx pgx.Tx, request *shared.PaymentRequest) (*settlement.AllocationResult, error)
}

// OutboxManager stages the settled audit record for reliable publishing
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *shared.PaymentRequest, result *settlement.AllocationResult) error
}

// FailureRecorder handles recording failed settlements
type FailureRecorder interface {
	RecordFailure(ctx context.Context, request *shared.PaymentRequest, failureReason string) error
}
