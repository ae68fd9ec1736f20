// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the settlement core.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/platform/persistence"
)

// UnitRepository implements the billing.UnitRepository interface for PostgreSQL
type UnitRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewUnitRepository creates a new PostgreSQL unit repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewUnitRepository(logger *slog.Logger, db *persistence.PostgresDB) billing.UnitRepository {
	return &UnitRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *UnitRepository) WithTx(tx pgx.Tx) billing.UnitRepository {
	return &UnitRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new billing unit in the database
func (r *UnitRepository) Create(ctx context.Context, unit *billing.Unit) error {
	query := `
		INSERT INTO units (id, tenant_code, name, owner_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		unit.ID,
		unit.TenantCode,
		unit.Name,
		unit.OwnerName,
		unit.CreatedAt,
		unit.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create unit", "error", err)
		return fmt.Errorf("failed to create unit: %w", err)
	}

	return nil
}

// GetByID retrieves a billing unit by its ID
func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*billing.Unit, error) {
	query := `
		SELECT id, tenant_code, name, owner_name, created_at, updated_at
		FROM units
		WHERE id = $1
	`

	var unit billing.Unit
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.TenantCode,
		&unit.Name,
		&unit.OwnerName,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrUnitNotFound{UnitID: id}
		}
		r.logger.Error("Failed to get unit", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	return &unit, nil
}
