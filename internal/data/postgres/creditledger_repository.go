package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/platform/persistence"
)

const entryColumns = "id, unit_id, amount, entry_timestamp, transaction_id, entry_type, source, notes"

// CreditLedgerRepository implements the creditledger.Repository interface for
// PostgreSQL. The journal shares a database with the bills so one settlement
// transaction covers both.
type CreditLedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCreditLedgerRepository creates a new PostgreSQL credit ledger repository
func NewCreditLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) creditledger.Repository {
	return &CreditLedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *CreditLedgerRepository) WithTx(tx pgx.Tx) creditledger.Repository {
	return &CreditLedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Insert appends one committed entry to the journal
func (r *CreditLedgerRepository) Insert(ctx context.Context, entry *creditledger.Entry) error {
	query := `
		INSERT INTO credit_ledger_entries (id, unit_id, amount, entry_timestamp, transaction_id, entry_type, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.UnitID,
		entry.Amount,
		entry.Timestamp,
		entry.TransactionID,
		entry.Type,
		entry.Source,
		entry.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to insert ledger entry", "unit_id", entry.UnitID.String(), "error", err)
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return nil
}

// ListByUnit returns the unit's full history ascending by timestamp
func (r *CreditLedgerRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]creditledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM credit_ledger_entries
		WHERE unit_id = $1
		ORDER BY entry_timestamp ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, unitID)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "unit_id", unitID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []creditledger.Entry
	for rows.Next() {
		var entry creditledger.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.UnitID,
			&entry.Amount,
			&entry.Timestamp,
			&entry.TransactionID,
			&entry.Type,
			&entry.Source,
			&entry.Notes,
		)
		if err != nil {
			r.logger.Error("Failed to scan ledger entry", "error", err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger entries", "error", err)
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}

// DeleteByTransactionID removes every entry linked to the transaction and
// returns how many rows were removed. Zero is not an error: a transaction
// that never touched credit has nothing to clean up.
func (r *CreditLedgerRepository) DeleteByTransactionID(ctx context.Context, unitID, transactionID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM credit_ledger_entries
		WHERE unit_id = $1 AND transaction_id = $2
	`

	result, err := r.querier.Exec(ctx, query, unitID, transactionID)
	if err != nil {
		r.logger.Error("Failed to delete ledger entries by transaction",
			"unit_id", unitID.String(),
			"transaction_id", transactionID.String(),
			"error", err,
		)
		return 0, fmt.Errorf("failed to delete ledger entries by transaction: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteByID removes a single entry; creditledger.ErrEntryNotFound when absent
func (r *CreditLedgerRepository) DeleteByID(ctx context.Context, unitID, entryID uuid.UUID) error {
	query := `
		DELETE FROM credit_ledger_entries
		WHERE unit_id = $1 AND id = $2
	`

	result, err := r.querier.Exec(ctx, query, unitID, entryID)
	if err != nil {
		r.logger.Error("Failed to delete ledger entry", "id", entryID.String(), "error", err)
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return creditledger.ErrEntryNotFound{EntryID: entryID}
	}

	return nil
}

// Update persists an edited entry's mutable fields
func (r *CreditLedgerRepository) Update(ctx context.Context, entry *creditledger.Entry) error {
	query := `
		UPDATE credit_ledger_entries
		SET amount = $1, entry_timestamp = $2, source = $3, notes = $4
		WHERE unit_id = $5 AND id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		entry.Amount,
		entry.Timestamp,
		entry.Source,
		entry.Notes,
		entry.UnitID,
		entry.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update ledger entry", "id", entry.ID.String(), "error", err)
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return creditledger.ErrEntryNotFound{EntryID: entry.ID}
	}

	return nil
}

// ArchiveAndReset moves the live journal into the archive table and replaces
// it with the fresh rollover-seeded history. Call inside a transaction; a
// partial archive would otherwise lose entries.
func (r *CreditLedgerRepository) ArchiveAndReset(ctx context.Context, unitID uuid.UUID, archived, fresh []creditledger.Entry) error {
	archiveQuery := `
		INSERT INTO credit_ledger_archive (id, unit_id, amount, entry_timestamp, transaction_id, entry_type, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range archived {
		entry := &archived[i]
		_, err := r.querier.Exec(ctx, archiveQuery,
			entry.ID,
			entry.UnitID,
			entry.Amount,
			entry.Timestamp,
			entry.TransactionID,
			entry.Type,
			entry.Source,
			entry.Notes,
		)
		if err != nil {
			r.logger.Error("Failed to archive ledger entry", "id", entry.ID.String(), "error", err)
			return fmt.Errorf("failed to archive ledger entry: %w", err)
		}
	}

	deleteQuery := `
		DELETE FROM credit_ledger_entries
		WHERE unit_id = $1
	`
	if _, err := r.querier.Exec(ctx, deleteQuery, unitID); err != nil {
		r.logger.Error("Failed to clear ledger for rollover", "unit_id", unitID.String(), "error", err)
		return fmt.Errorf("failed to clear ledger for rollover: %w", err)
	}

	for i := range fresh {
		if err := r.Insert(ctx, &fresh[i]); err != nil {
			return err
		}
	}

	return nil
}
