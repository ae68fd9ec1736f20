package creditledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists a unit's credit journal. The journal lives in the same
// database as the bills so a settlement's bill updates and ledger appends
// commit as one transaction.
type Repository interface {
	// Insert appends one committed entry to the journal
	Insert(ctx context.Context, entry *Entry) error

	// ListByUnit returns the unit's full history ascending by timestamp
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]Entry, error)

	// DeleteByTransactionID removes every entry linked to the transaction
	// and returns how many rows were removed
	DeleteByTransactionID(ctx context.Context, unitID, transactionID uuid.UUID) (int64, error)

	// DeleteByID removes a single entry; ErrEntryNotFound when absent
	DeleteByID(ctx context.Context, unitID, entryID uuid.UUID) error

	// Update persists an edited entry's mutable fields
	Update(ctx context.Context, entry *Entry) error

	// ArchiveAndReset moves the live journal into the archive table and
	// replaces it with the fresh (rollover-seeded) history
	ArchiveAndReset(ctx context.Context, unitID uuid.UUID, archived, fresh []Entry) error

	WithTx(tx pgx.Tx) Repository
}
