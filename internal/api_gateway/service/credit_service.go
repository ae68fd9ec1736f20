package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
)

const adjustmentSource = "credit_admin"

// Transactor runs a function inside one database transaction. Satisfied by
// persistence.PostgresDB.
type Transactor interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// CreditServiceImpl implements the CreditService interface. Every mutation
// runs as one transaction: load the journal, apply the pure ledger
// operation, persist the outcome.
type CreditServiceImpl struct {
	unitRepo   billing.UnitRepository
	ledgerRepo creditledger.Repository
	db         Transactor
	logger     *slog.Logger
}

// NewCreditService creates a new credit administration service
func NewCreditService(logger *slog.Logger, unitRepo billing.UnitRepository, ledgerRepo creditledger.Repository, db Transactor) CreditService {
	return &CreditServiceImpl{
		unitRepo:   unitRepo,
		ledgerRepo: ledgerRepo,
		db:         db,
		logger:     logger,
	}
}

// GetLedger returns the unit's projected balance and full journal
func (s *CreditServiceImpl) GetLedger(ctx context.Context, unitID uuid.UUID) (int64, []creditledger.Entry, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return 0, nil, err
	}

	history, err := s.ledgerRepo.ListByUnit(ctx, unitID)
	if err != nil {
		return 0, nil, err
	}

	return creditledger.Balance(history), history, nil
}

// AddAdjustment appends a manual adjustment entry to the unit's journal
func (s *CreditServiceImpl) AddAdjustment(ctx context.Context, unitID uuid.UUID, amount int64, notes string) (*creditledger.Entry, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	var entry creditledger.Entry
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.ledgerRepo.WithTx(tx)

		history, err := repo.ListByUnit(ctx, unitID)
		if err != nil {
			return err
		}

		appended, _, err := creditledger.Append(history, creditledger.AppendParams{
			UnitID: unitID,
			Amount: amount,
			Type:   creditledger.EntryTypeAdjustment,
			Source: adjustmentSource,
			Notes:  notes,
		})
		if err != nil {
			return err
		}

		entry = appended
		return repo.Insert(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credit adjustment recorded",
		"unit_id", unitID.String(),
		"entry_id", entry.ID.String(),
		"amount", amount,
	)
	return &entry, nil
}

// DeleteByTransactionID removes every journal entry linked to a transaction
func (s *CreditServiceImpl) DeleteByTransactionID(ctx context.Context, unitID, transactionID uuid.UUID) (int64, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return 0, err
	}

	removed, err := s.ledgerRepo.DeleteByTransactionID(ctx, unitID, transactionID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Credit entries removed by transaction",
		"unit_id", unitID.String(),
		"transaction_id", transactionID.String(),
		"removed", removed,
	)
	return removed, nil
}

// UpdateEntry edits an entry's mutable fields through the pure ledger
// operation, then persists the edited entry
func (s *CreditServiceImpl) UpdateEntry(ctx context.Context, unitID, entryID uuid.UUID, fields creditledger.UpdateFields) (*creditledger.Entry, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	var entry creditledger.Entry
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.ledgerRepo.WithTx(tx)

		history, err := repo.ListByUnit(ctx, unitID)
		if err != nil {
			return err
		}

		updated, err := creditledger.Update(history, entryID, fields)
		if err != nil {
			return err
		}

		for i := range updated {
			if updated[i].ID == entryID {
				entry = updated[i]
				break
			}
		}
		return repo.Update(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// Rollover archives the unit's journal and seeds the fresh one with a
// starting_balance entry equal to the closing balance
func (s *CreditServiceImpl) Rollover(ctx context.Context, unitID uuid.UUID, closedAt time.Time) (*creditledger.Entry, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	var seed creditledger.Entry
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.ledgerRepo.WithTx(tx)

		history, err := repo.ListByUnit(ctx, unitID)
		if err != nil {
			return err
		}

		archived, fresh := creditledger.Rollover(history, unitID, closedAt)
		seed = fresh[0]
		return repo.ArchiveAndReset(ctx, unitID, archived, fresh)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credit ledger rolled over",
		"unit_id", unitID.String(),
		"closing_balance", seed.Amount,
	)
	return &seed, nil
}
