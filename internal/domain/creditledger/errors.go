package creditledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidEntryType = errors.New("invalid credit ledger entry type")

// ErrInsufficientBalance indicates an append that would drive the projected
// balance negative without an adjustment override.
type ErrInsufficientBalance struct {
	Balance   int64
	Attempted int64
}

func (e ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("insufficient credit balance: have %d, attempted %d", e.Balance, e.Attempted)
}

// Is implements the errors.Is interface for ErrInsufficientBalance
func (e ErrInsufficientBalance) Is(target error) bool {
	_, ok := target.(ErrInsufficientBalance)
	return ok
}

// ErrEntryNotFound indicates a missing ledger entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "credit ledger entry not found: " + e.EntryID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}
