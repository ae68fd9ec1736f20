// Package creditledger implements the event-sourced credit balance of a
// billing unit. The balance is a pure projection over an append-only list of
// signed entries; every operation here takes a history snapshot by value and
// returns fresh slices, leaving persistence and atomicity to the caller.
package creditledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Balance projects the unit's current balance as a pure sum over the
// history. Safe to call with a nil or empty history.
func Balance(history []Entry) int64 {
	var total int64
	for _, e := range history {
		total += e.Amount
	}
	return total
}

// AppendParams carries the fields of a new journal entry. Timestamp may be
// zero, in which case "now" is used.
type AppendParams struct {
	UnitID        uuid.UUID
	Amount        int64
	Timestamp     time.Time
	TransactionID *uuid.UUID
	Type          EntryType
	Source        string
	Notes         string
}

// Append constructs a new entry and returns it with the extended history.
// The append is rejected whole with ErrInsufficientBalance when it would
// drive the projected balance negative, unless the entry is an explicit
// adjustment (the administrative escape hatch). The input history is never
// modified.
func Append(history []Entry, p AppendParams) (Entry, []Entry, error) {
	if !validEntryTypes[p.Type] {
		return Entry{}, nil, ErrInvalidEntryType
	}

	balance := Balance(history)
	if p.Type != EntryTypeAdjustment && balance+p.Amount < 0 {
		return Entry{}, nil, ErrInsufficientBalance{Balance: balance, Attempted: p.Amount}
	}

	entry := Entry{
		ID:            uuid.New(),
		UnitID:        p.UnitID,
		Amount:        p.Amount,
		Timestamp:     CanonicalTimestamp(p.Timestamp),
		TransactionID: p.TransactionID,
		Type:          p.Type,
		Source:        p.Source,
		Notes:         p.Notes,
	}

	next := make([]Entry, 0, len(history)+1)
	next = append(next, history...)
	next = append(next, entry)
	return entry, next, nil
}

// DeleteByTransactionID filters out every entry linked to the given
// transaction. The new balance is simply Balance(filtered): nothing but the
// raw list is ever trusted, so no reversal bookkeeping exists.
func DeleteByTransactionID(history []Entry, transactionID uuid.UUID) []Entry {
	filtered := make([]Entry, 0, len(history))
	for _, e := range history {
		if e.TransactionID != nil && *e.TransactionID == transactionID {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// DeleteByEntryID filters out the entry with the given id.
func DeleteByEntryID(history []Entry, entryID uuid.UUID) []Entry {
	filtered := make([]Entry, 0, len(history))
	for _, e := range history {
		if e.ID == entryID {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// UpdateFields carries the mutable fields of an existing entry. Nil pointers
// leave the corresponding field untouched.
type UpdateFields struct {
	Amount    *int64
	Timestamp *time.Time
	Notes     *string
	Source    *string
}

// Update replaces an entry's mutable fields and re-sorts the history
// ascending by timestamp so projections and "last entry" bookkeeping stay
// readable. The sum is order-independent, so the balance before and after
// the resort is identical by construction. Returns ErrEntryNotFound when the
// id is absent.
func Update(history []Entry, entryID uuid.UUID, fields UpdateFields) ([]Entry, error) {
	updated := make([]Entry, len(history))
	copy(updated, history)

	found := false
	for i := range updated {
		if updated[i].ID != entryID {
			continue
		}
		found = true
		if fields.Amount != nil {
			updated[i].Amount = *fields.Amount
		}
		if fields.Timestamp != nil {
			updated[i].Timestamp = CanonicalTimestamp(*fields.Timestamp)
		}
		if fields.Notes != nil {
			updated[i].Notes = *fields.Notes
		}
		if fields.Source != nil {
			updated[i].Source = *fields.Source
		}
		break
	}
	if !found {
		return nil, ErrEntryNotFound{EntryID: entryID}
	}

	Sort(updated)
	return updated, nil
}

// Sort orders a history ascending by timestamp in place. Entries sharing a
// timestamp keep a stable order.
func Sort(history []Entry) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})
}

// Rollover archives the full history at year end and seeds the fresh journal
// with a single starting_balance entry equal to the closing balance. The
// archived slice is the caller's to persist; the fresh slice replaces the
// unit's live history.
func Rollover(history []Entry, unitID uuid.UUID, closedAt time.Time) (archived []Entry, fresh []Entry) {
	seed := Entry{
		ID:        uuid.New(),
		UnitID:    unitID,
		Amount:    Balance(history),
		Timestamp: CanonicalTimestamp(closedAt),
		Type:      EntryTypeStartingBalance,
		Source:    "rollover",
		Notes:     "carried forward from prior year",
	}

	archived = make([]Entry, len(history))
	copy(archived, history)
	return archived, []Entry{seed}
}
