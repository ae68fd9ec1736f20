package creditledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryType classifies a credit ledger entry
type EntryType string

const (
	EntryTypeStartingBalance EntryType = "starting_balance"
	EntryTypeCreditAdded     EntryType = "credit_added"
	EntryTypeCreditUsed      EntryType = "credit_used"
	EntryTypeAdjustment      EntryType = "adjustment"
)

// validEntryTypes guards against typo'd types reaching the journal
var validEntryTypes = map[EntryType]bool{
	EntryTypeStartingBalance: true,
	EntryTypeCreditAdded:     true,
	EntryTypeCreditUsed:      true,
	EntryTypeAdjustment:      true,
}

// Entry is one immutable fact in a unit's append-only credit journal.
// Amount is signed centavos: positive adds credit, negative uses it.
// The unit's balance is defined as the sum of its history and is never
// stored anywhere.
type Entry struct {
	ID            uuid.UUID  `json:"id"`
	UnitID        uuid.UUID  `json:"unit_id"`
	Amount        int64      `json:"amount"`
	Timestamp     time.Time  `json:"timestamp"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	Type          EntryType  `json:"type"`
	Source        string     `json:"source"` // origin module tag, e.g. "payment_processor"
	Notes         string     `json:"notes,omitempty"`
}

// CanonicalTimestamp normalizes an instant to the one representation used
// throughout the journal: UTC, millisecond precision. A zero input means
// "now". Mixed representations made sorts ambiguous in the past, so every
// entry passes through here at construction time.
func CanonicalTimestamp(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Millisecond)
}
