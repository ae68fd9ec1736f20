package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyUnitName     = errors.New("unit name cannot be empty")
	ErrEmptyTenantCode   = errors.New("tenant code cannot be empty")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrInvalidRate       = errors.New("penalty rate must be in [0, 1)")
	ErrInvalidGraceDays  = errors.New("grace period days must not be negative")
	ErrMissingDueDate    = errors.New("due date is required")
	ErrPaymentExceedsDue = errors.New("payment exceeds the amount owed")
)

// Unit represents one billing unit (an apartment, lot, or office) inside a
// tenant's property. The unit's credit balance is never stored here; it is
// always projected from the credit ledger history.
type Unit struct {
	ID         uuid.UUID `json:"id"`
	TenantCode string    `json:"tenant_code"`
	Name       string    `json:"name"`
	OwnerName  string    `json:"owner_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUnit creates a new billing unit with the given parameters
func NewUnit(tenantCode, name, ownerName string) (*Unit, error) {
	if tenantCode == "" {
		return nil, ErrEmptyTenantCode
	}
	if name == "" {
		return nil, ErrEmptyUnitName
	}

	now := time.Now()
	return &Unit{
		ID:         uuid.New(),
		TenantCode: tenantCode,
		Name:       name,
		OwnerName:  ownerName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
