package handler

// Amounts in request and response DTOs are major units (pesos); conversion
// to integer centavos happens once, in the handlers, via shared.ToCentavos.

// CreateUnitRequest represents a request to register a new billing unit
type CreateUnitRequest struct {
	TenantCode string `json:"tenant_code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	OwnerName  string `json:"owner_name" binding:"required"`
}

// UnitResponse represents a billing unit in API responses
type UnitResponse struct {
	ID         string `json:"id"`
	TenantCode string `json:"tenant_code"`
	Name       string `json:"name"`
	OwnerName  string `json:"owner_name"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// CreateBillRequest represents a request to create a bill for a unit
type CreateBillRequest struct {
	Period          string  `json:"period" binding:"required"`
	DueDate         string  `json:"due_date" binding:"required"` // YYYY-MM-DD
	GroupKey        string  `json:"group_key,omitempty"`
	BaseAmount      float64 `json:"base_amount" binding:"required,gt=0"`
	PenaltyRate     float64 `json:"penalty_rate" binding:"min=0,lt=1"`
	GracePeriodDays int     `json:"grace_period_days" binding:"min=0"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID              string  `json:"id"`
	UnitID          string  `json:"unit_id"`
	Period          string  `json:"period"`
	DueDate         string  `json:"due_date"`
	GroupKey        string  `json:"group_key,omitempty"`
	BaseAmount      float64 `json:"base_amount"`
	BasePaid        float64 `json:"base_paid"`
	PenaltyPaid     float64 `json:"penalty_paid"`
	PenaltyDue      float64 `json:"penalty_due"`
	PenaltyRate     float64 `json:"penalty_rate"`
	GracePeriodDays int     `json:"grace_period_days"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// SubmitPaymentRequest represents a payment submitted for settlement
type SubmitPaymentRequest struct {
	UnitID         string  `json:"unit_id" binding:"required,uuid"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	PaymentDate    string  `json:"payment_date" binding:"required"` // YYYY-MM-DD
	GroupPolicy    string  `json:"group_policy,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// PaymentResponse represents a settlement audit record in API responses
type PaymentResponse struct {
	TransactionID      string                `json:"transaction_id"`
	UnitID             string                `json:"unit_id"`
	Amount             float64               `json:"amount"`
	PaymentDate        string                `json:"payment_date"`
	GroupPolicy        string                `json:"group_policy,omitempty"`
	Status             string                `json:"status"`
	FailureReason      string                `json:"failure_reason,omitempty"`
	BillPayments       []BillPaymentResponse `json:"bill_payments,omitempty"`
	TotalBaseCharges   float64               `json:"total_base_charges"`
	TotalPenalties     float64               `json:"total_penalties"`
	TotalApplied       float64               `json:"total_applied"`
	CreditUsed         float64               `json:"credit_used"`
	Overpayment        float64               `json:"overpayment"`
	CreditBalanceAfter float64               `json:"credit_balance_after"`
	Summary            string                `json:"summary,omitempty"`
	CreatedAt          string                `json:"created_at"`
	ProcessedAt        string                `json:"processed_at,omitempty"`
}

// BillPaymentResponse represents one bill's share of a settlement
type BillPaymentResponse struct {
	BillID         string  `json:"bill_id"`
	Period         string  `json:"period"`
	AmountPaid     float64 `json:"amount_paid"`
	BaseChargePaid float64 `json:"base_charge_paid"`
	PenaltyPaid    float64 `json:"penalty_paid"`
	NewStatus      string  `json:"new_status"`
}

// SettlementPreviewResponse represents a dry-run allocation against the
// unit's current state; nothing is persisted.
type SettlementPreviewResponse struct {
	UnitID           string                `json:"unit_id"`
	PaymentAmount    float64               `json:"payment_amount"`
	BillPayments     []BillPaymentResponse `json:"bill_payments"`
	TotalBaseCharges float64               `json:"total_base_charges"`
	TotalPenalties   float64               `json:"total_penalties"`
	TotalApplied     float64               `json:"total_applied"`
	CreditUsed       float64               `json:"credit_used"`
	Overpayment      float64               `json:"overpayment"`
	CreditBalance    float64               `json:"credit_balance"`
	NewCreditBalance float64               `json:"new_credit_balance"`
	TotalBillsDue    float64               `json:"total_bills_due"`
}

// CreditLedgerResponse represents a unit's credit balance and journal
type CreditLedgerResponse struct {
	UnitID  string                `json:"unit_id"`
	Balance float64               `json:"balance"`
	Entries []CreditEntryResponse `json:"entries"`
}

// CreditEntryResponse represents one credit journal entry
type CreditEntryResponse struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Timestamp     string  `json:"timestamp"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Type          string  `json:"type"`
	Source        string  `json:"source"`
	Notes         string  `json:"notes,omitempty"`
}

// CreateAdjustmentRequest represents a manual credit adjustment, the
// administrative escape hatch that may drive the balance negative.
type CreateAdjustmentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Notes  string  `json:"notes" binding:"required"`
}

// UpdateCreditEntryRequest represents an edit to an existing journal entry.
// Omitted fields stay untouched.
type UpdateCreditEntryRequest struct {
	Amount    *float64 `json:"amount,omitempty"`
	Timestamp *string  `json:"timestamp,omitempty"` // RFC3339
	Notes     *string  `json:"notes,omitempty"`
	Source    *string  `json:"source,omitempty"`
}

// RolloverRequest closes a unit's credit journal at year end
type RolloverRequest struct {
	ClosedAt string `json:"closed_at,omitempty"` // YYYY-MM-DD, defaults to today
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
