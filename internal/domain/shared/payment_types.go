package shared

// PaymentStatus defines settlement processing states
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSettled    PaymentStatus = "SETTLED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// FailureReason defines settlement failure categories
type FailureReason string

const (
	FailureReasonUnitNotFound       FailureReason = "UNIT_NOT_FOUND"
	FailureReasonInvalidAmount      FailureReason = "INVALID_AMOUNT"
	FailureReasonInvalidBills       FailureReason = "INVALID_BILLS"
	FailureReasonInsufficientCredit FailureReason = "INSUFFICIENT_CREDIT"
	FailureReasonCommitFailed       FailureReason = "SETTLEMENT_COMMIT_FAILED"
	FailureReasonUnknownError       FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines audit-record publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
