package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidGroupPolicy = errors.New("invalid group policy")
	ErrMissingPaymentDate = errors.New("payment date is required")
)

// PaymentRequest defines a Kafka message asking the processor to settle a
// payment against a unit's outstanding bills. Amount is in centavos; the
// pesos-to-centavos conversion already happened at the API boundary.
type PaymentRequest struct {
	TransactionID  uuid.UUID `json:"transaction_id"`
	UnitID         uuid.UUID `json:"unit_id"`
	Amount         int64     `json:"amount"`
	PaymentDate    time.Time `json:"payment_date"`
	GroupPolicy    string    `json:"group_policy,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CorrelationID  string    `json:"correlation_id"`
	Timestamp      time.Time `json:"timestamp"`
}
