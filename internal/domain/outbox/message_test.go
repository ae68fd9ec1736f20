package outbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledRecord(t *testing.T) *audit.Record {
	t.Helper()
	req := &shared.PaymentRequest{
		TransactionID: uuid.New(),
		UnitID:        uuid.New(),
		Amount:        150_000,
		PaymentDate:   time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		CorrelationID: "corr-123",
		Timestamp:     time.Now(),
	}
	result := &settlement.AllocationResult{
		UnitID:        req.UnitID,
		TransactionID: req.TransactionID,
		TotalApplied:  150_000,
	}
	return audit.NewSettledRecord(req, result)
}

func TestNewMessage(t *testing.T) {
	record := settledRecord(t)

	msg, err := NewMessage(record)
	require.NoError(t, err)

	assert.Equal(t, record.TransactionID, msg.TransactionID)
	assert.Equal(t, record.UnitID, msg.UnitID)
	assert.Equal(t, shared.OutboxStatusPending, msg.Status)
	assert.Equal(t, 0, msg.Attempts)
	assert.Nil(t, msg.LastAttemptAt)
	assert.NotEmpty(t, msg.Payload)
}

func TestMessage_GetRecord(t *testing.T) {
	record := settledRecord(t)
	msg, err := NewMessage(record)
	require.NoError(t, err)

	roundTripped, err := msg.GetRecord()
	require.NoError(t, err)

	assert.Equal(t, record.TransactionID, roundTripped.TransactionID)
	assert.Equal(t, record.TotalApplied, roundTripped.TotalApplied)
	assert.Equal(t, record.CorrelationID, roundTripped.CorrelationID)
	assert.Equal(t, shared.PaymentStatusSettled, roundTripped.Status)
}

func TestMessage_GetRecord_InvalidPayload(t *testing.T) {
	msg := &Message{Payload: []byte("not json")}
	_, err := msg.GetRecord()
	assert.Error(t, err)
}

func TestMessage_StatusTransitions(t *testing.T) {
	msg, err := NewMessage(settledRecord(t))
	require.NoError(t, err)

	msg.IncrementAttempts()
	assert.Equal(t, 1, msg.Attempts)
	assert.NotNil(t, msg.LastAttemptAt)

	msg.MarkAsProcessed()
	assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)

	msg.MarkAsFailed()
	assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
}
