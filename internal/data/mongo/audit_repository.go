// Package mongo provides the MongoDB implementation of the settlement audit
// log. Audit records are written by the outbox poller after the settlement
// transaction commits in PostgreSQL.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

const (
	// AuditCollectionName is the name of the settlement audit collection in MongoDB
	AuditCollectionName = "settlement_audit"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new audit record after checking for duplicates.
// Returns ErrDuplicateRecord if a record with the same transaction ID exists.
func (r *AuditRepository) Create(ctx context.Context, record *audit.Record) error {
	collection := r.db.Collection(AuditCollectionName)

	// Check if record already exists
	existingRecord, err := r.GetByTransactionID(ctx, record.TransactionID)
	if err != nil && !errors.Is(err, audit.ErrRecordNotFound{}) {
		r.logger.Error("Failed to check for existing audit record",
			"transaction_id", record.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing audit record: %w", err)
	}

	if existingRecord != nil {
		return audit.ErrDuplicateRecord{TransactionID: record.TransactionID}
	}

	// Insert the record
	_, err = collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to create audit record",
			"transaction_id", record.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves an audit record by its transaction ID.
// Returns ErrRecordNotFound if no record exists for the given transaction.
func (r *AuditRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	var record audit.Record
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, audit.ErrRecordNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get audit record",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}

	return &record, nil
}

// GetByIdempotencyKey retrieves an audit record using its idempotency key.
// Returns nil if no record exists, enabling idempotent payment processing.
func (r *AuditRepository) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*audit.Record, error) {
	if idempotencyKey == "" {
		return nil, errors.New("idempotency key cannot be empty")
	}

	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"idempotency_key": idempotencyKey}
	var record audit.Record
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No record found with this idempotency key
		}
		r.logger.Error("Failed to get audit record by idempotency key",
			"idempotency_key", idempotencyKey,
			"error", err)
		return nil, fmt.Errorf("failed to get audit record by idempotency key: %w", err)
	}

	return &record, nil
}

// GetByUnitID retrieves paginated audit records for a billing unit.
// Results are sorted by creation time in descending order (newest first).
func (r *AuditRepository) GetByUnitID(ctx context.Context, unitID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"unit_id": unitID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit records",
			"unit_id", unitID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*audit.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode audit records",
			"unit_id", unitID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}

// CountByUnitID counts the total number of audit records for a billing unit
func (r *AuditRepository) CountByUnitID(ctx context.Context, unitID uuid.UUID) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"unit_id": unitID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count audit records",
			"unit_id", unitID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}

	return count, nil
}

// UpdateStatus updates the record's status, failure reason, and processed timestamp.
// Returns ErrRecordNotFound if the record doesn't exist.
func (r *AuditRepository) UpdateStatus(ctx context.Context, transactionID uuid.UUID, status shared.PaymentStatus, reason string) error {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	update := bson.M{
		"$set": bson.M{
			"status":         status,
			"failure_reason": reason,
			"processed_at":   time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update audit record status",
			"transaction_id", transactionID.String(),
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update audit record status: %w", err)
	}

	if result.MatchedCount == 0 {
		return audit.ErrRecordNotFound{TransactionID: transactionID}
	}

	return nil
}
