package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

const collectionDispatchEvents = "dispatch_events"

// AuditSink writes every dispatch event to an append-only audit collection.
type AuditSink struct {
	col *mongo.Collection
}

var _ ports.EventSink = (*AuditSink)(nil)

// NewAuditSink creates a new AuditSink.
func NewAuditSink(db *mongo.Database) *AuditSink {
	return &AuditSink{col: db.Collection(collectionDispatchEvents)}
}

func (a *AuditSink) Name() string { return "mongo_audit" }

// Write persists an event to the dispatch_events collection.
func (a *AuditSink) Write(ctx context.Context, event domain.DispatchEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":         string(event.Type),
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.EmergencyID != "" {
		doc["emergency_id"] = event.EmergencyID
	}
	if event.UnitID != "" {
		doc["unit_id"] = event.UnitID
	}
	if event.Status != "" {
		doc["status"] = string(event.Status)
	}
	if event.OperatorID != "" {
		doc["operator_id"] = event.OperatorID
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	_, err := a.col.InsertOne(ctx, doc)
	return err
}
