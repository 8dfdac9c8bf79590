package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"shopbridge/internal/domain"
	"shopbridge/internal/infrastructure/repository/entity"
	"shopbridge/internal/ports"
)

// MongoWebhookEventLog implements WebhookEventLog using MongoDB. It is a
// write-only audit sink; dispatch never depends on it succeeding.
type MongoWebhookEventLog struct {
	collection *mongo.Collection
}

// NewMongoWebhookEventLog creates a new MongoDB webhook event log.
func NewMongoWebhookEventLog(db *mongo.Database) ports.WebhookEventLog {
	return &MongoWebhookEventLog{
		collection: db.Collection("webhook_events"),
	}
}

// LogWebhook records one inbound delivery.
func (r *MongoWebhookEventLog) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookEventDocFromDomain(event)
	doc.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	return nil
}
