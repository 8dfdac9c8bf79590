package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopbridge/internal/domain"
)

// MongoWebhookEventDoc is the MongoDB shape of an audited webhook delivery.
type MongoWebhookEventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Topic     string             `bson:"topic"`
	Shop      string             `bson:"shop"`
	Payload   []byte             `bson:"payload"`
	Verified  bool               `bson:"verified"`
	CreatedAt time.Time          `bson:"created_at"`
}

// MongoWebhookEventDocFromDomain converts a domain event to its Mongo doc.
func MongoWebhookEventDocFromDomain(event *domain.WebhookEvent) *MongoWebhookEventDoc {
	return &MongoWebhookEventDoc{
		Topic:    event.Topic,
		Shop:     event.Shop,
		Payload:  event.Payload,
		Verified: event.Verified,
	}
}

// ToDomain converts a Mongo doc back to the domain event.
func (d *MongoWebhookEventDoc) ToDomain() *domain.WebhookEvent {
	return &domain.WebhookEvent{
		Topic:    d.Topic,
		Shop:     d.Shop,
		Payload:  d.Payload,
		Verified: d.Verified,
	}
}
