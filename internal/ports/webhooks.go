package ports

import (
	"context"

	"shopbridge/internal/domain"
)

// WebhookHandler processes one verified webhook delivery. Errors are caught
// and logged at the dispatch boundary; they never reach the platform.
type WebhookHandler interface {
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookHandlerFunc adapts a function to the WebhookHandler interface.
type WebhookHandlerFunc func(ctx context.Context, event *domain.WebhookEvent) error

func (f WebhookHandlerFunc) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	return f(ctx, event)
}

// PlatformClient is the outbound Shopify Admin API surface this layer needs:
// declaring webhook subscriptions on behalf of an authenticated shop.
type PlatformClient interface {
	// EnsureWebhook subscribes topic deliveries to address. Re-registering
	// an existing subscription is a no-op.
	EnsureWebhook(ctx context.Context, shop, accessToken, topic, address string) error
}

// WebhookEventLog is an optional audit sink for inbound deliveries. Logging
// failures never block dispatch.
type WebhookEventLog interface {
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}

// DeliveryCache suppresses duplicate deliveries by platform delivery id.
type DeliveryCache interface {
	// SeenDelivery marks id as seen and reports whether it already was.
	SeenDelivery(ctx context.Context, id string) (bool, error)
}
