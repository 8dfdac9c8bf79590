package shopify

import (
	"context"
	"fmt"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"shopbridge/internal/ports"
)

type client struct {
	app    goshopify.App
	logger zerolog.Logger
}

// NewClient creates the Admin API adapter used for webhook registration.
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.PlatformClient {
	return &client{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		logger: logger,
	}
}

// EnsureWebhook subscribes topic deliveries for shop to address. An existing
// subscription for the same topic and address is left untouched, so repeated
// registration after every app load stays a no-op upstream.
func (c *client) EnsureWebhook(ctx context.Context, shop, accessToken, topic, address string) error {
	sc, err := goshopify.NewClient(c.app, shop, accessToken)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	existing, err := sc.Webhook.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}
	for _, wh := range existing {
		if wh.Topic == topic && wh.Address == address {
			c.logger.Debug().
				Str("shop", shop).
				Str("topic", topic).
				Msg("Webhook subscription already present")
			return nil
		}
	}

	_, err = sc.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}

	c.logger.Info().
		Str("shop", shop).
		Str("topic", topic).
		Str("address", address).
		Msg("Webhook subscription created")
	return nil
}
