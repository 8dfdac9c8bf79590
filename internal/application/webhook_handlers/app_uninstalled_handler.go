package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"shopbridge/internal/domain"
	"shopbridge/internal/ports"
)

// AppUninstalledHandler handles app uninstalled webhook events. The shop's
// installation record, and with it every delegated session, is deleted
// exactly once, synchronously, on receipt.
type AppUninstalledHandler struct {
	logger        zerolog.Logger
	installations ports.AppInstallations
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler.
func NewAppUninstalledHandler(logger zerolog.Logger, installations ports.AppInstallations) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger:        logger,
		installations: installations,
	}
}

// Handle processes an app uninstalled webhook event.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shop := event.Shop
	if shop == "" {
		// The uninstall payload carries the shop under a couple of names
		// depending on API version.
		var shopData map[string]interface{}
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("failed to parse app uninstalled webhook payload: %w", err)
		}
		if v, ok := shopData["domain"].(string); ok {
			shop = v
		} else if v, ok := shopData["myshopify_domain"].(string); ok {
			shop = v
		}
	}
	if shop == "" {
		return fmt.Errorf("app uninstalled webhook carries no shop")
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", shop).
		Msg("Processing app uninstalled webhook event")

	if err := h.installations.Delete(ctx, shop); err != nil {
		return fmt.Errorf("failed to delete installation for %s: %w", shop, err)
	}

	h.logger.Info().Str("shop", shop).Msg("App uninstalled - installation removed")
	return nil
}
