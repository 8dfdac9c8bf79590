package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"shopbridge/internal/application"
	"shopbridge/internal/domain"
	"shopbridge/internal/infrastructure/metrics"
	"shopbridge/internal/infrastructure/shopify"
	"shopbridge/internal/ports"
)

const (
	headerTopic      = "X-Shopify-Topic"
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerHmac       = "X-Shopify-Hmac-SHA256"
	headerDeliveryID = "X-Shopify-Webhook-Id"
)

// WebhookHandler is the inbound dispatch endpoint. Each request moves
// received -> verified -> routed -> acknowledged; verification failure
// rejects with 401, everything after verification acknowledges with 200 so
// the platform does not retry deliveries that cannot succeed differently.
type WebhookHandler struct {
	verifier *shopify.WebhookVerifier
	registry *application.WebhookRegistry
	eventLog ports.WebhookEventLog // optional
	dedup    ports.DeliveryCache   // optional
	logger   zerolog.Logger
}

// NewWebhookHandler creates the dispatch endpoint. eventLog and dedup may be
// nil; both degrade to plain dispatch.
func NewWebhookHandler(
	verifier *shopify.WebhookVerifier,
	registry *application.WebhookRegistry,
	eventLog ports.WebhookEventLog,
	dedup ports.DeliveryCache,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		registry: registry,
		eventLog: eventLog,
		dedup:    dedup,
		logger:   logger,
	}
}

// ServeHTTP handles one webhook delivery.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topic := r.Header.Get(headerTopic)
	if topic == "" {
		h.logger.Warn().Msg("Missing " + headerTopic + " header")
		http.Error(w, "Missing "+headerTopic+" header", http.StatusBadRequest)
		return
	}
	shop := r.Header.Get(headerShopDomain)

	// The signature covers the raw bytes; the body must not be parsed or
	// re-serialized before verification.
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook payload")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.verifier.Verify(payload, r.Header.Get(headerHmac)); err != nil {
		h.logger.Warn().
			Err(err).
			Str("topic", topic).
			Str("shop", shop).
			Msg("Webhook signature verification failed")
		metrics.WebhookDispatches.WithLabelValues(topic, "rejected").Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	if h.dedup != nil {
		if deliveryID := r.Header.Get(headerDeliveryID); deliveryID != "" {
			seen, err := h.dedup.SeenDelivery(ctx, deliveryID)
			if err != nil {
				// At-least-once beats lost deliveries: dispatch normally.
				h.logger.Warn().Err(err).Str("delivery_id", deliveryID).Msg("Delivery cache unavailable")
			} else if seen {
				h.logger.Info().
					Str("topic", topic).
					Str("delivery_id", deliveryID).
					Msg("Duplicate webhook delivery, acknowledging without dispatch")
				metrics.WebhookDispatches.WithLabelValues(topic, "duplicate").Inc()
				h.acknowledge(w)
				return
			}
		}
	}

	h.registry.EnsureHandlersRegistered()

	event := &domain.WebhookEvent{
		Topic:    topic,
		Shop:     shop,
		Payload:  payload,
		Verified: true,
	}

	if h.eventLog != nil {
		if err := h.eventLog.LogWebhook(ctx, event); err != nil {
			h.logger.Error().Err(err).Str("topic", topic).Msg("Failed to log webhook event")
			// Continue processing even if logging fails.
		}
	}

	entry, ok := h.registry.HandlerFor(topic)
	if !ok {
		// An unrecognized topic cannot succeed on retry, so acknowledge.
		h.logger.Warn().
			Str("topic", topic).
			Str("shop", shop).
			Msg("No handler registered for webhook topic")
		metrics.WebhookDispatches.WithLabelValues(topic, "unhandled").Inc()
		h.acknowledge(w)
		return
	}

	if err := entry.Handler.Handle(ctx, event); err != nil {
		// Handler failures stay behind the acknowledgment: the platform
		// would retry indefinitely on a payload that fails the same way
		// every time.
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("shop", shop).
			Msg("Webhook handler failed")
		metrics.WebhookDispatches.WithLabelValues(topic, "handler_error").Inc()
		h.acknowledge(w)
		return
	}

	metrics.WebhookDispatches.WithLabelValues(topic, "ok").Inc()
	h.acknowledge(w)
}

func (h *WebhookHandler) acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"received": "true"})
}
