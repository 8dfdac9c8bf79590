package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"shopbridge/internal/application/webhook_handlers"
	"shopbridge/internal/domain"
	"shopbridge/internal/ports"
)

// DeliveryMethodHTTP is the only delivery method this layer supports.
const DeliveryMethodHTTP = "http"

// HandlerEntry binds a webhook topic to its handler and delivery target.
type HandlerEntry struct {
	Topic          string
	DeliveryMethod string
	CallbackURL    string
	Handler        ports.WebhookHandler
}

// WebhookRegistry owns the process-wide topic-to-handler table. It is built
// once per process start, never persisted, and handed by reference to the
// dispatch endpoint and the bootstrap sequence.
type WebhookRegistry struct {
	mu          sync.Mutex
	initialized bool
	populations int
	entries     map[string]HandlerEntry

	installations ports.AppInstallations
	platform      ports.PlatformClient
	callbackURL   string
	extra         []HandlerEntry
	logger        zerolog.Logger
}

// NewWebhookRegistry creates a registry whose built-in set, installed on
// first use, always includes the app-uninstalled handler. App-specific
// entries may be supplied up front and are installed alongside it.
func NewWebhookRegistry(
	installations ports.AppInstallations,
	platform ports.PlatformClient,
	callbackURL string,
	logger zerolog.Logger,
	extra ...HandlerEntry,
) *WebhookRegistry {
	return &WebhookRegistry{
		entries:       make(map[string]HandlerEntry),
		installations: installations,
		platform:      platform,
		callbackURL:   callbackURL,
		extra:         extra,
		logger:        logger,
	}
}

// EnsureHandlersRegistered populates the handler table on first call and is
// a no-op afterwards. Safe under concurrent invocation: the critical section
// makes population happen exactly once, and every caller returns only after
// the table is fully populated.
func (r *WebhookRegistry) EnsureHandlersRegistered() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return
	}

	r.register(HandlerEntry{
		Topic:          domain.AppUninstalledTopic,
		DeliveryMethod: DeliveryMethodHTTP,
		CallbackURL:    r.callbackURL,
		Handler:        webhook_handlers.NewAppUninstalledHandler(r.logger, r.installations),
	})
	for _, entry := range r.extra {
		if entry.DeliveryMethod == "" {
			entry.DeliveryMethod = DeliveryMethodHTTP
		}
		if entry.CallbackURL == "" {
			entry.CallbackURL = r.callbackURL
		}
		r.register(entry)
	}

	r.populations++
	r.initialized = true
	r.logger.Info().Int("handlers", len(r.entries)).Msg("Webhook handlers registered")
}

// register installs one entry; re-registering a topic is a no-op, not an
// error. Callers must hold r.mu.
func (r *WebhookRegistry) register(entry HandlerEntry) {
	if _, exists := r.entries[entry.Topic]; exists {
		r.logger.Debug().Str("topic", entry.Topic).Msg("Handler already registered")
		return
	}
	r.entries[entry.Topic] = entry
}

// HandlerFor looks up the entry for a topic.
func (r *WebhookRegistry) HandlerFor(topic string) (HandlerEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[topic]
	return entry, ok
}

// Topics returns the registered topics.
func (r *WebhookRegistry) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, 0, len(r.entries))
	for topic := range r.entries {
		topics = append(topics, topic)
	}
	return topics
}

// RegisterWithPlatform declares one subscription per registered topic on the
// platform, authorized by the session's shop and token. A failing topic does
// not stop the remaining ones; failures are aggregated and reported at the
// end.
func (r *WebhookRegistry) RegisterWithPlatform(ctx context.Context, session *domain.Session) error {
	r.EnsureHandlersRegistered()

	var errs []error
	for _, topic := range r.Topics() {
		entry, _ := r.HandlerFor(topic)
		if err := r.platform.EnsureWebhook(ctx, session.Shop, session.AccessToken, entry.Topic, entry.CallbackURL); err != nil {
			r.logger.Error().
				Err(err).
				Str("shop", session.Shop).
				Str("topic", entry.Topic).
				Msg("Failed to register webhook subscription")
			errs = append(errs, fmt.Errorf("topic %s: %w", entry.Topic, err))
			continue
		}
	}

	return errors.Join(errs...)
}
