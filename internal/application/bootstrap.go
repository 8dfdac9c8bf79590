package application

import (
	"context"

	"github.com/rs/zerolog"

	"shopbridge/internal/domain"
	"shopbridge/internal/infrastructure/metrics"
	"shopbridge/internal/ports"
)

// BootstrapResult reports the outcome of each bootstrap step separately.
// The steps are fault-isolated: a failed session store call does not stop
// webhook registration.
type BootstrapResult struct {
	SessionStored      bool
	StoreErr           error
	WebhooksRegistered bool
	RegisterErr        error
}

// Failed reports whether any step failed.
func (r BootstrapResult) Failed() bool {
	return r.StoreErr != nil || r.RegisterErr != nil
}

// BootstrapService runs the per-app-load startup sequence: persist the
// freshly acquired session, then register webhook subscriptions. It never
// returns an error past its own boundary; callers read the result for
// logging.
type BootstrapService struct {
	sessions ports.SessionStore
	registry *WebhookRegistry
	logger   zerolog.Logger
}

// NewBootstrapService creates a bootstrap service.
func NewBootstrapService(sessions ports.SessionStore, registry *WebhookRegistry, logger zerolog.Logger) *BootstrapService {
	return &BootstrapService{
		sessions: sessions,
		registry: registry,
		logger:   logger,
	}
}

// Run persists the session and registers webhook subscriptions, best effort.
// Token acquisition happens at the transport boundary before this runs;
// without a token there is no session to bootstrap.
func (s *BootstrapService) Run(ctx context.Context, session *domain.Session) BootstrapResult {
	var result BootstrapResult

	if err := s.sessions.Store(ctx, session); err != nil {
		// The token may still be transiently usable, so registration is
		// attempted anyway.
		s.logger.Error().
			Err(err).
			Str("shop", session.Shop).
			Str("session_id", session.ID).
			Msg("Bootstrap: failed to persist session")
		result.StoreErr = err
	} else {
		result.SessionStored = true
	}

	if err := s.registry.RegisterWithPlatform(ctx, session); err != nil {
		s.logger.Error().
			Err(err).
			Str("shop", session.Shop).
			Msg("Bootstrap: failed to register webhook subscriptions")
		result.RegisterErr = err
	} else {
		result.WebhooksRegistered = true
	}

	if result.Failed() {
		metrics.BootstrapRuns.WithLabelValues("partial").Inc()
	} else {
		metrics.BootstrapRuns.WithLabelValues("ok").Inc()
	}

	s.logger.Info().
		Str("shop", session.Shop).
		Bool("session_stored", result.SessionStored).
		Bool("webhooks_registered", result.WebhooksRegistered).
		Msg("Bootstrap sequence completed")
	return result
}
