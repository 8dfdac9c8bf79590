package application

import (
	"context"

	"github.com/rs/zerolog"

	"shopbridge/internal/ports"
)

// InstallationService derives installation state from delegated sessions: a
// shop counts as installed while any of its sessions is stored. No separate
// installation record exists in this layer.
type InstallationService struct {
	sessions ports.SessionStore
	logger   zerolog.Logger
}

// NewInstallationService creates an installation service over the session
// store.
func NewInstallationService(sessions ports.SessionStore, logger zerolog.Logger) *InstallationService {
	return &InstallationService{sessions: sessions, logger: logger}
}

// Includes reports whether any session exists for the shop.
func (s *InstallationService) Includes(ctx context.Context, shop string) (bool, error) {
	sessions, err := s.sessions.FindByShop(ctx, shop)
	if err != nil {
		return false, err
	}
	return len(sessions) > 0, nil
}

// Delete removes every session for the shop. A shop with no sessions is
// already uninstalled, so that case succeeds without a backend mutation.
func (s *InstallationService) Delete(ctx context.Context, shop string) error {
	sessions, err := s.sessions.FindByShop(ctx, shop)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		s.logger.Debug().Str("shop", shop).Msg("No sessions for shop, nothing to delete")
		return nil
	}

	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	if err := s.sessions.DeleteMany(ctx, ids); err != nil {
		return err
	}

	s.logger.Info().Str("shop", shop).Int("sessions", len(ids)).Msg("Deleted sessions for uninstalled shop")
	return nil
}

var _ ports.AppInstallations = (*InstallationService)(nil)
