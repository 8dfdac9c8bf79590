package ports

import (
	"context"

	"shopbridge/internal/domain"
)

// SessionStore defines the interface for session persistence. The concrete
// implementation delegates storage to an external backend; this layer holds
// no durable session state of its own.
type SessionStore interface {
	// Store creates or replaces the session keyed by session.ID.
	Store(ctx context.Context, session *domain.Session) error

	// Load fetches a session by id. A missing session returns (nil, nil),
	// not an error: first installs legitimately have no session yet.
	Load(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes one session by id. Deletions are never retried here;
	// the backend decides whether deleting an absent session is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes several sessions in one call.
	DeleteMany(ctx context.Context, ids []string) error

	// FindByShop returns the backend-ordered sessions for a shop. A shop
	// with no sessions yields an empty slice, not an error.
	FindByShop(ctx context.Context, shop string) ([]*domain.Session, error)
}

// AppInstallations tracks which shops currently have the app installed.
// Delete must tolerate shops with no installation record.
type AppInstallations interface {
	Includes(ctx context.Context, shop string) (bool, error)
	Delete(ctx context.Context, shop string) error
}
