package repository

import (
	"context"
	"time"

	"github.com/fastygo/daybook/domain"
)

// SessionRepository keeps live sessions. The session id doubles as the refresh token.
type SessionRepository interface {
	// Get returns domain.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// Extend pushes the expiry ttl into the future; used by refresh.
	Extend(ctx context.Context, id string, ttl time.Duration) error
}
