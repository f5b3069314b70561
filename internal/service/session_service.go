package service

import (
	"context"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/dto"
)

type SessionService interface {
	Create(ctx context.Context, userID string) (*dto.SessionIssued, error)

	// Validate returns the session when the token is known and inside both
	// the stored expiry and the absolute age cap, touching LastAccessedAt as
	// a side effect. An invalid or unknown token yields (nil, nil); being
	// logged out is not an error.
	Validate(ctx context.Context, sessionID string) (*domain.Session, error)

	// GetUserFromSession validates and resolves the owning user, returning
	// (nil, nil) if either step fails.
	GetUserFromSession(ctx context.Context, sessionID string) (*domain.User, error)

	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID string) error

	// CleanupExpired batch-deletes sessions past their stored expiry. Run
	// from a scheduler, not on the request path.
	CleanupExpired(ctx context.Context) (int64, error)
}
