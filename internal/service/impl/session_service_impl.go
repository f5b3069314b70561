package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/dto"
	"passkey-auth/internal/ident"
	"passkey-auth/internal/observability/metrics"
	"passkey-auth/internal/observability/middleware"
	"passkey-auth/internal/service"
	"passkey-auth/internal/store"
)

const (
	// sessionTTL fixes the expiry at creation; nothing ever extends it.
	sessionTTL = 30 * 24 * time.Hour

	// sessionMaxAge caps a session's total lifetime from creation, applied at
	// validation time regardless of the stored expiry.
	sessionMaxAge = 90 * 24 * time.Hour
)

type SessionServiceImpl struct {
	Store dataStore

	now func() time.Time
}

func NewSessionServiceImpl(st *store.Store) *SessionServiceImpl {
	return &SessionServiceImpl{
		Store: newStoreAdapter(st),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ service.SessionService = (*SessionServiceImpl)(nil)

func (s *SessionServiceImpl) Create(ctx context.Context, userID string) (*dto.SessionIssued, error) {
	result := "success"
	defer func() {
		metrics.SessionsIssuedTotal.WithLabelValues("issue", result).Inc()
	}()

	if userID == "" {
		result = "failure"
		return nil, ErrEmptyID
	}

	now := s.now()
	sess := &domain.Session{
		ID:        ident.NewToken(),
		UserID:    userID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.Store.Sessions().Create(ctx, sess); err != nil {
		result = "failure"
		return nil, fmt.Errorf("create session: %w", err)
	}

	slog.Info("session issued",
		"user_id", userID,
		"expires_at", sess.ExpiresAt,
		"request_id", middleware.RequestIDFromContext(ctx),
	)

	return &dto.SessionIssued{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *SessionServiceImpl) Validate(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := s.Store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	now := s.now()
	if !now.Before(sess.ExpiresAt) || now.Sub(sess.CreatedAt) >= sessionMaxAge {
		// Dead either way; removing the row now keeps cleanup sweeps small.
		if err := s.Store.Sessions().Delete(ctx, sess.ID); err != nil {
			slog.Warn("expired session not removed", "error", err)
		}
		return nil, nil
	}

	if err := s.Store.Sessions().TouchLastAccessed(ctx, sess.ID, now); err != nil {
		slog.Warn("session access time not updated", "error", err)
	} else {
		sess.LastAccessedAt = &now
	}

	return sess, nil
}

func (s *SessionServiceImpl) GetUserFromSession(ctx context.Context, sessionID string) (*domain.User, error) {
	sess, err := s.Validate(ctx, sessionID)
	if err != nil || sess == nil {
		return nil, err
	}

	user, err := s.Store.Users().GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *SessionServiceImpl) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.Store.Sessions().Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionServiceImpl) DeleteAllForUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyID
	}

	count, err := s.Store.Sessions().DeleteByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	slog.Info("sessions revoked",
		"user_id", userID,
		"count", count,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return nil
}

func (s *SessionServiceImpl) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := s.Store.Sessions().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	if count > 0 {
		metrics.CleanupDeletedTotal.WithLabelValues("sessions").Add(float64(count))
	}
	return count, nil
}
