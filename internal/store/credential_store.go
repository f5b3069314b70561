package store

import (
	"context"
	"time"

	"passkey-auth/internal/domain"
)

type CredentialStore struct{ *Store }

func (s *Store) Credentials() *CredentialStore { return &CredentialStore{s} }

func (cs *CredentialStore) Create(ctx context.Context, c *domain.Credential) error {
	return mapErr(cs.DB.WithContext(ctx).Create(c).Error)
}

func (cs *CredentialStore) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	var out domain.Credential
	if err := cs.DB.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (cs *CredentialStore) GetByUserID(ctx context.Context, userID string) ([]domain.Credential, error) {
	var out []domain.Credential
	if err := cs.DB.WithContext(ctx).Find(&out, "user_id = ?", userID).Error; err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// AdvanceCounter persists a new signature counter only if it moves forward.
// A late-arriving duplicate write with a stale counter matches zero rows and
// the caller treats that as concurrent use. Authenticators that do not
// implement counters report zero forever; the zero-to-zero case is allowed
// through so they keep working.
func (cs *CredentialStore) AdvanceCounter(ctx context.Context, id string, counter uint32, at time.Time) (int64, error) {
	tx := cs.DB.WithContext(ctx).
		Model(&domain.Credential{}).
		Where("id = ? AND (counter < ? OR (counter = 0 AND ? = 0))", id, counter, counter).
		Updates(map[string]any{"counter": counter, "last_used_at": at})
	return tx.RowsAffected, mapErr(tx.Error)
}
