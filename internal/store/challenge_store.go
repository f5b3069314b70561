package store

import (
	"context"
	"time"

	"passkey-auth/internal/domain"
)

type ChallengeStore struct{ *Store }

func (s *Store) Challenges() *ChallengeStore { return &ChallengeStore{s} }

func (cs *ChallengeStore) Create(ctx context.Context, ch *domain.Challenge) error {
	return mapErr(cs.DB.WithContext(ctx).Create(ch).Error)
}

func (cs *ChallengeStore) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	var ch domain.Challenge
	if err := cs.DB.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &ch, nil
}

func (cs *ChallengeStore) Delete(ctx context.Context, id string) error {
	return mapErr(cs.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Challenge{}).Error)
}

func (cs *ChallengeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := cs.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.Challenge{})
	return tx.RowsAffected, mapErr(tx.Error)
}
