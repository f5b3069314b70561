package store

import (
	"context"
	"time"

	"passkey-auth/internal/domain"
)

type SessionStore struct{ *Store }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s} }

func (ss *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	return mapErr(ss.DB.WithContext(ctx).Create(sess).Error)
}

func (ss *SessionStore) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	if err := ss.DB.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &sess, nil
}

func (ss *SessionStore) TouchLastAccessed(ctx context.Context, id string, at time.Time) error {
	return mapErr(ss.DB.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Update("last_accessed_at", at).Error)
}

func (ss *SessionStore) Delete(ctx context.Context, id string) error {
	return mapErr(ss.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{}).Error)
}

func (ss *SessionStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	tx := ss.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{})
	return tx.RowsAffected, mapErr(tx.Error)
}

func (ss *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := ss.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.Session{})
	return tx.RowsAffected, mapErr(tx.Error)
}
