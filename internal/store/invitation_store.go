package store

import (
	"context"
	"time"

	"passkey-auth/internal/domain"
)

type InvitationStore struct{ *Store }

func (s *Store) Invitations() *InvitationStore { return &InvitationStore{s} }

func (is *InvitationStore) Create(ctx context.Context, inv *domain.Invitation) error {
	return mapErr(is.DB.WithContext(ctx).Create(inv).Error)
}

func (is *InvitationStore) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := is.DB.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &inv, nil
}

// FindValidByToken resolves an invitation by its bearer token, filtering out
// consumed and expired rows. Mid-flow lookups use GetByID instead: there the
// id is already cross-checked against the challenge's email.
func (is *InvitationStore) FindValidByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := is.DB.WithContext(ctx).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
		First(&inv).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &inv, nil
}

// FindUnusedByEmail returns the pending invitation for an email, if any. The
// partial unique index guarantees at most one row qualifies.
func (is *InvitationStore) FindUnusedByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := is.DB.WithContext(ctx).
		Where("email = ? AND used_at IS NULL", email).
		First(&inv).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &inv, nil
}

func (is *InvitationStore) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return mapErr(is.DB.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("id = ?", id).
		Update("used_at", at).Error)
}

func (is *InvitationStore) Delete(ctx context.Context, id string) error {
	return mapErr(is.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Invitation{}).Error)
}

func (is *InvitationStore) List(ctx context.Context) ([]domain.Invitation, error) {
	var out []domain.Invitation
	if err := is.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}
