package store

import (
	"context"

	"passkey-auth/internal/domain"
)

type UserStore struct{ *Store }

func (s *Store) Users() *UserStore { return &UserStore{s} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	return mapErr(u.DB.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := u.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.DB.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}
