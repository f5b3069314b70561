package store

import (
	"context"

	"passkey-auth/internal/domain"

	"gorm.io/gorm"
)

// DeleteUserData removes the user's record and everything owned by it
// (credentials and sessions) inside one transaction, returning counts of
// affected resources captured before deletion. The schema also carries
// ON DELETE CASCADE, but deleting explicitly keeps the behavior identical
// across storage backends.
func (s *Store) DeleteUserData(ctx context.Context, userID string) (map[string]int64, error) {
	deleted := map[string]int64{}

	err := s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		count := func(label string, query *gorm.DB) error {
			var total int64
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			deleted[label] = total
			return nil
		}

		if err := count("users", db.Model(&domain.User{}).Where("id = ?", userID)); err != nil {
			return err
		}
		if err := count("credentials", db.Model(&domain.Credential{}).Where("user_id = ?", userID)); err != nil {
			return err
		}
		if err := count("sessions", db.Model(&domain.Session{}).Where("user_id = ?", userID)); err != nil {
			return err
		}

		if err := db.Where("user_id = ?", userID).Delete(&domain.Credential{}).Error; err != nil {
			return err
		}
		if err := db.Where("user_id = ?", userID).Delete(&domain.Session{}).Error; err != nil {
			return err
		}

		return db.Where("id = ?", userID).Delete(&domain.User{}).Error
	})

	return deleted, mapErr(err)
}
