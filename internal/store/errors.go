package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned when a keyed lookup matches nothing.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a unique constraint.
	// Callers translate this into their "already exists" condition rather
	// than pre-checking every race.
	ErrDuplicateKey = errors.New("duplicate key")
)

// mapErr translates gorm errors into the store's sentinel errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	}
	return err
}
