package impl

import (
	"context"
	"time"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/store"
)

// The services depend on these narrow interfaces rather than on *store.Store
// directly so tests can swap in an in-memory implementation.

type dataStore interface {
	storeTx
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
	DeleteUserData(ctx context.Context, userID string) (map[string]int64, error)
}

type storeTx interface {
	Users() userStore
	Invitations() invitationStore
	Challenges() challengeStore
	Credentials() credentialStore
	Sessions() sessionStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type invitationStore interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	FindValidByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error)
	FindUnusedByEmail(ctx context.Context, email string) (*domain.Invitation, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Invitation, error)
}

type challengeStore interface {
	Create(ctx context.Context, ch *domain.Challenge) error
	GetByID(ctx context.Context, id string) (*domain.Challenge, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type credentialStore interface {
	Create(ctx context.Context, c *domain.Credential) error
	GetByID(ctx context.Context, id string) (*domain.Credential, error)
	GetByUserID(ctx context.Context, userID string) ([]domain.Credential, error)
	AdvanceCounter(ctx context.Context, id string, counter uint32, at time.Time) (int64, error)
}

type sessionStore interface {
	Create(ctx context.Context, sess *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	TouchLastAccessed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// gormStoreAdapter bridges *store.Store to the interfaces above.
type gormStoreAdapter struct {
	store *store.Store
}

func newStoreAdapter(st *store.Store) gormStoreAdapter { return gormStoreAdapter{store: st} }

func (g gormStoreAdapter) Users() userStore             { return g.store.Users() }
func (g gormStoreAdapter) Invitations() invitationStore { return g.store.Invitations() }
func (g gormStoreAdapter) Challenges() challengeStore   { return g.store.Challenges() }
func (g gormStoreAdapter) Credentials() credentialStore { return g.store.Credentials() }
func (g gormStoreAdapter) Sessions() sessionStore       { return g.store.Sessions() }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormStoreAdapter{store: tx})
	})
}

func (g gormStoreAdapter) DeleteUserData(ctx context.Context, userID string) (map[string]int64, error) {
	return g.store.DeleteUserData(ctx, userID)
}
