package impl

import (
	"context"
	"sort"
	"sync"
	"time"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/store"
)

// memoryStore implements dataStore with the same visible semantics as the
// gorm-backed store: sentinel errors, unique constraints, conditional counter
// updates and transactional rollback.
type memoryStore struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	invitations map[string]*domain.Invitation
	challenges  map[string]*domain.Challenge
	credentials map[string]*domain.Credential
	sessions    map[string]*domain.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[string]*domain.User),
		invitations: make(map[string]*domain.Invitation),
		challenges:  make(map[string]*domain.Challenge),
		credentials: make(map[string]*domain.Credential),
		sessions:    make(map[string]*domain.Session),
	}
}

type storeSnapshot struct {
	users       map[string]*domain.User
	invitations map[string]*domain.Invitation
	challenges  map[string]*domain.Challenge
	credentials map[string]*domain.Credential
	sessions    map[string]*domain.Session
}

func (m *memoryStore) snapshot() storeSnapshot {
	s := storeSnapshot{
		users:       make(map[string]*domain.User, len(m.users)),
		invitations: make(map[string]*domain.Invitation, len(m.invitations)),
		challenges:  make(map[string]*domain.Challenge, len(m.challenges)),
		credentials: make(map[string]*domain.Credential, len(m.credentials)),
		sessions:    make(map[string]*domain.Session, len(m.sessions)),
	}
	for id, v := range m.users {
		c := *v
		s.users[id] = &c
	}
	for id, v := range m.invitations {
		c := *v
		s.invitations[id] = &c
	}
	for id, v := range m.challenges {
		c := *v
		s.challenges[id] = &c
	}
	for id, v := range m.credentials {
		c := *v
		s.credentials[id] = &c
	}
	for id, v := range m.sessions {
		c := *v
		s.sessions[id] = &c
	}
	return s
}

func (m *memoryStore) restore(s storeSnapshot) {
	m.users = s.users
	m.invitations = s.invitations
	m.challenges = s.challenges
	m.credentials = s.credentials
	m.sessions = s.sessions
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(memoryTx{store: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memoryStore) DeleteUserData(ctx context.Context, userID string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := map[string]int64{}
	if _, ok := m.users[userID]; ok {
		deleted["users"] = 1
		delete(m.users, userID)
	}
	for id, c := range m.credentials {
		if c.UserID == userID {
			deleted["credentials"]++
			delete(m.credentials, id)
		}
	}
	for id, s := range m.sessions {
		if s.UserID == userID {
			deleted["sessions"]++
			delete(m.sessions, id)
		}
	}
	return deleted, nil
}

func (m *memoryStore) Users() userStore             { return memoryUserStore{m} }
func (m *memoryStore) Invitations() invitationStore { return memoryInvitationStore{m} }
func (m *memoryStore) Challenges() challengeStore   { return memoryChallengeStore{m} }
func (m *memoryStore) Credentials() credentialStore { return memoryCredentialStore{m} }
func (m *memoryStore) Sessions() sessionStore       { return memorySessionStore{m} }

// memoryTx reuses the same maps; WithTx holds the lock and restores on error.
type memoryTx struct{ store *memoryStore }

func (t memoryTx) Users() userStore             { return memoryUserStore{t.store} }
func (t memoryTx) Invitations() invitationStore { return memoryInvitationStore{t.store} }
func (t memoryTx) Challenges() challengeStore   { return memoryChallengeStore{t.store} }
func (t memoryTx) Credentials() credentialStore { return memoryCredentialStore{t.store} }
func (t memoryTx) Sessions() sessionStore       { return memorySessionStore{t.store} }

type memoryUserStore struct{ s *memoryStore }

func (u memoryUserStore) Create(ctx context.Context, usr *domain.User) error {
	for _, existing := range u.s.users {
		if existing.Email == usr.Email {
			return store.ErrDuplicateKey
		}
	}
	c := *usr
	u.s.users[usr.ID] = &c
	return nil
}

func (u memoryUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if usr, ok := u.s.users[id]; ok {
		c := *usr
		return &c, nil
	}
	return nil, store.ErrRecordNotFound
}

func (u memoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, usr := range u.s.users {
		if usr.Email == email {
			c := *usr
			return &c, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

type memoryInvitationStore struct{ s *memoryStore }

func (i memoryInvitationStore) Create(ctx context.Context, inv *domain.Invitation) error {
	for _, existing := range i.s.invitations {
		if existing.Token == inv.Token {
			return store.ErrDuplicateKey
		}
		if existing.Email == inv.Email && existing.UsedAt == nil {
			return store.ErrDuplicateKey
		}
	}
	c := *inv
	i.s.invitations[inv.ID] = &c
	return nil
}

func (i memoryInvitationStore) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := i.s.invitations[id]; ok {
		c := *inv
		return &c, nil
	}
	return nil, store.ErrRecordNotFound
}

func (i memoryInvitationStore) FindValidByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	for _, inv := range i.s.invitations {
		if inv.Token == token && inv.UsedAt == nil && inv.ExpiresAt.After(now) {
			c := *inv
			return &c, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (i memoryInvitationStore) FindUnusedByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	for _, inv := range i.s.invitations {
		if inv.Email == email && inv.UsedAt == nil {
			c := *inv
			return &c, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (i memoryInvitationStore) MarkUsed(ctx context.Context, id string, at time.Time) error {
	if inv, ok := i.s.invitations[id]; ok {
		t := at
		inv.UsedAt = &t
	}
	return nil
}

func (i memoryInvitationStore) Delete(ctx context.Context, id string) error {
	delete(i.s.invitations, id)
	return nil
}

func (i memoryInvitationStore) List(ctx context.Context) ([]domain.Invitation, error) {
	out := make([]domain.Invitation, 0, len(i.s.invitations))
	for _, inv := range i.s.invitations {
		out = append(out, *inv)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

type memoryChallengeStore struct{ s *memoryStore }

func (c memoryChallengeStore) Create(ctx context.Context, ch *domain.Challenge) error {
	cp := *ch
	c.s.challenges[ch.ID] = &cp
	return nil
}

func (c memoryChallengeStore) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	if ch, ok := c.s.challenges[id]; ok {
		cp := *ch
		return &cp, nil
	}
	return nil, store.ErrRecordNotFound
}

func (c memoryChallengeStore) Delete(ctx context.Context, id string) error {
	delete(c.s.challenges, id)
	return nil
}

func (c memoryChallengeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for id, ch := range c.s.challenges {
		if !now.Before(ch.ExpiresAt) {
			delete(c.s.challenges, id)
			count++
		}
	}
	return count, nil
}

type memoryCredentialStore struct{ s *memoryStore }

func (c memoryCredentialStore) Create(ctx context.Context, cred *domain.Credential) error {
	if _, ok := c.s.credentials[cred.ID]; ok {
		return store.ErrDuplicateKey
	}
	cp := *cred
	c.s.credentials[cred.ID] = &cp
	return nil
}

func (c memoryCredentialStore) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	if cred, ok := c.s.credentials[id]; ok {
		cp := *cred
		return &cp, nil
	}
	return nil, store.ErrRecordNotFound
}

func (c memoryCredentialStore) GetByUserID(ctx context.Context, userID string) ([]domain.Credential, error) {
	var out []domain.Credential
	for _, cred := range c.s.credentials {
		if cred.UserID == userID {
			out = append(out, *cred)
		}
	}
	return out, nil
}

func (c memoryCredentialStore) AdvanceCounter(ctx context.Context, id string, counter uint32, at time.Time) (int64, error) {
	cred, ok := c.s.credentials[id]
	if !ok {
		return 0, nil
	}
	if cred.Counter < counter || (cred.Counter == 0 && counter == 0) {
		t := at
		cred.Counter = counter
		cred.LastUsedAt = &t
		return 1, nil
	}
	return 0, nil
}

type memorySessionStore struct{ s *memoryStore }

func (st memorySessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if _, ok := st.s.sessions[sess.ID]; ok {
		return store.ErrDuplicateKey
	}
	cp := *sess
	st.s.sessions[sess.ID] = &cp
	return nil
}

func (st memorySessionStore) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if sess, ok := st.s.sessions[id]; ok {
		cp := *sess
		return &cp, nil
	}
	return nil, store.ErrRecordNotFound
}

func (st memorySessionStore) TouchLastAccessed(ctx context.Context, id string, at time.Time) error {
	if sess, ok := st.s.sessions[id]; ok {
		t := at
		sess.LastAccessedAt = &t
	}
	return nil
}

func (st memorySessionStore) Delete(ctx context.Context, id string) error {
	delete(st.s.sessions, id)
	return nil
}

func (st memorySessionStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	for id, sess := range st.s.sessions {
		if sess.UserID == userID {
			delete(st.s.sessions, id)
			count++
		}
	}
	return count, nil
}

func (st memorySessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for id, sess := range st.s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(st.s.sessions, id)
			count++
		}
	}
	return count, nil
}
