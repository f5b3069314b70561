package impl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/dto"
	"passkey-auth/internal/ident"
	"passkey-auth/internal/observability/metrics"
	"passkey-auth/internal/observability/middleware"
	"passkey-auth/internal/service"
	"passkey-auth/internal/store"
	"passkey-auth/internal/webauthn"
)

const (
	// challengeTTL bounds how long a ceremony may stay open between the
	// options call and the verify call.
	challengeTTL = 5 * time.Minute

	// defaultInvitationDays applies when the caller does not pick an expiry.
	defaultInvitationDays = 1
)

type AuthServiceImpl struct {
	Store    dataStore
	Verifier webauthn.Verifier
	Sessions service.SessionService

	now func() time.Time
}

func NewAuthServiceImpl(st *store.Store, verifier webauthn.Verifier, sessions service.SessionService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:    newStoreAdapter(st),
		Verifier: verifier,
		Sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ service.AuthService = (*AuthServiceImpl)(nil)

// ====== Invitations ======

func (a *AuthServiceImpl) CreateInvitation(ctx context.Context, email, invitedBy string, role domain.Role, expiryDays int) (*dto.InvitationCreated, error) {
	result := "success"
	defer func() {
		metrics.InvitationsIssuedTotal.WithLabelValues(result).Inc()
	}()

	email = normalizeEmail(email)
	if email == "" {
		result = "failure"
		return nil, ErrEmptyEmail
	}
	if !role.Valid() {
		result = "failure"
		return nil, domain.ErrInvalidRole
	}
	if expiryDays <= 0 {
		expiryDays = defaultInvitationDays
	}

	// 1) an existing account wins over any invitation
	if _, err := a.Store.Users().GetByEmail(ctx, email); err == nil {
		result = "failure"
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := a.now()
	inv := &domain.Invitation{
		ID:        ident.NewID(),
		Email:     email,
		Token:     ident.NewToken(),
		InvitedBy: invitedBy,
		Role:      role,
		ExpiresAt: now.Add(time.Duration(expiryDays) * 24 * time.Hour),
		CreatedAt: now,
	}

	// 2) replace any pending invitation for the email, then insert. The
	// partial unique index turns a lost race into a duplicate-key error.
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		prior, err := tx.Invitations().FindUnusedByEmail(ctx, email)
		switch {
		case err == nil:
			if err := tx.Invitations().Delete(ctx, prior.ID); err != nil {
				return fmt.Errorf("supersede invitation: %w", err)
			}
		case !errors.Is(err, store.ErrRecordNotFound):
			return fmt.Errorf("lookup invitation: %w", err)
		}
		return tx.Invitations().Create(ctx, inv)
	})
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, domain.ErrAlreadyInvited
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	slog.Info("invitation issued",
		"invitation_id", inv.ID,
		"email", email,
		"role", role,
		"expires_at", inv.ExpiresAt,
		"request_id", middleware.RequestIDFromContext(ctx),
	)

	return &dto.InvitationCreated{
		ID:        inv.ID,
		Token:     inv.Token,
		Email:     email,
		ExpiresAt: inv.ExpiresAt,
	}, nil
}

func (a *AuthServiceImpl) ListInvitations(ctx context.Context) ([]dto.InvitationInfo, error) {
	invs, err := a.Store.Invitations().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	now := a.now()
	out := make([]dto.InvitationInfo, 0, len(invs))
	for i := range invs {
		out = append(out, dto.InvitationInfoFrom(&invs[i], now))
	}
	return out, nil
}

func (a *AuthServiceImpl) DeleteInvitation(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := a.Store.Invitations().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

// ====== Registration ======

func (a *AuthServiceImpl) IssueRegistrationOptions(ctx context.Context, token string) (*dto.RegistrationOptions, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	now := a.now()

	// 1) resolve the invitation; consumed and expired tokens are
	// indistinguishable from unknown ones
	inv, err := a.Store.Invitations().FindValidByToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOrExpiredInvitation
		}
		return nil, fmt.Errorf("lookup invitation: %w", err)
	}

	// 2) a user created since the invitation was issued wins over it
	if _, err := a.Store.Users().GetByEmail(ctx, inv.Email); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// 3) begin the ceremony and persist its server half
	options, challenge, err := a.Verifier.BeginRegistration(inv.Email)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}

	email := inv.Email
	ch := &domain.Challenge{
		ID:        ident.NewID(),
		Challenge: challenge,
		Type:      domain.ChallengeRegistration,
		Email:     &email,
		ExpiresAt: now.Add(challengeTTL),
		CreatedAt: now,
	}
	if err := a.Store.Challenges().Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	return &dto.RegistrationOptions{
		Options:      options,
		ChallengeID:  ch.ID,
		Email:        inv.Email,
		InvitationID: inv.ID,
		Role:         inv.Role,
	}, nil
}

func (a *AuthServiceImpl) VerifyRegistration(ctx context.Context, challengeID string, response []byte, invitationID string) (*dto.AuthResult, error) {
	result := "success"
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	}()

	if challengeID == "" || invitationID == "" {
		result = "failure"
		return nil, ErrEmptyID
	}
	if len(response) == 0 {
		result = "failure"
		return nil, ErrEmptyResponse
	}

	now := a.now()

	// 1) load and screen the challenge
	ch, err := a.Store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOrExpiredRequest
		}
		return nil, fmt.Errorf("lookup challenge: %w", err)
	}
	if ch.Type != domain.ChallengeRegistration || ch.Expired(now) || ch.Email == nil {
		result = "failure"
		return nil, domain.ErrInvalidOrExpiredRequest
	}

	// 2) re-check the invitation; it may have been consumed or revoked since
	// the options call. Expiry is screened at the options stage only; the
	// challenge TTL bounds how stale the invitation can get from here.
	inv, err := a.Store.Invitations().GetByID(ctx, invitationID)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidInvitation
		}
		return nil, fmt.Errorf("lookup invitation: %w", err)
	}
	if inv.UsedAt != nil {
		result = "failure"
		return nil, domain.ErrInvalidInvitation
	}
	if !strings.EqualFold(inv.Email, *ch.Email) {
		result = "failure"
		return nil, domain.ErrEmailMismatch
	}

	// 3) cryptographic verification
	reg, err := a.Verifier.FinishRegistration(ch.Challenge, *ch.Email, response)
	if err != nil {
		result = "failure"
		slog.Debug("registration verification rejected",
			"challenge_id", challengeID,
			"reason", err,
			"request_id", middleware.RequestIDFromContext(ctx),
		)
		return nil, domain.ErrVerificationFailed
	}

	publicKey, err := encodePublicKey(reg.PublicKey)
	if err != nil {
		result = "failure"
		return nil, err
	}

	user := &domain.User{
		ID:        ident.NewID(),
		Email:     inv.Email,
		Role:      inv.Role,
		CreatedAt: now,
	}
	cred := &domain.Credential{
		ID:         reg.CredentialID,
		UserID:     user.ID,
		PublicKey:  publicKey,
		Counter:    reg.Counter,
		DeviceType: reg.DeviceType,
		BackedUp:   reg.BackedUp,
		Transports: domain.TransportList(reg.Transports),
		CreatedAt:  now,
	}

	// 4) one transaction: user, credential, consumed invitation, spent
	// challenge. A failure at any point leaves nothing behind.
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		if err := tx.Credentials().Create(ctx, cred); err != nil {
			return err
		}
		if err := tx.Invitations().MarkUsed(ctx, inv.ID, now); err != nil {
			return err
		}
		return tx.Challenges().Delete(ctx, ch.ID)
	})
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("persist registration: %w", err)
	}

	// 5) session last: a failure here leaves a registered user who can log in
	sess, err := a.Sessions.Create(ctx, user.ID)
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("issue session: %w", err)
	}

	slog.Info("registration completed",
		"user_id", user.ID,
		"email", user.Email,
		"credential_id", cred.ID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)

	return &dto.AuthResult{User: dto.UserInfoFrom(user), Session: *sess}, nil
}

// ====== Authentication ======

func (a *AuthServiceImpl) IssueAuthenticationOptions(ctx context.Context) (*dto.AuthenticationOptions, error) {
	options, challenge, err := a.Verifier.BeginAuthentication()
	if err != nil {
		return nil, fmt.Errorf("begin authentication: %w", err)
	}

	now := a.now()
	ch := &domain.Challenge{
		ID:        ident.NewID(),
		Challenge: challenge,
		Type:      domain.ChallengeAuthentication,
		ExpiresAt: now.Add(challengeTTL),
		CreatedAt: now,
	}
	if err := a.Store.Challenges().Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	return &dto.AuthenticationOptions{
		Options:     options,
		ChallengeID: ch.ID,
	}, nil
}

func (a *AuthServiceImpl) VerifyAuthentication(ctx context.Context, challengeID string, response []byte) (*dto.AuthResult, error) {
	result := "success"
	defer func() {
		metrics.LoginsTotal.WithLabelValues(result).Inc()
	}()

	if challengeID == "" {
		result = "failure"
		return nil, ErrEmptyID
	}
	if len(response) == 0 {
		result = "failure"
		return nil, ErrEmptyResponse
	}

	now := a.now()

	// 1) load and screen the challenge
	ch, err := a.Store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOrExpiredRequest
		}
		return nil, fmt.Errorf("lookup challenge: %w", err)
	}
	if ch.Type != domain.ChallengeAuthentication || ch.Expired(now) {
		result = "failure"
		return nil, domain.ErrInvalidOrExpiredRequest
	}

	// 2) the credential id keys the lookup; only its wire string is needed
	// before full verification
	credentialID, err := peekCredentialID(response)
	if err != nil {
		result = "failure"
		return nil, domain.ErrVerificationFailed
	}

	cred, err := a.Store.Credentials().GetByID(ctx, credentialID)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUnknownCredential
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	publicKey, err := base64.RawURLEncoding.DecodeString(cred.PublicKey)
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("stored public key corrupt: %w", err)
	}

	// 3) cryptographic verification
	newCounter, err := a.Verifier.FinishAuthentication(ch.Challenge, response, webauthn.StoredCredential{
		ID:         cred.ID,
		PublicKey:  publicKey,
		Counter:    cred.Counter,
		Transports: cred.Transports,
	})
	if err != nil {
		result = "failure"
		if errors.Is(err, webauthn.ErrCounterReplay) {
			return nil, domain.ErrCounterRegression
		}
		slog.Debug("authentication verification rejected",
			"challenge_id", challengeID,
			"reason", err,
			"request_id", middleware.RequestIDFromContext(ctx),
		)
		return nil, domain.ErrVerificationFailed
	}

	user, err := a.Store.Users().GetByID(ctx, cred.UserID)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// 4) advance the counter and spend the challenge together. The counter
	// update is conditional; zero rows means a concurrent login got there
	// first with an equal or higher counter.
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		rows, err := tx.Credentials().AdvanceCounter(ctx, cred.ID, newCounter, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrCounterRegression
		}
		return tx.Challenges().Delete(ctx, ch.ID)
	})
	if err != nil {
		result = "failure"
		if errors.Is(err, domain.ErrCounterRegression) {
			return nil, domain.ErrCounterRegression
		}
		return nil, fmt.Errorf("persist authentication: %w", err)
	}

	// 5) session last
	sess, err := a.Sessions.Create(ctx, user.ID)
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("issue session: %w", err)
	}

	slog.Info("login completed",
		"user_id", user.ID,
		"credential_id", cred.ID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)

	return &dto.AuthResult{User: dto.UserInfoFrom(user), Session: *sess}, nil
}

// ====== Users ======

func (a *AuthServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyID
	}

	deleted, err := a.Store.DeleteUserData(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if deleted["users"] == 0 {
		return domain.ErrUserNotFound
	}

	slog.Info("user deleted",
		"user_id", userID,
		"credentials", deleted["credentials"],
		"sessions", deleted["sessions"],
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return nil
}

// ====== Helpers ======

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// encodePublicKey applies the one and only storage encoding of COSE key
// material. The round trip guards against accidental double encoding.
func encodePublicKey(raw []byte) (string, error) {
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || !bytes.Equal(decoded, raw) {
		return "", errors.New("public key encoding round trip failed")
	}
	return encoded, nil
}

// peekCredentialID extracts the wire credential identifier from an
// authentication response without interpreting anything else: the full parse
// happens inside the verifier.
func peekCredentialID(response []byte) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(response, &probe); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if probe.ID == "" {
		return "", errors.New("response has no credential id")
	}
	return probe.ID, nil
}
