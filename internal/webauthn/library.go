package webauthn

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

// LibraryVerifier implements Verifier on top of go-webauthn.
type LibraryVerifier struct {
	wa  *webauthn.WebAuthn
	cfg *Config
}

func NewVerifier(cfg *Config) (*LibraryVerifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid webauthn config: %w", err)
	}

	wa, err := webauthn.New(cfg.toLibraryConfig())
	if err != nil {
		return nil, fmt.Errorf("webauthn init: %w", err)
	}

	return &LibraryVerifier{wa: wa, cfg: cfg}, nil
}

// ceremonyUser carries just enough state through a single library call. The
// service keeps no per-user ceremony state of its own: everything needed to
// finish a ceremony is reconstructed from the stored challenge row.
type ceremonyUser struct {
	id    []byte
	name  string
	creds []webauthn.Credential
}

func (u ceremonyUser) WebAuthnID() []byte                         { return u.id }
func (u ceremonyUser) WebAuthnName() string                       { return u.name }
func (u ceremonyUser) WebAuthnDisplayName() string                { return u.name }
func (u ceremonyUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

// userHandle derives a stable WebAuthn user handle from an email so the
// registration finish step can rebuild the ceremony without persisting the
// handle alongside the challenge. FNV-1a, 8 bytes.
func userHandle(email string) []byte {
	var h uint64 = 14695981039346656037
	for _, b := range []byte(email) {
		h ^= uint64(b)
		h *= 1099511628211
	}
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, h)
	return id
}

func (v *LibraryVerifier) BeginRegistration(email string) (json.RawMessage, string, error) {
	user := ceremonyUser{id: userHandle(email), name: email}

	options, session, err := v.wa.BeginRegistration(user)
	if err != nil {
		return nil, "", fmt.Errorf("begin registration: %w", err)
	}

	raw, err := json.Marshal(options.Response)
	if err != nil {
		return nil, "", fmt.Errorf("marshal registration options: %w", err)
	}

	return raw, session.Challenge, nil
}

func (v *LibraryVerifier) FinishRegistration(challenge, email string, response []byte) (*Registration, error) {
	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(response))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	user := ceremonyUser{id: userHandle(email), name: email}
	session := webauthn.SessionData{
		Challenge:        challenge,
		UserID:           user.id,
		UserVerification: v.cfg.userVerification(),
	}

	cred, err := v.wa.CreateCredential(user, session, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	deviceType := DeviceTypeSingle
	if cred.Flags.BackupEligible {
		deviceType = DeviceTypeMulti
	}

	var transports []string
	for _, t := range cred.Transport {
		transports = append(transports, string(t))
	}

	return &Registration{
		// The wire identifier from the client response, copied through
		// verbatim. cred.ID holds the same bytes decoded; authentication
		// lookups key on the wire string, so that is what goes out.
		CredentialID: parsed.ID,
		PublicKey:    cred.PublicKey,
		Counter:      cred.Authenticator.SignCount,
		DeviceType:   deviceType,
		BackedUp:     cred.Flags.BackupState,
		Transports:   transports,
	}, nil
}

func (v *LibraryVerifier) BeginAuthentication() (json.RawMessage, string, error) {
	options, session, err := v.wa.BeginDiscoverableLogin()
	if err != nil {
		return nil, "", fmt.Errorf("begin authentication: %w", err)
	}

	raw, err := json.Marshal(options.Response)
	if err != nil {
		return nil, "", fmt.Errorf("marshal authentication options: %w", err)
	}

	return raw, session.Challenge, nil
}

func (v *LibraryVerifier) FinishAuthentication(challenge string, response []byte, stored StoredCredential) (uint32, error) {
	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(response))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	libCred, err := stored.toLibrary()
	if err != nil {
		return 0, err
	}

	// Resident-key user handles are chosen by the authenticator during
	// registration, so the response's own handle is echoed back here; the
	// binding to an account was already established by the credential-id
	// lookup against the store.
	handle := parsed.Response.UserHandle
	user := ceremonyUser{id: handle, creds: []webauthn.Credential{libCred}}
	session := webauthn.SessionData{
		Challenge:        challenge,
		UserID:           handle,
		UserVerification: v.cfg.userVerification(),
	}

	cred, err := v.wa.ValidateLogin(user, session, parsed)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	if cred.Authenticator.CloneWarning {
		return 0, ErrCounterReplay
	}

	return cred.Authenticator.SignCount, nil
}

func (sc StoredCredential) toLibrary() (webauthn.Credential, error) {
	id, err := base64.RawURLEncoding.DecodeString(sc.ID)
	if err != nil {
		return webauthn.Credential{}, fmt.Errorf("decode credential id: %w", err)
	}

	var transports []protocol.AuthenticatorTransport
	for _, t := range sc.Transports {
		transports = append(transports, protocol.AuthenticatorTransport(t))
	}

	return webauthn.Credential{
		ID:        id,
		PublicKey: sc.PublicKey,
		Transport: transports,
		Authenticator: webauthn.Authenticator{
			SignCount: sc.Counter,
		},
	}, nil
}
