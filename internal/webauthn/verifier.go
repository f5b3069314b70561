// Package webauthn is the boundary to cryptographic ceremony verification.
// The rest of the service treats it as an opaque capability: it hands over a
// stored challenge string plus the client's response and gets back either a
// rejection or parsed credential material. No lifecycle or policy logic lives
// here.
package webauthn

import (
	"encoding/json"
	"errors"
)

var (
	// ErrVerificationFailed is returned when a response does not verify
	// against the challenge and relying-party parameters.
	ErrVerificationFailed = errors.New("webauthn: verification failed")

	// ErrCounterReplay is returned when the authenticator's signature
	// counter did not advance, indicating a replayed or cloned credential.
	ErrCounterReplay = errors.New("webauthn: signature counter did not advance")
)

// Registration is the credential material extracted from a verified
// registration response. CredentialID is the identifier exactly as it appeared
// on the wire; PublicKey is the raw COSE key material, not yet encoded for
// storage.
type Registration struct {
	CredentialID string
	PublicKey    []byte
	Counter      uint32
	DeviceType   string
	BackedUp     bool
	Transports   []string
}

const (
	DeviceTypeSingle = "singleDevice"
	DeviceTypeMulti  = "multiDevice"
)

// StoredCredential is the persisted credential material the verifier needs to
// check an authentication response.
type StoredCredential struct {
	ID         string
	PublicKey  []byte
	Counter    uint32
	Transports []string
}

// Verifier produces ceremony options and verifies client responses. Any
// conforming WebAuthn implementation is injectable; tests use a stub.
type Verifier interface {
	// BeginRegistration produces registration options bound to the given
	// email. The returned challenge string must be stored and presented to
	// FinishRegistration.
	BeginRegistration(email string) (options json.RawMessage, challenge string, err error)

	// FinishRegistration verifies a registration response against the stored
	// challenge and returns parsed credential material on success.
	FinishRegistration(challenge, email string, response []byte) (*Registration, error)

	// BeginAuthentication produces anonymous authentication options.
	BeginAuthentication() (options json.RawMessage, challenge string, err error)

	// FinishAuthentication verifies an authentication response against the
	// stored challenge and credential, returning the advanced signature
	// counter on success.
	FinishAuthentication(challenge string, response []byte, cred StoredCredential) (newCounter uint32, err error)
}
