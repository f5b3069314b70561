package webauthn

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/descope/virtualwebauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		RPID:          "example.com",
		RPDisplayName: "Example Corp",
		RPOrigins:     []string{"https://example.com"},
	}
}

func testRelyingParty(cfg *Config) virtualwebauthn.RelyingParty {
	return virtualwebauthn.RelyingParty{
		Name:   cfg.RPDisplayName,
		ID:     cfg.RPID,
		Origin: cfg.RPOrigins[0],
	}
}

// register runs a full registration ceremony against a virtual authenticator
// and returns the verified material plus the authenticator for later logins.
func register(t *testing.T, v *LibraryVerifier, rp virtualwebauthn.RelyingParty, email string) (*Registration, *virtualwebauthn.Authenticator, virtualwebauthn.Credential) {
	t.Helper()

	authenticator := virtualwebauthn.NewAuthenticator()
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	options, challenge, err := v.BeginRegistration(email)
	require.NoError(t, err)
	require.NotEmpty(t, challenge)

	parsedOptions, err := virtualwebauthn.ParseAttestationOptions(string(options))
	require.NoError(t, err)

	response := virtualwebauthn.CreateAttestationResponse(rp, authenticator, credential, *parsedOptions)

	reg, err := v.FinishRegistration(challenge, email, []byte(response))
	require.NoError(t, err)

	authenticator.AddCredential(credential)
	return reg, &authenticator, credential
}

func TestFullRegistrationCeremony(t *testing.T) {
	cfg := testConfig()
	v, err := NewVerifier(cfg)
	require.NoError(t, err)

	rp := testRelyingParty(cfg)
	reg, _, _ := register(t, v, rp, "testuser@example.com")

	require.NotEmpty(t, reg.CredentialID)
	require.NotEmpty(t, reg.PublicKey)

	// The credential identifier must be the wire string from the response,
	// which is already base64url.
	_, err = base64.RawURLEncoding.DecodeString(reg.CredentialID)
	assert.NoError(t, err)
}

func TestRegistrationOptionsCarryUserAndRP(t *testing.T) {
	cfg := testConfig()
	v, err := NewVerifier(cfg)
	require.NoError(t, err)

	options, _, err := v.BeginRegistration("testuser@example.com")
	require.NoError(t, err)

	var decoded struct {
		RP struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"rp"`
		User struct {
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
		Challenge string `json:"challenge"`
	}
	require.NoError(t, json.Unmarshal(options, &decoded))
	assert.Equal(t, cfg.RPID, decoded.RP.ID)
	assert.Equal(t, cfg.RPDisplayName, decoded.RP.Name)
	assert.Equal(t, "testuser@example.com", decoded.User.Name)
	assert.NotEmpty(t, decoded.Challenge)
}

func TestRegistrationChallengeBinding(t *testing.T) {
	cfg := testConfig()
	v, err := NewVerifier(cfg)
	require.NoError(t, err)

	rp := testRelyingParty(cfg)
	authenticator := virtualwebauthn.NewAuthenticator()
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	options, _, err := v.BeginRegistration("testuser@example.com")
	require.NoError(t, err)

	parsedOptions, err := virtualwebauthn.ParseAttestationOptions(string(options))
	require.NoError(t, err)
	response := virtualwebauthn.CreateAttestationResponse(rp, authenticator, credential, *parsedOptions)

	// A different ceremony's challenge must not verify this response.
	_, otherChallenge, err := v.BeginRegistration("testuser@example.com")
	require.NoError(t, err)

	_, err = v.FinishRegistration(otherChallenge, "testuser@example.com", []byte(response))
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestFinishRegistrationGarbageResponse(t *testing.T) {
	v, err := NewVerifier(testConfig())
	require.NoError(t, err)

	_, err = v.FinishRegistration("whatever", "testuser@example.com", []byte("not a webauthn response"))
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestFullAuthenticationCeremony(t *testing.T) {
	cfg := testConfig()
	v, err := NewVerifier(cfg)
	require.NoError(t, err)

	rp := testRelyingParty(cfg)
	reg, authenticator, credential := register(t, v, rp, "login@example.com")

	options, challenge, err := v.BeginAuthentication()
	require.NoError(t, err)
	require.NotEmpty(t, challenge)

	parsedOptions, err := virtualwebauthn.ParseAssertionOptions(string(options))
	require.NoError(t, err)
	response := virtualwebauthn.CreateAssertionResponse(rp, *authenticator, credential, *parsedOptions)

	newCounter, err := v.FinishAuthentication(challenge, []byte(response), StoredCredential{
		ID:         reg.CredentialID,
		PublicKey:  reg.PublicKey,
		Counter:    reg.Counter,
		Transports: reg.Transports,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, newCounter, reg.Counter)
}

func TestAuthenticationChallengeBinding(t *testing.T) {
	cfg := testConfig()
	v, err := NewVerifier(cfg)
	require.NoError(t, err)

	rp := testRelyingParty(cfg)
	reg, authenticator, credential := register(t, v, rp, "replay@example.com")

	options, _, err := v.BeginAuthentication()
	require.NoError(t, err)
	parsedOptions, err := virtualwebauthn.ParseAssertionOptions(string(options))
	require.NoError(t, err)
	response := virtualwebauthn.CreateAssertionResponse(rp, *authenticator, credential, *parsedOptions)

	_, otherChallenge, err := v.BeginAuthentication()
	require.NoError(t, err)

	_, err = v.FinishAuthentication(otherChallenge, []byte(response), StoredCredential{
		ID:        reg.CredentialID,
		PublicKey: reg.PublicKey,
		Counter:   reg.Counter,
	})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestAuthenticationWrongKeyMaterial(t *testing.T) {
	cfg := testConfig()
	v, err := NewVerifier(cfg)
	require.NoError(t, err)

	rp := testRelyingParty(cfg)
	reg, authenticator, credential := register(t, v, rp, "alice@example.com")
	other, _, _ := register(t, v, rp, "mallory@example.com")

	options, challenge, err := v.BeginAuthentication()
	require.NoError(t, err)
	parsedOptions, err := virtualwebauthn.ParseAssertionOptions(string(options))
	require.NoError(t, err)
	response := virtualwebauthn.CreateAssertionResponse(rp, *authenticator, credential, *parsedOptions)

	// Alice's assertion against Mallory's stored key must not verify.
	_, err = v.FinishAuthentication(challenge, []byte(response), StoredCredential{
		ID:        reg.CredentialID,
		PublicKey: other.PublicKey,
		Counter:   reg.Counter,
	})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestStoredCredentialRejectsBadID(t *testing.T) {
	sc := StoredCredential{ID: "not!!base64url", PublicKey: []byte{1}}
	_, err := sc.toLibrary()
	assert.Error(t, err)
}
