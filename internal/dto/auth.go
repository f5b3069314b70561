package dto

import (
	"encoding/json"
	"time"

	"passkey-auth/internal/domain"
)

type RegisterOptionsRequest struct {
	Token string `json:"token"`
}

// RegistrationOptions is returned to the caller, who must echo ChallengeID
// and InvitationID unmodified on the verify call. The server holds no other
// state between the two requests.
type RegistrationOptions struct {
	Options      json.RawMessage `json:"options"`
	ChallengeID  string          `json:"challengeId"`
	Email        string          `json:"email"`
	InvitationID string          `json:"invitationId"`
	Role         domain.Role     `json:"role"`
}

type RegisterVerifyRequest struct {
	ChallengeID  string          `json:"challengeId"`
	Response     json.RawMessage `json:"response"`
	InvitationID string          `json:"invitationId"`
}

type AuthenticationOptions struct {
	Options     json.RawMessage `json:"options"`
	ChallengeID string          `json:"challengeId"`
}

type LoginVerifyRequest struct {
	ChallengeID string          `json:"challengeId"`
	Response    json.RawMessage `json:"response"`
}

type UserInfo struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  *string     `json:"name"`
	Role  domain.Role `json:"role"`
}

func UserInfoFrom(u *domain.User) UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// SessionIssued carries the opaque bearer token for a fresh login. The token
// never appears in logs.
type SessionIssued struct {
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthResult struct {
	User    UserInfo
	Session SessionIssued
}
