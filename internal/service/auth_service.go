package service

import (
	"context"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/dto"
)

type AuthService interface {
	// CreateInvitation issues a fresh invitation for the email, superseding
	// any unused one. Fails with domain.ErrAlreadyRegistered if a user with
	// the email exists.
	CreateInvitation(ctx context.Context, email, invitedBy string, role domain.Role, expiryDays int) (*dto.InvitationCreated, error)
	ListInvitations(ctx context.Context) ([]dto.InvitationInfo, error)
	DeleteInvitation(ctx context.Context, id string) error

	// IssueRegistrationOptions starts the registration ceremony for the
	// holder of a valid invitation token.
	IssueRegistrationOptions(ctx context.Context, token string) (*dto.RegistrationOptions, error)

	// VerifyRegistration completes registration: on success the user and
	// credential exist, the invitation is consumed, the challenge is gone
	// and a session is issued.
	VerifyRegistration(ctx context.Context, challengeID string, response []byte, invitationID string) (*dto.AuthResult, error)

	// IssueAuthenticationOptions starts an anonymous authentication ceremony.
	IssueAuthenticationOptions(ctx context.Context) (*dto.AuthenticationOptions, error)

	// VerifyAuthentication completes authentication against a registered
	// credential and issues a session.
	VerifyAuthentication(ctx context.Context, challengeID string, response []byte) (*dto.AuthResult, error)

	// DeleteUser removes a user and, by cascade, every credential and
	// session owned by it.
	DeleteUser(ctx context.Context, userID string) error
}
