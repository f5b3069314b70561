package dto

import (
	"time"

	"passkey-auth/internal/domain"
)

type CreateInvitationRequest struct {
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	ExpiryDays int         `json:"expiryDays"`
}

// InvitationCreated is the result of issuing an invitation. Token, not ID, is
// what gets transmitted to the invitee.
type InvitationCreated struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type InvitationInfo struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	InvitedBy string      `json:"invitedBy"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
	UsedAt    *time.Time  `json:"usedAt"`
	CreatedAt time.Time   `json:"createdAt"`
	Pending   bool        `json:"pending"`
}

func InvitationInfoFrom(inv *domain.Invitation, now time.Time) InvitationInfo {
	return InvitationInfo{
		ID:        inv.ID,
		Email:     inv.Email,
		InvitedBy: inv.InvitedBy,
		Role:      inv.Role,
		ExpiresAt: inv.ExpiresAt,
		UsedAt:    inv.UsedAt,
		CreatedAt: inv.CreatedAt,
		Pending:   inv.Usable(now),
	}
}
