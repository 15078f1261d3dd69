package model

import (
	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
)

// Membership is a user's standing inside one tenant.
type Membership struct {
	TenantID    uuid.UUID  `json:"tenant_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Role        enums.Role `json:"role"`
	IsModerator bool       `json:"is_moderator"`
	Verified    bool       `json:"verified"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
}

// CanModerate is true for tenant admins and for holders of the moderator flag.
func (m Membership) CanModerate() bool {
	return m.Role.IsAdmin() || m.Role == enums.RoleModerator || m.IsModerator
}

// CanSubmit is true for verified residents; admins are treated as verified.
func (m Membership) CanSubmit() bool {
	return m.Verified || m.Role.IsAdmin()
}

// Actor is the caller of a service operation. A zero UserID means anonymous.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil && a.TenantID != uuid.Nil
}

// MemberCursor is a keyset position over memberships ordered by (tenant_id, user_id).
type MemberCursor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}
