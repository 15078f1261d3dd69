package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	SID      string
	Role     enums.Role
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok || identity.UserID == uuid.Nil {
		return Identity{}, false
	}
	return identity, true
}
