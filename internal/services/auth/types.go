package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotMember       = errors.New("user is not a member of the tenant")
	ErrSessionNotFound = errors.New("session not found")
	ErrRefreshNotFound = errors.New("refresh token not found")
)

type SessionRecord struct {
	SID       string
	UserID    uuid.UUID
	TenantID  uuid.UUID
	Role      enums.Role
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    uuid.UUID
	TenantID  uuid.UUID
	SID       string
	Role      enums.Role
	ExpiresAt time.Time
}

type Me struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Role     enums.Role
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
