package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	redrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/redis"
	authsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/auth"
)

const platformSecret = "platform-test-secret"

type stubMemberships struct {
	members map[uuid.UUID]model.Membership
}

func (s *stubMemberships) GetMembership(_ context.Context, tenantID, userID uuid.UUID) (model.Membership, error) {
	m, ok := s.members[userID]
	if !ok || m.TenantID != tenantID {
		return model.Membership{}, model.ErrNotFound
	}
	return m, nil
}

func TestExchangeIssuesSessionWithMembershipRole(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	svc, cleanup := newAuthServiceForTest(t, model.Membership{TenantID: tenantID, UserID: userID, Role: enums.RoleModerator})
	defer cleanup()

	ctx := context.Background()
	res, err := svc.Exchange(ctx, platformToken(t, userID, tenantID, time.Hour))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if res.Me.ID != userID || res.Me.TenantID != tenantID || res.Me.Role != enums.RoleModerator {
		t.Fatalf("unexpected me: %+v", res.Me)
	}

	claims, err := svc.ValidateAccessToken(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.TenantID != tenantID || claims.Role != enums.RoleModerator {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExchangeRejectsNonMember(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	_, err := svc.Exchange(context.Background(), platformToken(t, uuid.New(), uuid.New(), time.Hour))
	if !errors.Is(err, authsvc.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestExchangeRejectsExpiredPlatformToken(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	svc, cleanup := newAuthServiceForTest(t, model.Membership{TenantID: tenantID, UserID: userID, Role: enums.RoleResident})
	defer cleanup()

	_, err := svc.Exchange(context.Background(), platformToken(t, userID, tenantID, -time.Minute))
	if !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	svc, cleanup := newAuthServiceForTest(t, model.Membership{TenantID: tenantID, UserID: userID, Role: enums.RoleResident})
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Exchange(ctx, platformToken(t, userID, tenantID, time.Hour))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if refreshRes.Me.TenantID != tenantID {
		t.Fatalf("tenant lost on refresh: %+v", refreshRes.Me)
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	svc, cleanup := newAuthServiceForTest(t, model.Membership{TenantID: tenantID, UserID: userID, Role: enums.RoleResident})
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Exchange(ctx, platformToken(t, userID, tenantID, time.Hour))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func TestLogoutAllInvalidatesEverySession(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	svc, cleanup := newAuthServiceForTest(t, model.Membership{TenantID: tenantID, UserID: userID, Role: enums.RoleResident})
	defer cleanup()

	ctx := context.Background()
	first, err := svc.Exchange(ctx, platformToken(t, userID, tenantID, time.Hour))
	if err != nil {
		t.Fatalf("first exchange: %v", err)
	}
	second, err := svc.Exchange(ctx, platformToken(t, userID, tenantID, time.Hour))
	if err != nil {
		t.Fatalf("second exchange: %v", err)
	}

	if err := svc.LogoutAll(ctx, userID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	for _, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := svc.ValidateAccessToken(ctx, token); !errors.Is(err, authsvc.ErrUnauthorized) {
			t.Fatalf("expected unauthorized after logout all, got %v", err)
		}
	}
}

func newAuthServiceForTest(t *testing.T, members ...model.Membership) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	repo := redrepo.NewSessionRepo(client)
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, repo, 45*24*time.Hour)

	store := &stubMemberships{members: map[uuid.UUID]model.Membership{}}
	for _, m := range members {
		store.members[m.UserID] = m
	}
	svc.AttachPlatform(authsvc.NewPlatformVerifier(platformSecret), store)

	return svc, func() {
		_ = client.Close()
		mini.Close()
	}
}

func platformToken(t *testing.T, userID, tenantID uuid.UUID, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       userID.String(),
		"tenant_id": tenantID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(platformSecret))
	if err != nil {
		t.Fatalf("sign platform token: %v", err)
	}
	return signed
}
