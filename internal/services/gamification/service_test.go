package gamification_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/gamification"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/testutils/memstore"
)

// staleCheckStore always reports no badge, as a pre-check that lost a race would.
type staleCheckStore struct {
	*memstore.Store
}

func (staleCheckStore) HasBadge(context.Context, uuid.UUID, uuid.UUID, string) (bool, error) {
	return false, nil
}

func putResident(store *memstore.Store, tenantID uuid.UUID) uuid.UUID {
	userID := uuid.New()
	store.PutMembership(model.Membership{TenantID: tenantID, UserID: userID, Role: enums.RoleResident, Verified: true})
	return userID
}

func TestAwardBadgeTwice(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(store, store, 0, nil)
	tenantID := uuid.New()
	userID := putResident(store, tenantID)

	if _, err := svc.AwardBadge(context.Background(), tenantID, userID, "volunteer"); err != nil {
		t.Fatalf("first award: %v", err)
	}
	if _, err := svc.AwardBadge(context.Background(), tenantID, userID, "volunteer"); !errors.Is(err, gamification.ErrAlreadyAwarded) {
		t.Fatalf("expected ErrAlreadyAwarded, got %v", err)
	}

	badges, err := svc.ListUserBadges(context.Background(), tenantID, userID)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("expected exactly one badge row, got %d", len(badges))
	}
}

func TestAwardBadgeConstraintMapsToAlreadyAwarded(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(staleCheckStore{store}, store, 0, nil)
	tenantID := uuid.New()
	userID := putResident(store, tenantID)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AwardBadge(context.Background(), tenantID, userID, "benefactor")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, gamification.ErrAlreadyAwarded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected one winner, got %d", succeeded)
	}

	badges, _ := store.ListUserBadges(context.Background(), tenantID, userID)
	if len(badges) != 1 {
		t.Fatalf("expected exactly one badge row, got %d", len(badges))
	}
}

func TestAwardUnknownBadge(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(store, store, 0, nil)

	if _, err := svc.AwardBadge(context.Background(), uuid.New(), uuid.New(), "mayor"); !errors.Is(err, gamification.ErrUnknownBadge) {
		t.Fatalf("expected ErrUnknownBadge, got %v", err)
	}
}

func TestAwardBadgeRequiresTenantMembership(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(store, store, 0, nil)
	outsider := putResident(store, uuid.New())

	if _, err := svc.AwardBadge(context.Background(), uuid.New(), outsider, "first_post"); !errors.Is(err, gamification.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestBadgesAreScopedPerTenant(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(store, store, 0, nil)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	userID := uuid.New()
	memberA := model.Membership{TenantID: tenantA, UserID: userID, Role: enums.RoleResident, Verified: true}
	memberB := model.Membership{TenantID: tenantB, UserID: userID, Role: enums.RoleResident, Verified: true}
	store.PutMembership(memberA)
	store.PutMembership(memberB)

	if _, err := svc.AwardBadge(ctx, tenantA, userID, "first_post"); err != nil {
		t.Fatalf("award in tenant A: %v", err)
	}

	store.SetCounters(tenantB, userID, model.ActivityCounters{model.MetricPosts: 3})
	awarded, err := svc.EvaluateUser(ctx, memberB)
	if err != nil {
		t.Fatalf("evaluate in tenant B: %v", err)
	}
	if len(awarded) != 1 || awarded[0].BadgeSlug != "first_post" || awarded[0].TenantID != tenantB {
		t.Fatalf("tenant B awards = %+v", awarded)
	}

	for _, tenantID := range []uuid.UUID{tenantA, tenantB} {
		badges, err := svc.ListUserBadges(ctx, tenantID, userID)
		if err != nil {
			t.Fatalf("list badges: %v", err)
		}
		if len(badges) != 1 || badges[0].TenantID != tenantID {
			t.Fatalf("tenant %s badges = %+v", tenantID, badges)
		}
	}
}

func TestGrantBadgeRereadsAdminMembership(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(store, store, 0, nil)
	ctx := context.Background()
	tenantID := uuid.New()
	residentID := putResident(store, tenantID)

	admin := model.Membership{TenantID: tenantID, UserID: uuid.New(), Role: enums.RoleAdmin, Verified: true}
	store.PutMembership(admin)
	actor := model.Actor{UserID: admin.UserID, TenantID: tenantID}

	if _, err := svc.GrantBadge(ctx, actor, residentID, "first_post"); err != nil {
		t.Fatalf("grant as admin: %v", err)
	}

	admin.Role = enums.RoleResident
	store.PutMembership(admin)
	if _, err := svc.GrantBadge(ctx, actor, residentID, "volunteer"); !errors.Is(err, gamification.ErrForbidden) {
		t.Fatalf("expected ErrForbidden after demotion, got %v", err)
	}
}

func TestEvaluateUserAwardsOnlyMissingBadges(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(store, store, 0, nil)
	member := model.Membership{TenantID: uuid.New(), UserID: uuid.New(), Role: enums.RoleResident, Verified: true}
	store.PutMembership(member)
	store.SetCounters(member.TenantID, member.UserID, model.ActivityCounters{
		model.MetricPosts:      30,
		model.MetricEventRSVPs: 4,
	})

	if _, err := svc.AwardBadge(context.Background(), member.TenantID, member.UserID, "first_post"); err != nil {
		t.Fatalf("seed award: %v", err)
	}

	awarded, err := svc.EvaluateUser(context.Background(), member)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(awarded) != 1 || awarded[0].BadgeSlug != "active_voice" {
		t.Fatalf("unexpected awards: %+v", awarded)
	}

	again, err := svc.EvaluateUser(context.Background(), member)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("re-evaluation must not award again: %+v", again)
	}
}

func TestRunSweepContinuesAfterUserFailure(t *testing.T) {
	store := memstore.New()
	svc := gamification.NewService(store, store, 2, nil)
	tenantID := uuid.New()

	members := make([]model.Membership, 0, 4)
	for i := 0; i < 3; i++ {
		m := model.Membership{TenantID: tenantID, UserID: uuid.New(), Role: enums.RoleResident, Verified: true}
		store.PutMembership(m)
		store.SetCounters(tenantID, m.UserID, model.ActivityCounters{model.MetricDonations: 1})
		members = append(members, m)
	}
	// unverified members are not swept
	unverified := model.Membership{TenantID: tenantID, UserID: uuid.New(), Role: enums.RoleResident}
	store.PutMembership(unverified)
	store.SetCounters(tenantID, unverified.UserID, model.ActivityCounters{model.MetricDonations: 1})

	store.FailOn("ActivityCounters:"+members[1].UserID.String(), errors.New("counter query timed out"))

	result, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Users != 3 || result.Awarded != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	for i, m := range members {
		badges, _ := store.ListUserBadges(context.Background(), tenantID, m.UserID)
		want := 1
		if i == 1 {
			want = 0
		}
		if len(badges) != want {
			t.Fatalf("member %d has %d badges, want %d", i, len(badges), want)
		}
	}
	if badges, _ := store.ListUserBadges(context.Background(), tenantID, unverified.UserID); len(badges) != 0 {
		t.Fatalf("unverified member was awarded")
	}

	// the failed user heals on the next run
	result, err = svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if result.Awarded != 1 || result.Failed != 0 {
		t.Fatalf("unexpected second result: %+v", result)
	}
}

func TestCatalogIsACopy(t *testing.T) {
	svc := gamification.NewService(nil, nil, 0, nil)
	catalog := svc.Catalog()
	if len(catalog) != 6 {
		t.Fatalf("catalog size = %d", len(catalog))
	}
	catalog[0].Threshold = 999
	if svc.Catalog()[0].Threshold == 999 {
		t.Fatalf("catalog must not be shared")
	}
}
