package directory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/pkg/validate"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/directory"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/testutils/memstore"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"+39 333 123 4567", "393331234567", true},
		{"0039-333-1234567", "393331234567", true},
		{"333 123 4567", "393331234567", true},
		{"(06) 1234.5678", "390612345678", true},
		{"333-abc", "", false},
		{"+1 23", "", false},
	}

	for _, tc := range cases {
		got, ok := directory.NormalizePhone(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("NormalizePhone(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWhatsAppLink(t *testing.T) {
	link, err := directory.WhatsAppLink("+39 333 123 4567", "Ciao, è disponibile? A&B")
	if err != nil {
		t.Fatalf("build link: %v", err)
	}
	want := "https://wa.me/393331234567?text=Ciao%2C%20%C3%A8%20disponibile%3F%20A%26B"
	if link != want {
		t.Fatalf("unexpected link:\n got %s\nwant %s", link, want)
	}

	link, err = directory.WhatsAppLink("3331234567", "  ")
	if err != nil || link != "https://wa.me/393331234567" {
		t.Fatalf("unexpected link without text: %q %v", link, err)
	}

	if _, err := directory.WhatsAppLink("", "hi"); err == nil {
		t.Fatalf("expected an error for an empty number")
	}
}

func newService(t *testing.T) (*directory.Service, *moderation.Service, *memstore.Store, model.Actor, model.Actor) {
	t.Helper()

	store := memstore.New()
	registry := moderation.NewRegistry()
	if err := registry.Register(enums.ItemTypeServiceProfile, store.Content(enums.ItemTypeServiceProfile)); err != nil {
		t.Fatalf("register: %v", err)
	}
	modSvc := moderation.NewService(moderation.Dependencies{
		Tx: store, Queue: store, Actions: store, Memberships: store, Registry: registry,
	})

	tenantID := uuid.New()
	owner := model.Actor{UserID: uuid.New(), TenantID: tenantID}
	admin := model.Actor{UserID: uuid.New(), TenantID: tenantID}
	store.PutMembership(model.Membership{TenantID: tenantID, UserID: owner.UserID, Role: enums.RoleResident, Verified: true})
	store.PutMembership(model.Membership{TenantID: tenantID, UserID: admin.UserID, Role: enums.RoleAdmin})

	return directory.NewService(store, modSvc, nil, 0, nil), modSvc, store, owner, admin
}

func TestCreateProfileQueuesAndListsAfterApproval(t *testing.T) {
	svc, modSvc, store, owner, admin := newService(t)
	ctx := context.Background()

	profile, err := svc.CreateProfile(ctx, owner, directory.ProfileDraft{
		BusinessName: "Giardini Rossi",
		Category:     "gardening",
		WhatsApp:     "+39 333 123 4567",
		Volunteer:    true,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if profile.Category != "Gardening" || profile.WhatsApp != "393331234567" {
		t.Fatalf("profile not normalized: %+v", profile)
	}

	entries := store.Entries(enums.ItemTypeServiceProfile, profile.ID)
	if len(entries) != 1 || entries[0].Status != enums.ModerationStatusPending {
		t.Fatalf("expected one pending entry, got %+v", entries)
	}

	listed, _ := svc.ListApproved(ctx, owner.TenantID, "", 0)
	if len(listed) != 0 {
		t.Fatalf("pending profile must not be listed")
	}

	if _, err := modSvc.Approve(ctx, admin, entries[0].ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	listed, err = svc.ListApproved(ctx, owner.TenantID, "Gardening", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != profile.ID {
		t.Fatalf("approved profile missing: %+v", listed)
	}

	counters, err := store.ActivityCounters(ctx, owner.TenantID, owner.UserID)
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if counters[model.MetricVolunteerProfiles] != 1 {
		t.Fatalf("volunteer metric = %d", counters[model.MetricVolunteerProfiles])
	}
}

func TestCreateProfileValidation(t *testing.T) {
	svc, _, _, owner, _ := newService(t)

	_, err := svc.CreateProfile(context.Background(), owner, directory.ProfileDraft{
		BusinessName: "X",
		Category:     "Gardening",
	})
	var verrs validate.Errors
	if !errors.As(err, &verrs) || verrs.First().Field != "business_name" {
		t.Fatalf("expected business_name error, got %v", err)
	}

	_, err = svc.CreateProfile(context.Background(), owner, directory.ProfileDraft{
		BusinessName: "Idraulica Bianchi",
		Category:     "Plumbing",
		Phone:        "not a number",
	})
	if !errors.As(err, &verrs) || verrs.First().Field != "category" || len(verrs) != 2 {
		t.Fatalf("expected category and phone errors, got %v", err)
	}
}

func TestUnverifiedResidentCannotCreateProfile(t *testing.T) {
	svc, _, store, owner, _ := newService(t)
	guest := model.Actor{UserID: uuid.New(), TenantID: owner.TenantID}
	store.PutMembership(model.Membership{TenantID: owner.TenantID, UserID: guest.UserID, Role: enums.RoleResident})

	_, err := svc.CreateProfile(context.Background(), guest, directory.ProfileDraft{BusinessName: "Pulizie", Category: "Cleaning"})
	if !errors.Is(err, moderation.ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
}
