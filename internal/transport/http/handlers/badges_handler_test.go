package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/rules"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
	httperrors "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/errors"
)

func TestAwardBadgeOnce(t *testing.T) {
	h := newHarness(t)
	slug := rules.BadgeCatalog()[0].Slug

	rec := h.do(t, &h.admin, http.MethodPost, "/admin/badges", dto.AwardBadgeRequest{UserID: h.resident.UserID, Slug: slug})
	if rec.Code != http.StatusCreated {
		t.Fatalf("award status = %d body=%s", rec.Code, rec.Body.String())
	}
	awarded := decodeBody[model.UserBadge](t, rec)
	if awarded.BadgeSlug != slug || awarded.TenantID != h.tenantID {
		t.Fatalf("unexpected badge: %+v", awarded)
	}

	rec = h.do(t, &h.admin, http.MethodPost, "/admin/badges", dto.AwardBadgeRequest{UserID: h.resident.UserID, Slug: slug})
	if apiErr := decodeBody[httperrors.APIError](t, rec); rec.Code != http.StatusConflict || apiErr.Code != "ALREADY_AWARDED" {
		t.Fatalf("status = %d err=%+v", rec.Code, apiErr)
	}

	rec = h.do(t, &h.resident, http.MethodGet, "/me/badges", nil)
	mine := decodeBody[dto.UserBadgesResponse](t, rec)
	if len(mine.Items) != 1 {
		t.Fatalf("my badges = %d, want 1", len(mine.Items))
	}
}

func TestAwardUnknownBadge(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, &h.admin, http.MethodPost, "/admin/badges", dto.AwardBadgeRequest{UserID: h.resident.UserID, Slug: "astronauta"})
	if apiErr := decodeBody[httperrors.APIError](t, rec); rec.Code != http.StatusBadRequest || apiErr.Code != "UNKNOWN_BADGE" {
		t.Fatalf("status = %d err=%+v", rec.Code, apiErr)
	}
}

func TestCatalogIsPublic(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, nil, http.MethodGet, "/badges", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[dto.BadgeCatalogResponse](t, rec); len(got.Items) != len(rules.BadgeCatalog()) {
		t.Fatalf("catalog len = %d", len(got.Items))
	}
}

func TestAwardBadgeIsTenantScoped(t *testing.T) {
	h := newHarness(t)
	slug := rules.BadgeCatalog()[0].Slug

	otherTenant := uuid.New()
	otherAdmin := model.Membership{TenantID: otherTenant, UserID: uuid.New(), Role: enums.RoleAdmin, Verified: true}
	h.store.PutMembership(otherAdmin)
	actor := model.Actor{UserID: otherAdmin.UserID, TenantID: otherTenant}

	rec := h.do(t, &actor, http.MethodPost, "/admin/badges", dto.AwardBadgeRequest{UserID: h.resident.UserID, Slug: slug})
	if apiErr := decodeBody[httperrors.APIError](t, rec); rec.Code != http.StatusBadRequest || apiErr.Code != "VALIDATION_ERROR" || apiErr.Field != "user_id" {
		t.Fatalf("status = %d err=%+v", rec.Code, apiErr)
	}

	// the resident can still earn the badge in their own tenant
	rec = h.do(t, &h.admin, http.MethodPost, "/admin/badges", dto.AwardBadgeRequest{UserID: h.resident.UserID, Slug: slug})
	if rec.Code != http.StatusCreated {
		t.Fatalf("home tenant award status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, &h.resident, http.MethodGet, "/me/badges", nil)
	mine := decodeBody[dto.UserBadgesResponse](t, rec)
	if len(mine.Items) != 1 || mine.Items[0].TenantID != h.tenantID {
		t.Fatalf("my badges = %+v", mine.Items)
	}
}

func TestAwardBadgeRejectsDemotedAdmin(t *testing.T) {
	h := newHarness(t)
	h.store.PutMembership(model.Membership{
		TenantID: h.tenantID,
		UserID:   h.admin.UserID,
		Role:     enums.RoleResident,
		Verified: true,
	})

	rec := h.do(t, &h.admin, http.MethodPost, "/admin/badges", dto.AwardBadgeRequest{UserID: h.resident.UserID, Slug: rules.BadgeCatalog()[0].Slug})
	if apiErr := decodeBody[httperrors.APIError](t, rec); rec.Code != http.StatusForbidden || apiErr.Code != "FORBIDDEN" {
		t.Fatalf("status = %d err=%+v", rec.Code, apiErr)
	}
}
