package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	authsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/auth"
	gamificationsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/gamification"
	modsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
	proposalsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/proposals"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/testutils/memstore"
)

type stubLimiter struct {
	allowed    bool
	retryAfter int64
}

func (l *stubLimiter) RetryAfterReport(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return 0, nil
}

func (l *stubLimiter) AllowReport(context.Context, uuid.UUID, uuid.UUID) (int64, bool, error) {
	return l.retryAfter, l.allowed, nil
}

type harness struct {
	store     *memstore.Store
	limiter   *stubLimiter
	router    chi.Router
	tenantID  uuid.UUID
	resident  model.Actor
	moderator model.Actor
	admin     model.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memstore.New()
	registry := modsvc.NewRegistry()
	for _, itemType := range enums.AllItemTypes() {
		if err := registry.Register(itemType, store.Content(itemType)); err != nil {
			t.Fatalf("register %s: %v", itemType, err)
		}
	}

	h := &harness{store: store, limiter: &stubLimiter{allowed: true}, tenantID: uuid.New()}
	h.resident = h.member(enums.RoleResident, false)
	h.moderator = h.member(enums.RoleModerator, false)
	h.admin = h.member(enums.RoleAdmin, false)

	moderation := modsvc.NewService(modsvc.Dependencies{
		Tx:          store,
		Queue:       store,
		Actions:     store,
		Memberships: store,
		Registry:    registry,
		Limiter:     h.limiter,
	})
	proposals := proposalsvc.NewService(store, moderation, nil, 0, nil)
	badges := gamificationsvc.NewService(store, store, 10, nil)

	modHandler := NewModerationHandler(moderation, nil)
	propHandler := NewProposalsHandler(proposals, nil)
	badgeHandler := NewBadgesHandler(badges, nil)

	r := chi.NewRouter()
	r.Get("/proposals", propHandler.List)
	r.Post("/proposals", propHandler.Create)
	r.Get("/moderation/queue", modHandler.Queue)
	r.Get("/moderation/{id}", modHandler.Entry)
	r.Get("/moderation/{id}/actions", modHandler.Actions)
	r.Post("/moderation/{id}/assign", modHandler.Assign)
	r.Post("/moderation/{id}/approve", modHandler.Approve)
	r.Post("/moderation/{id}/reject", modHandler.Reject)
	r.Post("/reports", modHandler.Report)
	r.Get("/badges", badgeHandler.Catalog)
	r.Get("/me/badges", badgeHandler.Mine)
	r.Post("/admin/badges", badgeHandler.Award)
	h.router = r
	return h
}

func (h *harness) member(role enums.Role, isModerator bool) model.Actor {
	userID := uuid.New()
	h.store.PutMembership(model.Membership{
		TenantID:    h.tenantID,
		UserID:      userID,
		Role:        role,
		IsModerator: isModerator,
		Verified:    true,
		Email:       userID.String() + "@example.com",
	})
	return model.Actor{UserID: userID, TenantID: h.tenantID}
}

func (h *harness) do(t *testing.T, actor *model.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
			UserID:   actor.UserID,
			TenantID: actor.TenantID,
			SID:      "sid-test",
		}))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (h *harness) createProposal(t *testing.T) model.Proposal {
	t.Helper()
	rec := h.do(t, &h.resident, http.MethodPost, "/proposals", map[string]string{
		"title":       "Nuove panchine al parco",
		"description": "Servono panchine ombreggiate vicino all'area giochi.",
		"category":    "green areas",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create proposal status = %d body=%s", rec.Code, rec.Body.String())
	}
	return decodeBody[model.Proposal](t, rec)
}

func (h *harness) pendingEntry(t *testing.T, itemID uuid.UUID) model.ModerationQueueEntry {
	t.Helper()
	for _, entry := range h.store.Entries(enums.ItemTypeProposal, itemID) {
		if entry.Status == enums.ModerationStatusPending {
			return entry
		}
	}
	t.Fatalf("no pending entry for %s", itemID)
	return model.ModerationQueueEntry{}
}
