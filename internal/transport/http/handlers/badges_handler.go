package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	gamificationsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/gamification"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
)

type BadgesHandler struct {
	service *gamificationsvc.Service
	log     *zap.Logger
}

func NewBadgesHandler(service *gamificationsvc.Service, log *zap.Logger) *BadgesHandler {
	return &BadgesHandler{service: service, log: loggerOrNop(log)}
}

func (h *BadgesHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}
	writeJSON(w, http.StatusOK, dto.BadgeCatalogResponse{Items: h.service.Catalog()})
}

func (h *BadgesHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	badges, err := h.service.ListUserBadges(r.Context(), actor.TenantID, actor.UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if badges == nil {
		badges = []model.UserBadge{}
	}
	writeJSON(w, http.StatusOK, dto.UserBadgesResponse{Items: badges})
}

// Award is mounted behind the session role check; the service re-reads the
// admin's membership and requires the target to belong to the same tenant.
func (h *BadgesHandler) Award(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.AwardBadgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if req.UserID == uuid.Nil {
		writeValidation(w, r, "user_id")
		return
	}
	if strings.TrimSpace(req.Slug) == "" {
		writeValidation(w, r, "slug")
		return
	}

	badge, err := h.service.GrantBadge(r.Context(), actor, req.UserID, req.Slug)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, badge)
}
