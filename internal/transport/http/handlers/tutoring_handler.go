package handlers

import (
	"net/http"

	"go.uber.org/zap"

	tutoringsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/tutoring"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
)

type TutoringHandler struct {
	service *tutoringsvc.Service
	log     *zap.Logger
}

func NewTutoringHandler(service *tutoringsvc.Service, log *zap.Logger) *TutoringHandler {
	return &TutoringHandler{service: service, log: loggerOrNop(log)}
}

func (h *TutoringHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeValidation(w, r, "limit")
		return
	}

	items, err := h.service.ListApproved(r.Context(), actor.TenantID, limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TutorialRequestsResponse{Items: items})
}

func (h *TutoringHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.CreateTutorialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	request, err := h.service.Create(r.Context(), actor, tutoringsvc.Draft{
		Subject:     req.Subject,
		Level:       req.Level,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}
