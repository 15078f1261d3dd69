package handlers

import (
	"net/http"

	"go.uber.org/zap"

	proposalsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/proposals"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
)

type ProposalsHandler struct {
	service *proposalsvc.Service
	log     *zap.Logger
}

func NewProposalsHandler(service *proposalsvc.Service, log *zap.Logger) *ProposalsHandler {
	return &ProposalsHandler{service: service, log: loggerOrNop(log)}
}

func (h *ProposalsHandler) List(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, dto.ProposalsResponse{Items: items})
}

func (h *ProposalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.CreateProposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	proposal, err := h.service.Create(r.Context(), actor, proposalsvc.Draft{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}
