package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	modsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
)

type ModerationHandler struct {
	service *modsvc.Service
	log     *zap.Logger
}

func NewModerationHandler(service *modsvc.Service, log *zap.Logger) *ModerationHandler {
	return &ModerationHandler{service: service, log: loggerOrNop(log)}
}

// Queue lists entries of the caller's tenant, filtered by status, item_type and assignee.
func (h *ModerationHandler) Queue(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	query := r.URL.Query()
	filter := model.QueueFilter{Status: enums.ModerationStatusPending}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, ok := enums.ParseModerationStatus(raw)
		if !ok {
			writeValidation(w, r, "status")
			return
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(query.Get("item_type")); raw != "" {
		itemType, ok := enums.ParseItemType(raw)
		if !ok {
			writeValidation(w, r, "item_type")
			return
		}
		filter.ItemType = itemType
	}
	if raw := strings.TrimSpace(query.Get("assigned_to")); raw != "" {
		var assignee uuid.UUID
		if raw == "me" {
			assignee = actor.UserID
		} else {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				writeValidation(w, r, "assigned_to")
				return
			}
			assignee = parsed
		}
		filter.AssignedTo = &assignee
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeValidation(w, r, "limit")
		return
	}
	filter.Limit = limit

	entries, err := h.service.ListQueue(r.Context(), actor, filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if entries == nil {
		entries = []model.ModerationQueueEntry{}
	}
	writeJSON(w, http.StatusOK, dto.QueueResponse{Items: entries})
}

func (h *ModerationHandler) Entry(w http.ResponseWriter, r *http.Request) {
	actor, entryID, ok := h.entryRequest(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetEntry(r.Context(), actor, entryID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *ModerationHandler) Actions(w http.ResponseWriter, r *http.Request) {
	actor, entryID, ok := h.entryRequest(w, r)
	if !ok {
		return
	}

	actions, err := h.service.ListActions(r.Context(), actor, entryID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if actions == nil {
		actions = []model.ModerationActionLog{}
	}
	writeJSON(w, http.StatusOK, dto.ActionsResponse{Items: actions})
}

func (h *ModerationHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, entryID, ok := h.entryRequest(w, r)
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	entry, err := h.service.Assign(r.Context(), actor, entryID, req.AssigneeID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, entryID, ok := h.entryRequest(w, r)
	if !ok {
		return
	}

	var req dto.ApproveRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	decision, err := h.service.Approve(r.Context(), actor, entryID, req.Notes)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DecisionResponse{Entry: decision.Entry, Action: decision.Action})
}

// Reject requires a reason so the author learns why the content was refused.
func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, entryID, ok := h.entryRequest(w, r)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeValidation(w, r, "reason")
		return
	}

	decision, err := h.service.Reject(r.Context(), actor, entryID, req.Reason)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DecisionResponse{Entry: decision.Entry, Action: decision.Action})
}

func (h *ModerationHandler) Report(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.ReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	itemType, ok := enums.ParseItemType(req.ItemType)
	if !ok {
		writeValidation(w, r, "item_type")
		return
	}
	if req.ItemID == uuid.Nil {
		writeValidation(w, r, "item_id")
		return
	}

	entry, err := h.service.Report(r.Context(), actor, itemType, req.ItemID, req.Reason)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *ModerationHandler) entryRequest(w http.ResponseWriter, r *http.Request) (model.Actor, uuid.UUID, bool) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return model.Actor{}, uuid.Nil, false
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return model.Actor{}, uuid.Nil, false
	}
	entryID, ok := uuidParam(r, "id")
	if !ok {
		writeCode(w, r, http.StatusNotFound, "NOT_FOUND")
		return model.Actor{}, uuid.Nil, false
	}
	return actor, entryID, true
}
