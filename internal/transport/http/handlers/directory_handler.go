package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	directorysvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/directory"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
)

const whatsAppGreeting = "Ciao, ti contatto dal portale di quartiere."

type DirectoryHandler struct {
	service *directorysvc.Service
	log     *zap.Logger
}

func NewDirectoryHandler(service *directorysvc.Service, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{service: service, log: loggerOrNop(log)}
}

func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
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

	profiles, err := h.service.ListApproved(r.Context(), actor.TenantID, r.URL.Query().Get("category"), limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := dto.ProfilesResponse{Items: make([]dto.ProfileResponse, 0, len(profiles))}
	for _, profile := range profiles {
		resp.Items = append(resp.Items, profileResponse(profile))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DirectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.CreateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), actor, directorysvc.ProfileDraft{
		BusinessName: req.BusinessName,
		Category:     req.Category,
		Description:  req.Description,
		Phone:        req.Phone,
		WhatsApp:     req.WhatsApp,
		Volunteer:    req.Volunteer,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, profileResponse(profile))
}

func profileResponse(profile model.ServiceProfile) dto.ProfileResponse {
	resp := dto.ProfileResponse{ServiceProfile: profile}
	if profile.WhatsApp != "" {
		if link, err := directorysvc.WhatsAppLink(profile.WhatsApp, whatsAppGreeting); err == nil {
			resp.WhatsAppLink = link
		}
	}
	return resp
}
