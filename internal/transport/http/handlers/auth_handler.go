package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/auth"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/dto"
)

type AuthHandler struct {
	service *authsvc.Service
	log     *zap.Logger
}

func NewAuthHandler(service *authsvc.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: loggerOrNop(log)}
}

// Exchange trades a platform identity token for a portal session.
func (h *AuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.SessionExchangeRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Token) == "" {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	res, err := h.service.Exchange(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	res, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r)
		return
	}

	if err := h.service.Logout(r.Context(), identity.SID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, r)
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r)
		return
	}

	if err := h.service.LogoutAll(r.Context(), identity.UserID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func tokensResponse(res authsvc.AuthResult) dto.AuthTokensResponse {
	return dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.AccessExpires).Seconds())),
		Me: dto.AuthMeResponse{
			ID:       res.Me.ID,
			TenantID: res.Me.TenantID,
			Role:     string(res.Me.Role),
		},
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
