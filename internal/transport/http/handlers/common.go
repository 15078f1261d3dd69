package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/pkg/validate"
	authsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/auth"
	gamificationsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/gamification"
	marketplacesvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/marketplace"
	modsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
	httperrors "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/errors"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// decodeOptionalJSON accepts an empty body, whatever its framing, as the zero request.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if err := decodeJSON(w, r, target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func actorFromRequest(r *http.Request) (model.Actor, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		return model.Actor{}, false
	}
	actor := model.Actor{UserID: identity.UserID, TenantID: identity.TenantID}
	return actor, actor.Authenticated()
}

func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// queryLimit returns 0 (service default) when the parameter is absent.
func queryLimit(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	httperrors.Write(w, status, payload)
}

func writeCode(w http.ResponseWriter, r *http.Request, status int, code string) {
	httperrors.WriteLocalized(w, r, status, httperrors.APIError{Code: code})
}

func writeValidation(w http.ResponseWriter, r *http.Request, field string) {
	httperrors.WriteLocalized(w, r, http.StatusBadRequest, httperrors.APIError{Code: "VALIDATION_ERROR", Field: field})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeCode(w, r, http.StatusUnauthorized, "UNAUTHORIZED")
}

func writeUnavailable(w http.ResponseWriter, r *http.Request) {
	writeCode(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
}

// writeError maps service errors to API errors. Unexpected errors are logged
// and never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var verrs validate.Errors
	var rateErr *modsvc.RateLimitedError

	switch {
	case errors.As(err, &verrs):
		writeValidation(w, r, verrs.First().Field)
	case errors.As(err, &rateErr):
		httperrors.WriteLocalized(w, r, http.StatusTooManyRequests, httperrors.APIError{
			Code:          "TOO_MANY_REQUESTS",
			RetryAfterSec: rateErr.RetryAfterSec,
		})
	case errors.Is(err, modsvc.ErrUnauthenticated),
		errors.Is(err, authsvc.ErrUnauthorized),
		errors.Is(err, authsvc.ErrSessionNotFound),
		errors.Is(err, authsvc.ErrRefreshNotFound):
		writeUnauthorized(w, r)
	case errors.Is(err, modsvc.ErrForbidden),
		errors.Is(err, authsvc.ErrNotMember),
		errors.Is(err, gamificationsvc.ErrForbidden):
		writeCode(w, r, http.StatusForbidden, "FORBIDDEN")
	case errors.Is(err, modsvc.ErrNotVerified):
		writeCode(w, r, http.StatusForbidden, "NOT_VERIFIED")
	case errors.Is(err, marketplacesvc.ErrNotOwner):
		writeCode(w, r, http.StatusForbidden, "NOT_OWNER")
	case errors.Is(err, model.ErrNotFound):
		writeCode(w, r, http.StatusNotFound, "NOT_FOUND")
	case errors.Is(err, modsvc.ErrAlreadyResolved):
		writeCode(w, r, http.StatusConflict, "ALREADY_RESOLVED")
	case errors.Is(err, modsvc.ErrDuplicatePending):
		writeCode(w, r, http.StatusConflict, "DUPLICATE_REPORT")
	case errors.Is(err, gamificationsvc.ErrAlreadyAwarded):
		writeCode(w, r, http.StatusConflict, "ALREADY_AWARDED")
	case errors.Is(err, marketplacesvc.ErrNotSellable):
		writeCode(w, r, http.StatusConflict, "NOT_SELLABLE")
	case errors.Is(err, model.ErrConflict):
		writeCode(w, r, http.StatusConflict, "CONFLICT")
	case errors.Is(err, modsvc.ErrUnsupportedItemType):
		writeValidation(w, r, "item_type")
	case errors.Is(err, modsvc.ErrInvalidAssignee):
		writeValidation(w, r, "assignee_id")
	case errors.Is(err, gamificationsvc.ErrNotMember):
		writeValidation(w, r, "user_id")
	case errors.Is(err, gamificationsvc.ErrUnknownBadge):
		writeCode(w, r, http.StatusBadRequest, "UNKNOWN_BADGE")
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeCode(w, r, http.StatusBadRequest, "INVALID_REQUEST")
	default:
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		writeCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR")
	}
}

func loggerOrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
