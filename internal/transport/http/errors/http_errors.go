package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type APIError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Field         string `json:"field,omitempty"`
	RetryAfterSec int64  `json:"retry_after_sec,omitempty"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteLocalized writes an APIError whose message is taken from the catalog
// in the language negotiated from the request.
func WriteLocalized(w http.ResponseWriter, r *http.Request, status int, apiErr APIError) {
	lang := Negotiate(r.Header.Get("Accept-Language"))
	apiErr.Message = Message(lang, apiErr.Code, apiErr.Field)
	w.Header().Set("Content-Language", lang.String())
	if apiErr.RetryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(apiErr.RetryAfterSec, 10))
	}
	Write(w, status, apiErr)
}
