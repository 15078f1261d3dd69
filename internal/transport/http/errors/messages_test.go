package errors

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	cases := map[string]language.Tag{
		"":                        language.Italian,
		"en-US,en;q=0.9":          language.English,
		"fr-FR,fr;q=0.9":          language.Italian,
		"de;q=0.8, en-GB;q=0.7":   language.English,
		"it-IT,it;q=0.9,en;q=0.8": language.Italian,
		"not a header;;":          language.Italian,
	}
	for header, want := range cases {
		if got := Negotiate(header); got != want {
			t.Fatalf("Negotiate(%q) = %s, want %s", header, got, want)
		}
	}
}

func TestWriteLocalizedValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/marketplace", nil)
	req.Header.Set("Accept-Language", "en")
	rr := httptest.NewRecorder()

	WriteLocalized(rr, req, http.StatusBadRequest, APIError{Code: "VALIDATION_ERROR", Field: "price"})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"field":"price"`) || !strings.Contains(body, "The price field is invalid.") {
		t.Fatalf("unexpected body: %s", body)
	}
	if rr.Header().Get("Content-Language") != "en" {
		t.Fatalf("unexpected content language %q", rr.Header().Get("Content-Language"))
	}
}

func TestWriteLocalizedRateLimitSetsRetryAfter(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/reports", nil)
	rr := httptest.NewRecorder()

	WriteLocalized(rr, req, http.StatusTooManyRequests, APIError{Code: "TOO_MANY_REQUESTS", RetryAfterSec: 42})

	if rr.Header().Get("Retry-After") != "42" {
		t.Fatalf("unexpected Retry-After %q", rr.Header().Get("Retry-After"))
	}
	if !strings.Contains(rr.Body.String(), "Troppe richieste") || !strings.Contains(rr.Body.String(), `"retry_after_sec":42`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
