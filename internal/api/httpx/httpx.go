package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paltabank/bank-api/internal/apperr"
)

type APIError struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

type Success struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details []string) {
	WriteJSON(w, status, APIError{Error: msg, Code: code, Details: details})
}

// WriteFailure maps the closed failure taxonomy onto status codes; anything
// outside it is an infrastructure error and becomes a plain 500.
func WriteFailure(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	status, code := statusOf(e.Kind)
	WriteError(w, status, code, e.Error(), e.Messages)
}

func statusOf(k apperr.Kind) (int, string) {
	switch k {
	case apperr.KindBadRequest:
		return http.StatusBadRequest, "bad_request"
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case apperr.KindForbidden:
		return http.StatusForbidden, "forbidden"
	case apperr.KindNotFound:
		return http.StatusNotFound, "not_found"
	case apperr.KindConflict:
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
