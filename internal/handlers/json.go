// Package handlers exposes the JSON HTTP API over the service layer.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tripledger/tripledger/internal/auth"
	"github.com/tripledger/tripledger/internal/errs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func sendJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON decodes the request body into dst, rejecting unknown
// fields so client typos surface as 400s instead of silent drops.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// handleError maps the service error taxonomy to HTTP statuses.
// Anything outside the taxonomy is an internal error; its detail is
// logged, not leaked.
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errs.IsValidation(err):
		sendJSONError(w, err.Error(), http.StatusBadRequest)
	case errs.IsNotFound(err):
		sendJSONError(w, err.Error(), http.StatusNotFound)
	case errs.IsAuthorization(err):
		sendJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, auth.ErrInvalidCredentials):
		sendJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrEmailExists):
		sendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, auth.ErrWeakPassword):
		sendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("internal error", "error", err)
		sendJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
