// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playforge/authd/internal/auth"
	"github.com/playforge/authd/internal/token"
)

// errorBody is the JSON shape of every error response: {error, message},
// plus a field map for validation failures.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client may disconnect mid-write
}

// writeError is the single boundary translator from domain error kind to
// HTTP status and body. UserNotFound maps to 400, not 404, matching the
// service's established outward contract.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  "Validation error",
			Errors: validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, auth.ErrDuplicateUsername):
		writeJSON(w, http.StatusConflict, errorBody{
			Error:   "Duplicate username",
			Message: "Username already exists",
		})
	case errors.Is(err, auth.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, errorBody{
			Error:   "Duplicate email",
			Message: "Email already exists",
		})
	case errors.Is(err, auth.ErrUserNotFound):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "User not found",
			Message: "Player not found",
		})
	case errors.Is(err, auth.ErrBadCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error:   "Bad credentials",
			Message: "Invalid username or password",
		})
	case errors.Is(err, token.ErrMalformed),
		errors.Is(err, token.ErrInvalidIssuer),
		errors.Is(err, token.ErrExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error:   "Invalid token",
			Message: "Token is not valid",
		})
	default:
		writeInternalError(w)
	}
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:   "Internal error",
		Message: "Internal server error",
	})
}

// rejectionKind classifies a token validation failure for metrics.
func rejectionKind(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrInvalidIssuer):
		return "invalid_issuer"
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	default:
		return "other"
	}
}
