// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/playforge/authd/internal/auth"
	"github.com/playforge/authd/internal/observability"
	"github.com/playforge/authd/pkg/errutil"
)

// Handler serves the /auth endpoints.
type Handler struct {
	service *auth.Service
	logger  *slog.Logger
}

// NewHandler creates a Handler. A nil logger falls back to slog.Default.
func NewHandler(service *auth.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Validation error",
			Message: "Request body must be valid JSON",
		})
		return
	}

	profile, err := h.service.Register(r.Context(), in)
	if err != nil {
		observability.RecordRegistration("failure")
		errutil.LogError(h.logger, "registration failed", err)
		writeError(w, err)
		return
	}

	observability.RecordRegistration("success")
	writeJSON(w, http.StatusCreated, profile)
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Validation error",
			Message: "Request body must be valid JSON",
		})
		return
	}

	profile, err := h.service.Login(r.Context(), in)
	if err != nil {
		observability.RecordLogin("failure")
		errutil.LogError(h.logger, "login failed", err)
		writeError(w, err)
		return
	}

	observability.RecordLogin("success")
	writeJSON(w, http.StatusOK, profile)
}
