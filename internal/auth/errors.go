// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the authentication domain. Callers match on these
// with errors.Is; oops wrapping at the call sites adds codes and context.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when a registration collides with an
	// existing username. Reported before ErrDuplicateEmail when both apply.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateEmail is returned when a registration collides with an
	// existing email address.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrUserNotFound is returned by Login when the username is unknown.
	ErrUserNotFound = errors.New("player not found")

	// ErrBadCredentials is returned by Login when the password does not
	// match the stored hash.
	ErrBadCredentials = errors.New("invalid username or password")
)

// ValidationError reports malformed or missing input fields. Fields maps
// field name to a human-readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// newValidationError builds a ValidationError, returning nil when no
// fields failed.
func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
