// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package auth

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Password policy constraints.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 20

	// passwordSymbols is the fixed punctuation set a password must draw
	// at least one character from.
	passwordSymbols = "@#$%^&+=!"
)

// ValidPassword reports whether the password satisfies the policy: 8-20
// characters, at least one ASCII upper-case letter, one ASCII lower-case
// letter, one digit, one symbol from the fixed set, and no whitespace
// anywhere. Other characters are allowed but satisfy no class.
//
// The check is a single combined predicate: a password violating several
// rules yields the same generic outcome as one violating a single rule.
func ValidPassword(password string) bool {
	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	return upper && lower && digit && symbol
}

// RegisterInput is the registration request payload.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
}

// Validate checks all fields and returns a *ValidationError carrying a
// field-to-message map, or nil when the input is well formed.
func (in RegisterInput) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(in.FirstName) == "" {
		fields["firstName"] = "First name cannot be empty"
	}

	if strings.TrimSpace(in.Email) == "" {
		fields["email"] = "Email cannot be empty"
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields["email"] = "Email must be valid"
	}

	if strings.TrimSpace(in.Username) == "" {
		fields["username"] = "Username cannot be empty"
	} else if len(in.Username) < MinUsernameLength || len(in.Username) > MaxUsernameLength {
		fields["username"] = "Username must be between 3 and 20 characters"
	}

	if in.Password == "" {
		fields["password"] = "Password cannot be empty"
	} else if !ValidPassword(in.Password) {
		fields["password"] = "Invalid password"
	}

	return newValidationError(fields)
}

// LoginInput is the login request payload.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (in LoginInput) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Username) == "" {
		fields["username"] = "Username cannot be empty"
	}
	if in.Password == "" {
		fields["password"] = "Password cannot be empty"
	}
	return newValidationError(fields)
}
