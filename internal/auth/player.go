// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

// Role is a player's authorization role. The service currently knows a
// single variant; the enum exists so tokens and responses carry a stable
// string form.
type Role string

// RolePlayer is the role assigned to every registered player.
const RolePlayer Role = "PLAYER"

// Player represents a player account. Username and Email are stored
// lower-cased and are each globally unique.
type Player struct {
	ID           ulid.ULID
	Username     string
	Email        string
	FirstName    string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPlayer creates a Player with normalized fields: username and email
// lower-cased, first name title-cased, role defaulted to RolePlayer.
// The password hash must already be computed; this constructor never sees
// a plaintext password.
func NewPlayer(firstName, email, username, passwordHash string) (*Player, error) {
	if passwordHash == "" {
		return nil, oops.Code("AUTH_EMPTY_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Player{
		ID:           ulid.Make(),
		Username:     strings.ToLower(username),
		Email:        strings.ToLower(email),
		FirstName:    TitleCase(firstName),
		PasswordHash: passwordHash,
		Role:         RolePlayer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// TitleCase upper-cases the first rune of a name and lower-cases the rest.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// PlayerRepository manages player persistence.
//
// Create must surface ErrDuplicateUsername or ErrDuplicateEmail (wrapped)
// when the store's unique constraints reject the insert; the application
// level pre-checks are advisory only and two concurrent registrations can
// both pass them.
type PlayerRepository interface {
	// Create stores a new player.
	Create(ctx context.Context, player *Player) error

	// GetByID retrieves a player by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Player, error)

	// GetByUsername retrieves a player by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*Player, error)

	// GetByEmail retrieves a player by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Player, error)
}
