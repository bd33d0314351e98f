// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

// Package postgres implements auth.PlayerRepository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/playforge/authd/internal/auth"
)

// Unique constraint names from the players migration. The insert maps a
// violation back to the matching duplicate error, because two concurrent
// registrations can both pass the application-level pre-check.
const (
	usernameConstraint = "players_username_key"
	emailConstraint    = "players_email_key"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock
// implements it for tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PlayerRepository implements auth.PlayerRepository using PostgreSQL.
type PlayerRepository struct {
	db DB
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(db DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create stores a new player. Unique violations surface as
// auth.ErrDuplicateUsername or auth.ErrDuplicateEmail; the row is never
// partially written.
func (r *PlayerRepository) Create(ctx context.Context, player *auth.Player) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO players (
			id, username, email, first_name, password_hash, role,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		player.ID.String(),
		player.Username,
		player.Email,
		player.FirstName,
		player.PasswordHash,
		string(player.Role),
		player.CreatedAt,
		player.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case emailConstraint:
				return oops.Code("PLAYER_DUPLICATE_EMAIL").Wrap(auth.ErrDuplicateEmail)
			default:
				return oops.Code("PLAYER_DUPLICATE_USERNAME").
					With("username", player.Username).
					Wrap(auth.ErrDuplicateUsername)
			}
		}
		return oops.Code("PLAYER_CREATE_FAILED").
			With("operation", "insert player").
			With("username", player.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a player by ID.
func (r *PlayerRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Player, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, first_name, password_hash, role,
		       created_at, updated_at
		FROM players
		WHERE id = $1
	`, id.String())

	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_BY_ID_FAILED").
			With("operation", "get player by id").
			With("id", id.String()).
			Wrap(err)
	}
	return player, nil
}

// GetByUsername retrieves a player by username (case-insensitive).
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*auth.Player, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, first_name, password_hash, role,
		       created_at, updated_at
		FROM players
		WHERE username = LOWER($1)
	`, username)

	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_BY_USERNAME_FAILED").
			With("operation", "get player by username").
			With("username", username).
			Wrap(err)
	}
	return player, nil
}

// GetByEmail retrieves a player by email (case-insensitive).
func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (*auth.Player, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, first_name, password_hash, role,
		       created_at, updated_at
		FROM players
		WHERE email = LOWER($1)
	`, email)

	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_BY_EMAIL_FAILED").
			With("operation", "get player by email").
			Wrap(err)
	}
	return player, nil
}

// scanPlayer scans a single row into a Player. Callers handle
// pgx.ErrNoRows.
func scanPlayer(row pgx.Row) (*auth.Player, error) {
	var (
		idStr        string
		username     string
		email        string
		firstName    string
		passwordHash string
		role         string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(
		&idStr,
		&username,
		&email,
		&firstName,
		&passwordHash,
		&role,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to wrap with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("PLAYER_SCAN_FAILED").
			With("operation", "scan player").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PLAYER_INVALID_ID").
			With("operation", "parse player id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Player{
		ID:           id,
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		PasswordHash: passwordHash,
		Role:         auth.Role(role),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.PlayerRepository = (*PlayerRepository)(nil)
