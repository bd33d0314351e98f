// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/playforge/authd/pkg/errutil"
)

// TokenIssuer produces signed session tokens. Implemented by token.Codec.
type TokenIssuer interface {
	// Issue signs a token for the subject with the given authorities.
	// The username travels as a custom claim so the authentication
	// pipeline can resolve the principal without decoding the subject.
	Issue(subject ulid.ULID, username string, authorities []string) (string, error)
}

// ProfileNotifier announces newly registered players so a companion
// profile can be created elsewhere. Delivery is best effort; failures
// never affect the registration that triggered them.
type ProfileNotifier interface {
	PublishProfileCreated(ctx context.Context, playerID ulid.ULID) error
}

// Profile is the public-safe projection of a player returned by Register.
// Email and the password hash are never exposed outward.
type Profile struct {
	FirstName string `json:"firstName"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
}

// AuthenticatedProfile is the Login response: public profile plus token.
type AuthenticatedProfile struct {
	FirstName string `json:"firstName"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	Token     string `json:"token"`
}

// Service orchestrates registration and login.
type Service struct {
	players  PlayerRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier ProfileNotifier
	logger   *slog.Logger
}

// NewService creates a Service. All dependencies except the notifier are
// required; a nil notifier disables profile-created announcements.
func NewService(players PlayerRepository, hasher PasswordHasher, tokens TokenIssuer, notifier ProfileNotifier, logger *slog.Logger) (*Service, error) {
	if players == nil {
		return nil, oops.Errorf("players repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		players:  players,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing
// attacks: password verification still runs so the response time is
// consistent. This is NOT a real credential and never matches a password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new player account.
//
// Duplicate checks run username first, then email, so an input colliding
// on both always reports the username conflict. The check-then-insert
// pair is not linearizable under concurrency; a unique violation surfaced
// by Create maps to the same duplicate errors as the pre-check.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	username := strings.ToLower(in.Username)
	email := strings.ToLower(in.Email)

	s.logger.Info("registering new player", "username", username)

	if err := s.checkDuplicateUsername(ctx, username); err != nil {
		return nil, err
	}
	if err := s.checkDuplicateEmail(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	player, err := NewPlayer(in.FirstName, email, username, hash)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "construct player").
			Wrap(err)
	}

	if err := s.players.Create(ctx, player); err != nil {
		// The store's unique constraints are the real authority on
		// uniqueness; a late violation is reported exactly like a
		// pre-check hit.
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "persist player").
			With("username", username).
			Wrap(err)
	}

	s.announceProfileCreated(ctx, player.ID)

	return &Profile{
		FirstName: player.FirstName,
		Username:  player.Username,
		Role:      player.Role,
	}, nil
}

// Login verifies credentials and issues a session token. An unknown
// username yields ErrUserNotFound; a wrong password yields
// ErrBadCredentials. The boundary collapses both into generic messages;
// the distinction exists for logging and status mapping only.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthenticatedProfile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	username := strings.ToLower(in.Username)
	s.logger.Info("logging in player", "username", username)

	player, lookupErr := s.players.GetByUsername(ctx, username)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Verify against a dummy hash anyway so unknown usernames
			// take as long as known ones.
			_, _ = s.hasher.Verify(in.Password, dummyPasswordHash) //nolint:errcheck // timing equalization only
			return nil, oops.Code("AUTH_USER_NOT_FOUND").
				With("username", username).
				Wrap(ErrUserNotFound)
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get player by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(in.Password, player.PasswordHash)
	if verifyErr != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !valid {
		return nil, oops.Code("AUTH_BAD_CREDENTIALS").
			With("username", username).
			Wrap(ErrBadCredentials)
	}

	// Authorities carry the role only; the username rides in its own claim.
	authorities := []string{string(player.Role)}

	tok, err := s.tokens.Issue(player.ID, player.Username, authorities)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	return &AuthenticatedProfile{
		FirstName: player.FirstName,
		Username:  player.Username,
		Role:      player.Role,
		Token:     tok,
	}, nil
}

func (s *Service) checkDuplicateUsername(ctx context.Context, username string) error {
	_, err := s.players.GetByUsername(ctx, username)
	if err == nil {
		return oops.Code("AUTH_DUPLICATE_USERNAME").
			With("username", username).
			Wrap(ErrDuplicateUsername)
	}
	if !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check duplicate username").
			Wrap(err)
	}
	return nil
}

func (s *Service) checkDuplicateEmail(ctx context.Context, email string) error {
	_, err := s.players.GetByEmail(ctx, email)
	if err == nil {
		return oops.Code("AUTH_DUPLICATE_EMAIL").Wrap(ErrDuplicateEmail)
	}
	if !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check duplicate email").
			Wrap(err)
	}
	return nil
}

// announceProfileCreated publishes the profile-created event. Failures
// are logged and never surfaced; the registration already committed.
func (s *Service) announceProfileCreated(ctx context.Context, playerID ulid.ULID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishProfileCreated(ctx, playerID); err != nil {
		errutil.LogError(s.logger, "profile-created notification failed", err)
	}
}
