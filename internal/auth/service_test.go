// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package auth_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/playforge/authd/internal/auth"
	"github.com/playforge/authd/internal/auth/mocks"
	"github.com/playforge/authd/pkg/errutil"
)

func validRegisterInput() auth.RegisterInput {
	return auth.RegisterInput{
		FirstName: "John",
		Email:     "J@Test.com",
		Password:  "Valid@123",
		Username:  "TestUser",
	}
}

func newService(t *testing.T, players *mocks.MockPlayerRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenIssuer, notifier *mocks.MockProfileNotifier) *auth.Service {
	t.Helper()
	var n auth.ProfileNotifier
	if notifier != nil {
		n = notifier
	}
	svc, err := auth.NewService(players, hasher, tokens, n, nil)
	require.NoError(t, err)
	return svc
}

func TestNewService_NilDependencies(t *testing.T) {
	players := mocks.NewMockPlayerRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	tokens := mocks.NewMockTokenIssuer(t)

	_, err := auth.NewService(nil, hasher, tokens, nil, nil)
	assert.ErrorContains(t, err, "players repository")

	_, err = auth.NewService(players, nil, tokens, nil, nil)
	assert.ErrorContains(t, err, "password hasher")

	_, err = auth.NewService(players, hasher, nil, nil, nil)
	assert.ErrorContains(t, err, "token issuer")
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("persists normalized player and returns public profile", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		notifier := mocks.NewMockProfileNotifier(t)
		svc := newService(t, players, hasher, tokens, notifier)

		players.On("GetByUsername", ctx, "testuser").Return(nil, auth.ErrNotFound)
		players.On("GetByEmail", ctx, "j@test.com").Return(nil, auth.ErrNotFound)
		hasher.On("Hash", "Valid@123").Return("hashed", nil)
		players.On("Create", ctx, mock.MatchedBy(func(p *auth.Player) bool {
			return p.Username == "testuser" &&
				p.Email == "j@test.com" &&
				p.FirstName == "John" &&
				p.PasswordHash == "hashed" &&
				p.Role == auth.RolePlayer
		})).Return(nil)
		notifier.On("PublishProfileCreated", ctx, mock.AnythingOfType("ulid.ULID")).Return(nil)

		profile, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)
		assert.Equal(t, &auth.Profile{
			FirstName: "John",
			Username:  "testuser",
			Role:      auth.RolePlayer,
		}, profile)
	})

	t.Run("duplicate username reported before email is checked", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		existing := &auth.Player{ID: ulid.Make(), Username: "testuser"}
		players.On("GetByUsername", ctx, "testuser").Return(existing, nil)
		// GetByEmail must not be called: a dual-duplicate input reports
		// the username conflict only.

		_, err := svc.Register(ctx, validRegisterInput())
		assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
		errutil.AssertErrorCode(t, err, "AUTH_DUPLICATE_USERNAME")
		errutil.AssertErrorContext(t, err, "username", "testuser")
	})

	t.Run("duplicate email", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		existing := &auth.Player{ID: ulid.Make(), Email: "j@test.com"}
		players.On("GetByUsername", ctx, "testuser").Return(nil, auth.ErrNotFound)
		players.On("GetByEmail", ctx, "j@test.com").Return(existing, nil)

		_, err := svc.Register(ctx, validRegisterInput())
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("late unique violation at insert maps to duplicate error", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		players.On("GetByUsername", ctx, "testuser").Return(nil, auth.ErrNotFound)
		players.On("GetByEmail", ctx, "j@test.com").Return(nil, auth.ErrNotFound)
		hasher.On("Hash", "Valid@123").Return("hashed", nil)
		players.On("Create", ctx, mock.AnythingOfType("*auth.Player")).
			Return(oops.Code("PLAYER_DUPLICATE_USERNAME").Wrap(auth.ErrDuplicateUsername))

		_, err := svc.Register(ctx, validRegisterInput())
		assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
	})

	t.Run("notifier failure does not fail registration", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		notifier := mocks.NewMockProfileNotifier(t)
		svc := newService(t, players, hasher, tokens, notifier)

		players.On("GetByUsername", ctx, "testuser").Return(nil, auth.ErrNotFound)
		players.On("GetByEmail", ctx, "j@test.com").Return(nil, auth.ErrNotFound)
		hasher.On("Hash", "Valid@123").Return("hashed", nil)
		players.On("Create", ctx, mock.AnythingOfType("*auth.Player")).Return(nil)
		notifier.On("PublishProfileCreated", ctx, mock.AnythingOfType("ulid.ULID")).
			Return(oops.Errorf("broker unavailable"))

		profile, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)
		assert.Equal(t, "testuser", profile.Username)
	})

	t.Run("invalid input rejected before any lookup", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		in := validRegisterInput()
		in.Password = "weak"

		_, err := svc.Register(ctx, in)
		var validationErr *auth.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues token with role authorities", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		playerID := ulid.Make()
		player := &auth.Player{
			ID:           playerID,
			Username:     "testuser",
			FirstName:    "John",
			PasswordHash: "stored-hash",
			Role:         auth.RolePlayer,
		}

		// Login lower-cases the username before lookup.
		players.On("GetByUsername", ctx, "testuser").Return(player, nil)
		hasher.On("Verify", "Valid@123", "stored-hash").Return(true, nil)
		tokens.On("Issue", playerID, "testuser", []string{"PLAYER"}).Return("signed-token", nil)

		result, err := svc.Login(ctx, auth.LoginInput{Username: "TestUser", Password: "Valid@123"})
		require.NoError(t, err)
		assert.Equal(t, &auth.AuthenticatedProfile{
			FirstName: "John",
			Username:  "testuser",
			Role:      auth.RolePlayer,
			Token:     "signed-token",
		}, result)
	})

	t.Run("unknown username yields ErrUserNotFound", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		players.On("GetByUsername", ctx, "ghost").Return(nil, auth.ErrNotFound)
		// The dummy verification still runs so unknown usernames take as
		// long as known ones.
		hasher.On("Verify", "Valid@123", mock.AnythingOfType("string")).Return(false, nil)

		_, err := svc.Login(ctx, auth.LoginInput{Username: "ghost", Password: "Valid@123"})
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
		errutil.AssertErrorCode(t, err, "AUTH_USER_NOT_FOUND")
		errutil.AssertErrorContext(t, err, "username", "ghost")
	})

	t.Run("wrong password yields ErrBadCredentials", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		player := &auth.Player{ID: ulid.Make(), Username: "testuser", PasswordHash: "stored-hash"}
		players.On("GetByUsername", ctx, "testuser").Return(player, nil)
		hasher.On("Verify", "Wrong@123", "stored-hash").Return(false, nil)

		_, err := svc.Login(ctx, auth.LoginInput{Username: "testuser", Password: "Wrong@123"})
		assert.ErrorIs(t, err, auth.ErrBadCredentials)
	})

	t.Run("missing credentials rejected before lookup", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, players, hasher, tokens, nil)

		_, err := svc.Login(ctx, auth.LoginInput{})
		var validationErr *auth.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}
