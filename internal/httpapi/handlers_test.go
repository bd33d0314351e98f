// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/playforge/authd/internal/auth"
	"github.com/playforge/authd/internal/auth/mocks"
	"github.com/playforge/authd/internal/httpapi"
)

type apiFixture struct {
	players *mocks.MockPlayerRepository
	hasher  *mocks.MockPasswordHasher
	tokens  *mocks.MockTokenIssuer
	router  http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	players := mocks.NewMockPlayerRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	tokens := mocks.NewMockTokenIssuer(t)

	svc, err := auth.NewService(players, hasher, tokens, nil, nil)
	require.NoError(t, err)

	handler := httpapi.NewHandler(svc, nil)
	router := httpapi.NewRouter(handler, nopVerifier{}, players, nil)

	return &apiFixture{players: players, hasher: hasher, tokens: tokens, router: router}
}

// nopVerifier satisfies the verifier contract for routes exercised without
// bearer tokens.
type nopVerifier struct{}

func (nopVerifier) Validate(string) (bool, error)               { return false, nil }
func (nopVerifier) ExtractUsername(string) (string, error)      { return "", nil }
func (nopVerifier) ExtractAuthorities(string) ([]string, error) { return nil, nil }

func (f *apiFixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	const body = `{"firstName":"jOHN","email":"J@Test.com","password":"Valid@123","username":"TestUser"}`

	t.Run("creates player and returns normalized profile", func(t *testing.T) {
		f := newAPIFixture(t)
		f.players.On("GetByUsername", mock.Anything, "testuser").Return(nil, auth.ErrNotFound)
		f.players.On("GetByEmail", mock.Anything, "j@test.com").Return(nil, auth.ErrNotFound)
		f.hasher.On("Hash", "Valid@123").Return("hashed", nil)
		f.players.On("Create", mock.Anything, mock.AnythingOfType("*auth.Player")).Return(nil)

		rec := f.post(t, "/auth/register", body)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"firstName":"John","username":"testuser","role":"PLAYER"}`, rec.Body.String())
	})

	t.Run("duplicate username yields 409", func(t *testing.T) {
		f := newAPIFixture(t)
		f.players.On("GetByUsername", mock.Anything, "testuser").
			Return(&auth.Player{ID: ulid.Make(), Username: "testuser"}, nil)

		rec := f.post(t, "/auth/register", body)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"Duplicate username","message":"Username already exists"}`, rec.Body.String())
	})

	t.Run("duplicate email yields 409", func(t *testing.T) {
		f := newAPIFixture(t)
		f.players.On("GetByUsername", mock.Anything, "testuser").Return(nil, auth.ErrNotFound)
		f.players.On("GetByEmail", mock.Anything, "j@test.com").
			Return(&auth.Player{ID: ulid.Make(), Email: "j@test.com"}, nil)

		rec := f.post(t, "/auth/register", body)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"Duplicate email","message":"Email already exists"}`, rec.Body.String())
	})

	t.Run("invalid input yields 400 with field errors", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.post(t, "/auth/register", `{"firstName":"","email":"bad","password":"weak","username":"ab"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"Validation error"`)
		assert.Contains(t, rec.Body.String(), `"password":"Invalid password"`)
	})

	t.Run("malformed JSON yields 400", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.post(t, "/auth/register", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Request body must be valid JSON")
	})

	t.Run("repository failure yields 500", func(t *testing.T) {
		f := newAPIFixture(t)
		f.players.On("GetByUsername", mock.Anything, "testuser").
			Return(nil, assert.AnError)

		rec := f.post(t, "/auth/register", body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal error","message":"Internal server error"}`, rec.Body.String())
	})

	t.Run("GET is not routed", func(t *testing.T) {
		f := newAPIFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/auth/register", nil)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	const body = `{"username":"TestUser","password":"Valid@123"}`

	t.Run("returns profile with token", func(t *testing.T) {
		f := newAPIFixture(t)
		playerID := ulid.Make()
		f.players.On("GetByUsername", mock.Anything, "testuser").Return(&auth.Player{
			ID:           playerID,
			Username:     "testuser",
			FirstName:    "John",
			PasswordHash: "stored-hash",
			Role:         auth.RolePlayer,
		}, nil)
		f.hasher.On("Verify", "Valid@123", "stored-hash").Return(true, nil)
		f.tokens.On("Issue", playerID, "testuser", []string{"PLAYER"}).Return("signed-token", nil)

		rec := f.post(t, "/auth/login", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"firstName":"John","username":"testuser","role":"PLAYER","token":"signed-token"}`, rec.Body.String())
	})

	t.Run("unknown username yields 400", func(t *testing.T) {
		f := newAPIFixture(t)
		f.players.On("GetByUsername", mock.Anything, "testuser").Return(nil, auth.ErrNotFound)
		f.hasher.On("Verify", "Valid@123", mock.AnythingOfType("string")).Return(false, nil)

		rec := f.post(t, "/auth/login", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"User not found","message":"Player not found"}`, rec.Body.String())
	})

	t.Run("wrong password yields 401", func(t *testing.T) {
		f := newAPIFixture(t)
		f.players.On("GetByUsername", mock.Anything, "testuser").
			Return(&auth.Player{ID: ulid.Make(), Username: "testuser", PasswordHash: "stored-hash"}, nil)
		f.hasher.On("Verify", "Valid@123", "stored-hash").Return(false, nil)

		rec := f.post(t, "/auth/login", body)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Bad credentials","message":"Invalid username or password"}`, rec.Body.String())
	})

	t.Run("missing credentials yield 400", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.post(t, "/auth/login", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"Validation error"`)
	})
}
