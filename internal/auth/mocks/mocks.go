// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

// Package mocks provides testify mocks for the auth package's contracts.
package mocks

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/playforge/authd/internal/auth"
)

// MockPlayerRepository is a testify mock for auth.PlayerRepository.
type MockPlayerRepository struct {
	mock.Mock
}

// NewMockPlayerRepository creates a mock whose expectations are asserted
// at test cleanup.
func NewMockPlayerRepository(t *testing.T) *MockPlayerRepository {
	t.Helper()
	m := &MockPlayerRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPlayerRepository) Create(ctx context.Context, player *auth.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Player, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*auth.Player); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlayerRepository) GetByUsername(ctx context.Context, username string) (*auth.Player, error) {
	args := m.Called(ctx, username)
	if p, ok := args.Get(0).(*auth.Player); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlayerRepository) GetByEmail(ctx context.Context, email string) (*auth.Player, error) {
	args := m.Called(ctx, email)
	if p, ok := args.Get(0).(*auth.Player); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPasswordHasher is a testify mock for auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// MockTokenIssuer is a testify mock for auth.TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func NewMockTokenIssuer(t *testing.T) *MockTokenIssuer {
	t.Helper()
	m := &MockTokenIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenIssuer) Issue(subject ulid.ULID, username string, authorities []string) (string, error) {
	args := m.Called(subject, username, authorities)
	return args.String(0), args.Error(1)
}

// MockProfileNotifier is a testify mock for auth.ProfileNotifier.
type MockProfileNotifier struct {
	mock.Mock
}

func NewMockProfileNotifier(t *testing.T) *MockProfileNotifier {
	t.Helper()
	m := &MockProfileNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockProfileNotifier) PublishProfileCreated(ctx context.Context, playerID ulid.ULID) error {
	args := m.Called(ctx, playerID)
	return args.Error(0)
}
