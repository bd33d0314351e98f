// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

// Package auth provides the authentication core for the player service.
//
// # Domain Types
//
// Player records are created through NewPlayer, which normalizes the
// username and email to lower case and applies the single available role.
// Direct struct initialization bypasses normalization and may create
// invalid state.
//
// # Services
//
// Service orchestrates the two use cases of this service:
//   - Register - input validation, duplicate checks, password hashing,
//     persistence, and a best-effort profile-created notification
//   - Login - credential verification and token issuance
//
// Token production and validation live in the token package; Service only
// depends on the TokenIssuer contract.
package auth
