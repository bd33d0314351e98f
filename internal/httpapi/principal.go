// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package httpapi

import (
	"context"
	"net/http"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the trusted identity attached to a request after the
// authentication pipeline accepted its bearer token. It lives only for
// the request that produced it.
type Principal struct {
	Username    string
	Authorities []string
	RemoteAddr  string
	UserAgent   string
}

// HasAuthority reports whether the principal carries the given authority.
func (p *Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// withPrincipal attaches the principal to the request context.
func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalContextKey, p))
}

// PrincipalFrom returns the authenticated principal for this request, or
// nil when the request is anonymous.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey).(*Principal)
	return p
}
