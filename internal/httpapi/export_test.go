// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package httpapi

import "net/http"

// WithPrincipalForTest attaches a principal before next runs, simulating
// an earlier pipeline stage having already authenticated the request.
func WithPrincipalForTest(next http.Handler, p *Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, withPrincipal(r, p))
	})
}
