// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/playforge/authd/internal/auth"
	"github.com/playforge/authd/internal/observability"
	"github.com/playforge/authd/pkg/errutil"
)

const bearerPrefix = "Bearer "

// rolePrefix is prepended to each authority claim when building the
// principal, per the consuming authorization model's convention.
const rolePrefix = "ROLE_"

// TokenVerifier is the slice of the token codec the authentication
// pipeline needs.
type TokenVerifier interface {
	Validate(token string) (bool, error)
	ExtractUsername(token string) (string, error)
	ExtractAuthorities(token string) ([]string, error)
}

// Authentication builds the per-request authentication pipeline: it turns
// a bearer token into a Principal on the request context.
//
// This stage never rejects a request. Every failure while extracting,
// validating, or resolving reduces to "no principal attached" and is
// logged; the downstream authorization check is what answers 401/403.
func Authentication(tokens TokenVerifier, players auth.PlayerRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Idempotency guard: an earlier pipeline run already
			// authenticated this request.
			if PrincipalFrom(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			if p := authenticate(r, tok, tokens, players, logger); p != nil {
				r = withPrincipal(r, p)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authenticate resolves the token into a principal, or nil when any step
// fails. A bad token is a deterministic rejection, not a transient fault;
// nothing here is retried.
func authenticate(r *http.Request, tok string, tokens TokenVerifier, players auth.PlayerRepository, logger *slog.Logger) *Principal {
	username, err := tokens.ExtractUsername(tok)
	if err != nil {
		observability.RecordTokenRejected("malformed")
		errutil.LogError(logger, "cannot resolve token subject", err)
		return nil
	}

	if ok, err := tokens.Validate(tok); err != nil || !ok {
		observability.RecordTokenRejected(rejectionKind(err))
		errutil.LogError(logger, "token validation failed", err)
		return nil
	}

	player, err := players.GetByUsername(r.Context(), username)
	if err != nil {
		errutil.LogError(logger, "token subject has no player record", err)
		return nil
	}

	authorities, err := tokens.ExtractAuthorities(tok)
	if err != nil {
		errutil.LogError(logger, "cannot read token authorities", err)
		return nil
	}

	prefixed := make([]string, len(authorities))
	for i, a := range authorities {
		prefixed[i] = rolePrefix + a
	}

	return &Principal{
		Username:    player.Username,
		Authorities: prefixed,
		RemoteAddr:  r.RemoteAddr,
		UserAgent:   r.UserAgent(),
	}
}

// extractBearer returns the token portion of the Authorization header, or
// "" when the header is absent or not a bearer scheme.
func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLogging logs each request with method, path, status, and
// duration, and feeds the request counter.
func RequestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			observability.RecordRequest(r.Method, r.URL.Path, rec.status)
			logger.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recovery converts panics into 500 responses instead of dropped
// connections.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					writeInternalError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
