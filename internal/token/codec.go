// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

// Package token builds and parses the signed claims tokens this service
// issues at login and verifies on every authenticated request.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// clockSkew is the tolerance applied to the expiry check. One second
// absorbs clock drift between services without widening the trust window
// meaningfully.
const clockSkew = time.Second

// authoritiesClaim and usernameClaim are the custom claims embedded next
// to the registered sub/iss/iat/exp set.
const (
	authoritiesClaim = "authorities"
	usernameClaim    = "username"
)

// Typed validation failures. Issuer and expiry are distinct kinds rather
// than one boolean: a foreign-issuer token is rejected outright while a
// stale token tells the client to re-authenticate.
var (
	// ErrMalformed covers structural and signature failures, independent
	// of expiry.
	ErrMalformed = errors.New("malformed token")

	// ErrInvalidIssuer is returned when the iss claim does not exactly
	// match the configured issuer.
	ErrInvalidIssuer = errors.New("invalid token issuer")

	// ErrExpired matches any ExpiredError via errors.Is.
	ErrExpired = errors.New("token expired")
)

// ExpiredError reports a token past its expiry, carrying the expiration
// timestamp for diagnostics.
type ExpiredError struct {
	ExpiredAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("token expired at %s", e.ExpiredAt.UTC().Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrExpired) match.
func (e *ExpiredError) Is(target error) bool {
	return target == ErrExpired
}

// Config holds the codec's signing material and policy. It is read once
// at construction; the codec never mutates it afterwards.
type Config struct {
	// Secret is the shared HMAC key material.
	Secret string

	// Issuer is stamped into every token and required verbatim on
	// validation.
	Issuer string

	// TTL is the validity window applied at issuance.
	TTL time.Duration
}

// Codec signs and verifies HMAC-SHA256 claims tokens. Safe for concurrent
// use: all fields are set at construction and read-only thereafter.
type Codec struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates a Codec from an immutable config.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secret is required")
	}
	if cfg.Issuer == "" {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("issuer is required")
	}
	return &Codec{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token with sub=subject, iss=configured issuer, iat=now,
// exp=now+TTL, plus username and authorities claims. The authorities list
// is embedded verbatim (order preserved, duplicates allowed); nil becomes
// an empty list.
func (c *Codec) Issue(subject ulid.ULID, username string, authorities []string) (string, error) {
	now := c.now()

	// A nil slice would serialize the claim as JSON null; extraction
	// expects an array.
	if authorities == nil {
		authorities = []string{}
	}

	builder := jwt.NewBuilder().
		Subject(subject.String()).
		Issuer(c.issuer).
		IssuedAt(now).
		Expiration(now.Add(c.ttl)).
		Claim(usernameClaim, username).
		Claim(authoritiesClaim, authorities)

	tok, err := builder.Build()
	if err != nil {
		return "", oops.Code("TOKEN_BUILD_FAILED").Wrap(err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, c.key))
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}

	return string(signed), nil
}

// parse verifies the signature and decodes the claims. Expiry is not
// checked here; Validate owns time-based checks.
func (c *Codec) parse(token string) (jwt.Token, error) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, c.key),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, oops.Code("TOKEN_MALFORMED").
			With("cause", err.Error()).
			Wrap(ErrMalformed)
	}
	return tok, nil
}

// ExtractSubjectID returns the sub claim parsed as a player ID.
func (c *Codec) ExtractSubjectID(token string) (ulid.ULID, error) {
	tok, err := c.parse(token)
	if err != nil {
		return ulid.ULID{}, err
	}
	id, err := ulid.Parse(tok.Subject())
	if err != nil {
		return ulid.ULID{}, oops.Code("TOKEN_MALFORMED").
			With("operation", "parse subject id").
			Wrap(ErrMalformed)
	}
	return id, nil
}

// ExtractUsername returns the username claim.
func (c *Codec) ExtractUsername(token string) (string, error) {
	tok, err := c.parse(token)
	if err != nil {
		return "", err
	}
	v, ok := tok.Get(usernameClaim)
	if !ok {
		return "", oops.Code("TOKEN_MALFORMED").
			With("operation", "read username claim").
			Wrap(ErrMalformed)
	}
	username, ok := v.(string)
	if !ok {
		return "", oops.Code("TOKEN_MALFORMED").
			With("operation", "read username claim").
			Wrap(ErrMalformed)
	}
	return username, nil
}

// ExtractAuthorities returns the authorities claim verbatim, with no
// transformation or dedup.
func (c *Codec) ExtractAuthorities(token string) ([]string, error) {
	tok, err := c.parse(token)
	if err != nil {
		return nil, err
	}
	v, ok := tok.Get(authoritiesClaim)
	if !ok {
		return nil, oops.Code("TOKEN_MALFORMED").
			With("operation", "read authorities claim").
			Wrap(ErrMalformed)
	}

	// JSON decoding yields []interface{}; convert element-wise.
	raw, ok := v.([]interface{})
	if !ok {
		return nil, oops.Code("TOKEN_MALFORMED").
			With("operation", "read authorities claim").
			Wrap(ErrMalformed)
	}
	authorities := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, oops.Code("TOKEN_MALFORMED").
				With("operation", "read authorities claim").
				Wrap(ErrMalformed)
		}
		authorities = append(authorities, s)
	}
	return authorities, nil
}

// Validate checks the token in order: signature and structure, then
// issuer, then expiry. Each failure kind has its own error so callers can
// distinguish a foreign token from a stale one.
func (c *Codec) Validate(token string) (bool, error) {
	tok, err := c.parse(token)
	if err != nil {
		return false, err
	}

	if tok.Issuer() != c.issuer {
		return false, oops.Code("TOKEN_INVALID_ISSUER").
			With("issuer", tok.Issuer()).
			Wrap(ErrInvalidIssuer)
	}

	exp := tok.Expiration()
	if c.now().After(exp.Add(clockSkew)) {
		return false, oops.Code("TOKEN_EXPIRED").
			With("expired_at", exp.UTC()).
			Wrap(&ExpiredError{ExpiredAt: exp})
	}

	return true, nil
}
