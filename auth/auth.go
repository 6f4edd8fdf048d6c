// Package auth provides token sources and Authorization header helpers for
// dms clients.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrInvalidAuthHeader is returned when the authorization header is malformed.
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenIsEmpty is returned when a token source yields an empty token.
	ErrTokenIsEmpty = errors.New("authorization token is empty")
)

// TokenSource supplies the bearer token for each request.
// Implementations MUST be goroutine-safe. Token acquisition and refresh are
// the implementation's business; the client asks once per request.
type TokenSource interface {
	// Token returns the bearer token to send.
	// Context allows timeout for token backend calls.
	Token(ctx context.Context) (string, error)
}

// noAuth is a TokenSource that sends no Authorization header.
// Used for development/testing against unauthenticated proxies.
type noAuth struct{}

// NoAuth returns a TokenSource that sends no Authorization header.
// Useful for development/testing. DO NOT use in production.
func NoAuth() TokenSource {
	return noAuth{}
}

func (noAuth) Token(context.Context) (string, error) {
	return "", nil
}

// IsNoAuth reports whether src is the NoAuth source.
func IsNoAuth(src TokenSource) bool {
	_, ok := src.(noAuth)
	return ok
}

const bearerPrefix = "Bearer "

// AuthorizationHeader formats token as a Bearer header value.
func AuthorizationHeader(token string) string {
	return bearerPrefix + token
}

// TokenFromAuthorizationHeader extracts the token from a Bearer header value.
func TokenFromAuthorizationHeader(authHeader string) (string, error) {
	// Expected format: "Bearer <token>"
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// Apply asks src for a token and sets the Authorization header on req.
// A nil src or NoAuth leaves the request untouched.
func Apply(ctx context.Context, src TokenSource, req *http.Request) error {
	if src == nil || IsNoAuth(src) {
		return nil
	}
	token, err := src.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrTokenIsEmpty
	}
	req.Header.Set("Authorization", AuthorizationHeader(token))
	return nil
}
