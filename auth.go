package dms

import (
	"github.com/hugr-lab/dms-go/auth"
)

// TokenSource supplies bearer tokens for outgoing requests.
// This is re-exported from the auth package for convenience.
type TokenSource = auth.TokenSource

// TokenFunc adapts a function to a TokenSource.
type TokenFunc = auth.TokenFunc

// StaticToken returns a TokenSource that always yields token.
// Requests fail with auth.ErrTokenIsEmpty when token is empty.
//
// Example:
//
//	client, err := dms.NewClient(dms.ClientConfig{
//	    BaseURL: "https://api.example.com",
//	    Project: "plant",
//	    Tokens:  dms.StaticToken(os.Getenv("DMS_TOKEN")),
//	})
func StaticToken(token string) TokenSource {
	return auth.StaticToken(token)
}

// NoAuth returns a TokenSource that sends no Authorization header.
// Useful for local development against an unauthenticated gateway.
func NoAuth() TokenSource {
	return auth.NoAuth()
}
