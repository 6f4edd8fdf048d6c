package auth

import (
	"context"
)

// staticToken always returns the same token.
type staticToken string

// StaticToken creates a TokenSource that always returns token.
// This is the simplest way to authenticate.
//
// Example:
//
//	client, err := dms.NewClient(dms.ClientConfig{
//	    BaseURL: "https://api.example.com",
//	    Project: "plant",
//	    Tokens:  auth.StaticToken(os.Getenv("DMS_TOKEN")),
//	})
func StaticToken(token string) TokenSource {
	return staticToken(token)
}

func (s staticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrTokenIsEmpty
	}
	return string(s), nil
}

// TokenFunc adapts a function to TokenSource.
//
// Example:
//
//	tokens := auth.TokenFunc(func(ctx context.Context) (string, error) {
//	    return myIdentityProvider.AccessToken(ctx)
//	})
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
