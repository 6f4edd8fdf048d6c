// Package requestid propagates request ids through contexts and HTTP headers.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the request id.
const Header = "X-Request-Id"

// idKey is the unexported context key for the request id.
type idKey struct{}

// WithID returns a new context with the request id stored.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// FromContext retrieves the request id if present.
// Returns ("", false) if no id is set.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey{}).(string)
	return id, ok && id != ""
}

// Ensure returns the context's request id, generating and storing a new
// random one when none is set.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithID(ctx, id), id
}

// Set writes the id to the request header. An empty id leaves the header unset.
func Set(h http.Header, id string) {
	if id != "" {
		h.Set(Header, id)
	}
}
