package requestid

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsure(t *testing.T) {
	ctx, id := Ensure(context.Background())
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, again := Ensure(ctx)
	assert.Equal(t, id, again)
}

func TestWithID(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithID(context.Background(), ""))
	assert.False(t, ok)

	ctx, id := Ensure(WithID(context.Background(), "caller-id"))
	assert.Equal(t, "caller-id", id)
	got, _ := FromContext(ctx)
	assert.Equal(t, "caller-id", got)
}

func TestSet(t *testing.T) {
	h := http.Header{}
	Set(h, "")
	assert.Empty(t, h.Get(Header))
	Set(h, "abc")
	assert.Equal(t, "abc", h.Get(Header))
}
