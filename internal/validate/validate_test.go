package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hugr-lab/dms-go/errors"
)

type sample struct {
	Name  string   `json:"name" validate:"required"`
	Limit int      `json:"limit" validate:"min=1,max=10"`
	Kind  string   `json:"kind,omitempty" validate:"omitempty,oneof=node edge"`
	Items []string `json:"items" validate:"min=1,max=2"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct("test", "Op", sample{Name: "n", Limit: 1, Items: []string{"a"}}))
	assert.NoError(t, Struct("test", "Op", sample{Name: "n", Limit: 10, Kind: "edge", Items: []string{"a", "b"}}))

	err := Struct("test", "Op", sample{Limit: 11, Kind: "x"})
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "limit must be <= 10")
	assert.Contains(t, err.Error(), "kind must be one of [node edge]")
	assert.Contains(t, err.Error(), "items must have at least 1 entries")
	assert.Contains(t, err.Error(), "test.Op")
}

func TestStructNotAStruct(t *testing.T) {
	err := Struct("test", "Op", 42)
	assert.True(t, errors.IsInvalidArgument(err))
}
