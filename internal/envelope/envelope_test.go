package envelope

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	obj, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, obj)

	obj, err = Parse([]byte("  null"))
	assert.Error(t, err)
	assert.Nil(t, obj)

	_, err = Parse([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestAccessors(t *testing.T) {
	obj, err := Parse([]byte(`{
		"s": "text",
		"b": true,
		"i": 1700000000123,
		"f": 2.5,
		"fi": 7,
		"v": 3,
		"vs": "v2",
		"n": null,
		"wrong": "not-a-number",
		"o": {"x": 1},
		"a": [{"k": 1}, 2, {"k": 3}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "text", obj.String("s"))
	assert.Equal(t, "", obj.String("missing"))
	assert.Equal(t, "", obj.String("b"))
	assert.True(t, obj.Bool("b"))
	assert.Equal(t, int64(1700000000123), obj.Int64("i"))
	assert.Equal(t, int64(0), obj.Int64("wrong"))
	assert.Equal(t, int64(2), obj.Int64("f"))
	assert.Equal(t, 2.5, obj.Float64("f"))
	assert.Equal(t, 7.0, obj.Float64("fi"))

	f, ok := obj.OptionalFloat64("n")
	assert.False(t, ok)
	assert.Zero(t, f)

	assert.Equal(t, "3", obj.Version("v"))
	assert.Equal(t, "v2", obj.Version("vs"))
	assert.Equal(t, "", obj.Version("missing"))

	assert.Equal(t, time.UnixMilli(1700000000123).UTC(), obj.Millis("i"))
	assert.True(t, obj.Millis("missing").IsZero())

	assert.False(t, obj.Has("n"))
	assert.True(t, obj.Has("s"))
	assert.Nil(t, obj.Raw("n"))

	assert.Equal(t, int64(1), obj.Object("o").Int64("x"))
	assert.Empty(t, obj.Object("missing"))
	assert.Empty(t, obj.Object("s"))

	assert.Len(t, obj.Array("a"), 3)
	objs := obj.Objects("a")
	require.Len(t, objs, 2)
	assert.Equal(t, int64(3), objs[1].Int64("k"))

	assert.Equal(t, json.Number("7"), obj.Value("fi"))
	assert.Nil(t, obj.Value("n"))
}
