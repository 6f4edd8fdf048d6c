package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/dms-go/errors"
)

const sampleResponse = `{
	"items": {
		"pumps": [
			{"instanceType":"node","space":"plant","externalId":"p1","version":3,"createdTime":1,"lastUpdatedTime":2,
			 "properties":{"plant":{"Pump/v1":{"name":"P-1"}}}},
			{"instanceType":"node","space":"plant","externalId":"p2","version":1}
		],
		"feeds": []
	},
	"nextCursor": {"pumps": "c-123", "feeds": null}
}`

func TestParseResult(t *testing.T) {
	res, err := ParseResult([]byte(sampleResponse))
	require.NoError(t, err)

	assert.Len(t, res.Items["pumps"], 2)
	assert.Empty(t, res.Items["feeds"])
	require.NotNil(t, res.NextCursor["pumps"])
	assert.Equal(t, "c-123", *res.NextCursor["pumps"])
	assert.Nil(t, res.NextCursor["feeds"])
	assert.True(t, res.HasMore())
	assert.Equal(t, map[string]string{"pumps": "c-123"}, res.Cursors())

	nodes, err := DecodeItems[Node](res, "pumps")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "p1", nodes[0].ExternalID)
	assert.Equal(t, int64(3), nodes[0].Version)
	assert.Equal(t, "P-1", nodes[0].Properties["plant"]["Pump/v1"]["name"])

	missing, err := DecodeItems[Node](res, "nothing")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestParseResultDefensive(t *testing.T) {
	res, err := ParseResult([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.False(t, res.HasMore())

	res, err = ParseResult([]byte(`{"nextCursor":{"a":null,"b":null}}`))
	require.NoError(t, err)
	assert.False(t, res.HasMore())

	_, err = ParseResult([]byte(`[1,2]`))
	assert.ErrorIs(t, err, errors.ErrDecode)
}

func TestDecodeItemsError(t *testing.T) {
	res, err := ParseResult([]byte(`{"items":{"pumps":["not an object"]}}`))
	require.NoError(t, err)
	_, err = DecodeItems[Node](res, "pumps")
	assert.ErrorIs(t, err, errors.ErrDecode)
	assert.ErrorContains(t, err, "pumps[0]")
}
