package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/dms-go/errors"
)

func TestCheckpointRoundTrip(t *testing.T) {
	batch := Batch{
		Cursors:   map[string]string{"pumps": "old"},
		Next:      map[string]string{"pumps": "new", "feeds": "f1"},
		FetchedAt: time.UnixMilli(1700000000000).UTC(),
	}

	token, err := batch.Checkpoint().Encode()
	require.NoError(t, err)

	cp, err := DecodeCheckpoint(token)
	require.NoError(t, err)
	assert.Equal(t, batch.Next, cp.Cursors)
	assert.True(t, batch.FetchedAt.Equal(cp.SavedAt))

	req := cp.Resume(syncRequest(t))
	assert.Equal(t, batch.Next, req.Cursors)
}

func TestDecodeCheckpointInvalid(t *testing.T) {
	_, err := DecodeCheckpoint("")
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = DecodeCheckpoint("not*base64")
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestCheckpointEmpty(t *testing.T) {
	token, err := Checkpoint{}.Encode()
	require.NoError(t, err)
	cp, err := DecodeCheckpoint(token)
	require.NoError(t, err)
	assert.NotNil(t, cp.Cursors)
	assert.Empty(t, cp.Cursors)
	assert.Nil(t, cp.Resume(syncRequest(t)).Cursors)
}
