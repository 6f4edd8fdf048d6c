package stream

import (
	"maps"
	"time"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/internal/codec"
	"github.com/hugr-lab/dms-go/query"
)

// Checkpoint is the resumable state of a sync: the cursor set for the next
// fetch and when it was captured.
type Checkpoint struct {
	Cursors map[string]string `msgpack:"cursors"`
	SavedAt time.Time         `msgpack:"savedAt"`
}

// Encode renders the checkpoint as an opaque URL-safe string suitable for
// storing alongside the consumer's own state.
func (c Checkpoint) Encode() (string, error) {
	token, err := codec.Encode(c)
	if err != nil {
		return "", errors.WrapInvalid(err, component, "Checkpoint.Encode")
	}
	return token, nil
}

// DecodeCheckpoint parses a string produced by Checkpoint.Encode.
func DecodeCheckpoint(s string) (Checkpoint, error) {
	var c Checkpoint
	if err := codec.Decode(s, &c); err != nil {
		return Checkpoint{}, errors.WrapInvalid(err, component, "DecodeCheckpoint")
	}
	if c.Cursors == nil {
		c.Cursors = map[string]string{}
	}
	return c, nil
}

// Resume returns a copy of req that starts from the checkpoint's cursors.
func (c Checkpoint) Resume(req *query.SyncRequest) *query.SyncRequest {
	return req.WithCursors(maps.Clone(c.Cursors))
}
