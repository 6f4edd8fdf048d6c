// Package codec packs small Go values into opaque, URL-safe tokens.
// Values are MessagePack-encoded, ZStandard-compressed and base64url-encoded.
// Used for sync stream checkpoints.
package codec

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	initOnce sync.Once
	initErr  error
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
)

// coders returns the shared zstd encoder and decoder. EncodeAll and DecodeAll
// are goroutine-safe, so one pair serves every caller.
func coders() (*zstd.Encoder, *zstd.Decoder, error) {
	initOnce.Do(func() {
		encoder, initErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if initErr != nil {
			initErr = fmt.Errorf("failed to create zstd encoder: %w", initErr)
			return
		}
		decoder, initErr = zstd.NewReader(nil)
		if initErr != nil {
			initErr = fmt.Errorf("failed to create zstd decoder: %w", initErr)
		}
	})
	return encoder, decoder, initErr
}

// Encode serializes v into a token.
//
// Example:
//
//	type state struct {
//	    Cursors map[string]string `msgpack:"cursors"`
//	}
//	token, err := codec.Encode(state{Cursors: cursors})
func Encode(v any) (string, error) {
	enc, _, err := coders()
	if err != nil {
		return "", err
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	compressed := enc.EncodeAll(data, make([]byte, 0, len(data)))
	return base64.RawURLEncoding.EncodeToString(compressed), nil
}

// Decode deserializes a token produced by Encode into v, which must be a pointer.
func Decode(token string, v any) error {
	if token == "" {
		return fmt.Errorf("empty token")
	}
	_, dec, err := coders()
	if err != nil {
		return err
	}
	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("failed to decode token: %w", err)
	}
	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("failed to decompress: %w", err)
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return nil
}
