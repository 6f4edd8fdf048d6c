// Package envelope provides "try-get, else default" access to JSON response
// objects. The service omits absent fields instead of sending null, so every
// accessor returns a zero value when the field is missing or has an
// unexpected type.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Object is a decoded JSON object with lazily decoded fields.
type Object map[string]json.RawMessage

// Parse decodes data as a JSON object. It fails only when data is not valid
// JSON or not an object.
func Parse(data []byte) (Object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Object{}, nil
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}
	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = Object{}
	}
	return obj, nil
}

// Has reports whether the field is present and not null.
func (o Object) Has(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// Raw returns the field verbatim, or nil.
func (o Object) Raw(key string) json.RawMessage {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil
	}
	return raw
}

// String returns the field as a string, or "".
func (o Object) String(key string) string {
	var s string
	o.decode(key, &s)
	return s
}

// Bool returns the field as a bool, or false.
func (o Object) Bool(key string) bool {
	var b bool
	o.decode(key, &b)
	return b
}

// Int64 returns the field as an int64, or 0.
func (o Object) Int64(key string) int64 {
	var n json.Number
	if !o.decode(key, &n) {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

// Float64 returns the field as a float64, or 0.
func (o Object) Float64(key string) float64 {
	var f float64
	o.decode(key, &f)
	return f
}

// OptionalFloat64 returns the field as a float64 and whether it was present.
func (o Object) OptionalFloat64(key string) (float64, bool) {
	var f float64
	ok := o.decode(key, &f)
	return f, ok
}

// Version returns a version field that may be encoded as a number or a string.
// Returns "" when absent.
func (o Object) Version(key string) string {
	raw := o.Raw(key)
	if raw == nil {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// Millis returns an epoch-milliseconds field as a UTC time, or the zero time.
func (o Object) Millis(key string) time.Time {
	if !o.Has(key) {
		return time.Time{}
	}
	return time.UnixMilli(o.Int64(key)).UTC()
}

// Object returns a nested object, or an empty Object.
func (o Object) Object(key string) Object {
	var obj Object
	if !o.decode(key, &obj) || obj == nil {
		return Object{}
	}
	return obj
}

// Array returns the elements of an array field, or nil.
func (o Object) Array(key string) []json.RawMessage {
	var arr []json.RawMessage
	o.decode(key, &arr)
	return arr
}

// Objects returns the elements of an array of objects. Elements that are not
// objects are skipped.
func (o Object) Objects(key string) []Object {
	arr := o.Array(key)
	out := make([]Object, 0, len(arr))
	for _, raw := range arr {
		var obj Object
		if json.Unmarshal(raw, &obj) == nil && obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// Value decodes the field into a generic Go value (numbers as json.Number),
// or returns nil.
func (o Object) Value(key string) any {
	raw := o.Raw(key)
	if raw == nil {
		return nil
	}
	return DecodeAny(raw)
}

// DecodeAny decodes raw JSON into a generic Go value, keeping numbers as
// json.Number. Invalid input yields nil.
func DecodeAny(raw json.RawMessage) any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func (o Object) decode(key string, dst any) bool {
	raw := o.Raw(key)
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
