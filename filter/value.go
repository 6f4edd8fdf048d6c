package filter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hugr-lab/dms-go/errors"
)

// Value is a filter operand: either a raw scalar or a named parameter
// resolved by the service against the request's parameters map.
// The zero Value is "unset".
type Value struct {
	raw   any
	param string
}

// Parameter creates a parameter reference. The name must be non-empty.
func Parameter(name string) (Value, error) {
	if name == "" {
		return Value{}, errors.InvalidArgument(component, "Parameter", "parameter name must not be empty")
	}
	return Value{param: name}, nil
}

// Scalar wraps a raw scalar. It does not validate; use NewValue for that.
func Scalar(v any) Value {
	return Value{raw: v}
}

// NewValue converts v into a Value. A Value passes through unchanged.
// Accepted raw types are strings, booleans, Go numerics, json.Number and InstanceID.
func NewValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, errors.InvalidArgument(component, "Value", "value must not be nil")
	case Value:
		if x.IsZero() {
			return Value{}, errors.InvalidArgument(component, "Value", "value must not be unset")
		}
		return x, nil
	case *Value:
		if x == nil {
			return Value{}, errors.InvalidArgument(component, "Value", "value must not be nil")
		}
		return NewValue(*x)
	case string, bool, json.Number, InstanceID,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Value{raw: x}, nil
	default:
		return Value{}, errors.InvalidArgument(component, "Value", "unsupported value type %T", v)
	}
}

// IsZero reports whether the value is unset.
func (v Value) IsZero() bool {
	return v.raw == nil && v.param == ""
}

// IsParameter reports whether the value is a parameter reference.
func (v Value) IsParameter() bool {
	return v.param != ""
}

// ParameterName returns the referenced parameter name, or "".
func (v Value) ParameterName() string {
	return v.param
}

// Raw returns the raw scalar, or nil for parameter references.
func (v Value) Raw() any {
	return v.raw
}

// MarshalJSON encodes a parameter as {"parameter":name} and scalars as themselves.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.param != "" {
		return json.Marshal(parameterRef{Parameter: v.param})
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON decodes either form. Numbers are kept as json.Number so that
// re-encoding preserves them exactly.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return err
		}
		if rawName, ok := probe["parameter"]; ok && len(probe) == 1 {
			var name string
			if err := json.Unmarshal(rawName, &name); err != nil {
				return fmt.Errorf("invalid parameter name: %w", err)
			}
			p, err := Parameter(name)
			if err != nil {
				return err
			}
			*v = p
			return nil
		}
		var id InstanceID
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*v = Value{raw: id}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = Value{raw: raw}
	return nil
}

// String renders the value for debugging.
func (v Value) String() string {
	if v.param != "" {
		return "$" + v.param
	}
	return fmt.Sprint(v.raw)
}

type parameterRef struct {
	Parameter string `json:"parameter"`
}

// toValues converts a variadic argument list, failing on the first bad element.
func toValues(op string, values []any) ([]Value, error) {
	if len(values) == 0 {
		return nil, errors.InvalidArgument(component, op, "at least one value is required")
	}
	out := make([]Value, 0, len(values))
	for i, raw := range values {
		v, err := NewValue(raw)
		if err != nil {
			return nil, errors.InvalidArgument(component, op, "value %d: %v", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
