package filter

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes a filter to its wire JSON. The encoding is an object with a
// single key naming the variant:
//
//	{"equals":{"property":["space","view/1","name"],"value":"pump"}}
//	{"and":[{...},{...}]}
//	{"matchAll":{}}
func Marshal(f Filter) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("filter: cannot encode nil filter")
	}
	body, err := encodeBody(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[Kind]json.RawMessage{f.Kind(): body})
}

type wireView struct {
	Type       string `json:"type"`
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
	Version    string `json:"version"`
}

type wireValue struct {
	Property PropertyPath `json:"property"`
	Value    Value        `json:"value"`
}

type wireValues struct {
	Property PropertyPath `json:"property"`
	Values   []Value      `json:"values"`
}

type wireRange struct {
	Property PropertyPath `json:"property"`
	GTE      *Value       `json:"gte,omitempty"`
	GT       *Value       `json:"gt,omitempty"`
	LTE      *Value       `json:"lte,omitempty"`
	LT       *Value       `json:"lt,omitempty"`
}

type wirePrefix struct {
	Property PropertyPath `json:"property"`
	Value    string       `json:"value"`
}

type wireExists struct {
	Property PropertyPath `json:"property"`
}

type wireNested struct {
	Scope  PropertyPath    `json:"scope"`
	Filter json.RawMessage `json:"filter"`
}

func wireViewOf(v ViewRef) wireView {
	return wireView{Type: "view", Space: v.Space, ExternalID: v.ExternalID, Version: v.Version}
}

// encodeBody encodes the payload under the variant key.
func encodeBody(f Filter) ([]byte, error) {
	switch x := f.(type) {
	case HasData:
		views := make([]wireView, 0, len(x.Views))
		for _, v := range x.Views {
			views = append(views, wireViewOf(v))
		}
		return json.Marshal(views)
	case Equals:
		return json.Marshal(wireValue{Property: x.Property, Value: x.Value})
	case In:
		return json.Marshal(wireValues{Property: x.Property, Values: x.Values})
	case Range:
		return json.Marshal(wireRange{
			Property: x.Property,
			GTE:      bound(x.GTE),
			GT:       bound(x.GT),
			LTE:      bound(x.LTE),
			LT:       bound(x.LT),
		})
	case Prefix:
		return json.Marshal(wirePrefix{Property: x.Property, Value: x.Value})
	case Exists:
		return json.Marshal(wireExists{Property: x.Property})
	case ContainsAny:
		return json.Marshal(wireValues{Property: x.Property, Values: x.Values})
	case ContainsAll:
		return json.Marshal(wireValues{Property: x.Property, Values: x.Values})
	case And:
		return encodeList(x.Filters)
	case Or:
		return encodeList(x.Filters)
	case Not:
		return Marshal(x.Filter)
	case Nested:
		inner, err := Marshal(x.Filter)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireNested{Scope: x.Scope, Filter: inner})
	case MatchAll:
		return []byte("{}"), nil
	default:
		return nil, fmt.Errorf("filter: unsupported filter type %T", f)
	}
}

func encodeList(filters []Filter) ([]byte, error) {
	items := make([]json.RawMessage, 0, len(filters))
	for i, child := range filters {
		data, err := Marshal(child)
		if err != nil {
			return nil, fmt.Errorf("filter: operand %d: %w", i, err)
		}
		items = append(items, data)
	}
	return json.Marshal(items)
}

func bound(v Value) *Value {
	if v.IsZero() {
		return nil
	}
	return &v
}

// MarshalJSON implementations let filters sit in request structs as Filter fields.

func (f HasData) MarshalJSON() ([]byte, error)     { return Marshal(f) }
func (f Equals) MarshalJSON() ([]byte, error)      { return Marshal(f) }
func (f In) MarshalJSON() ([]byte, error)          { return Marshal(f) }
func (f Range) MarshalJSON() ([]byte, error)       { return Marshal(f) }
func (f Prefix) MarshalJSON() ([]byte, error)      { return Marshal(f) }
func (f Exists) MarshalJSON() ([]byte, error)      { return Marshal(f) }
func (f ContainsAny) MarshalJSON() ([]byte, error) { return Marshal(f) }
func (f ContainsAll) MarshalJSON() ([]byte, error) { return Marshal(f) }
func (f And) MarshalJSON() ([]byte, error)         { return Marshal(f) }
func (f Or) MarshalJSON() ([]byte, error)          { return Marshal(f) }
func (f Not) MarshalJSON() ([]byte, error)         { return Marshal(f) }
func (f Nested) MarshalJSON() ([]byte, error)      { return Marshal(f) }
func (f MatchAll) MarshalJSON() ([]byte, error)    { return Marshal(f) }
