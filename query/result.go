package query

import (
	"encoding/json"
	"fmt"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/internal/envelope"
)

// Result is a parsed query or sync response.
//
// Items stay opaque: their shape is chosen by the request's select section,
// so callers decode them with DecodeItems.
type Result struct {
	// Items holds the raw items per result set name.
	Items map[string][]json.RawMessage

	// NextCursor holds the continuation cursor per result set. A nil entry
	// means the result set is exhausted.
	NextCursor map[string]*string

	// Typing holds property type information when it was requested.
	Typing json.RawMessage
}

// ParseResult decodes a query or sync response body. Missing sections yield
// empty maps; only a body that is not a JSON object is an error.
func ParseResult(data []byte) (*Result, error) {
	obj, err := envelope.Parse(data)
	if err != nil {
		return nil, errors.Decode(component, "ParseResult", err)
	}

	res := &Result{
		Items:      make(map[string][]json.RawMessage),
		NextCursor: make(map[string]*string),
		Typing:     obj.Raw("typing"),
	}
	items := obj.Object("items")
	for name := range items {
		res.Items[name] = items.Array(name)
		if res.Items[name] == nil {
			res.Items[name] = []json.RawMessage{}
		}
	}
	cursors := obj.Object("nextCursor")
	for name := range cursors {
		if cursors.Has(name) {
			c := cursors.String(name)
			res.NextCursor[name] = &c
		} else {
			res.NextCursor[name] = nil
		}
	}
	return res, nil
}

// HasMore reports whether any result set has a non-nil cursor.
func (r *Result) HasMore() bool {
	if r == nil {
		return false
	}
	for _, c := range r.NextCursor {
		if c != nil {
			return true
		}
	}
	return false
}

// Cursors returns the non-nil cursors as a plain map, suitable for the next
// request's cursors section.
func (r *Result) Cursors() map[string]string {
	out := make(map[string]string)
	if r == nil {
		return out
	}
	for name, c := range r.NextCursor {
		if c != nil {
			out[name] = *c
		}
	}
	return out
}

// DecodeItems decodes every item of the named result set into T.
// An absent result set yields an empty slice.
func DecodeItems[T any](r *Result, name string) ([]T, error) {
	if r == nil {
		return nil, nil
	}
	raw := r.Items[name]
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, errors.Decode(component, "DecodeItems", fmt.Errorf("%s[%d]: %w", name, i, err))
		}
		out = append(out, v)
	}
	return out, nil
}

// Node is a convenience shape for node items returned by query and sync.
// Properties are keyed by space, then "view/version", then property name.
type Node struct {
	InstanceType    string                               `json:"instanceType"`
	Space           string                               `json:"space"`
	ExternalID      string                               `json:"externalId"`
	Version         int64                                `json:"version"`
	CreatedTime     int64                                `json:"createdTime"`
	LastUpdatedTime int64                                `json:"lastUpdatedTime"`
	DeletedTime     int64                                `json:"deletedTime,omitempty"`
	Properties      map[string]map[string]map[string]any `json:"properties,omitempty"`
	Type            *Ref                                 `json:"type,omitempty"`
	StartNode       *Ref                                 `json:"startNode,omitempty"`
	EndNode         *Ref                                 `json:"endNode,omitempty"`
}

// Ref is a space/externalId pair inside an item.
type Ref struct {
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
}
