package search

import (
	"encoding/json"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/filter"
	"github.com/hugr-lab/dms-go/internal/envelope"
	"github.com/hugr-lab/dms-go/internal/table"
)

// Properties holds instance properties keyed by space, then "view/version",
// then property name. Numbers are json.Number.
type Properties map[string]map[string]map[string]any

// Get returns the value of a property of view, and whether it was present.
func (p Properties) Get(view filter.ViewRef, name string) (any, bool) {
	v, ok := p[view.Space][view.ExternalID+"/"+view.Version][name]
	return v, ok
}

// Instance is one search hit.
type Instance struct {
	InstanceType    InstanceType
	Space           string
	ExternalID      string
	Version         int64
	CreatedTime     time.Time
	LastUpdatedTime time.Time
	// DeletedTime is zero unless the instance is soft-deleted.
	DeletedTime time.Time
	Properties  Properties

	// Edge-only fields. Nil for nodes.
	Type      *filter.InstanceID
	StartNode *filter.InstanceID
	EndNode   *filter.InstanceID
}

// Result is a parsed search response.
type Result struct {
	Items  []Instance
	Typing json.RawMessage
}

// ParseResult decodes a search response body. Missing fields default to
// zero values.
func ParseResult(data []byte) (*Result, error) {
	obj, err := envelope.Parse(data)
	if err != nil {
		return nil, errors.Decode(component, "ParseResult", err)
	}
	res := &Result{Typing: obj.Raw("typing")}
	for _, item := range obj.Objects("items") {
		res.Items = append(res.Items, parseInstance(item))
	}
	return res, nil
}

func parseInstance(o envelope.Object) Instance {
	inst := Instance{
		InstanceType:    InstanceType(o.String("instanceType")),
		Space:           o.String("space"),
		ExternalID:      o.String("externalId"),
		Version:         o.Int64("version"),
		CreatedTime:     o.Millis("createdTime"),
		LastUpdatedTime: o.Millis("lastUpdatedTime"),
		DeletedTime:     o.Millis("deletedTime"),
		Properties:      parseProperties(o.Object("properties")),
		Type:            parseRef(o, "type"),
		StartNode:       parseRef(o, "startNode"),
		EndNode:         parseRef(o, "endNode"),
	}
	return inst
}

func parseProperties(spaces envelope.Object) Properties {
	props := make(Properties, len(spaces))
	for space := range spaces {
		views := spaces.Object(space)
		props[space] = make(map[string]map[string]any, len(views))
		for view := range views {
			values := views.Object(view)
			m := make(map[string]any, len(values))
			for name := range values {
				m[name] = values.Value(name)
			}
			props[space][view] = m
		}
	}
	return props
}

func parseRef(o envelope.Object, key string) *filter.InstanceID {
	if !o.Has(key) {
		return nil
	}
	ref := o.Object(key)
	return &filter.InstanceID{Space: ref.String("space"), ExternalID: ref.String("externalId")}
}

// RecordBatch exports the hits as an Arrow record batch with the columns
// instance_type, space, external_id, version, created_time, last_updated_time
// followed by one column per requested property of view. The caller must
// Release the batch.
func (r *Result) RecordBatch(mem memory.Allocator, view filter.ViewRef, properties ...string) (arrow.RecordBatch, error) {
	n := len(r.Items)
	cols := []table.Column{
		{Name: "instance_type", Values: make([]any, n), Type: arrow.BinaryTypes.String},
		{Name: "space", Values: make([]any, n), Type: arrow.BinaryTypes.String},
		{Name: "external_id", Values: make([]any, n), Type: arrow.BinaryTypes.String},
		{Name: "version", Values: make([]any, n), Type: arrow.PrimitiveTypes.Int64},
		{Name: "created_time", Values: make([]any, n), Type: table.TimestampMs},
		{Name: "last_updated_time", Values: make([]any, n), Type: table.TimestampMs},
	}
	for _, p := range properties {
		cols = append(cols, table.Column{Name: p, Values: make([]any, n)})
	}
	for i, it := range r.Items {
		cols[0].Values[i] = string(it.InstanceType)
		cols[1].Values[i] = it.Space
		cols[2].Values[i] = it.ExternalID
		cols[3].Values[i] = it.Version
		cols[4].Values[i] = it.CreatedTime
		cols[5].Values[i] = it.LastUpdatedTime
		for j, p := range properties {
			v, _ := it.Properties.Get(view, p)
			cols[6+j].Values[i] = v
		}
	}
	rec, err := table.Record(mem, cols)
	if err != nil {
		return nil, errors.InvalidArgument(component, "RecordBatch", "%v", err)
	}
	return rec, nil
}
