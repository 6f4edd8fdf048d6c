package aggregate

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/internal/envelope"
	"github.com/hugr-lab/dms-go/internal/table"
)

// Bucket is one histogram bucket.
type Bucket struct {
	Start float64 `json:"start"`
	Count int64   `json:"count"`
}

// Value is one computed aggregate.
type Value struct {
	Aggregate Kind
	Property  string
	// Value is nil when the service returned no value, e.g. avg over no
	// instances, and always nil for histograms.
	Value *float64
	// Interval and Buckets are set for histograms.
	Interval float64
	Buckets  []Bucket
}

// Item is one aggregate group.
type Item struct {
	InstanceType InstanceType
	// Group maps the groupBy properties to this group's values. Empty when
	// the request had no groupBy.
	Group      map[string]any
	Aggregates []Value
}

// Get returns the aggregate computed for kind and property.
func (it Item) Get(kind Kind, property string) (Value, bool) {
	for _, v := range it.Aggregates {
		if v.Aggregate == kind && v.Property == property {
			return v, true
		}
	}
	return Value{}, false
}

// Result is a parsed aggregate response.
type Result struct {
	Items []Item
}

// ParseResult decodes an aggregate response body. Missing fields default to
// zero values.
func ParseResult(data []byte) (*Result, error) {
	obj, err := envelope.Parse(data)
	if err != nil {
		return nil, errors.Decode(component, "ParseResult", err)
	}
	res := &Result{}
	for _, o := range obj.Objects("items") {
		res.Items = append(res.Items, parseItem(o))
	}
	return res, nil
}

func parseItem(o envelope.Object) Item {
	it := Item{
		InstanceType: InstanceType(o.String("instanceType")),
		Group:        make(map[string]any),
	}
	group := o.Object("group")
	for k := range group {
		it.Group[k] = group.Value(k)
	}
	for _, a := range o.Objects("aggregates") {
		v := Value{
			Aggregate: Kind(a.String("aggregate")),
			Property:  a.String("property"),
			Interval:  a.Float64("interval"),
		}
		if f, ok := a.OptionalFloat64("value"); ok {
			v.Value = &f
		}
		for _, b := range a.Objects("buckets") {
			v.Buckets = append(v.Buckets, Bucket{Start: b.Float64("start"), Count: b.Int64("count")})
		}
		it.Aggregates = append(it.Aggregates, v)
	}
	return it
}

// ColumnName names the column an aggregate is exported to, e.g. "avg(flow)".
func ColumnName(kind Kind, property string) string {
	return string(kind) + "(" + property + ")"
}

// RecordBatch exports the groups as an Arrow record batch: an instance_type
// column, one column per group key (sorted by name), then one column per
// aggregate in first-seen order. Histograms export their buckets as JSON.
// The caller must Release the batch.
func (r *Result) RecordBatch(mem memory.Allocator) (arrow.RecordBatch, error) {
	n := len(r.Items)

	var groupKeys []string
	seenKey := make(map[string]bool)
	type aggKey struct {
		kind     Kind
		property string
	}
	var aggs []aggKey
	seenAgg := make(map[aggKey]bool)
	for _, it := range r.Items {
		for k := range it.Group {
			if !seenKey[k] {
				seenKey[k] = true
				groupKeys = append(groupKeys, k)
			}
		}
		for _, v := range it.Aggregates {
			k := aggKey{v.Aggregate, v.Property}
			if !seenAgg[k] {
				seenAgg[k] = true
				aggs = append(aggs, k)
			}
		}
	}
	sort.Strings(groupKeys)

	cols := []table.Column{{Name: "instance_type", Values: make([]any, n), Type: arrow.BinaryTypes.String}}
	for _, k := range groupKeys {
		cols = append(cols, table.Column{Name: k, Values: make([]any, n)})
	}
	for _, a := range aggs {
		dt := arrow.DataType(arrow.PrimitiveTypes.Float64)
		if a.kind == Histogram {
			dt = arrow.BinaryTypes.String
		}
		cols = append(cols, table.Column{Name: ColumnName(a.kind, a.property), Values: make([]any, n), Type: dt})
	}

	for i, it := range r.Items {
		cols[0].Values[i] = string(it.InstanceType)
		for j, k := range groupKeys {
			cols[1+j].Values[i] = it.Group[k]
		}
		base := 1 + len(groupKeys)
		for j, a := range aggs {
			v, ok := it.Get(a.kind, a.property)
			switch {
			case !ok:
			case a.kind == Histogram:
				if v.Buckets != nil {
					cols[base+j].Values[i] = v.Buckets
				}
			case v.Value != nil:
				cols[base+j].Values[i] = *v.Value
			}
		}
	}

	rec, err := table.Record(mem, cols)
	if err != nil {
		return nil, errors.InvalidArgument(component, "RecordBatch", "%v", err)
	}
	return rec, nil
}
