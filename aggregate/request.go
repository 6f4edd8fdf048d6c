package aggregate

import (
	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/filter"
	"github.com/hugr-lab/dms-go/internal/validate"
)

const component = "aggregate"

// Limits accepted by the aggregate endpoint.
const (
	MinLimit      = 1
	MaxLimit      = 10000
	DefaultLimit  = 100
	MaxOperations = 5
)

// Kind names an aggregate function.
type Kind string

const (
	Count     Kind = "count"
	Sum       Kind = "sum"
	Avg       Kind = "avg"
	Min       Kind = "min"
	Max       Kind = "max"
	Histogram Kind = "histogram"
)

// InstanceType restricts the aggregation to nodes or edges.
type InstanceType string

const (
	InstanceTypeNode InstanceType = "node"
	InstanceTypeEdge InstanceType = "edge"
)

// Operation is one aggregate to compute.
type Operation struct {
	Property  string `json:"property" validate:"required"`
	Aggregate Kind   `json:"aggregate" validate:"required,oneof=count sum avg min max histogram"`
	// Interval is the bucket width. Histogram only.
	Interval float64 `json:"interval,omitempty"`
}

// UnitRef identifies a unit by external id.
type UnitRef struct {
	ExternalID string `json:"externalId" validate:"required"`
}

// TargetUnit asks the service to convert a property to a unit.
type TargetUnit struct {
	Property string  `json:"property" validate:"required"`
	Unit     UnitRef `json:"unit"`
}

// Request is the body of an aggregate call.
type Request struct {
	View         filter.ViewRef `json:"view" validate:"-"`
	Aggregates   []Operation    `json:"aggregates" validate:"min=1,max=5,dive"`
	GroupBy      []string       `json:"groupBy,omitempty" validate:"omitempty,dive,required"`
	Query        string         `json:"query,omitempty"`
	Properties   []string       `json:"properties,omitempty" validate:"omitempty,dive,required"`
	Filter       filter.Filter  `json:"filter,omitempty" validate:"-"`
	InstanceType InstanceType   `json:"instanceType,omitempty" validate:"omitempty,oneof=node edge"`
	Limit        int            `json:"limit" validate:"min=1,max=10000"`
	TargetUnits  []TargetUnit   `json:"targetUnits,omitempty" validate:"omitempty,dive"`
}

// Validate checks the request before it is sent.
func (r *Request) Validate() error {
	if err := r.View.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(component, "Validate", r); err != nil {
		return err
	}
	for i, op := range r.Aggregates {
		switch {
		case op.Aggregate == Histogram && op.Interval <= 0:
			return errors.InvalidArgument(component, "Validate",
				"aggregates[%d]: histogram interval must be > 0", i)
		case op.Aggregate != Histogram && op.Interval != 0:
			return errors.InvalidArgument(component, "Validate",
				"aggregates[%d]: interval is only allowed for histogram, got %s", i, op.Aggregate)
		}
	}
	return nil
}

// Builder assembles an aggregate request.
// Not thread-safe.
//
// Example:
//
//	req, err := aggregate.NewBuilder(pump).
//	    Avg("flow").
//	    Count("externalId").
//	    GroupBy("site").
//	    Build()
type Builder struct {
	req Request
	err error
}

// NewBuilder starts an aggregation over view with the default limit.
func NewBuilder(view filter.ViewRef) *Builder {
	return &Builder{req: Request{View: view, Limit: DefaultLimit}}
}

// Operation appends an aggregate.
func (b *Builder) Operation(op Operation) *Builder {
	b.req.Aggregates = append(b.req.Aggregates, op)
	return b
}

// Count counts instances with property set.
func (b *Builder) Count(property string) *Builder {
	return b.Operation(Operation{Property: property, Aggregate: Count})
}

// Sum sums property.
func (b *Builder) Sum(property string) *Builder {
	return b.Operation(Operation{Property: property, Aggregate: Sum})
}

// Avg averages property.
func (b *Builder) Avg(property string) *Builder {
	return b.Operation(Operation{Property: property, Aggregate: Avg})
}

// Min takes the minimum of property.
func (b *Builder) Min(property string) *Builder {
	return b.Operation(Operation{Property: property, Aggregate: Min})
}

// Max takes the maximum of property.
func (b *Builder) Max(property string) *Builder {
	return b.Operation(Operation{Property: property, Aggregate: Max})
}

// Histogram buckets property by interval.
func (b *Builder) Histogram(property string, interval float64) *Builder {
	return b.Operation(Operation{Property: property, Aggregate: Histogram, Interval: interval})
}

// GroupBy groups results by the given properties.
func (b *Builder) GroupBy(props ...string) *Builder {
	b.req.GroupBy = append([]string(nil), props...)
	return b
}

// Query sets a full-text query narrowing the aggregated instances.
func (b *Builder) Query(q string) *Builder {
	b.req.Query = q
	return b
}

// Properties restricts the full-text query to these properties.
func (b *Builder) Properties(props ...string) *Builder {
	b.req.Properties = append([]string(nil), props...)
	return b
}

// Filter sets the filter.
func (b *Builder) Filter(f filter.Filter) *Builder {
	b.req.Filter = f
	return b
}

// FilterFrom builds fb and uses the result as the filter.
func (b *Builder) FilterFrom(fb *filter.Builder) *Builder {
	if b.err != nil {
		return b
	}
	f, err := fb.Build()
	if err != nil {
		b.err = err
		return b
	}
	b.req.Filter = f
	return b
}

// InstanceType restricts the aggregation to nodes or edges.
func (b *Builder) InstanceType(t InstanceType) *Builder {
	b.req.InstanceType = t
	return b
}

// Limit sets the maximum number of groups.
func (b *Builder) Limit(n int) *Builder {
	b.req.Limit = n
	return b
}

// TargetUnit converts property to the unit with the given external id.
func (b *Builder) TargetUnit(property, unitExternalID string) *Builder {
	b.req.TargetUnits = append(b.req.TargetUnits, TargetUnit{
		Property: property,
		Unit:     UnitRef{ExternalID: unitExternalID},
	})
	return b
}

// Build validates and returns the request.
func (b *Builder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}
	req := b.req
	req.Aggregates = append([]Operation(nil), b.req.Aggregates...)
	req.GroupBy = append([]string(nil), b.req.GroupBy...)
	req.Properties = append([]string(nil), b.req.Properties...)
	req.TargetUnits = append([]TargetUnit(nil), b.req.TargetUnits...)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
