package search

import (
	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/filter"
	"github.com/hugr-lab/dms-go/internal/validate"
)

const component = "search"

// Limits accepted by the search endpoint.
const (
	MinLimit     = 1
	MaxLimit     = 1000
	DefaultLimit = MaxLimit
)

// InstanceType restricts the search to nodes or edges.
type InstanceType string

const (
	InstanceTypeNode InstanceType = "node"
	InstanceTypeEdge InstanceType = "edge"
)

// SortDirection orders a sort key.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// Sort is one search sort key.
type Sort struct {
	Property  filter.PropertyPath `json:"property"`
	Direction SortDirection       `json:"direction,omitempty" validate:"omitempty,oneof=ascending descending"`
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

// Request is the body of a search call.
type Request struct {
	View         filter.ViewRef `json:"view" validate:"-"`
	Query        string         `json:"query,omitempty"`
	Properties   []string       `json:"properties,omitempty" validate:"omitempty,dive,required"`
	Filter       filter.Filter  `json:"filter,omitempty" validate:"-"`
	Limit        int            `json:"limit" validate:"min=1,max=1000"`
	InstanceType InstanceType   `json:"instanceType,omitempty" validate:"omitempty,oneof=node edge"`
	Sort         []Sort         `json:"sort,omitempty" validate:"omitempty,dive"`
	TargetUnits  []TargetUnit   `json:"targetUnits,omitempty" validate:"omitempty,dive"`
}

// Validate checks the request before it is sent.
func (r *Request) Validate() error {
	if err := r.View.Validate(); err != nil {
		return err
	}
	if r.Query == "" && r.Filter == nil {
		return errors.InvalidArgument(component, "Validate", "at least one of query or filter is required")
	}
	if err := validate.Struct(component, "Validate", r); err != nil {
		return err
	}
	for i, s := range r.Sort {
		if err := s.Property.Validate(); err != nil {
			return errors.InvalidArgument(component, "Validate", "sort %d: %v", i, err)
		}
	}
	return nil
}

// Builder assembles a search request.
// Not thread-safe.
//
// Example:
//
//	req, err := search.NewBuilder(pump).
//	    Query("centrifugal").
//	    Properties("name", "description").
//	    Limit(25).
//	    Build()
type Builder struct {
	req Request
	err error
}

// NewBuilder starts a search over view with the default limit.
func NewBuilder(view filter.ViewRef) *Builder {
	return &Builder{req: Request{View: view, Limit: DefaultLimit}}
}

// Query sets the full-text query.
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

// FilterFrom builds fb and uses the result as the filter. A failing inner
// builder fails this one.
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

// Limit sets the maximum number of results.
func (b *Builder) Limit(n int) *Builder {
	b.req.Limit = n
	return b
}

// InstanceType restricts the results to nodes or edges.
func (b *Builder) InstanceType(t InstanceType) *Builder {
	b.req.InstanceType = t
	return b
}

// Sort appends a sort key.
func (b *Builder) Sort(property filter.PropertyPath, direction SortDirection) *Builder {
	b.req.Sort = append(b.req.Sort, Sort{Property: property, Direction: direction})
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
	req.Properties = append([]string(nil), b.req.Properties...)
	req.Sort = append([]Sort(nil), b.req.Sort...)
	req.TargetUnits = append([]TargetUnit(nil), b.req.TargetUnits...)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
