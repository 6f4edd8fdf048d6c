package filter

import (
	"encoding/json"
	"strings"

	"github.com/hugr-lab/dms-go/errors"
)

// Kind identifies a filter variant. It is also the key used for the variant
// in the wire encoding.
type Kind string

const (
	KindHasData     Kind = "hasData"
	KindEquals      Kind = "equals"
	KindIn          Kind = "in"
	KindRange       Kind = "range"
	KindPrefix      Kind = "prefix"
	KindExists      Kind = "exists"
	KindContainsAny Kind = "containsAny"
	KindContainsAll Kind = "containsAll"
	KindAnd         Kind = "and"
	KindOr          Kind = "or"
	KindNot         Kind = "not"
	KindNested      Kind = "nested"
	KindMatchAll    Kind = "matchAll"
)

// Filter is the interface implemented by all filter variants.
// The set of variants is closed; use a type switch to inspect a filter.
type Filter interface {
	// Kind returns the variant discriminator.
	Kind() Kind

	// filterMarker prevents external implementations.
	filterMarker()
}

// ViewRef identifies a view by space, external id and version.
type ViewRef struct {
	Space      string
	ExternalID string
	Version    string
}

// View is a shorthand constructor for ViewRef.
func View(space, externalID, version string) ViewRef {
	return ViewRef{Space: space, ExternalID: externalID, Version: version}
}

// Validate checks that every identifier is non-empty.
func (v ViewRef) Validate() error {
	switch {
	case v.Space == "":
		return errors.InvalidArgument(component, "ViewRef", "view space must not be empty")
	case v.ExternalID == "":
		return errors.InvalidArgument(component, "ViewRef", "view externalId must not be empty")
	case v.Version == "":
		return errors.InvalidArgument(component, "ViewRef", "view version must not be empty")
	}
	return nil
}

// Property returns the path of a property in this view.
func (v ViewRef) Property(name string) PropertyPath {
	return PropertyPath{v.Space, v.ExternalID + "/" + v.Version, name}
}

// String renders the view as space:externalId/version.
func (v ViewRef) String() string {
	return v.Space + ":" + v.ExternalID + "/" + v.Version
}

// MarshalJSON encodes the view as {"type":"view","space":..,"externalId":..,"version":..}.
func (v ViewRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireViewOf(v))
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON. Version may be
// a string or a number.
func (v *ViewRef) UnmarshalJSON(data []byte) error {
	var w struct {
		Space      string      `json:"space"`
		ExternalID string      `json:"externalId"`
		Version    json.Number `json:"version"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		var s struct {
			Space      string `json:"space"`
			ExternalID string `json:"externalId"`
			Version    string `json:"version"`
		}
		if err2 := json.Unmarshal(data, &s); err2 != nil {
			return err
		}
		*v = ViewRef(s)
		return nil
	}
	*v = ViewRef{Space: w.Space, ExternalID: w.ExternalID, Version: w.Version.String()}
	return nil
}

// InstanceID identifies a node or edge. It is accepted as a filter value for
// direct-relation properties.
type InstanceID struct {
	Space      string `json:"space" msgpack:"space"`
	ExternalID string `json:"externalId" msgpack:"externalId"`
}

// PropertyPath addresses a view property as [space, "view/version", property].
type PropertyPath []string

// Property builds a path from its four parts; view and version are joined with "/".
func Property(space, view, version, property string) PropertyPath {
	return PropertyPath{space, view + "/" + version, property}
}

// Validate checks that the path has exactly three non-empty segments.
func (p PropertyPath) Validate() error {
	if len(p) != 3 {
		return errors.InvalidArgument(component, "PropertyPath",
			"property path must have 3 segments, got %d", len(p))
	}
	for i, seg := range p {
		if seg == "" {
			return errors.InvalidArgument(component, "PropertyPath", "property path segment %d is empty", i)
		}
	}
	return nil
}

// String joins the segments with ".".
func (p PropertyPath) String() string {
	return strings.Join(p, ".")
}

// HasData matches instances that have data in all the given views.
type HasData struct {
	Views []ViewRef
}

// Equals matches instances whose property equals the value.
type Equals struct {
	Property PropertyPath
	Value    Value
}

// In matches instances whose property equals any of the values.
type In struct {
	Property PropertyPath
	Values   []Value
}

// Range matches instances whose property lies within the set bounds.
// Unset bounds are zero Values and are omitted from the encoding.
type Range struct {
	Property PropertyPath
	GTE      Value
	GT       Value
	LTE      Value
	LT       Value
}

// Prefix matches string properties starting with Value.
type Prefix struct {
	Property PropertyPath
	Value    string
}

// Exists matches instances where the property is set.
type Exists struct {
	Property PropertyPath
}

// ContainsAny matches list properties containing at least one of the values.
type ContainsAny struct {
	Property PropertyPath
	Values   []Value
}

// ContainsAll matches list properties containing every value.
type ContainsAll struct {
	Property PropertyPath
	Values   []Value
}

// And matches when every operand matches. Operand order is preserved.
type And struct {
	Filters []Filter
}

// Or matches when any operand matches.
type Or struct {
	Filters []Filter
}

// Not negates its operand.
type Not struct {
	Filter Filter
}

// Nested applies Filter to the instance referenced by the direct relation at Scope.
type Nested struct {
	Scope  PropertyPath
	Filter Filter
}

// MatchAll matches every instance.
type MatchAll struct{}

func (HasData) Kind() Kind     { return KindHasData }
func (Equals) Kind() Kind      { return KindEquals }
func (In) Kind() Kind          { return KindIn }
func (Range) Kind() Kind       { return KindRange }
func (Prefix) Kind() Kind      { return KindPrefix }
func (Exists) Kind() Kind      { return KindExists }
func (ContainsAny) Kind() Kind { return KindContainsAny }
func (ContainsAll) Kind() Kind { return KindContainsAll }
func (And) Kind() Kind         { return KindAnd }
func (Or) Kind() Kind          { return KindOr }
func (Not) Kind() Kind         { return KindNot }
func (Nested) Kind() Kind      { return KindNested }
func (MatchAll) Kind() Kind    { return KindMatchAll }

func (HasData) filterMarker()     {}
func (Equals) filterMarker()      {}
func (In) filterMarker()          {}
func (Range) filterMarker()       {}
func (Prefix) filterMarker()      {}
func (Exists) filterMarker()      {}
func (ContainsAny) filterMarker() {}
func (ContainsAll) filterMarker() {}
func (And) filterMarker()         {}
func (Or) filterMarker()          {}
func (Not) filterMarker()         {}
func (Nested) filterMarker()      {}
func (MatchAll) filterMarker()    {}

const component = "filter"
