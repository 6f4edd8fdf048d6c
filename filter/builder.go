package filter

import (
	"encoding/json"

	"github.com/hugr-lab/dms-go/errors"
)

// Builder constructs one filter using a fluent API.
// Not thread-safe - use one builder per goroutine and discard it after Build.
//
// The builder holds a single filter. Every terminal call (HasData, Equals,
// Range, ...) replaces it; composing calls (And, Or, Not, Nested) read the
// filters of other builders and replace it with the composite.
//
// A call that violates its contract records the error immediately; it is
// reported by Err and returned from Build. Calls after a failure are no-ops,
// so a chain can be checked once at the end:
//
//	f, err := filter.NewBuilder().
//	    Equals(pump.Property("status"), "running").
//	    Build()
type Builder struct {
	filter Filter
	err    error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Err returns the first error recorded by a builder call, or nil.
func (b *Builder) Err() error {
	return b.err
}

// IsEmpty reports whether no filter has been configured.
func (b *Builder) IsEmpty() bool {
	return b.filter == nil
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) set(f Filter) *Builder {
	if b.err == nil {
		b.filter = f
	}
	return b
}

// HasData matches instances with data in every given view. At least one view
// is required and each must be fully identified.
func (b *Builder) HasData(views ...ViewRef) *Builder {
	if b.err != nil {
		return b
	}
	if len(views) == 0 {
		return b.fail(errors.InvalidArgument(component, "HasData", "at least one view is required"))
	}
	for _, v := range views {
		if err := v.Validate(); err != nil {
			return b.fail(err)
		}
	}
	return b.set(HasData{Views: append([]ViewRef(nil), views...)})
}

// Equals matches instances whose property equals value.
// value is a scalar, an InstanceID or a parameter from Parameter.
func (b *Builder) Equals(path PropertyPath, value any) *Builder {
	if b.err != nil {
		return b
	}
	if err := path.Validate(); err != nil {
		return b.fail(err)
	}
	v, err := NewValue(value)
	if err != nil {
		return b.fail(err)
	}
	return b.set(Equals{Property: clonePath(path), Value: v})
}

// EqualsProperty is Equals addressing the property through its view.
func (b *Builder) EqualsProperty(view ViewRef, property string, value any) *Builder {
	if b.err != nil {
		return b
	}
	if err := view.Validate(); err != nil {
		return b.fail(err)
	}
	return b.Equals(view.Property(property), value)
}

// In matches instances whose property equals any of values.
func (b *Builder) In(path PropertyPath, values ...any) *Builder {
	if b.err != nil {
		return b
	}
	if err := path.Validate(); err != nil {
		return b.fail(err)
	}
	vs, err := toValues("In", values)
	if err != nil {
		return b.fail(err)
	}
	return b.set(In{Property: clonePath(path), Values: vs})
}

// Bounds holds the optional limits of a Range filter. Nil fields are unset.
type Bounds struct {
	GTE any
	GT  any
	LTE any
	LT  any
}

// Range matches instances whose property lies within bounds. At least one
// bound must be set.
func (b *Builder) Range(path PropertyPath, bounds Bounds) *Builder {
	if b.err != nil {
		return b
	}
	if err := path.Validate(); err != nil {
		return b.fail(err)
	}
	if bounds.GTE == nil && bounds.GT == nil && bounds.LTE == nil && bounds.LT == nil {
		return b.fail(errors.InvalidArgument(component, "Range", "at least one bound is required"))
	}

	r := Range{Property: clonePath(path)}
	for _, bd := range []struct {
		name string
		raw  any
		dst  *Value
	}{
		{"gte", bounds.GTE, &r.GTE},
		{"gt", bounds.GT, &r.GT},
		{"lte", bounds.LTE, &r.LTE},
		{"lt", bounds.LT, &r.LT},
	} {
		if bd.raw == nil {
			continue
		}
		v, err := NewValue(bd.raw)
		if err != nil {
			return b.fail(errors.InvalidArgument(component, "Range", "%s: %v", bd.name, err))
		}
		*bd.dst = v
	}
	return b.set(r)
}

// Prefix matches string properties starting with value.
func (b *Builder) Prefix(path PropertyPath, value string) *Builder {
	if b.err != nil {
		return b
	}
	if err := path.Validate(); err != nil {
		return b.fail(err)
	}
	return b.set(Prefix{Property: clonePath(path), Value: value})
}

// Exists matches instances where the property is set.
func (b *Builder) Exists(path PropertyPath) *Builder {
	if b.err != nil {
		return b
	}
	if err := path.Validate(); err != nil {
		return b.fail(err)
	}
	return b.set(Exists{Property: clonePath(path)})
}

// ContainsAny matches list properties holding at least one of values.
func (b *Builder) ContainsAny(path PropertyPath, values ...any) *Builder {
	if b.err != nil {
		return b
	}
	if err := path.Validate(); err != nil {
		return b.fail(err)
	}
	vs, err := toValues("ContainsAny", values)
	if err != nil {
		return b.fail(err)
	}
	return b.set(ContainsAny{Property: clonePath(path), Values: vs})
}

// ContainsAll matches list properties holding every value.
func (b *Builder) ContainsAll(path PropertyPath, values ...any) *Builder {
	if b.err != nil {
		return b
	}
	if err := path.Validate(); err != nil {
		return b.fail(err)
	}
	vs, err := toValues("ContainsAll", values)
	if err != nil {
		return b.fail(err)
	}
	return b.set(ContainsAll{Property: clonePath(path), Values: vs})
}

// And combines filters with logical AND. It has two forms:
//
//   - One argument (chain form): if this builder is empty it adopts the
//     other builder's filter as-is; otherwise it becomes
//     And(current, other). This lets a chain seed a filter and then narrow it
//     with repeated And calls.
//   - Two or more arguments: the builder's filter is replaced by
//     And(others...) in argument order. The current filter is not included.
//
// Calling And with no arguments fails.
func (b *Builder) And(others ...*Builder) *Builder {
	if b.err != nil {
		return b
	}
	switch len(others) {
	case 0:
		return b.fail(errors.InvalidArgument(component, "And", "at least one builder is required"))
	case 1:
		other, err := buildOperand("And", others[0])
		if err != nil {
			return b.fail(err)
		}
		if b.filter == nil {
			return b.set(other)
		}
		return b.set(And{Filters: []Filter{b.filter, other}})
	default:
		operands, err := buildOperands("And", others)
		if err != nil {
			return b.fail(err)
		}
		return b.set(And{Filters: operands})
	}
}

// Or replaces the builder's filter with Or(others...). At least two builders
// are required.
func (b *Builder) Or(others ...*Builder) *Builder {
	if b.err != nil {
		return b
	}
	if len(others) < 2 {
		return b.fail(errors.InvalidArgument(component, "Or", "at least 2 builders are required, got %d", len(others)))
	}
	operands, err := buildOperands("Or", others)
	if err != nil {
		return b.fail(err)
	}
	return b.set(Or{Filters: operands})
}

// Not replaces the builder's filter with the negation of other's filter.
// Fails if other is empty.
func (b *Builder) Not(other *Builder) *Builder {
	if b.err != nil {
		return b
	}
	inner, err := buildOperand("Not", other)
	if err != nil {
		return b.fail(err)
	}
	return b.set(Not{Filter: inner})
}

// Nested applies inner's filter to the instance referenced by the direct
// relation at scope.
func (b *Builder) Nested(scope PropertyPath, inner *Builder) *Builder {
	if b.err != nil {
		return b
	}
	if err := scope.Validate(); err != nil {
		return b.fail(err)
	}
	f, err := buildOperand("Nested", inner)
	if err != nil {
		return b.fail(err)
	}
	return b.set(Nested{Scope: clonePath(scope), Filter: f})
}

// MatchAll sets the filter to match every instance.
func (b *Builder) MatchAll() *Builder {
	return b.set(MatchAll{})
}

// Build returns the configured filter. It returns the first recorded
// construction error, or ErrInvalidState if nothing was configured.
func (b *Builder) Build() (Filter, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.filter == nil {
		return nil, errors.InvalidState(component, "Build", "no filter has been configured")
	}
	return b.filter, nil
}

// BuildOrNil returns the configured filter, or nil if the builder is empty.
// Emptiness is not an error; a recorded construction error still is.
func (b *Builder) BuildOrNil() (Filter, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.filter, nil
}

// unserializablePlaceholder is returned by String when encoding fails.
const unserializablePlaceholder = "<unserializable filter>"

// String renders the current filter as JSON for debugging. It never panics.
//
// The output contains filter values verbatim. Do not log it where values may
// be sensitive.
func (b *Builder) String() (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = unserializablePlaceholder
		}
	}()
	if b == nil || b.filter == nil {
		return "null"
	}
	data, err := json.Marshal(b.filter)
	if err != nil {
		return unserializablePlaceholder
	}
	return string(data)
}

func buildOperand(op string, other *Builder) (Filter, error) {
	if other == nil {
		return nil, errors.InvalidArgument(component, op, "builder must not be nil")
	}
	return other.Build()
}

func buildOperands(op string, others []*Builder) ([]Filter, error) {
	out := make([]Filter, 0, len(others))
	for _, o := range others {
		f, err := buildOperand(op, o)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func clonePath(p PropertyPath) PropertyPath {
	return append(PropertyPath(nil), p...)
}
