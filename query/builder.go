package query

import (
	"sort"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/filter"
)

const component = "query"

// NodeQuery describes a node result set scoped to a view.
type NodeQuery struct {
	// View scopes the result set: only nodes with data in it match.
	// REQUIRED.
	View filter.ViewRef

	// Filter narrows the result set further. It is AND-ed after the view's
	// hasData filter.
	// OPTIONAL.
	Filter filter.Filter

	// From names a previous result set to chain from.
	// OPTIONAL.
	From string

	// ChainTo picks the edge end to continue from when From is an edge set.
	// OPTIONAL: "source" or "destination".
	ChainTo ChainTo

	// Direction of the chaining.
	// OPTIONAL: "outwards" or "inwards".
	Direction Direction

	// Limit caps the result set size.
	// OPTIONAL: DefaultLimit when 0. MUST NOT be negative.
	Limit int

	// Sort orders the result set.
	// OPTIONAL.
	Sort []Sort
}

// EdgeQuery describes an edge traversal result set.
type EdgeQuery struct {
	// From names the result set the traversal starts from.
	// REQUIRED.
	From string

	// Direction of traversal.
	// OPTIONAL: "outwards" or "inwards".
	Direction Direction

	// MaxDistance is the maximum number of hops.
	// OPTIONAL: 0 leaves it to the service. MUST be > 0 when set.
	MaxDistance int

	// Filter applies to the edges.
	// OPTIONAL.
	Filter filter.Filter

	// NodeFilter applies to the nodes reached.
	// OPTIONAL.
	NodeFilter filter.Filter

	// TerminationFilter stops traversal at matching nodes.
	// OPTIONAL.
	TerminationFilter filter.Filter

	// LimitEach caps edges per starting node.
	// OPTIONAL: only allowed with MaxDistance == 1. MUST be > 0 when set.
	LimitEach int

	// ChainTo picks the edge end the next set continues from.
	// OPTIONAL: "source" or "destination".
	ChainTo ChainTo

	// Limit caps the result set size.
	// REQUIRED: MUST be > 0.
	Limit int
}

// SyncOptions carries the sync-only request fields.
type SyncOptions struct {
	// Mode is a best-effort hint; see SyncMode.
	// OPTIONAL.
	Mode SyncMode

	// BackfillSort orders the backfill phase. Meaningful with SyncModeTwoPhase.
	// OPTIONAL.
	BackfillSort []Sort

	// AllowExpiredCursorsAndAcceptMissedDeletes lets the service accept expired
	// cursors at the cost of possibly missed deletions.
	// OPTIONAL.
	AllowExpiredCursorsAndAcceptMissedDeletes bool
}

// NodeFilter returns the filter for a node result set scoped to view:
// hasData(view) alone, or and(hasData(view), extra) when extra is set.
// The hasData operand always comes first.
func NodeFilter(view filter.ViewRef, extra filter.Filter) (filter.Filter, error) {
	hasData, err := filter.NewBuilder().HasData(view).Build()
	if err != nil {
		return nil, err
	}
	if extra == nil {
		return hasData, nil
	}
	return filter.And{Filters: []filter.Filter{hasData, extra}}, nil
}

// Builder assembles query and sync requests.
// Not thread-safe - build separate requests with separate builders.
//
// Like filter.Builder, the first failing call records its error (see Err)
// and later calls are no-ops.
//
// Example:
//
//	req, err := query.NewBuilder().
//	    WithNodes("pumps", query.NodeQuery{View: pump, Filter: running, Limit: 50}).
//	    WithEdges("feeds", query.EdgeQuery{From: "pumps", MaxDistance: 1, Limit: 500}).
//	    Select("pumps", pump, "name", "status").
//	    Build()
type Builder struct {
	with       map[string]ResultSetExpression
	selects    map[string]Select
	cursors    map[string]string
	parameters map[string]any
	typing     bool
	err        error
}

// NewBuilder returns an empty request builder.
func NewBuilder() *Builder {
	return &Builder{
		with:    make(map[string]ResultSetExpression),
		selects: make(map[string]Select),
	}
}

// Err returns the first recorded error, or nil.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(op, format string, args ...any) *Builder {
	if b.err == nil {
		b.err = errors.InvalidArgument(component, op, format, args...)
	}
	return b
}

func (b *Builder) failErr(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) addResultSet(op, name string, rs ResultSetExpression) *Builder {
	if name == "" {
		return b.fail(op, "result set name must not be empty")
	}
	if _, exists := b.with[name]; exists {
		return b.fail(op, "duplicate result set %q", name)
	}
	b.with[name] = rs
	return b
}

// WithNodes adds a node result set. Its filter is NodeFilter(q.View, q.Filter).
func (b *Builder) WithNodes(name string, q NodeQuery) *Builder {
	if b.err != nil {
		return b
	}
	if err := q.View.Validate(); err != nil {
		return b.failErr(err)
	}
	if q.Limit < 0 {
		return b.fail("WithNodes", "limit must not be negative, got %d", q.Limit)
	}
	if err := validateChainTo("WithNodes", q.ChainTo); err != nil {
		return b.failErr(err)
	}
	if err := validateDirection("WithNodes", q.Direction); err != nil {
		return b.failErr(err)
	}
	if err := validateSorts("WithNodes", q.Sort); err != nil {
		return b.failErr(err)
	}

	f, err := NodeFilter(q.View, q.Filter)
	if err != nil {
		return b.failErr(err)
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	return b.addResultSet("WithNodes", name, ResultSetExpression{
		Nodes: &NodeExpression{
			From:      q.From,
			ChainTo:   q.ChainTo,
			Direction: q.Direction,
			Filter:    f,
		},
		Sort:  append([]Sort(nil), q.Sort...),
		Limit: limit,
	})
}

// WithEdges adds an edge traversal result set.
func (b *Builder) WithEdges(name string, q EdgeQuery) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail("WithEdges", "result set name must not be empty")
	}
	if q.From == "" {
		return b.fail("WithEdges", "from must not be empty")
	}
	if q.Limit <= 0 {
		return b.fail("WithEdges", "limit must be > 0, got %d", q.Limit)
	}
	if q.MaxDistance < 0 {
		return b.fail("WithEdges", "maxDistance must be > 0, got %d", q.MaxDistance)
	}
	if q.LimitEach < 0 {
		return b.fail("WithEdges", "limitEach must be > 0, got %d", q.LimitEach)
	}
	if q.LimitEach > 0 && q.MaxDistance != 1 {
		return b.fail("WithEdges", "limitEach requires maxDistance == 1, got %d", q.MaxDistance)
	}
	if err := validateChainTo("WithEdges", q.ChainTo); err != nil {
		return b.failErr(err)
	}
	if err := validateDirection("WithEdges", q.Direction); err != nil {
		return b.failErr(err)
	}

	return b.addResultSet("WithEdges", name, ResultSetExpression{
		Edges: &EdgeExpression{
			From:              q.From,
			Direction:         q.Direction,
			MaxDistance:       q.MaxDistance,
			Filter:            q.Filter,
			NodeFilter:        q.NodeFilter,
			TerminationFilter: q.TerminationFilter,
			LimitEach:         q.LimitEach,
			ChainTo:           q.ChainTo,
		},
		Limit: q.Limit,
	})
}

// Select adds a source to the result set's selection. With no properties all
// properties ("*") are selected.
func (b *Builder) Select(name string, view filter.ViewRef, properties ...string) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail("Select", "result set name must not be empty")
	}
	if err := view.Validate(); err != nil {
		return b.failErr(err)
	}
	for i, p := range properties {
		if p == "" {
			return b.fail("Select", "property %d must not be empty", i)
		}
	}
	if len(properties) == 0 {
		properties = []string{"*"}
	}

	sel := b.selects[name]
	sel.Sources = append(sel.Sources, SourceSelector{
		Source:     view,
		Properties: append([]string(nil), properties...),
	})
	b.selects[name] = sel
	return b
}

// Cursor resumes the named result set from cursor.
func (b *Builder) Cursor(name, cursor string) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" || cursor == "" {
		return b.fail("Cursor", "cursor name and value must not be empty")
	}
	if b.cursors == nil {
		b.cursors = make(map[string]string)
	}
	b.cursors[name] = cursor
	return b
}

// Cursors sets several cursors at once. Nil entries are skipped, so a
// previous result's NextCursor map can be passed directly.
func (b *Builder) Cursors(cursors map[string]*string) *Builder {
	for name, c := range cursors {
		if c != nil {
			b.Cursor(name, *c)
		}
	}
	return b
}

// Parameter sets the value for a parameter referenced by filters.
func (b *Builder) Parameter(name string, value any) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail("Parameter", "parameter name must not be empty")
	}
	v, err := filter.NewValue(value)
	if err != nil {
		return b.failErr(err)
	}
	if v.IsParameter() {
		return b.fail("Parameter", "parameter %q cannot reference another parameter", name)
	}
	if b.parameters == nil {
		b.parameters = make(map[string]any)
	}
	b.parameters[name] = v.Raw()
	return b
}

// IncludeTyping asks the service to return property type information.
func (b *Builder) IncludeTyping(include bool) *Builder {
	b.typing = include
	return b
}

// Build validates the accumulated state and returns a query request.
func (b *Builder) Build() (*Request, error) {
	if err := b.check("Build"); err != nil {
		return nil, err
	}
	return &Request{
		With:          cloneWith(b.with),
		Select:        cloneSelect(b.selects),
		Cursors:       cloneStrings(b.cursors),
		Parameters:    cloneAny(b.parameters),
		IncludeTyping: b.typing,
	}, nil
}

// BuildSync validates the accumulated state and returns a sync request.
// Every result set must have a positive limit and backfill sort paths must
// be valid property paths.
func (b *Builder) BuildSync(opts SyncOptions) (*SyncRequest, error) {
	if err := b.check("BuildSync"); err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(b.with) {
		if b.with[name].Limit <= 0 {
			return nil, errors.InvalidArgument(component, "BuildSync", "result set %q: limit must be > 0", name)
		}
	}
	switch opts.Mode {
	case "", SyncModeOnePhase, SyncModeTwoPhase, SyncModeNoBackfill:
	default:
		return nil, errors.InvalidArgument(component, "BuildSync", "unknown sync mode %q", opts.Mode)
	}
	if err := validateSorts("BuildSync", opts.BackfillSort); err != nil {
		return nil, err
	}

	return &SyncRequest{
		With:         cloneWith(b.with),
		Select:       cloneSelect(b.selects),
		Cursors:      cloneStrings(b.cursors),
		Parameters:   cloneAny(b.parameters),
		Mode:         opts.Mode,
		BackfillSort: append([]Sort(nil), opts.BackfillSort...),

		AllowExpiredCursorsAndAcceptMissedDeletes: opts.AllowExpiredCursorsAndAcceptMissedDeletes,
	}, nil
}

// check validates cross references between result sets.
func (b *Builder) check(op string) error {
	if b.err != nil {
		return b.err
	}
	if len(b.with) == 0 {
		return errors.InvalidArgument(component, op, "at least one result set is required")
	}
	for _, name := range sortedKeys(b.with) {
		rs := b.with[name]
		from := ""
		switch {
		case rs.Nodes != nil:
			from = rs.Nodes.From
		case rs.Edges != nil:
			from = rs.Edges.From
		}
		if from == "" {
			continue
		}
		if from == name {
			return errors.InvalidArgument(component, op, "result set %q cannot chain from itself", name)
		}
		if _, ok := b.with[from]; !ok {
			return errors.InvalidArgument(component, op, "result set %q chains from unknown result set %q", name, from)
		}
	}
	for _, name := range sortedKeys(b.selects) {
		if _, ok := b.with[name]; !ok {
			return errors.InvalidArgument(component, op, "select %q has no matching result set", name)
		}
	}
	return nil
}

func validateChainTo(op string, c ChainTo) error {
	switch c {
	case "", ChainToSource, ChainToDestination:
		return nil
	default:
		return errors.InvalidArgument(component, op, "chainTo must be %q or %q, got %q",
			ChainToSource, ChainToDestination, c)
	}
}

func validateDirection(op string, d Direction) error {
	switch d {
	case "", DirectionOutwards, DirectionInwards:
		return nil
	default:
		return errors.InvalidArgument(component, op, "direction must be %q or %q, got %q",
			DirectionOutwards, DirectionInwards, d)
	}
}

func validateSorts(op string, sorts []Sort) error {
	for i, s := range sorts {
		if err := s.Property.Validate(); err != nil {
			return errors.InvalidArgument(component, op, "sort %d: %v", i, err)
		}
		switch s.Direction {
		case "", SortAscending, SortDescending:
		default:
			return errors.InvalidArgument(component, op, "sort %d: unknown direction %q", i, s.Direction)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneWith(m map[string]ResultSetExpression) map[string]ResultSetExpression {
	out := make(map[string]ResultSetExpression, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSelect(m map[string]Select) map[string]Select {
	out := make(map[string]Select, len(m))
	for k, v := range m {
		out[k] = Select{Sources: append([]SourceSelector(nil), v.Sources...)}
	}
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAny(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
