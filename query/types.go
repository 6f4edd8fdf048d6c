package query

import (
	"github.com/hugr-lab/dms-go/filter"
)

// DefaultLimit is used for node result sets that do not set a limit.
const DefaultLimit = 100

// Direction is the traversal direction of an expression.
type Direction string

const (
	DirectionOutwards Direction = "outwards"
	DirectionInwards  Direction = "inwards"
)

// ChainTo selects which end of the edges from the previous result set the
// next traversal starts at.
type ChainTo string

const (
	ChainToSource      ChainTo = "source"
	ChainToDestination ChainTo = "destination"
)

// SortDirection orders a sort key.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// SyncMode selects how a sync handles pre-existing data.
// Not every service version honors it; it is sent as a best-effort hint.
type SyncMode string

const (
	SyncModeOnePhase   SyncMode = "onePhase"
	SyncModeTwoPhase   SyncMode = "twoPhase"
	SyncModeNoBackfill SyncMode = "noBackfill"
)

// Sort is one sort key. Used by query result sets and by sync backfillSort.
type Sort struct {
	Property   filter.PropertyPath `json:"property"`
	Direction  SortDirection       `json:"direction,omitempty"`
	NullsFirst *bool               `json:"nullsFirst,omitempty"`
}

// NodeExpression selects nodes.
type NodeExpression struct {
	From      string        `json:"from,omitempty"`
	ChainTo   ChainTo       `json:"chainTo,omitempty"`
	Direction Direction     `json:"direction,omitempty"`
	Filter    filter.Filter `json:"filter,omitempty"`
}

// EdgeExpression traverses edges from a previous result set.
type EdgeExpression struct {
	From              string        `json:"from"`
	Direction         Direction     `json:"direction,omitempty"`
	MaxDistance       int           `json:"maxDistance,omitempty"`
	Filter            filter.Filter `json:"filter,omitempty"`
	NodeFilter        filter.Filter `json:"nodeFilter,omitempty"`
	TerminationFilter filter.Filter `json:"terminationFilter,omitempty"`
	LimitEach         int           `json:"limitEach,omitempty"`
	ChainTo           ChainTo       `json:"chainTo,omitempty"`
}

// ResultSetExpression is one named entry of the "with" section.
// Exactly one of Nodes and Edges is set.
type ResultSetExpression struct {
	Nodes *NodeExpression `json:"nodes,omitempty"`
	Edges *EdgeExpression `json:"edges,omitempty"`
	Sort  []Sort          `json:"sort,omitempty"`
	Limit int             `json:"limit,omitempty"`
}

// SourceSelector picks properties from one view.
type SourceSelector struct {
	Source     filter.ViewRef `json:"source"`
	Properties []string       `json:"properties"`
}

// Select describes what to return for a result set.
type Select struct {
	Sources []SourceSelector `json:"sources,omitempty"`
}

// Request is the body of a query call.
type Request struct {
	With          map[string]ResultSetExpression `json:"with"`
	Select        map[string]Select              `json:"select"`
	Cursors       map[string]string              `json:"cursors,omitempty"`
	Parameters    map[string]any                 `json:"parameters,omitempty"`
	IncludeTyping bool                           `json:"includeTyping,omitempty"`
}

// SyncRequest is the body of a sync call.
type SyncRequest struct {
	With         map[string]ResultSetExpression `json:"with"`
	Select       map[string]Select              `json:"select"`
	Cursors      map[string]string              `json:"cursors,omitempty"`
	Parameters   map[string]any                 `json:"parameters,omitempty"`
	Mode         SyncMode                       `json:"mode,omitempty"`
	BackfillSort []Sort                         `json:"backfillSort,omitempty"`

	AllowExpiredCursorsAndAcceptMissedDeletes bool `json:"allowExpiredCursorsAndAcceptMissedDeletes,omitempty"`
}

// WithCursors returns a shallow copy of r using cursors. A nil or empty map
// starts the sync from scratch.
func (r *SyncRequest) WithCursors(cursors map[string]string) *SyncRequest {
	out := *r
	out.Cursors = nil
	if len(cursors) > 0 {
		out.Cursors = make(map[string]string, len(cursors))
		for k, v := range cursors {
			out.Cursors[k] = v
		}
	}
	return &out
}

// Filters returns every filter used by the request's result sets.
func (r *Request) Filters() []filter.Filter {
	return collectFilters(r.With)
}

// Filters returns every filter used by the request's result sets.
func (r *SyncRequest) Filters() []filter.Filter {
	return collectFilters(r.With)
}

// MissingParameters lists parameters referenced by filters that have no
// entry in Parameters. The service resolves parameters; this is a diagnostic.
func MissingParameters(filters []filter.Filter, params map[string]any) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, f := range filters {
		for _, name := range filter.ParameterNames(f) {
			if _, ok := params[name]; !ok && !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
		}
	}
	return missing
}

func collectFilters(with map[string]ResultSetExpression) []filter.Filter {
	var out []filter.Filter
	add := func(fs ...filter.Filter) {
		for _, f := range fs {
			if f != nil {
				out = append(out, f)
			}
		}
	}
	for _, rs := range with {
		if rs.Nodes != nil {
			add(rs.Nodes.Filter)
		}
		if rs.Edges != nil {
			add(rs.Edges.Filter, rs.Edges.NodeFilter, rs.Edges.TerminationFilter)
		}
	}
	return out
}
