package filter

import (
	"encoding/json"
	"fmt"
)

// Unmarshal parses a wire-format filter back into the filter model.
//
// Error conditions:
//   - Invalid JSON syntax
//   - Not exactly one variant key in a filter object
//   - Unknown variant key
//   - Structurally invalid payload (wrong path length, empty operand list, ...)
func Unmarshal(data []byte) (Filter, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("filter: invalid JSON: %w", err)
	}
	return parseFilter(raw)
}

func parseRaw(data json.RawMessage) (Filter, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return parseFilter(raw)
}

// parseFilter dispatches on the single variant key.
func parseFilter(raw map[string]json.RawMessage) (Filter, error) {
	if len(raw) != 1 {
		return nil, fmt.Errorf("filter object must have exactly one key, got %d", len(raw))
	}

	var (
		key  string
		body json.RawMessage
	)
	for k, v := range raw {
		key, body = k, v
	}

	switch Kind(key) {
	case KindHasData:
		return parseHasData(body)
	case KindEquals:
		var w wireValue
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("invalid equals filter: %w", err)
		}
		if err := w.Property.Validate(); err != nil {
			return nil, err
		}
		if w.Value.IsZero() {
			return nil, fmt.Errorf("equals filter requires a value")
		}
		return Equals(w), nil
	case KindIn, KindContainsAny, KindContainsAll:
		return parseValues(Kind(key), body)
	case KindRange:
		return parseRange(body)
	case KindPrefix:
		var w wirePrefix
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("invalid prefix filter: %w", err)
		}
		if err := w.Property.Validate(); err != nil {
			return nil, err
		}
		return Prefix(w), nil
	case KindExists:
		var w wireExists
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("invalid exists filter: %w", err)
		}
		if err := w.Property.Validate(); err != nil {
			return nil, err
		}
		return Exists(w), nil
	case KindAnd, KindOr:
		return parseList(Kind(key), body)
	case KindNot:
		inner, err := parseRaw(body)
		if err != nil {
			return nil, fmt.Errorf("invalid not operand: %w", err)
		}
		return Not{Filter: inner}, nil
	case KindNested:
		var w wireNested
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("invalid nested filter: %w", err)
		}
		if err := w.Scope.Validate(); err != nil {
			return nil, err
		}
		inner, err := parseRaw(w.Filter)
		if err != nil {
			return nil, fmt.Errorf("invalid nested operand: %w", err)
		}
		return Nested{Scope: w.Scope, Filter: inner}, nil
	case KindMatchAll:
		return MatchAll{}, nil
	default:
		return nil, fmt.Errorf("unknown filter type %q", key)
	}
}

func parseHasData(body json.RawMessage) (Filter, error) {
	var views []wireView
	if err := json.Unmarshal(body, &views); err != nil {
		return nil, fmt.Errorf("invalid hasData filter: %w", err)
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("hasData filter requires at least one view")
	}
	out := HasData{Views: make([]ViewRef, 0, len(views))}
	for _, w := range views {
		v := ViewRef{Space: w.Space, ExternalID: w.ExternalID, Version: w.Version}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		out.Views = append(out.Views, v)
	}
	return out, nil
}

func parseValues(kind Kind, body json.RawMessage) (Filter, error) {
	var w wireValues
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("invalid %s filter: %w", kind, err)
	}
	if err := w.Property.Validate(); err != nil {
		return nil, err
	}
	if len(w.Values) == 0 {
		return nil, fmt.Errorf("%s filter requires at least one value", kind)
	}
	switch kind {
	case KindIn:
		return In(w), nil
	case KindContainsAny:
		return ContainsAny(w), nil
	default:
		return ContainsAll(w), nil
	}
}

func parseRange(body json.RawMessage) (Filter, error) {
	var w wireRange
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("invalid range filter: %w", err)
	}
	if err := w.Property.Validate(); err != nil {
		return nil, err
	}
	r := Range{Property: w.Property}
	if w.GTE != nil {
		r.GTE = *w.GTE
	}
	if w.GT != nil {
		r.GT = *w.GT
	}
	if w.LTE != nil {
		r.LTE = *w.LTE
	}
	if w.LT != nil {
		r.LT = *w.LT
	}
	if r.GTE.IsZero() && r.GT.IsZero() && r.LTE.IsZero() && r.LT.IsZero() {
		return nil, fmt.Errorf("range filter requires at least one bound")
	}
	return r, nil
}

func parseList(kind Kind, body json.RawMessage) (Filter, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("invalid %s filter: %w", kind, err)
	}
	if len(items) < 2 {
		return nil, fmt.Errorf("%s filter requires at least 2 operands, got %d", kind, len(items))
	}
	children := make([]Filter, 0, len(items))
	for i, item := range items {
		child, err := parseRaw(item)
		if err != nil {
			return nil, fmt.Errorf("invalid %s operand %d: %w", kind, i, err)
		}
		children = append(children, child)
	}
	if kind == KindAnd {
		return And{Filters: children}, nil
	}
	return Or{Filters: children}, nil
}
