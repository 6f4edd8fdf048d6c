package filter

import "sort"

// Walk visits f and its operands depth-first, parents before children.
// Returning false from fn skips the children of the current filter.
func Walk(f Filter, fn func(Filter) bool) {
	if f == nil || !fn(f) {
		return
	}
	switch x := f.(type) {
	case And:
		for _, child := range x.Filters {
			Walk(child, fn)
		}
	case Or:
		for _, child := range x.Filters {
			Walk(child, fn)
		}
	case Not:
		Walk(x.Filter, fn)
	case Nested:
		Walk(x.Filter, fn)
	}
}

// ParameterNames returns the sorted, de-duplicated names of all parameters
// referenced by f.
func ParameterNames(f Filter) []string {
	seen := make(map[string]struct{})
	add := func(vs ...Value) {
		for _, v := range vs {
			if v.IsParameter() {
				seen[v.ParameterName()] = struct{}{}
			}
		}
	}

	Walk(f, func(node Filter) bool {
		switch x := node.(type) {
		case Equals:
			add(x.Value)
		case In:
			add(x.Values...)
		case Range:
			add(x.GTE, x.GT, x.LTE, x.LT)
		case ContainsAny:
			add(x.Values...)
		case ContainsAll:
			add(x.Values...)
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
