// Package filter models the instance filters accepted by the data-modeling
// service and encodes them to its JSON wire format.
//
// A filter is a small recursive tree. Leaves compare a view property with
// values (Equals, In, Range, Prefix, Exists, ContainsAny, ContainsAll) or scope
// by view (HasData, MatchAll); inner nodes combine filters (And, Or, Not,
// Nested). The variant set is closed: Filter cannot be implemented outside
// this package.
//
// # Building Filters
//
// Use Builder to construct one filter with validation:
//
//	pump := filter.View("plant", "Pump", "v1")
//
//	running := filter.NewBuilder().Equals(pump.Property("status"), "running")
//	hot := filter.NewBuilder().Range(pump.Property("temperature"), filter.Bounds{GT: 80})
//
//	f, err := filter.NewBuilder().And(running, hot).Build()
//
// The one-argument form of And seeds an empty builder and AND-combines
// afterwards, which suits filters assembled step by step:
//
//	b := filter.NewBuilder()
//	for _, cond := range conditions {
//	    b.And(cond)
//	}
//	f, err := b.BuildOrNil() // nil when there were no conditions
//
// # Parameters
//
// Values can be placeholders resolved by the service from the request's
// parameters map:
//
//	limit, _ := filter.Parameter("minPressure")
//	b := filter.NewBuilder().Range(pump.Property("pressure"), filter.Bounds{GTE: limit})
//
// ParameterNames lists the parameters a filter needs.
//
// # Wire Format
//
// Marshal and Unmarshal convert between the model and JSON. Every filter type
// also implements json.Marshaler, so Filter values can be embedded directly in
// request structs.
package filter
