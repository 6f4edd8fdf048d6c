// Package aggregate assembles aggregate requests and parses aggregate groups.
//
// A request computes between one and five aggregates (count, sum, avg, min,
// max, histogram) over one view, optionally grouped by properties.
package aggregate
