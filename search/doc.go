// Package search assembles search requests and parses search hits.
//
// A search runs over one view and needs a full-text query, a filter, or both.
// Hits have a fixed shape and are parsed into Instance values; they can also
// be exported as an Arrow record batch.
package search
