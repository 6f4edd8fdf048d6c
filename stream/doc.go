// Package stream turns repeated sync calls into a Go iterator.
//
// The stream alternates between fetching and, once a batch reports no more
// data, idling for a poll interval. Both the fetch and the idle wait honor
// context cancellation. Batches carry the cursors they were fetched with and
// the cursors the next fetch will use; a Checkpoint captures the latter so a
// new stream can pick up where an old one stopped.
package stream
