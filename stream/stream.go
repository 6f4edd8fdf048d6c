package stream

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"time"

	"github.com/hugr-lab/dms-go/errors"
	"github.com/hugr-lab/dms-go/internal/recovery"
	"github.com/hugr-lab/dms-go/query"
)

const component = "stream"

// DefaultPollInterval is the wait after a batch that reported no more data.
const DefaultPollInterval = 10 * time.Second

// Fetcher issues one sync request.
type Fetcher func(ctx context.Context, req *query.SyncRequest) (*query.Result, error)

// Waiter pauses for d or until ctx is done, returning ctx.Err() in that case.
type Waiter func(ctx context.Context, d time.Duration) error

// Config configures a stream.
type Config struct {
	// Interval is the pause after a batch that reported no more data.
	// OPTIONAL: DefaultPollInterval when 0.
	Interval time.Duration

	// Logger receives debug records per batch and recovered panics.
	// OPTIONAL: slog.Default() when nil.
	Logger *slog.Logger

	// Wait implements the idle pause.
	// OPTIONAL: a timer honoring context cancellation when nil.
	Wait Waiter

	// Now stamps batches.
	// OPTIONAL: time.Now when nil.
	Now func() time.Time
}

// Batch is one fetched sync response.
type Batch struct {
	// Result is the parsed response.
	Result *query.Result

	// Cursors is the cursor set the request was issued with. Empty for the
	// first fetch of a fresh sync.
	Cursors map[string]string

	// Next is the cursor set the following fetch will use.
	Next map[string]string

	// FetchedAt is the wall-clock time the response arrived.
	FetchedAt time.Time
}

// Checkpoint returns a checkpoint that resumes the sync after this batch.
func (b Batch) Checkpoint() Checkpoint {
	return Checkpoint{Cursors: maps.Clone(b.Next), SavedAt: b.FetchedAt}
}

// Batches returns an endless sequence of sync batches.
//
// Each cycle checks ctx, fetches with the current cursor set and yields the
// batch. When the batch reports no more data the stream then waits
// cfg.Interval before fetching again. Cursors for the next fetch come from the
// response's nextCursor map; result sets without a new cursor keep their
// previous one. The request's own cursors seed the first fetch.
//
// The sequence ends when the consumer stops ranging, or after yielding one
// error: a fetch error, a recovered fetch panic, or ctx.Err() when the
// context is cancelled before a fetch or during the wait. A cancelled stream
// never issues a further fetch. To restart, call Batches again with fresh
// cursors or a Checkpoint.
//
// Example:
//
//	for batch, err := range stream.Batches(ctx, client.Sync, req, stream.Config{}) {
//	    if err != nil {
//	        return err
//	    }
//	    handle(batch.Result)
//	}
func Batches(ctx context.Context, fetch Fetcher, req *query.SyncRequest, cfg Config) iter.Seq2[Batch, error] {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	wait := cfg.Wait
	if wait == nil {
		wait = Sleep
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(yield func(Batch, error) bool) {
		if fetch == nil || req == nil {
			yield(Batch{}, errors.InvalidArgument(component, "Batches", "fetch and request are required"))
			return
		}

		cursors := maps.Clone(req.Cursors)
		if cursors == nil {
			cursors = map[string]string{}
		}
		for {
			if err := ctx.Err(); err != nil {
				yield(Batch{}, err)
				return
			}

			current := req.WithCursors(cursors)
			res, err := recovery.RecoverToValue(logger, "Sync", func() (*query.Result, error) {
				return fetch(ctx, current)
			})
			if err != nil {
				yield(Batch{}, err)
				return
			}
			if res == nil {
				res = &query.Result{}
			}

			next := nextCursors(cursors, res)
			batch := Batch{
				Result:    res,
				Cursors:   maps.Clone(cursors),
				Next:      maps.Clone(next),
				FetchedAt: now(),
			}
			more := res.HasMore()
			logger.Debug("Sync batch",
				"result_sets", len(res.Items),
				"has_more", more,
			)
			if !yield(batch, nil) {
				return
			}

			if !more {
				if err := wait(ctx, interval); err != nil {
					yield(Batch{}, err)
					return
				}
			}
			cursors = next
		}
	}
}

// nextCursors merges the response's cursors over the current set.
func nextCursors(current map[string]string, res *query.Result) map[string]string {
	next := maps.Clone(current)
	if next == nil {
		next = map[string]string{}
	}
	for name, c := range res.NextCursor {
		if c != nil {
			next[name] = *c
		}
	}
	return next
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
