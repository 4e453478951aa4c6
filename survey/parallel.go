package survey

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"
)

// ScanShards surveys every shard concurrently, one single-threaded Survey
// per shard, then merges the results serially into one combined Survey.
// newSurvey is called once per shard and must return a fresh Survey each
// time.
//
// Cancellation is honored at the granularity of one token list per shard.
func ScanShards(ctx context.Context, shards []iter.Seq[[]string], newSurvey func() *Survey) (*Survey, error) {
	if len(shards) == 0 {
		return newSurvey(), nil
	}

	results := make([]*Survey, len(shards))
	g, ctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		g.Go(func() error {
			sv := newSurvey()
			var scanErr error
			sv.Update(func(yield func([]string) bool) {
				for tokens := range shard {
					if scanErr = ctx.Err(); scanErr != nil {
						return
					}
					if !yield(tokens) {
						return
					}
				}
			})
			if scanErr != nil {
				return scanErr
			}
			results[i] = sv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := results[0]
	for _, sv := range results[1:] {
		combined.Merge(sv)
	}
	return combined, nil
}
