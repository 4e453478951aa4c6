// Package survey builds token-frequency tables from streamed corpora under a
// bounded-memory pruning policy.
//
// A Survey consumes token lists one at a time and keeps a tally of distinct
// tokens. Whenever the tally reaches the configured ceiling, registered
// callbacks run (each may apply an arbitrary keep/discard rule), then the
// lowest-count tokens are discarded until the tally shrinks to the target
// ratio of the ceiling. Tokens can be tenured to exempt them from pruning.
//
// Independently accumulated surveys combine with Merge, which is commutative
// and associative over all count-bearing fields. That is the intended
// concurrency model: shard the stream, survey each shard on its own
// goroutine, merge the results serially (see ScanShards).
package survey

import (
	"errors"
	"iter"
	"log/slog"
	"sort"

	"golang.org/x/time/rate"
)

// ErrUnknownToken is returned by Prune for a token absent from the tally.
var ErrUnknownToken = errors.New("token not in survey")

// Callback receives the survey at every pruning checkpoint and once more
// after the stream is exhausted. It may mutate the tally arbitrarily through
// Prune and Tenure.
type Callback func(*Survey)

// Options configure a Survey.
type Options struct {
	// PruneCeiling bounds the number of distinct tokens held in memory.
	// Zero disables pruning entirely.
	PruneCeiling int
	// PruneTarget is the fraction of PruneCeiling to shrink the tally to
	// at each checkpoint. Defaults to 0.5.
	PruneTarget float64
	// Callbacks run at every pruning checkpoint and once after the stream
	// ends, in registration order.
	Callbacks []Callback
	// Logger receives progress and pruning diagnostics.
	Logger *slog.Logger
	// ProgressPerSecond throttles progress log records. Zero disables
	// progress logging.
	ProgressPerSecond float64
}

// DefaultOptions are the options applied before any option functions run.
var DefaultOptions = Options{
	PruneTarget: 0.5,
}

// Survey is a streaming token-frequency table.
//
// The exported counters are cumulative over every Update and Merge. They are
// plain fields, not methods, because Merge must sum them field by field and
// snapshots serialize them directly.
type Survey struct {
	tally   map[string]uint64
	tenured map[string]struct{}

	// ItemCount is the number of token lists processed.
	ItemCount uint64
	// TokenCount is the number of token occurrences processed.
	TokenCount uint64

	// PruneCount is the total number of distinct tokens ever pruned.
	PruneCount uint64
	// PruneFloor is the highest occurrence count ever pruned.
	PruneFloor uint64
	// PruneTotal is the total token occurrences discarded by pruning.
	PruneTotal uint64

	pruneCeiling     int
	effectiveCeiling int
	pruneTarget      float64
	callbacks        []Callback
	logger           *slog.Logger
	progress         *rate.Limiter
}

// New creates an empty Survey.
func New(optFns ...func(*Options)) *Survey {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Survey{
		tally:            make(map[string]uint64),
		tenured:          make(map[string]struct{}),
		pruneCeiling:     opts.PruneCeiling,
		effectiveCeiling: opts.PruneCeiling,
		pruneTarget:      opts.PruneTarget,
		callbacks:        opts.Callbacks,
		logger:           opts.Logger,
	}
	if opts.ProgressPerSecond > 0 {
		s.progress = rate.NewLimiter(rate.Limit(opts.ProgressPerSecond), 1)
	}
	return s
}

// Len returns the number of distinct tokens currently tallied.
func (s *Survey) Len() int {
	return len(s.tally)
}

// Count returns the tallied count for token.
func (s *Survey) Count(token string) (uint64, bool) {
	c, ok := s.tally[token]
	return c, ok
}

// ForEach calls fn for every tallied token in unspecified order. fn must not
// mutate the survey; collect tokens first and prune after iterating.
func (s *Survey) ForEach(fn func(token string, count uint64)) {
	for t, c := range s.tally {
		fn(t, c)
	}
}

// Tenure permanently exempts token from low-frequency pruning.
func (s *Survey) Tenure(token string) {
	s.tenured[token] = struct{}{}
}

// Tenured reports whether token is exempt from pruning.
func (s *Survey) Tenured(token string) bool {
	_, ok := s.tenured[token]
	return ok
}

// Prune removes token immediately, updating the discard counters.
func (s *Survey) Prune(token string) error {
	count, ok := s.tally[token]
	if !ok {
		return ErrUnknownToken
	}
	delete(s.tally, token)
	s.PruneCount++
	s.PruneTotal += count
	if count > s.PruneFloor {
		s.PruneFloor = count
	}
	return nil
}

// Update consumes the stream, tallying every token list. Pruning checkpoints
// fire whenever the tally reaches the ceiling; after the stream is exhausted
// every callback runs one final time, so callbacks are guaranteed at least
// one invocation even for streams smaller than the ceiling.
//
// Update has no cancellation primitive; it is interruptible only at the
// granularity of one token list (wrap the stream to stop early).
func (s *Survey) Update(stream iter.Seq[[]string]) {
	for tokens := range stream {
		for _, t := range tokens {
			s.tally[t]++
		}
		s.ItemCount++
		s.TokenCount += uint64(len(tokens))

		if s.progress != nil && s.progress.Allow() {
			s.logger.Info("survey progress",
				"items", s.ItemCount,
				"tokens", s.TokenCount,
				"distinct", len(s.tally),
			)
		}

		if s.effectiveCeiling > 0 && len(s.tally) >= s.effectiveCeiling {
			s.pruneCheckpoint()
		}
	}

	for _, cb := range s.callbacks {
		cb(s)
	}

	if s.pruneCeiling > 0 && s.effectiveCeiling > s.pruneCeiling {
		s.logger.Warn("survey outgrew its prune ceiling",
			"ceiling", s.pruneCeiling,
			"effective_ceiling", s.effectiveCeiling,
			"distinct", len(s.tally),
		)
	}
}

// pruneCheckpoint runs the callbacks, then discards the lowest-count
// non-tenured tokens until the tally reaches target size. Ties on count are
// broken by ascending token order, a stable rule chosen here because the
// reference behavior leaves it unspecified.
func (s *Survey) pruneCheckpoint() {
	before := len(s.tally)
	s.logger.Info("survey reached prune ceiling, beginning checkpoint",
		"distinct", before,
		"ceiling", s.effectiveCeiling,
	)

	for _, cb := range s.callbacks {
		cb(s)
	}
	if removed := before - len(s.tally); removed > 0 {
		s.logger.Info("prune callbacks removed tokens", "removed", removed)
	}

	target := int(s.pruneTarget * float64(s.pruneCeiling))
	if len(s.tally) <= target {
		return
	}

	type entry struct {
		token string
		count uint64
	}
	candidates := make([]entry, 0, len(s.tally))
	for t, c := range s.tally {
		candidates = append(candidates, entry{t, c})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count < candidates[j].count
		}
		return candidates[i].token < candidates[j].token
	})

	var pruned int
	var floor uint64
	beforeInfrequent := len(s.tally)
	for _, c := range candidates {
		if len(s.tally) <= target {
			break
		}
		if _, ok := s.tenured[c.token]; ok {
			continue
		}
		floor = c.count
		pruned++
		_ = s.Prune(c.token)
	}

	if len(s.tally) > target {
		// Could not reach the target at all, likely too many tenured or
		// equally frequent tokens. Non-fatal: double the ceiling and keep
		// scanning at higher memory cost rather than fail.
		s.logger.Error("low-frequency pruning cannot reach target, doubling ceiling",
			"target", target,
			"distinct", len(s.tally),
			"tenured", len(s.tenured),
			"new_ceiling", s.effectiveCeiling*2,
		)
		s.effectiveCeiling *= 2
	}

	s.logger.Info("pruned least-frequent tokens",
		"pruned", pruned,
		"highest_pruned_count", floor,
		"before", beforeInfrequent,
		"after", len(s.tally),
	)
}

// Merge tallies other into s, summing counts and all aggregate counters.
// The operation is commutative and associative over every count-bearing
// field, which is what makes sharded scanning followed by a reduce sound.
func (s *Survey) Merge(other *Survey) {
	for t, c := range other.tally {
		s.tally[t] += c
	}
	for t := range other.tenured {
		s.tenured[t] = struct{}{}
	}
	s.ItemCount += other.ItemCount
	s.TokenCount += other.TokenCount
	s.PruneCount += other.PruneCount
	s.PruneTotal += other.PruneTotal
	if other.PruneFloor > s.PruneFloor {
		s.PruneFloor = other.PruneFloor
	}
}
