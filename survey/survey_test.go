package survey

import (
	"fmt"
	"iter"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet(o *Options) {
	o.Logger = slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func items(lists ...[]string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for _, l := range lists {
			if !yield(l) {
				return
			}
		}
	}
}

func TestUpdateCounts(t *testing.T) {
	s := New(quiet)
	s.Update(items(
		[]string{"cat", "say", "meow"},
		[]string{"dog", "say", "woof"},
	))

	assert.Equal(t, uint64(2), s.ItemCount)
	assert.Equal(t, uint64(6), s.TokenCount)
	assert.Equal(t, 5, s.Len())

	c, ok := s.Count("say")
	require.True(t, ok)
	assert.Equal(t, uint64(2), c)

	_, ok = s.Count("bird")
	assert.False(t, ok)
}

func TestPruneToken(t *testing.T) {
	s := New(quiet)
	s.Update(items([]string{"a", "a", "a", "b"}))

	require.NoError(t, s.Prune("a"))
	assert.Equal(t, uint64(1), s.PruneCount)
	assert.Equal(t, uint64(3), s.PruneTotal)
	assert.Equal(t, uint64(3), s.PruneFloor)

	assert.ErrorIs(t, s.Prune("a"), ErrUnknownToken)
}

func TestCeilingRespectedAtEveryCheckpoint(t *testing.T) {
	const (
		distinct = 100000
		ceiling  = 50000
	)

	var maxSeen int
	s := New(quiet, func(o *Options) {
		o.PruneCeiling = ceiling
		o.PruneTarget = 0.5
		o.Callbacks = []Callback{func(sv *Survey) {
			if sv.Len() > maxSeen {
				maxSeen = sv.Len()
			}
		}}
	})

	stream := func(yield func([]string) bool) {
		for i := 0; i < distinct; i++ {
			if !yield([]string{fmt.Sprintf("tok%07d", i)}) {
				return
			}
		}
		// one extra occurrence of a repeated token
		yield([]string{"tok0000000"})
	}
	s.Update(stream)

	assert.LessOrEqual(t, maxSeen, ceiling, "tally exceeded ceiling at a checkpoint")
	assert.LessOrEqual(t, s.Len(), ceiling)

	// Conservation: retained occurrences plus discarded occurrences equal
	// every occurrence ever seen.
	var retained uint64
	s.ForEach(func(_ string, c uint64) { retained += c })
	assert.Equal(t, uint64(distinct+1), retained+s.PruneTotal)
	assert.Equal(t, uint64(distinct+1), s.TokenCount)
}

func TestTenureProtection(t *testing.T) {
	s := New(quiet, func(o *Options) {
		o.PruneCeiling = 10
		o.PruneTarget = 0.5
	})
	s.Tenure("rare")

	stream := func(yield func([]string) bool) {
		// "rare" appears once, everything else many times.
		if !yield([]string{"rare"}) {
			return
		}
		for i := 0; i < 50; i++ {
			for j := 0; j < 5; j++ {
				if !yield([]string{fmt.Sprintf("common%02d", i)}) {
					return
				}
			}
		}
	}
	s.Update(stream)

	_, ok := s.Count("rare")
	assert.True(t, ok, "tenured token was pruned")
	assert.True(t, s.Tenured("rare"))
}

func TestCallbackRunsAtLeastOnce(t *testing.T) {
	var calls int
	s := New(quiet, func(o *Options) {
		o.PruneCeiling = 1000000
		o.Callbacks = []Callback{func(*Survey) { calls++ }}
	})
	s.Update(items([]string{"only"}))
	assert.Equal(t, 1, calls, "callbacks must run once even below the ceiling")
}

func TestCallbackMayPrune(t *testing.T) {
	s := New(quiet, func(o *Options) {
		o.Callbacks = []Callback{func(sv *Survey) {
			var short []string
			sv.ForEach(func(tok string, _ uint64) {
				if len(tok) < 2 {
					short = append(short, tok)
				}
			})
			for _, tok := range short {
				_ = sv.Prune(tok)
			}
		}}
	})
	s.Update(items([]string{"a", "bb", "c", "ddd"}))
	assert.Equal(t, 2, s.Len())
	_, ok := s.Count("bb")
	assert.True(t, ok)
}

func TestOverloadDoublesCeiling(t *testing.T) {
	s := New(quiet, func(o *Options) {
		o.PruneCeiling = 10
		o.PruneTarget = 0.5
	})
	// Tenure everything so the target can never be reached.
	for i := 0; i < 12; i++ {
		s.Tenure(fmt.Sprintf("t%02d", i))
	}
	stream := func(yield func([]string) bool) {
		for i := 0; i < 12; i++ {
			if !yield([]string{fmt.Sprintf("t%02d", i)}) {
				return
			}
		}
	}
	s.Update(stream)

	// Non-fatal: every token survives and the effective ceiling grew.
	assert.Equal(t, 12, s.Len())
	assert.Greater(t, s.effectiveCeiling, s.pruneCeiling)
}

func surveyOf(counts map[string]uint64) *Survey {
	s := New(quiet)
	stream := func(yield func([]string) bool) {
		for t, c := range counts {
			for i := uint64(0); i < c; i++ {
				if !yield([]string{t}) {
					return
				}
			}
		}
	}
	s.Update(stream)
	return s
}

func TestMergeCommutativeAssociative(t *testing.T) {
	mk := func() (*Survey, *Survey, *Survey) {
		return surveyOf(map[string]uint64{"a": 3, "b": 1}),
			surveyOf(map[string]uint64{"b": 2, "c": 5}),
			surveyOf(map[string]uint64{"a": 1, "c": 1, "d": 7})
	}

	// merge(a, merge(b, c))
	a1, b1, c1 := mk()
	b1.Merge(c1)
	a1.Merge(b1)

	// merge(merge(a, b), c)
	a2, b2, c2 := mk()
	a2.Merge(b2)
	a2.Merge(c2)

	// merge(b, merge(a, c))
	a3, b3, c3 := mk()
	a3.Merge(c3)
	b3.Merge(a3)

	for _, s := range []*Survey{a2, b3} {
		assert.Equal(t, a1.ItemCount, s.ItemCount)
		assert.Equal(t, a1.TokenCount, s.TokenCount)
		assert.Equal(t, a1.PruneCount, s.PruneCount)
		assert.Equal(t, a1.PruneTotal, s.PruneTotal)
		assert.Equal(t, a1.PruneFloor, s.PruneFloor)
		assert.Equal(t, a1.Len(), s.Len())
		a1.ForEach(func(tok string, c uint64) {
			got, ok := s.Count(tok)
			assert.True(t, ok)
			assert.Equal(t, c, got, "token %q", tok)
		})
	}
}

func TestMergeAggregatesPruneCounters(t *testing.T) {
	a := surveyOf(map[string]uint64{"x": 4, "y": 1})
	b := surveyOf(map[string]uint64{"z": 2})
	require.NoError(t, a.Prune("x"))
	require.NoError(t, b.Prune("z"))

	a.Merge(b)
	assert.Equal(t, uint64(2), a.PruneCount)
	assert.Equal(t, uint64(6), a.PruneTotal)
	assert.Equal(t, uint64(4), a.PruneFloor)
}
