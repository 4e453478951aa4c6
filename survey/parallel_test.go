package survey

import (
	"context"
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanShards(t *testing.T) {
	shards := make([]iter.Seq[[]string], 4)
	for i := range shards {
		base := i * 100
		shards[i] = func(yield func([]string) bool) {
			for j := 0; j < 100; j++ {
				if !yield([]string{fmt.Sprintf("w%03d", base+j), "shared"}) {
					return
				}
			}
		}
	}

	combined, err := ScanShards(context.Background(), shards, func() *Survey {
		return New(quiet)
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(400), combined.ItemCount)
	assert.Equal(t, uint64(800), combined.TokenCount)
	assert.Equal(t, 401, combined.Len())

	c, ok := combined.Count("shared")
	require.True(t, ok)
	assert.Equal(t, uint64(400), c)
}

func TestScanShardsEmpty(t *testing.T) {
	combined, err := ScanShards(context.Background(), nil, func() *Survey {
		return New(quiet)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, combined.Len())
}

func TestScanShardsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	endless := func(yield func([]string) bool) {
		for {
			if !yield([]string{"x"}) {
				return
			}
		}
	}

	_, err := ScanShards(ctx, []iter.Seq[[]string]{endless}, func() *Survey {
		return New(quiet)
	})
	assert.ErrorIs(t, err, context.Canceled)
}
