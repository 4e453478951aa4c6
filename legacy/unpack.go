// Package legacy reverses the deprecated packed bucket-matrix layout.
//
// Older snapshots saved space by storing only the buckets actually touched by
// some vocabulary word, contiguously, addressed through a hash-to-packed-row
// map. That layout breaks out-of-vocabulary lookups whose ngrams hash to
// buckets never seen during training, so it is undone once at load time and
// never written again.
package legacy

import (
	"fmt"

	"github.com/gojomo/subvec/matrix"
	"github.com/gojomo/subvec/util"
)

// PackedOverflowError indicates a packed matrix with more rows than the
// declared total bucket count: a malformed or truncated legacy file. This is
// fatal, never patched.
type PackedOverflowError struct {
	PackedRows int
	Buckets    int
}

func (e *PackedOverflowError) Error() string {
	return fmt.Sprintf("legacy: packed matrix has %d rows, exceeding declared bucket count %d", e.PackedRows, e.Buckets)
}

// Unpack restores a packed bucket matrix to its natural one-row-per-bucket
// shape, in place.
//
// Already-natural input (row count equal to buckets) is returned unchanged.
// Otherwise the matrix gains buckets-minus-packed fresh uniformly-random rows
// seeded from seed, then rows are swapped so the hash-to-packed-index map
// becomes the identity. Each qualifying pair is applied exactly once; doing a
// swap in both directions would cancel it.
//
// The map carries no meaning after a successful unpack and should be
// discarded by the caller.
func Unpack(m *matrix.Matrix, buckets int, hashToPacked map[int]int, seed int64) (*matrix.Matrix, error) {
	packedRows := m.Rows()
	if packedRows == buckets {
		return m, nil
	}
	if packedRows > buckets {
		return nil, &PackedOverflowError{PackedRows: packedRows, Buckets: buckets}
	}

	rng := util.NewRNG(seed)
	m.AppendRandom(buckets-packedRows, rng)

	// Two kinds of pairs move a stored vector to its hash position: internal
	// rearrangements (h < i, both inside the packed region) and hashes landing
	// in the freshly appended random region (h >= packedRows). Everything else
	// is either the identity or the mirror of a pair already applied.
	for h, i := range hashToPacked {
		if h == i {
			continue
		}
		if (h < i && i < packedRows) || h >= packedRows {
			m.SwapRows(h, i)
		}
	}
	return m, nil
}
