package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gojomo/subvec/matrix"
)

func packedMatrix(t *testing.T, rows, cols int) *matrix.Matrix {
	t.Helper()
	m := matrix.New(rows, cols)
	for i := 0; i < rows; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = float32(i*100 + j)
		}
	}
	return m
}

func TestUnpackSwapsRows(t *testing.T) {
	// 3 packed rows, 5 total buckets, hash 0 stored at packed row 2 and
	// hash 4 stored at packed row 1.
	m := packedMatrix(t, 3, 4)
	row0 := append([]float32(nil), m.Row(0)...)
	row1 := append([]float32(nil), m.Row(1)...)
	row2 := append([]float32(nil), m.Row(2)...)

	got, err := Unpack(m, 5, map[int]int{0: 2, 4: 1}, 1)
	require.NoError(t, err)
	require.Equal(t, 5, got.Rows())

	// Row 0 now holds what packed row 2 stored; row 4 holds packed row 1.
	assert.Equal(t, row2, got.Row(0))
	assert.Equal(t, row1, got.Row(4))
	// Row 1 received the random row that used to sit at index 4, while the
	// untargeted packed row 0 landed at index 2 via the 0<->2 swap.
	assert.Equal(t, row0, got.Row(2))
}

func TestUnpackIdentityPairsSkipped(t *testing.T) {
	m := packedMatrix(t, 3, 2)
	want := m.Clone()
	got, err := Unpack(m, 3, map[int]int{0: 0, 1: 1, 2: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, want.Data(), got.Data())
}

func TestUnpackNaturalInputUnchanged(t *testing.T) {
	m := packedMatrix(t, 5, 4)
	want := m.Clone()

	got, err := Unpack(m, 5, map[int]int{0: 2, 4: 1}, 1)
	require.NoError(t, err)
	assert.Same(t, m, got)
	assert.Equal(t, want.Data(), got.Data())
}

func TestUnpackIdempotent(t *testing.T) {
	h2i := map[int]int{0: 2, 4: 1}
	m := packedMatrix(t, 3, 4)

	once, err := Unpack(m, 5, h2i, 1)
	require.NoError(t, err)
	snapshot := once.Clone()

	twice, err := Unpack(once, 5, h2i, 1)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Data(), twice.Data())
}

func TestUnpackDeterministicTail(t *testing.T) {
	a, err := Unpack(packedMatrix(t, 3, 4), 6, nil, 42)
	require.NoError(t, err)
	b, err := Unpack(packedMatrix(t, 3, 4), 6, nil, 42)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())

	c, err := Unpack(packedMatrix(t, 3, 4), 6, nil, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestUnpackOverflowFatal(t *testing.T) {
	m := packedMatrix(t, 7, 4)
	_, err := Unpack(m, 5, nil, 1)
	var overflow *PackedOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 7, overflow.PackedRows)
	assert.Equal(t, 5, overflow.Buckets)
}
