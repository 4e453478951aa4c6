package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gojomo/subvec/util"
)

func TestNew(t *testing.T) {
	m := New(3, 2)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 2, m.Cols())
	assert.Len(t, m.Data(), 6)

	// Zero rows is a valid shape (a disabled bucket table).
	assert.Equal(t, 0, New(0, 2).Rows())

	assert.Panics(t, func() { New(2, 0) })
	assert.Panics(t, func() { New(-1, 2) })
}

func TestFromData(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	m, err := FromData(data, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 5, 6}, m.Row(1))

	// The slice is shared, not copied.
	data[3] = 99
	assert.Equal(t, float32(99), m.Row(1)[0])

	_, err = FromData(data, 3, 3)
	assert.Error(t, err)
}

func TestRowAliasing(t *testing.T) {
	m := New(2, 3)
	row := m.Row(0)
	row[1] = 7
	assert.Equal(t, float32(7), m.Data()[1])

	// Appending to a row slice must not spill into the next row.
	row = append(row, 42)
	assert.Equal(t, float32(0), m.Row(1)[0])
	_ = row
}

func TestClone(t *testing.T) {
	m := New(2, 2)
	m.Row(0)[0] = 1
	c := m.Clone()
	c.Row(0)[0] = 5
	assert.Equal(t, float32(1), m.Row(0)[0])
	assert.Equal(t, float32(5), c.Row(0)[0])
}

func TestSwapRows(t *testing.T) {
	m, err := FromData([]float32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	m.SwapRows(0, 1)
	assert.Equal(t, []float32{3, 4}, m.Row(0))
	assert.Equal(t, []float32{1, 2}, m.Row(1))

	m.SwapRows(1, 1)
	assert.Equal(t, []float32{1, 2}, m.Row(1))
}

func TestFillUniformBounds(t *testing.T) {
	m := New(10, 4)
	m.FillUniform(util.NewRNG(7))
	bound := float32(1) / 4
	for _, x := range m.Data() {
		assert.Less(t, x, bound)
		assert.GreaterOrEqual(t, x, -bound)
	}

	// Deterministic for a given seed.
	n := New(10, 4)
	n.FillUniform(util.NewRNG(7))
	assert.Equal(t, m.Data(), n.Data())
}

func TestAppendRandom(t *testing.T) {
	m, err := FromData([]float32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)

	m.AppendRandom(3, util.NewRNG(9))
	assert.Equal(t, 5, m.Rows())
	assert.Equal(t, []float32{1, 2}, m.Row(0))
	assert.Equal(t, []float32{3, 4}, m.Row(1))

	m.AppendRandom(0, util.NewRNG(9))
	assert.Equal(t, 5, m.Rows())
}
