// Package matrix provides the flat, row-major float32 matrix shared between
// the embedding store and the external training kernel.
//
// The layout is the contract: Data() is a contiguous rows*cols float32 slice,
// row i occupying Data()[i*cols : (i+1)*cols]. The kernel may read and write
// rows in place through Row().
package matrix

import (
	"fmt"

	"github.com/gojomo/subvec/util"
)

// Matrix is a dense rows x cols float32 matrix in row-major order.
type Matrix struct {
	rows int
	cols int
	data []float32
}

// New creates a zero-filled rows x cols matrix.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols <= 0 {
		panic(fmt.Sprintf("matrix: invalid shape %dx%d", rows, cols))
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

// FromData wraps an existing flat slice as a rows x cols matrix.
// The slice is used directly, not copied.
func FromData(data []float32, rows, cols int) (*Matrix, error) {
	if rows*cols != len(data) {
		return nil, fmt.Errorf("matrix: data length %d does not match shape %dx%d", len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Data returns the underlying flat slice. Mutations are visible to the matrix.
func (m *Matrix) Data() []float32 { return m.data }

// Row returns row i as a slice aliasing the underlying data.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]float32, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// SwapRows exchanges rows i and j in place.
func (m *Matrix) SwapRows(i, j int) {
	if i == j {
		return
	}
	ri, rj := m.Row(i), m.Row(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// FillUniform fills every entry with values drawn uniformly from
// [-1/cols, 1/cols), the initialization range for embedding weights.
func (m *Matrix) FillUniform(rng *util.RNG) {
	lo, hi := m.uniformBounds()
	rng.FillUniform(m.data, lo, hi)
}

// AppendRandom appends n rows filled with values drawn uniformly from
// [-1/cols, 1/cols). Existing rows keep their exact contents.
func (m *Matrix) AppendRandom(n int, rng *util.RNG) {
	if n <= 0 {
		return
	}
	lo, hi := m.uniformBounds()
	suffix := make([]float32, n*m.cols)
	rng.FillUniform(suffix, lo, hi)
	m.data = append(m.data, suffix...)
	m.rows += n
}

func (m *Matrix) uniformBounds() (float32, float32) {
	bound := float32(1.0) / float32(m.cols)
	return -bound, bound
}
