package embeddings

import (
	"fmt"
	"os"

	"github.com/sbinet/npyio"
)

// Matrix is a dense row-major float32 matrix.
type Matrix struct {
	rows, dims int
	data       []float32
}

// NewMatrix copies rows into a Matrix. All rows must share one width.
func NewMatrix(rows [][]float32) (*Matrix, error) {
	m := &Matrix{rows: len(rows)}
	if len(rows) > 0 {
		m.dims = len(rows[0])
	}
	m.data = make([]float32, 0, m.rows*m.dims)
	for i, r := range rows {
		if len(r) != m.dims {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), m.dims)
		}
		m.data = append(m.data, r...)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Dims returns the row width.
func (m *Matrix) Dims() int { return m.dims }

// Row returns a view of row i. The slice must not be modified.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.dims : (i+1)*m.dims]
}

// LoadMatrix reads a two-dimensional little-endian float32 or float64 .npy file.
func LoadMatrix(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read npy header of %s: %w", path, err)
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("%s: expected a 2-d array, got shape %v", path, shape)
	}
	if r.Header.Descr.Fortran {
		return nil, fmt.Errorf("%s: fortran-ordered arrays are not supported", path)
	}

	m := &Matrix{rows: shape[0], dims: shape[1]}
	switch r.Header.Descr.Type {
	case "<f4", "f4":
		if err := r.Read(&m.data); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case "<f8", "f8":
		var wide []float64
		if err := r.Read(&wide); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		m.data = make([]float32, len(wide))
		for i, v := range wide {
			m.data[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported dtype %q", path, r.Header.Descr.Type)
	}
	if len(m.data) != m.rows*m.dims {
		return nil, fmt.Errorf("%s: read %d values, want %d", path, len(m.data), m.rows*m.dims)
	}
	return m, nil
}
