package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
)

// DOK is the accumulation format used while assembling a global operator.
// Zero sized operators (an empty partition) carry no storage.
type DOK struct {
	M        *sparse.DOK
	nr, nc   int
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		nr:   nr,
		nc:   nc,
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	if nr > 0 && nc > 0 {
		R.M = sparse.NewDOK(nr, nc)
	}
	return
}

// Dims and At minimally satisfy the read side of mat.Matrix.
func (m DOK) Dims() (r, c int) { return m.nr, m.nc }
func (m DOK) At(i, j int) float64 {
	mustf(i >= 0 && i < m.nr && j >= 0 && j < m.nc, "index (%d, %d) out of range for %s", i, j, m.name)
	return m.M.At(i, j)
}

// AddAt accumulates val into entry (i, j).
func (m DOK) AddAt(i, j int, val float64) {
	m.checkWritable()
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() (R CSR) {
	R = CSR{
		nr:   m.nr,
		nc:   m.nc,
		name: m.name,
	}
	if m.M != nil {
		R.M = m.M.ToCSR()
	}
	return
}

// CSR is the compressed form used for products and solves.
type CSR struct {
	M      *sparse.CSR
	nr, nc int
	name   string
}

func (m CSR) Dims() (r, c int) { return m.nr, m.nc }
func (m CSR) At(i, j int) float64 {
	mustf(i >= 0 && i < m.nr && j >= 0 && j < m.nc, "index (%d, %d) out of range for %s", i, j, m.name)
	return m.M.At(i, j)
}
func (m CSR) NNZ() int {
	if m.M == nil {
		return 0
	}
	return m.M.NNZ()
}

// MulVec computes y = A*x.
func (m CSR) MulVec(x, y []float64) {
	var (
		nr, nc = m.Dims()
	)
	mustf(len(x) == nc && len(y) == nr,
		"dimension mismatch in MulVec for %s: (%d x %d) with len(x) = %d, len(y) = %d",
		m.name, nr, nc, len(x), len(y))
	fill(y, 0)
	if m.M == nil {
		return
	}
	m.M.MulVecTo(y, false, x)
}

// MulVecAdd computes y += alpha*A*x.
func (m CSR) MulVecAdd(alpha float64, x, y []float64) {
	var (
		nr, nc = m.Dims()
	)
	mustf(len(x) == nc && len(y) == nr,
		"dimension mismatch in MulVecAdd for %s: (%d x %d) with len(x) = %d, len(y) = %d",
		m.name, nr, nc, len(x), len(y))
	if m.M == nil {
		return
	}
	blas.Dusmv(false, alpha, m.M.RawMatrix(), x, 1, y, 1)
}

// MulTVecAdd computes y += alpha*A^T*x.
func (m CSR) MulTVecAdd(alpha float64, x, y []float64) {
	var (
		nr, nc = m.Dims()
	)
	mustf(len(x) == nr && len(y) == nc,
		"dimension mismatch in MulTVecAdd for %s: (%d x %d) with len(x) = %d, len(y) = %d",
		m.name, nr, nc, len(x), len(y))
	if m.M == nil {
		return
	}
	blas.Dusmv(true, alpha, m.M.RawMatrix(), x, 1, y, 1)
}

func (m CSR) Diagonal() (d []float64) {
	var (
		nr, _ = m.Dims()
	)
	d = make([]float64, nr)
	if m.M == nil {
		return
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		if i == j {
			d[i] += v
		}
	})
	return
}

func (m CSR) ToDense() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	if m.M == nil {
		return NewMatrix(nr, nc)
	}
	return NewMatrix(nr, nc, m.M.ToDense().RawMatrix().Data)
}
