package utils

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense gonum matrix with a read only guard.
type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v\n", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		if nr == 0 || nc == 0 {
			m = &mat.Dense{}
		} else {
			m = mat.NewDense(nr, nc, nil)
		}
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)    { return m.M.Dims() }
func (m Matrix) At(i, j int) float64 { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix       { return m.M.T() }
func (m Matrix) Data() []float64     { return m.M.RawMatrix().Data }

func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// LUSolve solves m*x = b with a partial pivoting LU factorization.
func (m Matrix) LUSolve(b []float64) (x []float64, err error) {
	var (
		nr, nc = m.Dims()
		lu     mat.LU
	)
	if nr != nc || len(b) != nr {
		err = errors.Wrapf(ErrShapeMismatch, "LUSolve on %s: matrix is %d x %d, len(b) = %d", m.name, nr, nc, len(b))
		return
	}
	if nr == 0 {
		return []float64{}, nil
	}
	lu.Factorize(m.M)
	xv := mat.NewVecDense(nr, nil)
	if err = lu.SolveVecTo(xv, false, mat.NewVecDense(nr, append([]float64(nil), b...))); err != nil {
		// mat.Condition: singular or ill conditioned
		err = errors.Wrapf(err, "unable to solve, matrix %s", m.name)
		return
	}
	x = xv.RawVector().Data
	return
}
