package matrix

import (
	"math"

	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
	"github.com/notargets/femkernel/vector"
)

// MatrixDiagonal is a global operator with only diagonal entries, such as a lumped mass matrix.
type MatrixDiagonal struct {
	vec *vector.Vector
	D   []float64
}

func NewMatrixDiagonal(conn, dofs [][]int, opts ...vector.Option) (m *MatrixDiagonal, err error) {
	var vec *vector.Vector
	if vec, err = vector.NewVector(conn, dofs, opts...); err != nil {
		return
	}
	m = &MatrixDiagonal{
		vec: vec,
		D:   vec.AllocateDofval(),
	}
	return
}

/*
Assemble replaces D by the assembly of the diagonals of elemmat. Element
matrices with an off diagonal entry larger than tol times their largest
diagonal entry are rejected, the previous D is kept.
*/
func (m *MatrixDiagonal) Assemble(elemmat utils.Array) (err error) {
	var (
		nelem = m.vec.Nelem()
		ndf   = m.vec.Nne() * m.vec.Ndim()
		tol   = 1e-12
	)
	if err = elemmat.CheckShape("elemmat", nelem, ndf, ndf); err != nil {
		return
	}
	err = m.vec.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			var (
				Ke   = elemmat.Sub(e)
				dmax float64
			)
			for i := 0; i < ndf; i++ {
				dmax = math.Max(dmax, math.Abs(Ke[i*ndf+i]))
			}
			for i := 0; i < ndf; i++ {
				for j := 0; j < ndf; j++ {
					if i != j && math.Abs(Ke[i*ndf+j]) > tol*dmax {
						return errors.Wrapf(utils.ErrShapeMismatch,
							"element %d: off diagonal entry (%d, %d) = %g in a diagonal matrix", e, i, j, Ke[i*ndf+j])
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	diag := utils.NewArray(nelem, m.vec.Nne(), m.vec.Ndim())
	for e := 0; e < nelem; e++ {
		Ke := elemmat.Sub(e)
		de := diag.Sub(e)
		for i := range de {
			de[i] = Ke[i*ndf+i]
		}
	}
	return m.vec.AssembleDofs(diag, m.D)
}

// Set replaces D.
func (m *MatrixDiagonal) Set(D []float64) (err error) {
	if err = checkLen("Set D", D, m.vec.Ndof()); err != nil {
		return
	}
	copy(m.D, D)
	return
}

// Dot computes b = D x on DOF vectors.
func (m *MatrixDiagonal) Dot(x, b []float64) (err error) {
	if err = checkLen("Dot x", x, len(m.D)); err != nil {
		return
	}
	if err = checkLen("Dot b", b, len(m.D)); err != nil {
		return
	}
	for i, d := range m.D {
		b[i] = d * x[i]
	}
	return
}

// DotNode computes b = D x on nodal vectors.
func (m *MatrixDiagonal) DotNode(x, b utils.Array) (err error) {
	var (
		X = m.vec.AllocateDofval()
		B = m.vec.AllocateDofval()
	)
	if err = m.vec.AsDofs(x, X); err != nil {
		return
	}
	_ = m.Dot(X, B)
	return m.vec.AsNode(B, b)
}

// Solve computes x = b / D, a zero diagonal entry is an error.
func (m *MatrixDiagonal) Solve(b, x []float64) (err error) {
	if err = checkLen("Solve b", b, len(m.D)); err != nil {
		return
	}
	if err = checkLen("Solve x", x, len(m.D)); err != nil {
		return
	}
	for i, d := range m.D {
		if d == 0 {
			return errors.Wrapf(utils.ErrUnsupportedConfig, "diagonal matrix: zero entry at DOF %d", i)
		}
	}
	for i, d := range m.D {
		x[i] = b[i] / d
	}
	return
}

// SolveNode computes x = b / D on nodal vectors.
func (m *MatrixDiagonal) SolveNode(b, x utils.Array) (err error) {
	var (
		B = m.vec.AllocateDofval()
		X = m.vec.AllocateDofval()
	)
	if err = m.vec.AsDofs(b, B); err != nil {
		return
	}
	if err = x.CheckShape("SolveNode x", m.vec.Nnode(), m.vec.Ndim()); err != nil {
		return
	}
	if err = m.Solve(B, X); err != nil {
		return
	}
	return m.vec.AsNode(X, x)
}
