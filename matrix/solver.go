package matrix

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/femkernel/utils"
)

// Solver solves A x = b for an assembled global operator. Failures are returned, never retried.
type Solver interface {
	Solve(A utils.CSR, b, x []float64) error
}

// DenseLU factorizes a dense copy of A, for small systems and tests.
type DenseLU struct{}

func (DenseLU) Solve(A utils.CSR, b, x []float64) (err error) {
	var (
		nr, _ = A.Dims()
		xs    []float64
	)
	if len(x) != nr {
		return utils.ShapeError("DenseLU x", []int{len(x)}, []int{nr})
	}
	if xs, err = A.ToDense().LUSolve(b); err != nil {
		return
	}
	copy(x, xs)
	return
}

// ConjugateGradient is a Jacobi preconditioned CG for symmetric positive definite A.
// x is used as the initial guess.
type ConjugateGradient struct {
	Tol     float64 // relative residual, default 1e-10
	MaxIter int     // default 10 * len(b)
}

func (cg ConjugateGradient) Solve(A utils.CSR, b, x []float64) (err error) {
	var (
		n, nc = A.Dims()
		tol   = cg.Tol
		maxIt = cg.MaxIter
	)
	if n != nc || len(b) != n || len(x) != n {
		return errors.Wrapf(utils.ErrShapeMismatch,
			"ConjugateGradient: A is %d x %d, len(b) = %d, len(x) = %d", n, nc, len(b), len(x))
	}
	if n == 0 {
		return
	}
	if tol == 0 {
		tol = 1e-10
	}
	if maxIt == 0 {
		maxIt = 10 * n
	}
	var (
		diag = A.Diagonal()
		r    = make([]float64, n)
		z    = make([]float64, n)
		p    = make([]float64, n)
		Ap   = make([]float64, n)
		bnrm = floats.Norm(b, 2)
	)
	for i, d := range diag {
		if d <= 0 {
			return errors.Wrapf(utils.ErrUnsupportedConfig,
				"ConjugateGradient: diagonal entry %d is %g, A is not positive definite", i, d)
		}
	}
	if bnrm == 0 {
		for i := range x {
			x[i] = 0
		}
		return
	}
	// r = b - A x
	A.MulVec(x, r)
	floats.ScaleTo(r, -1, r)
	floats.Add(r, b)
	floats.DivTo(z, r, diag)
	copy(p, z)
	rz := floats.Dot(r, z)
	for it := 0; it < maxIt; it++ {
		if floats.Norm(r, 2) <= tol*bnrm {
			if glog.V(2) {
				glog.Infof("conjugate gradient: converged in %d iterations", it)
			}
			return
		}
		A.MulVec(p, Ap)
		pAp := floats.Dot(p, Ap)
		if pAp <= 0 || math.IsNaN(pAp) {
			return errors.Wrapf(utils.ErrUnsupportedConfig,
				"ConjugateGradient: p^T A p = %g, A is not positive definite", pAp)
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		floats.DivTo(z, r, diag)
		rzNew := floats.Dot(r, z)
		floats.AddScaledTo(p, z, rzNew/rz, p)
		rz = rzNew
	}
	if floats.Norm(r, 2) <= tol*bnrm {
		return
	}
	return errors.Wrapf(utils.ErrNotConverged,
		"ConjugateGradient: relative residual %g after %d iterations", floats.Norm(r, 2)/bnrm, maxIt)
}
