package matrix

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
	"github.com/notargets/femkernel/vector"
)

type triplet struct {
	r, c int
	v    float64
}

/*
collect checks elemmat (nelem, nne*ndim, nne*ndim) and returns its non zero
entries in global DOF numbering, one list per element partition. Lists are
built concurrently and consumed in partition order, so the summation order
into a global operator is fixed.
*/
func collect(vec *vector.Vector, elemmat utils.Array) (buckets [][]triplet, err error) {
	var (
		nd   = vec.Ndim()
		ndf  = vec.Nne() * nd
		conn = vec.Conn()
		dofs = vec.Dofs()
	)
	if err = elemmat.CheckShape("elemmat", vec.Nelem(), ndf, ndf); err != nil {
		return
	}
	buckets = make([][]triplet, vec.Partitions.ParallelDegree)
	err = vec.Partitions.Run(func(bn, kMin, kMax int) error {
		var (
			dofE = make([]int, ndf)
			list = make([]triplet, 0, (kMax-kMin)*ndf*ndf)
		)
		for e := kMin; e < kMax; e++ {
			for m, n := range conn[e] {
				copy(dofE[m*nd:], dofs[n])
			}
			Ke := elemmat.Sub(e)
			for i, di := range dofE {
				for j, dj := range dofE {
					if v := Ke[i*ndf+j]; v != 0 {
						list = append(list, triplet{di, dj, v})
					}
				}
			}
		}
		buckets[bn] = list
		return nil
	})
	return
}

/*
Matrix is the global sparse operator over all DOFs of a mesh. Assemble replaces
the previous operator, it does not add to it.
*/
type Matrix struct {
	vec    *vector.Vector
	A      utils.CSR
	solver Solver
}

func NewMatrix(conn, dofs [][]int, opts ...vector.Option) (m *Matrix, err error) {
	var vec *vector.Vector
	if vec, err = vector.NewVector(conn, dofs, opts...); err != nil {
		return
	}
	m = &Matrix{
		vec:    vec,
		A:      utils.NewDOK(vec.Ndof(), vec.Ndof()).ToCSR(),
		solver: DenseLU{},
	}
	return
}

func (m *Matrix) Nelem() int { return m.vec.Nelem() }
func (m *Matrix) Nne() int   { return m.vec.Nne() }
func (m *Matrix) Nnode() int { return m.vec.Nnode() }
func (m *Matrix) Ndim() int  { return m.vec.Ndim() }
func (m *Matrix) Ndof() int  { return m.vec.Ndof() }

// SetSolver replaces the default DenseLU.
func (m *Matrix) SetSolver(s Solver) { m.solver = s }

// Assemble sums elemmat into A, A(dof_i, dof_j) += Ke(i, j).
func (m *Matrix) Assemble(elemmat utils.Array) (err error) {
	var (
		buckets [][]triplet
		ndof    = m.vec.Ndof()
	)
	if buckets, err = collect(m.vec, elemmat); err != nil {
		return
	}
	A := utils.NewDOK(ndof, ndof)
	for _, list := range buckets {
		for _, t := range list {
			A.AddAt(t.r, t.c, t.v)
		}
	}
	m.A = A.SetReadOnly("A").ToCSR()
	if glog.V(2) {
		glog.Infof("matrix: assembled %d x %d, nnz = %d", ndof, ndof, m.A.NNZ())
	}
	return
}

// Dot computes b = A x on DOF vectors.
func (m *Matrix) Dot(x, b []float64) (err error) {
	if err = checkLen("Dot x", x, m.vec.Ndof()); err != nil {
		return
	}
	if err = checkLen("Dot b", b, m.vec.Ndof()); err != nil {
		return
	}
	m.A.MulVec(x, b)
	return
}

// DotNode computes b = A x on nodal vectors, DOFs shared by several nodes are written to each of them.
func (m *Matrix) DotNode(x, b utils.Array) (err error) {
	var (
		X = m.vec.AllocateDofval()
		B = m.vec.AllocateDofval()
	)
	if err = m.vec.AsDofs(x, X); err != nil {
		return
	}
	if err = m.Dot(X, B); err != nil {
		return
	}
	return m.vec.AsNode(B, b)
}

func (m *Matrix) ToDense() utils.Matrix { return m.A.ToDense() }

// Solve solves A x = b on DOF vectors.
func (m *Matrix) Solve(b, x []float64) (err error) {
	if err = checkLen("Solve b", b, m.vec.Ndof()); err != nil {
		return
	}
	if err = checkLen("Solve x", x, m.vec.Ndof()); err != nil {
		return
	}
	if err = m.solver.Solve(m.A, b, x); err != nil {
		err = errors.Wrap(err, "matrix solve")
	}
	return
}

// SolveNode solves A x = b on nodal vectors.
func (m *Matrix) SolveNode(b, x utils.Array) (err error) {
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

func checkLen(name string, dofval []float64, n int) error {
	if len(dofval) != n {
		return utils.ShapeError(name, []int{len(dofval)}, []int{n})
	}
	return nil
}
