package matrix

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
	"github.com/notargets/femkernel/vector"
)

/*
MatrixPartitioned stores the global operator as the four blocks of the
unknown / prescribed partition:

	| Auu  Aup | | x_u |   | b_u |
	| Apu  App | | x_p | = | b_p |

Solve computes x_u for given b_u and x_p, Reaction computes b_p.
*/
type MatrixPartitioned struct {
	vec                *vector.VectorPartitioned
	pos                []int  // position of every DOF within its partition
	isP                []bool // DOF is prescribed
	Auu, Aup, Apu, App utils.CSR
	solver             Solver
}

func NewMatrixPartitioned(conn, dofs [][]int, iip utils.Index, opts ...vector.Option) (m *MatrixPartitioned, err error) {
	var vec *vector.VectorPartitioned
	if vec, err = vector.NewVectorPartitioned(conn, dofs, iip, opts...); err != nil {
		return
	}
	var (
		nnu, nnp = vec.Nnu(), vec.Nnp()
		pos      = make([]int, vec.Ndof())
		isP      = make([]bool, vec.Ndof())
	)
	for i, d := range vec.IIU() {
		pos[d] = i
	}
	for i, d := range vec.IIP() {
		pos[d] = i
		isP[d] = true
	}
	m = &MatrixPartitioned{
		vec:    vec,
		pos:    pos,
		isP:    isP,
		Auu:    utils.NewDOK(nnu, nnu).ToCSR(),
		Aup:    utils.NewDOK(nnu, nnp).ToCSR(),
		Apu:    utils.NewDOK(nnp, nnu).ToCSR(),
		App:    utils.NewDOK(nnp, nnp).ToCSR(),
		solver: DenseLU{},
	}
	return
}

func (m *MatrixPartitioned) Ndof() int        { return m.vec.Ndof() }
func (m *MatrixPartitioned) Nnu() int         { return m.vec.Nnu() }
func (m *MatrixPartitioned) Nnp() int         { return m.vec.Nnp() }
func (m *MatrixPartitioned) IIU() utils.Index { return m.vec.IIU() }
func (m *MatrixPartitioned) IIP() utils.Index { return m.vec.IIP() }

// SetSolver replaces the default DenseLU.
func (m *MatrixPartitioned) SetSolver(s Solver) { m.solver = s }

// Assemble replaces the four blocks by the assembly of elemmat.
func (m *MatrixPartitioned) Assemble(elemmat utils.Array) (err error) {
	var (
		buckets  [][]triplet
		nnu, nnp = m.vec.Nnu(), m.vec.Nnp()
		dims     = [4][2]int{{nnu, nnu}, {nnu, nnp}, {nnp, nnu}, {nnp, nnp}}
		names    = [4]string{"Auu", "Aup", "Apu", "App"}
		dok      [4]utils.DOK
	)
	if buckets, err = collect(m.vec.Vector, elemmat); err != nil {
		return
	}
	for i := range dok {
		dok[i] = utils.NewDOK(dims[i][0], dims[i][1])
	}
	for _, list := range buckets {
		for _, t := range list {
			var blk int
			if m.isP[t.r] {
				blk += 2
			}
			if m.isP[t.c] {
				blk++
			}
			dok[blk].AddAt(m.pos[t.r], m.pos[t.c], t.v)
		}
	}
	for i, A := range []*utils.CSR{&m.Auu, &m.Aup, &m.Apu, &m.App} {
		*A = dok[i].SetReadOnly(names[i]).ToCSR()
	}
	if glog.V(2) {
		glog.Infof("matrix partitioned: nnu = %d, nnp = %d, nnz(Auu) = %d", nnu, nnp, m.Auu.NNZ())
	}
	return
}

// SolveU solves Auu x_u = b_u - Aup x_p on partitioned DOF vectors.
func (m *MatrixPartitioned) SolveU(bU, xP, xU []float64) (err error) {
	nnu, nnp := m.vec.Nnu(), m.vec.Nnp()
	if err = checkLen("SolveU b_u", bU, nnu); err != nil {
		return
	}
	if err = checkLen("SolveU x_p", xP, nnp); err != nil {
		return
	}
	if err = checkLen("SolveU x_u", xU, nnu); err != nil {
		return
	}
	rhs := append([]float64(nil), bU...)
	m.Aup.MulVecAdd(-1, xP, rhs)
	if err = m.solver.Solve(m.Auu, rhs, xU); err != nil {
		err = errors.Wrap(err, "partitioned solve")
	}
	return
}

// Solve reads b_u from b and x_p from x (nodal vectors) and writes x_u into x.
func (m *MatrixPartitioned) Solve(b, x utils.Array) (err error) {
	var (
		bU = m.vec.AllocateDofvalU()
		xU = m.vec.AllocateDofvalU()
		xP = m.vec.AllocateDofvalP()
	)
	if err = m.vec.AsDofsU(b, bU); err != nil {
		return
	}
	if err = m.vec.AsDofsP(x, xP); err != nil {
		return
	}
	if err = m.SolveU(bU, xP, xU); err != nil {
		return
	}
	return m.vec.AsNodeUP(xU, xP, x)
}

// ReactionP computes b_p = Apu x_u + App x_p on partitioned DOF vectors.
func (m *MatrixPartitioned) ReactionP(xU, xP, bP []float64) (err error) {
	nnu, nnp := m.vec.Nnu(), m.vec.Nnp()
	if err = checkLen("ReactionP x_u", xU, nnu); err != nil {
		return
	}
	if err = checkLen("ReactionP x_p", xP, nnp); err != nil {
		return
	}
	if err = checkLen("ReactionP b_p", bP, nnp); err != nil {
		return
	}
	m.App.MulVec(xP, bP)
	m.Apu.MulVecAdd(1, xU, bP)
	return
}

// Reaction overwrites the prescribed entries of the nodal vector b with Apu x_u + App x_p.
func (m *MatrixPartitioned) Reaction(x, b utils.Array) (err error) {
	var (
		xU = m.vec.AllocateDofvalU()
		xP = m.vec.AllocateDofvalP()
		bU = m.vec.AllocateDofvalU()
		bP = m.vec.AllocateDofvalP()
	)
	if err = m.vec.AsDofsU(x, xU); err != nil {
		return
	}
	if err = m.vec.AsDofsP(x, xP); err != nil {
		return
	}
	if err = m.vec.AsDofsU(b, bU); err != nil {
		return
	}
	if err = m.ReactionP(xU, xP, bP); err != nil {
		return
	}
	return m.vec.AsNodeUP(bU, bP, b)
}

// Dot computes b = A x on full DOF vectors, from the four blocks.
func (m *MatrixPartitioned) Dot(x, b []float64) (err error) {
	if err = checkLen("Dot x", x, m.vec.Ndof()); err != nil {
		return
	}
	if err = checkLen("Dot b", b, m.vec.Ndof()); err != nil {
		return
	}
	var (
		xU, xP = m.vec.AllocateDofvalU(), m.vec.AllocateDofvalP()
		bU, bP = m.vec.AllocateDofvalU(), m.vec.AllocateDofvalP()
	)
	_ = m.vec.GetU(x, xU)
	_ = m.vec.GetP(x, xP)
	m.Auu.MulVec(xU, bU)
	m.Aup.MulVecAdd(1, xP, bU)
	_ = m.ReactionP(xU, xP, bP)
	return m.vec.DofsFromUP(bU, bP, b)
}
