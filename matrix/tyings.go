package matrix

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/tyings"
	"github.com/notargets/femkernel/utils"
	"github.com/notargets/femkernel/vector"
)

/*
MatrixPartitionedTyings assembles the operator reduced to the independent DOFs.
With x = T x_i, T = [I; Cdi], the reduced operator is T^T A T, which for the
unknown block reads

	Auu + Aud Cdu + Cdu^T Adu + Cdu^T Add Cdu

The DOF map must be ordered u, p, d as produced by tyings.Periodic.
*/
type MatrixPartitionedTyings struct {
	vec                *vector.VectorPartitionedTyings
	Auu, Aup, Apu, App utils.CSR
	solver             Solver
}

func NewMatrixPartitionedTyings(conn, dofs [][]int, Cdu, Cdp *tyings.Sparse, opts ...vector.Option) (m *MatrixPartitionedTyings, err error) {
	var vec *vector.VectorPartitionedTyings
	if vec, err = vector.NewVectorPartitionedTyings(conn, dofs, Cdu, Cdp, opts...); err != nil {
		return
	}
	var (
		nnu, nnp = vec.Nnu(), vec.Nnp()
	)
	m = &MatrixPartitionedTyings{
		vec:    vec,
		Auu:    utils.NewDOK(nnu, nnu).ToCSR(),
		Aup:    utils.NewDOK(nnu, nnp).ToCSR(),
		Apu:    utils.NewDOK(nnp, nnu).ToCSR(),
		App:    utils.NewDOK(nnp, nnp).ToCSR(),
		solver: DenseLU{},
	}
	return
}

func (m *MatrixPartitionedTyings) Nnu() int { return m.vec.Nnu() }
func (m *MatrixPartitionedTyings) Nnp() int { return m.vec.Nnp() }
func (m *MatrixPartitionedTyings) Nni() int { return m.vec.Nni() }
func (m *MatrixPartitionedTyings) Nnd() int { return m.vec.Nnd() }

// SetSolver replaces the default DenseLU.
func (m *MatrixPartitionedTyings) SetSolver(s Solver) { m.solver = s }

// expand returns the independent DOFs, with coefficients, that DOF d maps to under T.
func (m *MatrixPartitionedTyings) expand(d int, buf []tyings.Term) []tyings.Term {
	nni := m.vec.Nni()
	if d < nni {
		return append(buf[:0], tyings.Term{Col: d, Coef: 1})
	}
	return m.vec.Cdi.Row(d - nni)
}

// Assemble replaces the reduced operator by T^T (assembly of elemmat) T.
func (m *MatrixPartitionedTyings) Assemble(elemmat utils.Array) (err error) {
	var (
		buckets    [][]triplet
		nnu, nnp   = m.vec.Nnu(), m.vec.Nnp()
		dims       = [4][2]int{{nnu, nnu}, {nnu, nnp}, {nnp, nnu}, {nnp, nnp}}
		names      = [4]string{"Auu", "Aup", "Apu", "App"}
		dok        [4]utils.DOK
		rbuf, cbuf = make([]tyings.Term, 1), make([]tyings.Term, 1)
	)
	if buckets, err = collect(m.vec.Vector, elemmat); err != nil {
		return
	}
	for i := range dok {
		dok[i] = utils.NewDOK(dims[i][0], dims[i][1])
	}
	for _, list := range buckets {
		for _, t := range list {
			for _, ri := range m.expand(t.r, rbuf) {
				for _, ci := range m.expand(t.c, cbuf) {
					var (
						blk  int
						r, c = ri.Col, ci.Col
					)
					if r >= nnu {
						blk, r = blk+2, r-nnu
					}
					if c >= nnu {
						blk, c = blk+1, c-nnu
					}
					dok[blk].AddAt(r, c, ri.Coef*t.v*ci.Coef)
				}
			}
		}
	}
	for i, A := range []*utils.CSR{&m.Auu, &m.Aup, &m.Apu, &m.App} {
		*A = dok[i].SetReadOnly(names[i]).ToCSR()
	}
	if glog.V(2) {
		glog.Infof("matrix tyings: nnu = %d, nnp = %d, nnz(Auu) = %d", nnu, nnp, m.Auu.NNZ())
	}
	return
}

/*
SolveI solves the reduced system for the unknowns. bI is the reduced right
hand side b_i + Cdi^T b_d, as given by VectorPartitionedTyings.AsDofsI with
tyings applied, xI holds x_p on input and receives x_u.
*/
func (m *MatrixPartitionedTyings) SolveI(bI, xI []float64) (err error) {
	var (
		nnu, nni = m.vec.Nnu(), m.vec.Nni()
	)
	if err = checkLen("SolveI b_i", bI, nni); err != nil {
		return
	}
	if err = checkLen("SolveI x_i", xI, nni); err != nil {
		return
	}
	rhs := append([]float64(nil), bI[:nnu]...)
	m.Aup.MulVecAdd(-1, xI[nnu:], rhs)
	if err = m.solver.Solve(m.Auu, rhs, xI[:nnu]); err != nil {
		err = errors.Wrap(err, "tyings solve")
	}
	return
}

// Solve reads the nodal residual b and x_p from x, and writes x_u and the dependent x_d into x.
func (m *MatrixPartitionedTyings) Solve(b, x utils.Array) (err error) {
	var (
		bI = m.vec.AllocateDofvalI()
		xI = m.vec.AllocateDofvalI()
	)
	if err = m.vec.AsDofsI(b, bI, true); err != nil {
		return
	}
	if err = m.vec.AsDofsI(x, xI, false); err != nil {
		return
	}
	if err = m.SolveI(bI, xI); err != nil {
		return
	}
	return m.vec.AsNodeI(xI, x)
}

// ReactionI computes b_p = Apu x_u + App x_p of the reduced system, written to bI[nnu:].
func (m *MatrixPartitionedTyings) ReactionI(xI, bI []float64) (err error) {
	nnu, nni := m.vec.Nnu(), m.vec.Nni()
	if err = checkLen("ReactionI x_i", xI, nni); err != nil {
		return
	}
	if err = checkLen("ReactionI b_i", bI, nni); err != nil {
		return
	}
	m.App.MulVec(xI[nnu:], bI[nnu:])
	m.Apu.MulVecAdd(1, xI[:nnu], bI[nnu:])
	return
}
