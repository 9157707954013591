package vector

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/tyings"
	"github.com/notargets/femkernel/utils"
)

/*
VectorPartitionedTyings reduces the DOFs to the independent set i = u + p.
The DOF map must be ordered as produced by tyings.Periodic:

	[0, nnu)      unknown       u
	[nnu, nni)    prescribed    p
	[nni, ndof)   dependent     d,  x_d = Cdu x_u + Cdp x_p

so an independent vector dofvalI (nni) is indexed by DOF id directly.
*/
type VectorPartitionedTyings struct {
	*Vector
	nnu, nnp, nni, nnd int
	Cdu, Cdp, Cdi      *tyings.Sparse
}

func NewVectorPartitionedTyings(conn, dofs [][]int, Cdu, Cdp *tyings.Sparse, opts ...Option) (v *VectorPartitionedTyings, err error) {
	var vec *Vector
	if vec, err = NewVector(conn, dofs, opts...); err != nil {
		return
	}
	var (
		nndU, nnu = Cdu.Dims()
		nndP, nnp = Cdp.Dims()
	)
	if nndU != nndP || nnu+nnp+nndU != vec.ndof {
		return nil, errors.Wrapf(utils.ErrShapeMismatch,
			"tyings: Cdu is %d x %d, Cdp is %d x %d, ndof = %d", nndU, nnu, nndP, nnp, vec.ndof)
	}
	v = &VectorPartitionedTyings{
		Vector: vec,
		nnu:    nnu,
		nnp:    nnp,
		nni:    nnu + nnp,
		nnd:    nndU,
		Cdu:    Cdu,
		Cdp:    Cdp,
		Cdi:    Cdu.HStack(Cdp),
	}
	if glog.V(2) {
		glog.Infof("vector tyings: nnu = %d, nnp = %d, nnd = %d", v.nnu, v.nnp, v.nnd)
	}
	return
}

func (v *VectorPartitionedTyings) Nnu() int { return v.nnu }
func (v *VectorPartitionedTyings) Nnp() int { return v.nnp }
func (v *VectorPartitionedTyings) Nni() int { return v.nni }
func (v *VectorPartitionedTyings) Nnd() int { return v.nnd }

func (v *VectorPartitionedTyings) IIU() utils.Index { return utils.NewRange(0, v.nnu-1) }
func (v *VectorPartitionedTyings) IIP() utils.Index { return utils.NewRange(v.nnu, v.nni-1) }
func (v *VectorPartitionedTyings) III() utils.Index { return utils.NewRange(0, v.nni-1) }
func (v *VectorPartitionedTyings) IID() utils.Index { return utils.NewRange(v.nni, v.ndof-1) }

// ExpandDofs writes the full dofval, with the dependent DOFs from the tying relation.
func (v *VectorPartitionedTyings) ExpandDofs(dofvalI, dofval []float64) (err error) {
	if err = checkLen("ExpandDofs dofvalI", dofvalI, v.nni); err != nil {
		return
	}
	if err = checkLen("ExpandDofs dofval", dofval, v.ndof); err != nil {
		return
	}
	copy(dofval, dofvalI)
	dofvalD := dofval[v.nni:]
	for i := range dofvalD {
		dofvalD[i] = 0
	}
	v.Cdi.MulVecAdd(dofvalI, dofvalD)
	return
}

// ReduceDofs drops the dependent DOFs of dofval.
func (v *VectorPartitionedTyings) ReduceDofs(dofval, dofvalI []float64) (err error) {
	if err = checkLen("ReduceDofs dofval", dofval, v.ndof); err != nil {
		return
	}
	if err = checkLen("ReduceDofs dofvalI", dofvalI, v.nni); err != nil {
		return
	}
	copy(dofvalI, dofval[:v.nni])
	return
}

/*
AsDofsI gathers the independent DOFs of nodevec. With applyTyings the values
on the dependent DOFs are added to the independent DOFs they depend on,
dofvalI += Cdi^T dofvalD, which is how a nodal force field is reduced.
*/
func (v *VectorPartitionedTyings) AsDofsI(nodevec utils.Array, dofvalI []float64, applyTyings bool) (err error) {
	if err = v.checkNodevec("AsDofsI nodevec", nodevec); err != nil {
		return
	}
	if err = checkLen("AsDofsI dofvalI", dofvalI, v.nni); err != nil {
		return
	}
	for i := range dofvalI {
		dofvalI[i] = 0
	}
	dofvalD := v.AllocateDofvalD()
	for n, row := range v.dofs {
		for i, d := range row {
			if d < v.nni {
				dofvalI[d] = nodevec.Data[n*v.ndim+i]
			} else {
				dofvalD[d-v.nni] = nodevec.Data[n*v.ndim+i]
			}
		}
	}
	if applyTyings {
		v.Cdi.MulTVecAdd(dofvalD, dofvalI)
	}
	return
}

// AsDofsD gathers the dependent DOFs of nodevec.
func (v *VectorPartitionedTyings) AsDofsD(nodevec utils.Array, dofvalD []float64) (err error) {
	if err = v.checkNodevec("AsDofsD nodevec", nodevec); err != nil {
		return
	}
	if err = checkLen("AsDofsD dofvalD", dofvalD, v.nnd); err != nil {
		return
	}
	for n, row := range v.dofs {
		for i, d := range row {
			if d >= v.nni {
				dofvalD[d-v.nni] = nodevec.Data[n*v.ndim+i]
			}
		}
	}
	return
}

// AsNodeI expands the independent DOFs and scatters them to nodevec.
func (v *VectorPartitionedTyings) AsNodeI(dofvalI []float64, nodevec utils.Array) (err error) {
	dofval := v.AllocateDofval()
	if err = v.ExpandDofs(dofvalI, dofval); err != nil {
		return
	}
	return v.AsNode(dofval, nodevec)
}

// AsElementI expands the independent DOFs and gathers them into elemvec.
func (v *VectorPartitionedTyings) AsElementI(dofvalI []float64, elemvec utils.Array) (err error) {
	dofval := v.AllocateDofval()
	if err = v.ExpandDofs(dofvalI, dofval); err != nil {
		return
	}
	return v.AsElement(dofval, elemvec)
}

// AssembleDofsI assembles elemvec onto all DOFs and reduces: f_i = f_i + Cdi^T f_d.
func (v *VectorPartitionedTyings) AssembleDofsI(elemvec utils.Array, dofvalI []float64) (err error) {
	if err = checkLen("AssembleDofsI dofvalI", dofvalI, v.nni); err != nil {
		return
	}
	dofval := v.AllocateDofval()
	if err = v.AssembleDofs(elemvec, dofval); err != nil {
		return
	}
	v.reduce(dofval, dofvalI)
	return
}

// AssembleDofsINode sums nodevec onto all DOFs and reduces: f_i = f_i + Cdi^T f_d.
func (v *VectorPartitionedTyings) AssembleDofsINode(nodevec utils.Array, dofvalI []float64) (err error) {
	if err = checkLen("AssembleDofsINode dofvalI", dofvalI, v.nni); err != nil {
		return
	}
	dofval := v.AllocateDofval()
	if err = v.AssembleDofsNode(nodevec, dofval); err != nil {
		return
	}
	v.reduce(dofval, dofvalI)
	return
}

func (v *VectorPartitionedTyings) reduce(dofval, dofvalI []float64) {
	copy(dofvalI, dofval[:v.nni])
	v.Cdi.MulTVecAdd(dofval[v.nni:], dofvalI)
}

// CopyP copies the prescribed entries of one independent vector into another.
func (v *VectorPartitionedTyings) CopyP(srcI, dstI []float64) (err error) {
	if err = checkLen("CopyP src", srcI, v.nni); err != nil {
		return
	}
	if err = checkLen("CopyP dst", dstI, v.nni); err != nil {
		return
	}
	copy(dstI[v.nnu:], srcI[v.nnu:])
	return
}

// CopyU copies the unknown entries of one independent vector into another.
func (v *VectorPartitionedTyings) CopyU(srcI, dstI []float64) (err error) {
	if err = checkLen("CopyU src", srcI, v.nni); err != nil {
		return
	}
	if err = checkLen("CopyU dst", dstI, v.nni); err != nil {
		return
	}
	copy(dstI[:v.nnu], srcI[:v.nnu])
	return
}

func (v *VectorPartitionedTyings) AllocateDofvalI(val ...float64) []float64 {
	return utils.ConstArray(v.nni, first(val))
}

func (v *VectorPartitionedTyings) AllocateDofvalD(val ...float64) []float64 {
	return utils.ConstArray(v.nnd, first(val))
}

func (v *VectorPartitionedTyings) AllocateDofvalU(val ...float64) []float64 {
	return utils.ConstArray(v.nnu, first(val))
}

func (v *VectorPartitionedTyings) AllocateDofvalP(val ...float64) []float64 {
	return utils.ConstArray(v.nnp, first(val))
}
