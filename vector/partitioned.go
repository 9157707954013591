package vector

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
)

/*
VectorPartitioned splits the DOFs into unknowns u and prescribed values p.
Partitioned vectors dofvalU (nnu) and dofvalP (nnp) are ordered as IIU and IIP.
*/
type VectorPartitioned struct {
	*Vector
	iiu, iip utils.Index
	part     []int  // position of every DOF in its partition
	isP      []bool // DOF is prescribed
}

// NewVectorPartitioned takes the prescribed DOFs iip, all other DOFs are unknown.
func NewVectorPartitioned(conn, dofs [][]int, iip utils.Index, opts ...Option) (v *VectorPartitioned, err error) {
	var vec *Vector
	if vec, err = NewVector(conn, dofs, opts...); err != nil {
		return
	}
	v = &VectorPartitioned{
		Vector: vec,
		iip:    iip.Copy(),
		iiu:    iip.Complement(vec.ndof),
		part:   make([]int, vec.ndof),
		isP:    make([]bool, vec.ndof),
	}
	for i, d := range v.iip {
		if d < 0 || d >= vec.ndof || v.isP[d] {
			return nil, errors.Wrapf(utils.ErrShapeMismatch,
				"iip: DOF %d is out of range [0, %d) or listed twice", d, vec.ndof)
		}
		v.isP[d] = true
		v.part[d] = i
	}
	for i, d := range v.iiu {
		v.part[d] = i
	}
	if glog.V(2) {
		glog.Infof("vector partitioned: nnu = %d, nnp = %d", len(v.iiu), len(v.iip))
	}
	return
}

func (v *VectorPartitioned) Nnu() int         { return len(v.iiu) }
func (v *VectorPartitioned) Nnp() int         { return len(v.iip) }
func (v *VectorPartitioned) IIU() utils.Index { return v.iiu.Copy() }
func (v *VectorPartitioned) IIP() utils.Index { return v.iip.Copy() }

// GetU extracts the unknown partition of dofval.
func (v *VectorPartitioned) GetU(dofval, dofvalU []float64) (err error) {
	return v.get(v.iiu, "GetU", dofval, dofvalU)
}

// GetP extracts the prescribed partition of dofval.
func (v *VectorPartitioned) GetP(dofval, dofvalP []float64) (err error) {
	return v.get(v.iip, "GetP", dofval, dofvalP)
}

// SetU overwrites the unknown entries of dofval, prescribed entries are left untouched.
func (v *VectorPartitioned) SetU(dofvalU, dofval []float64) (err error) {
	return v.set(v.iiu, "SetU", dofvalU, dofval)
}

// SetP overwrites the prescribed entries of dofval, unknown entries are left untouched.
func (v *VectorPartitioned) SetP(dofvalP, dofval []float64) (err error) {
	return v.set(v.iip, "SetP", dofvalP, dofval)
}

func (v *VectorPartitioned) get(I utils.Index, name string, dofval, part []float64) (err error) {
	if err = checkLen(name+" dofval", dofval, v.ndof); err != nil {
		return
	}
	if err = checkLen(name+" partition", part, len(I)); err != nil {
		return
	}
	I.GatherTo(part, dofval)
	return
}

func (v *VectorPartitioned) set(I utils.Index, name string, part, dofval []float64) (err error) {
	if err = checkLen(name+" partition", part, len(I)); err != nil {
		return
	}
	if err = checkLen(name+" dofval", dofval, v.ndof); err != nil {
		return
	}
	I.Scatter(dofval, part)
	return
}

// DofsFromUP combines both partitions into dofval.
func (v *VectorPartitioned) DofsFromUP(dofvalU, dofvalP, dofval []float64) (err error) {
	if err = v.SetU(dofvalU, dofval); err != nil {
		return
	}
	return v.SetP(dofvalP, dofval)
}

// AsDofsU gathers the unknown DOFs from nodevec.
func (v *VectorPartitioned) AsDofsU(nodevec utils.Array, dofvalU []float64) (err error) {
	return v.asDofsPart(false, "AsDofsU", nodevec, dofvalU)
}

// AsDofsP gathers the prescribed DOFs from nodevec.
func (v *VectorPartitioned) AsDofsP(nodevec utils.Array, dofvalP []float64) (err error) {
	return v.asDofsPart(true, "AsDofsP", nodevec, dofvalP)
}

func (v *VectorPartitioned) partLen(prescribed bool) int {
	if prescribed {
		return len(v.iip)
	}
	return len(v.iiu)
}

func (v *VectorPartitioned) asDofsPart(prescribed bool, name string, nodevec utils.Array, part []float64) (err error) {
	if err = v.checkNodevec(name+" nodevec", nodevec); err != nil {
		return
	}
	if err = checkLen(name+" partition", part, v.partLen(prescribed)); err != nil {
		return
	}
	for n, row := range v.dofs {
		for i, d := range row {
			if v.isP[d] == prescribed {
				part[v.part[d]] = nodevec.Data[n*v.ndim+i]
			}
		}
	}
	return
}

// AsNodeUP scatters both partitions to nodevec.
func (v *VectorPartitioned) AsNodeUP(dofvalU, dofvalP []float64, nodevec utils.Array) (err error) {
	if err = v.checkParts("AsNodeUP", dofvalU, dofvalP); err != nil {
		return
	}
	if err = v.checkNodevec("AsNodeUP nodevec", nodevec); err != nil {
		return
	}
	for n, row := range v.dofs {
		for i, d := range row {
			nodevec.Data[n*v.ndim+i] = v.value(d, dofvalU, dofvalP)
		}
	}
	return
}

// AsElementUP gathers both partitions into elemvec.
func (v *VectorPartitioned) AsElementUP(dofvalU, dofvalP []float64, elemvec utils.Array) (err error) {
	if err = v.checkParts("AsElementUP", dofvalU, dofvalP); err != nil {
		return
	}
	if err = v.checkElemvec("AsElementUP elemvec", elemvec); err != nil {
		return
	}
	return v.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			for m, n := range v.conn[e] {
				ue := elemvec.Sub(e, m)
				for i, d := range v.dofs[n] {
					ue[i] = v.value(d, dofvalU, dofvalP)
				}
			}
		}
		return nil
	})
}

func (v *VectorPartitioned) value(d int, dofvalU, dofvalP []float64) float64 {
	if v.isP[d] {
		return dofvalP[v.part[d]]
	}
	return dofvalU[v.part[d]]
}

func (v *VectorPartitioned) checkParts(name string, dofvalU, dofvalP []float64) (err error) {
	if err = checkLen(name+" dofvalU", dofvalU, len(v.iiu)); err != nil {
		return
	}
	return checkLen(name+" dofvalP", dofvalP, len(v.iip))
}

// AssembleDofsU sums the element contributions on the unknown DOFs.
func (v *VectorPartitioned) AssembleDofsU(elemvec utils.Array, dofvalU []float64) (err error) {
	return v.assemblePart(v.iiu, "AssembleDofsU", elemvec, dofvalU)
}

// AssembleDofsP sums the element contributions on the prescribed DOFs, the reactions.
func (v *VectorPartitioned) AssembleDofsP(elemvec utils.Array, dofvalP []float64) (err error) {
	return v.assemblePart(v.iip, "AssembleDofsP", elemvec, dofvalP)
}

func (v *VectorPartitioned) assemblePart(I utils.Index, name string, elemvec utils.Array, part []float64) (err error) {
	if err = checkLen(name+" partition", part, len(I)); err != nil {
		return
	}
	dofval := v.AllocateDofval()
	if err = v.AssembleDofs(elemvec, dofval); err != nil {
		return
	}
	I.GatherTo(part, dofval)
	return
}

// CopyU copies the nodal values that belong to unknown DOFs from src to dst.
func (v *VectorPartitioned) CopyU(src, dst utils.Array) (err error) {
	return v.copyPart(false, "CopyU", src, dst)
}

// CopyP copies the nodal values that belong to prescribed DOFs from src to dst.
func (v *VectorPartitioned) CopyP(src, dst utils.Array) (err error) {
	return v.copyPart(true, "CopyP", src, dst)
}

func (v *VectorPartitioned) copyPart(prescribed bool, name string, src, dst utils.Array) (err error) {
	if err = v.checkNodevec(name+" src", src); err != nil {
		return
	}
	if err = v.checkNodevec(name+" dst", dst); err != nil {
		return
	}
	for n, row := range v.dofs {
		for i, d := range row {
			if v.isP[d] == prescribed {
				dst.Data[n*v.ndim+i] = src.Data[n*v.ndim+i]
			}
		}
	}
	return
}

func (v *VectorPartitioned) AllocateDofvalU(val ...float64) []float64 {
	return utils.ConstArray(len(v.iiu), first(val))
}

func (v *VectorPartitioned) AllocateDofvalP(val ...float64) []float64 {
	return utils.ConstArray(len(v.iip), first(val))
}
