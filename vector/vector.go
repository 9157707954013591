package vector

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
)

/*
Vector converts a field between its three layouts for one mesh and DOF map:

	nodevec  (nnode, ndim)      per node
	dofval   (ndof)             per degree of freedom
	elemvec  (nelem, nne, ndim) per element, shared nodes duplicated

Several (node, component) pairs may share one DOF, as for periodic nodes.
Conversions overwrite their destination. Assembling conversions sum all
contributions that land on the same DOF or node.
*/
type Vector struct {
	conn                    [][]int
	dofs                    [][]int
	nelem, nne, nnode, ndim int
	ndof                    int
	Partitions              *utils.PartitionMap // over elements
}

type Option func(*options)

type options struct {
	procLimit int
}

// WithProcLimit caps the number of go routines, 0 uses one per CPU.
// The bucket count fixes the summation order of assembly.
func WithProcLimit(n int) Option { return func(o *options) { o.procLimit = n } }

// NewVector validates conn (nelem x nne) and dofs (nnode x ndim), the DOF ids must cover [0, ndof).
func NewVector(conn, dofs [][]int, opts ...Option) (v *Vector, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	v = &Vector{
		conn:  conn,
		dofs:  dofs,
		nelem: len(conn),
		nnode: len(dofs),
	}
	if v.nelem > 0 {
		v.nne = len(conn[0])
	}
	if v.nnode > 0 {
		v.ndim = len(dofs[0])
	}
	if err = utils.CheckRectangular("conn", conn, v.nne); err != nil {
		return nil, err
	}
	if err = utils.CheckRectangular("dofs", dofs, v.ndim); err != nil {
		return nil, err
	}
	for e, row := range conn {
		for _, n := range row {
			if n < 0 || n >= v.nnode {
				return nil, errors.Wrapf(utils.ErrShapeMismatch,
					"conn: element %d references node %d, nnode = %d", e, n, v.nnode)
			}
		}
	}
	v.ndof = utils.MaxInt(dofs) + 1
	used := make([]bool, v.ndof)
	for _, row := range dofs {
		for _, d := range row {
			if d < 0 {
				return nil, errors.Wrapf(utils.ErrShapeMismatch, "dofs: negative DOF id %d", d)
			}
			used[d] = true
		}
	}
	for d, u := range used {
		if !u {
			return nil, errors.Wrapf(utils.ErrShapeMismatch, "dofs: DOF id %d is unused, ids must cover [0, %d)", d, v.ndof)
		}
	}
	v.Partitions = utils.NewPartitionMap(utils.ParallelDegree(o.procLimit, v.nelem), v.nelem)
	if glog.V(2) {
		glog.Infof("vector: nelem = %d, nne = %d, nnode = %d, ndim = %d, ndof = %d", v.nelem, v.nne, v.nnode, v.ndim, v.ndof)
	}
	return
}

func (v *Vector) Nelem() int { return v.nelem }
func (v *Vector) Nne() int   { return v.nne }
func (v *Vector) Nnode() int { return v.nnode }
func (v *Vector) Ndim() int  { return v.ndim }
func (v *Vector) Ndof() int  { return v.ndof }

func (v *Vector) Conn() [][]int { return v.conn }
func (v *Vector) Dofs() [][]int { return v.dofs }

func (v *Vector) checkNodevec(name string, nodevec utils.Array) error {
	return nodevec.CheckShape(name, v.nnode, v.ndim)
}

func (v *Vector) checkElemvec(name string, elemvec utils.Array) error {
	return elemvec.CheckShape(name, v.nelem, v.nne, v.ndim)
}

func checkLen(name string, dofval []float64, n int) error {
	if len(dofval) != n {
		return utils.ShapeError(name, []int{len(dofval)}, []int{n})
	}
	return nil
}

// AsDofs gathers dofval[dofs(n,i)] = nodevec(n,i).
func (v *Vector) AsDofs(nodevec utils.Array, dofval []float64) (err error) {
	if err = v.checkNodevec("AsDofs nodevec", nodevec); err != nil {
		return
	}
	if err = checkLen("AsDofs dofval", dofval, v.ndof); err != nil {
		return
	}
	for n, row := range v.dofs {
		for i, d := range row {
			dofval[d] = nodevec.Data[n*v.ndim+i]
		}
	}
	return
}

// AsDofsElem gathers dofval[dofs(conn(e,m),i)] = elemvec(e,m,i).
func (v *Vector) AsDofsElem(elemvec utils.Array, dofval []float64) (err error) {
	if err = v.checkElemvec("AsDofsElem elemvec", elemvec); err != nil {
		return
	}
	if err = checkLen("AsDofsElem dofval", dofval, v.ndof); err != nil {
		return
	}
	for e, row := range v.conn {
		for m, n := range row {
			for i, d := range v.dofs[n] {
				dofval[d] = elemvec.Data[(e*v.nne+m)*v.ndim+i]
			}
		}
	}
	return
}

// AsNode scatters nodevec(n,i) = dofval[dofs(n,i)].
func (v *Vector) AsNode(dofval []float64, nodevec utils.Array) (err error) {
	if err = checkLen("AsNode dofval", dofval, v.ndof); err != nil {
		return
	}
	if err = v.checkNodevec("AsNode nodevec", nodevec); err != nil {
		return
	}
	for n, row := range v.dofs {
		for i, d := range row {
			nodevec.Data[n*v.ndim+i] = dofval[d]
		}
	}
	return
}

// AsNodeElem writes nodevec(conn(e,m),i) = elemvec(e,m,i) without summing.
func (v *Vector) AsNodeElem(elemvec utils.Array, nodevec utils.Array) (err error) {
	if err = v.checkElemvec("AsNodeElem elemvec", elemvec); err != nil {
		return
	}
	if err = v.checkNodevec("AsNodeElem nodevec", nodevec); err != nil {
		return
	}
	for e, row := range v.conn {
		for m, n := range row {
			copy(nodevec.Sub(n), elemvec.Sub(e, m))
		}
	}
	return
}

// AsElement gathers elemvec(e,m,i) = dofval[dofs(conn(e,m),i)].
func (v *Vector) AsElement(dofval []float64, elemvec utils.Array) (err error) {
	if err = checkLen("AsElement dofval", dofval, v.ndof); err != nil {
		return
	}
	if err = v.checkElemvec("AsElement elemvec", elemvec); err != nil {
		return
	}
	return v.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			for m, n := range v.conn[e] {
				ue := elemvec.Sub(e, m)
				for i, d := range v.dofs[n] {
					ue[i] = dofval[d]
				}
			}
		}
		return nil
	})
}

// AsElementNode gathers elemvec(e,m,i) = nodevec(conn(e,m),i).
func (v *Vector) AsElementNode(nodevec utils.Array, elemvec utils.Array) (err error) {
	if err = v.checkNodevec("AsElementNode nodevec", nodevec); err != nil {
		return
	}
	if err = v.checkElemvec("AsElementNode elemvec", elemvec); err != nil {
		return
	}
	return v.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			for m, n := range v.conn[e] {
				copy(elemvec.Sub(e, m), nodevec.Sub(n))
			}
		}
		return nil
	})
}

// AssembleDofs sums dofval[dofs(conn(e,m),i)] += elemvec(e,m,i) over all elements.
func (v *Vector) AssembleDofs(elemvec utils.Array, dofval []float64) (err error) {
	if err = v.checkElemvec("AssembleDofs elemvec", elemvec); err != nil {
		return
	}
	if err = checkLen("AssembleDofs dofval", dofval, v.ndof); err != nil {
		return
	}
	v.Partitions.Reduce(dofval, func(_, kMin, kMax int, buf []float64) {
		for e := kMin; e < kMax; e++ {
			for m, n := range v.conn[e] {
				fe := elemvec.Sub(e, m)
				for i, d := range v.dofs[n] {
					buf[d] += fe[i]
				}
			}
		}
	})
	return
}

// AssembleDofsNode sums dofval[dofs(n,i)] += nodevec(n,i), DOFs shared by several nodes collect all of them.
func (v *Vector) AssembleDofsNode(nodevec utils.Array, dofval []float64) (err error) {
	if err = v.checkNodevec("AssembleDofsNode nodevec", nodevec); err != nil {
		return
	}
	if err = checkLen("AssembleDofsNode dofval", dofval, v.ndof); err != nil {
		return
	}
	for i := range dofval {
		dofval[i] = 0
	}
	for n, row := range v.dofs {
		for i, d := range row {
			dofval[d] += nodevec.Data[n*v.ndim+i]
		}
	}
	return
}

// AssembleNode assembles elemvec into DOFs and scatters the result to the nodes.
func (v *Vector) AssembleNode(elemvec utils.Array, nodevec utils.Array) (err error) {
	if err = v.checkNodevec("AssembleNode nodevec", nodevec); err != nil {
		return
	}
	dofval := v.AllocateDofval()
	if err = v.AssembleDofs(elemvec, dofval); err != nil {
		return
	}
	return v.AsNode(dofval, nodevec)
}

// Allocation helpers, filled with zero or with val[0].

func (v *Vector) AllocateDofval(val ...float64) []float64 {
	return utils.ConstArray(v.ndof, first(val))
}

func (v *Vector) AllocateNodevec(val ...float64) utils.Array {
	return utils.NewArrayFill(first(val), v.nnode, v.ndim)
}

func (v *Vector) AllocateElemvec(val ...float64) utils.Array {
	return utils.NewArrayFill(first(val), v.nelem, v.nne, v.ndim)
}

func (v *Vector) AllocateElemmat(val ...float64) utils.Array {
	return utils.NewArrayFill(first(val), v.nelem, v.nne*v.ndim, v.nne*v.ndim)
}

func first(val []float64) float64 {
	if len(val) == 0 {
		return 0
	}
	return val[0]
}
