package tyings

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/mesh"
	"github.com/notargets/femkernel/utils"
)

/*
Periodic builds the tying relation of periodic node pairs (independent, dependent):

	u(dependent, j) = u(independent, j) + (x(dependent, k) - x(independent, k)) * u(control(j, k))

The DOFs are renumbered as [iiu, iip, iid]: unknowns, prescribed, dependents.
controlDofs may be nil, which ties the pairs without an affine term.
*/
type Periodic struct {
	dofs          [][]int
	nnu, nnp, nnd int
	Cdu, Cdp, Cdi *Sparse
}

func NewPeriodic(coor utils.Array, dofs, controlDofs [][]int, nodesPeriodic [][2]int,
	iip utils.Index) (p *Periodic, err error) {
	if coor.Rank() != 2 {
		err = utils.ShapeError("coor", coor.Shape, []int{len(dofs), -1})
		return
	}
	var (
		ndim  = coor.Dim(1)
		ndof  = utils.MaxInt(dofs) + 1
		nties = len(nodesPeriodic)
	)
	if err = coor.CheckShape("coor", len(dofs), ndim); err != nil {
		return
	}
	if err = utils.CheckRectangular("dofs", dofs, ndim); err != nil {
		return
	}
	if controlDofs != nil {
		if err = utils.CheckRectangular("controlDofs", controlDofs, ndim); err != nil {
			return
		}
		if len(controlDofs) != ndim {
			err = errors.Wrapf(utils.ErrShapeMismatch, "controlDofs: have %d rows, want %d", len(controlDofs), ndim)
			return
		}
	}
	var (
		iid       utils.Index
		dependent = make([]bool, ndof)
	)
	for _, pair := range nodesPeriodic {
		for _, n := range pair {
			if n < 0 || n >= len(dofs) {
				err = errors.Wrapf(utils.ErrShapeMismatch, "periodic pair %v references node out of range", pair)
				return
			}
		}
		for _, d := range dofs[pair[1]] {
			if dependent[d] {
				err = errors.Wrapf(utils.ErrUnsupportedConfig, "node %d is tied twice", pair[1])
				return
			}
			dependent[d] = true
			iid = append(iid, d)
		}
	}
	for _, pair := range nodesPeriodic {
		for _, d := range dofs[pair[0]] {
			if dependent[d] {
				err = errors.Wrapf(utils.ErrUnsupportedConfig, "independent node %d is itself dependent", pair[0])
				return
			}
		}
	}
	for _, d := range iip {
		if d < 0 || d >= ndof || dependent[d] {
			err = errors.Wrapf(utils.ErrUnsupportedConfig, "prescribed DOF %d is out of range or dependent", d)
			return
		}
	}
	for j, row := range controlDofs {
		for _, d := range row {
			if d < 0 || d >= ndof || dependent[d] {
				err = errors.Wrapf(utils.ErrUnsupportedConfig,
					"control DOF %d of row %d is out of range or dependent", d, j)
				return
			}
		}
	}
	var (
		iii = iid.Complement(ndof)
		iiu = append(iid.Copy(), iip...).Complement(ndof)
	)
	p = &Periodic{
		nnu: len(iiu),
		nnp: len(iip),
		nnd: len(iid),
	}
	if p.nnu+p.nnp != len(iii) {
		err = errors.Wrapf(utils.ErrUnsupportedConfig, "prescribed DOFs listed twice")
		return nil, err
	}
	if p.dofs, err = mesh.Reorder(dofs, iiu, iip, iid); err != nil {
		return nil, err
	}
	// Cdi, in the new numbering the dependent DOF of tie t, component j is nni + t*ndim + j
	var (
		nni   = p.nnu + p.nnp
		renum = make([]int, ndof)
	)
	for n, row := range dofs {
		for j, d := range row {
			renum[d] = p.dofs[n][j]
		}
	}
	p.Cdi = NewSparse(p.nnd, nni)
	for t, pair := range nodesPeriodic {
		ni, nd := pair[0], pair[1]
		for j := 0; j < ndim; j++ {
			row := t*ndim + j
			p.Cdi.Add(row, p.dofs[ni][j], 1)
			if controlDofs == nil {
				continue
			}
			for k := 0; k < ndim; k++ {
				p.Cdi.Add(row, renum[controlDofs[j][k]], coor.At(nd, k)-coor.At(ni, k))
			}
		}
	}
	p.Cdu, p.Cdp = p.Cdi.SplitCols(p.nnu)
	if glog.V(2) {
		glog.Infof("periodic tyings: nties = %d, nnu = %d, nnp = %d, nnd = %d", nties, p.nnu, p.nnp, p.nnd)
	}
	return
}

// Dofs returns the reordered DOF map: [0, nnu) unknown, [nnu, nni) prescribed, [nni, ndof) dependent.
func (p *Periodic) Dofs() [][]int { return p.dofs }

func (p *Periodic) Nnu() int { return p.nnu }
func (p *Periodic) Nnp() int { return p.nnp }
func (p *Periodic) Nni() int { return p.nnu + p.nnp }
func (p *Periodic) Nnd() int { return p.nnd }

// IIU, IIP and IID are in the reordered numbering.
func (p *Periodic) IIU() utils.Index { return utils.NewRange(0, p.nnu-1) }
func (p *Periodic) IIP() utils.Index { return utils.NewRange(p.nnu, p.nnu+p.nnp-1) }
func (p *Periodic) IID() utils.Index { return utils.NewRange(p.nnu+p.nnp, p.nnu+p.nnp+p.nnd-1) }
