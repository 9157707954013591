package tyings

import (
	"github.com/notargets/femkernel/utils"
)

/*
Control appends ndim control nodes to a mesh, with ndim DOFs each and zero
coordinates. Their DOFs carry the components of an affine deformation imposed
through the periodic tyings: control node j holds row j of the deformation
gradient (minus identity).
*/
type Control struct {
	coor         utils.Array
	dofs         [][]int
	controlNodes utils.Index
	controlDofs  [][]int
}

func NewControl(coor utils.Array, dofs [][]int) (c *Control) {
	var (
		nnode = coor.Dim(0)
		ndim  = coor.Dim(1)
		ndof  = utils.MaxInt(dofs) + 1
	)
	c = &Control{
		coor:         utils.NewArray(nnode+ndim, ndim),
		controlNodes: utils.NewRange(nnode, nnode+ndim-1),
		controlDofs:  make([][]int, ndim),
	}
	copy(c.coor.Data, coor.Data)
	for n := range dofs {
		c.dofs = append(c.dofs, append([]int(nil), dofs[n]...))
	}
	for j := 0; j < ndim; j++ {
		c.controlDofs[j] = make([]int, ndim)
		for k := 0; k < ndim; k++ {
			c.controlDofs[j][k] = ndof + j*ndim + k
		}
		c.dofs = append(c.dofs, append([]int(nil), c.controlDofs[j]...))
	}
	return
}

func (c *Control) Coor() utils.Array         { return c.coor }
func (c *Control) Dofs() [][]int             { return c.dofs }
func (c *Control) ControlNodes() utils.Index { return c.controlNodes.Copy() }
func (c *Control) ControlDofs() [][]int      { return c.controlDofs }
