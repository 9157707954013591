package mesh

import (
	"github.com/notargets/femkernel/utils"
)

/*
Quad4Regular is a rectangular grid of nx by ny square Quad4 elements of size h.
Nodes are numbered row by row from the bottom left corner, node = iy*(nx+1) + ix,
elements likewise.
*/
type Quad4Regular struct {
	nx, ny int
	h      float64
}

func NewQuad4Regular(nx, ny int, h float64) *Quad4Regular {
	return &Quad4Regular{nx: nx, ny: ny, h: h}
}

func (m *Quad4Regular) Nelem() int { return m.nx * m.ny }
func (m *Quad4Regular) Nnode() int { return (m.nx + 1) * (m.ny + 1) }
func (m *Quad4Regular) Nne() int   { return 4 }
func (m *Quad4Regular) Ndim() int  { return 2 }

func (m *Quad4Regular) node(ix, iy int) int { return iy*(m.nx+1) + ix }

func (m *Quad4Regular) Coor() (coor utils.Array) {
	coor = utils.NewArray(m.Nnode(), 2)
	for iy := 0; iy <= m.ny; iy++ {
		for ix := 0; ix <= m.nx; ix++ {
			n := m.node(ix, iy)
			coor.Set(float64(ix)*m.h, n, 0)
			coor.Set(float64(iy)*m.h, n, 1)
		}
	}
	return
}

func (m *Quad4Regular) Conn() (conn [][]int) {
	conn = make([][]int, 0, m.Nelem())
	for iy := 0; iy < m.ny; iy++ {
		for ix := 0; ix < m.nx; ix++ {
			conn = append(conn, []int{
				m.node(ix, iy), m.node(ix+1, iy), m.node(ix+1, iy+1), m.node(ix, iy+1),
			})
		}
	}
	return
}

func (m *Quad4Regular) Dofs() [][]int { return Dofs(m.Nnode(), 2) }

// Edge node sets, ordered along the edge and including the corners.
func (m *Quad4Regular) NodesBottomEdge() (I utils.Index) { return m.row(0, 0, m.nx) }
func (m *Quad4Regular) NodesTopEdge() (I utils.Index)    { return m.row(m.ny, 0, m.nx) }
func (m *Quad4Regular) NodesLeftEdge() (I utils.Index)   { return m.col(0, 0, m.ny) }
func (m *Quad4Regular) NodesRightEdge() (I utils.Index)  { return m.col(m.nx, 0, m.ny) }

// Open edge node sets exclude the corners.
func (m *Quad4Regular) NodesBottomOpenEdge() (I utils.Index) { return m.row(0, 1, m.nx-1) }
func (m *Quad4Regular) NodesTopOpenEdge() (I utils.Index)    { return m.row(m.ny, 1, m.nx-1) }
func (m *Quad4Regular) NodesLeftOpenEdge() (I utils.Index)   { return m.col(0, 1, m.ny-1) }
func (m *Quad4Regular) NodesRightOpenEdge() (I utils.Index)  { return m.col(m.nx, 1, m.ny-1) }

func (m *Quad4Regular) NodesBottomLeftCorner() int  { return m.node(0, 0) }
func (m *Quad4Regular) NodesBottomRightCorner() int { return m.node(m.nx, 0) }
func (m *Quad4Regular) NodesTopLeftCorner() int     { return m.node(0, m.ny) }
func (m *Quad4Regular) NodesTopRightCorner() int    { return m.node(m.nx, m.ny) }

// NodesOrigin is the bottom left corner.
func (m *Quad4Regular) NodesOrigin() int { return m.NodesBottomLeftCorner() }

func (m *Quad4Regular) row(iy, ixMin, ixMax int) (I utils.Index) {
	for ix := ixMin; ix <= ixMax; ix++ {
		I = append(I, m.node(ix, iy))
	}
	return
}

func (m *Quad4Regular) col(ix, iyMin, iyMax int) (I utils.Index) {
	for iy := iyMin; iy <= iyMax; iy++ {
		I = append(I, m.node(ix, iy))
	}
	return
}

/*
NodesPeriodic lists (independent, dependent) node pairs: the top edge is tied to the
bottom edge, the right edge to the left edge, and the three remaining corners to
the bottom left corner.
*/
func (m *Quad4Regular) NodesPeriodic() (pairs [][2]int) {
	var (
		bot, top = m.NodesBottomOpenEdge(), m.NodesTopOpenEdge()
		lft, rgt = m.NodesLeftOpenEdge(), m.NodesRightOpenEdge()
		origin   = m.NodesOrigin()
	)
	for i := range bot {
		pairs = append(pairs, [2]int{bot[i], top[i]})
	}
	for i := range lft {
		pairs = append(pairs, [2]int{lft[i], rgt[i]})
	}
	pairs = append(pairs,
		[2]int{origin, m.NodesBottomRightCorner()},
		[2]int{origin, m.NodesTopRightCorner()},
		[2]int{origin, m.NodesTopLeftCorner()},
	)
	return
}

func (m *Quad4Regular) DofsPeriodic() [][]int {
	return DofsPeriodic(m.Dofs(), m.NodesPeriodic())
}
