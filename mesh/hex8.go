package mesh

import (
	"github.com/notargets/femkernel/utils"
)

// Hex8Regular is a box of nx by ny by nz cubic Hex8 elements of size h, numbered x fastest.
type Hex8Regular struct {
	nx, ny, nz int
	h          float64
}

func NewHex8Regular(nx, ny, nz int, h float64) *Hex8Regular {
	return &Hex8Regular{nx: nx, ny: ny, nz: nz, h: h}
}

func (m *Hex8Regular) Nelem() int { return m.nx * m.ny * m.nz }
func (m *Hex8Regular) Nnode() int { return (m.nx + 1) * (m.ny + 1) * (m.nz + 1) }
func (m *Hex8Regular) Nne() int   { return 8 }
func (m *Hex8Regular) Ndim() int  { return 3 }

func (m *Hex8Regular) node(ix, iy, iz int) int {
	return (iz*(m.ny+1)+iy)*(m.nx+1) + ix
}

func (m *Hex8Regular) Coor() (coor utils.Array) {
	coor = utils.NewArray(m.Nnode(), 3)
	for iz := 0; iz <= m.nz; iz++ {
		for iy := 0; iy <= m.ny; iy++ {
			for ix := 0; ix <= m.nx; ix++ {
				n := m.node(ix, iy, iz)
				coor.Set(float64(ix)*m.h, n, 0)
				coor.Set(float64(iy)*m.h, n, 1)
				coor.Set(float64(iz)*m.h, n, 2)
			}
		}
	}
	return
}

func (m *Hex8Regular) Conn() (conn [][]int) {
	conn = make([][]int, 0, m.Nelem())
	for iz := 0; iz < m.nz; iz++ {
		for iy := 0; iy < m.ny; iy++ {
			for ix := 0; ix < m.nx; ix++ {
				conn = append(conn, []int{
					m.node(ix, iy, iz), m.node(ix+1, iy, iz), m.node(ix+1, iy+1, iz), m.node(ix, iy+1, iz),
					m.node(ix, iy, iz+1), m.node(ix+1, iy, iz+1), m.node(ix+1, iy+1, iz+1), m.node(ix, iy+1, iz+1),
				})
			}
		}
	}
	return
}

func (m *Hex8Regular) Dofs() [][]int { return Dofs(m.Nnode(), 3) }

func (m *Hex8Regular) NodesOrigin() int { return m.node(0, 0, 0) }

// NodesBoundary lists all nodes on the surface of the box.
func (m *Hex8Regular) NodesBoundary() (I utils.Index) {
	for iz := 0; iz <= m.nz; iz++ {
		for iy := 0; iy <= m.ny; iy++ {
			for ix := 0; ix <= m.nx; ix++ {
				if ix == 0 || iy == 0 || iz == 0 || ix == m.nx || iy == m.ny || iz == m.nz {
					I = append(I, m.node(ix, iy, iz))
				}
			}
		}
	}
	return
}

// NodesPeriodic ties every node on a maximum face to its image on the opposite minimum faces.
func (m *Hex8Regular) NodesPeriodic() (pairs [][2]int) {
	wrap := func(i, n int) int {
		if i == n {
			return 0
		}
		return i
	}
	for iz := 0; iz <= m.nz; iz++ {
		for iy := 0; iy <= m.ny; iy++ {
			for ix := 0; ix <= m.nx; ix++ {
				if ix != m.nx && iy != m.ny && iz != m.nz {
					continue
				}
				pairs = append(pairs, [2]int{
					m.node(wrap(ix, m.nx), wrap(iy, m.ny), wrap(iz, m.nz)),
					m.node(ix, iy, iz),
				})
			}
		}
	}
	return
}

func (m *Hex8Regular) DofsPeriodic() [][]int {
	return DofsPeriodic(m.Dofs(), m.NodesPeriodic())
}
