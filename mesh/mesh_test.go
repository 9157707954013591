package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/femkernel/utils"
)

func TestQuad4Regular(t *testing.T) {
	m := NewQuad4Regular(2, 2, 1.)
	{ // Test topology
		assert.Equal(t, 4, m.Nelem())
		assert.Equal(t, 9, m.Nnode())
		assert.Equal(t, [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}, {3, 4, 7, 6}, {4, 5, 8, 7}}, m.Conn())
		coor := m.Coor()
		assert.Equal(t, []float64{2, 1}, coor.Sub(5))
		assert.Equal(t, utils.Index{0, 1, 2}, m.NodesBottomEdge())
		assert.Equal(t, utils.Index{2, 5, 8}, m.NodesRightEdge())
		assert.Equal(t, utils.Index{7}, m.NodesTopOpenEdge())
	}
	{ // Test periodic pairs and DOFs
		assert.Equal(t, [][2]int{{1, 7}, {3, 5}, {0, 2}, {0, 8}, {0, 6}}, m.NodesPeriodic())
		assert.Equal(t, [][]int{
			{0, 1}, {2, 3}, {0, 1},
			{4, 5}, {6, 7}, {4, 5},
			{0, 1}, {2, 3}, {0, 1},
		}, m.DofsPeriodic())
	}
	{ // Test connectivity helpers
		assert.Equal(t, []int{1, 2, 1, 2, 4, 2, 1, 2, 1}, Coordination(m.Conn(), m.Nnode()))
		assert.Equal(t, []int{0, 1, 2, 3}, Elem2Node(m.Conn(), m.Nnode())[4])
	}
}

func TestDofNumbering(t *testing.T) {
	{ // Test Renumber keeps the relative order
		assert.Equal(t, [][]int{{0, 2}, {1, 0}}, Renumber([][]int{{3, 9}, {5, 3}}))
	}
	{ // Test Reorder
		dofs := Dofs(3, 1)
		out, err := Reorder(dofs, utils.Index{2}, utils.Index{0, 1})
		require.NoError(t, err)
		assert.Equal(t, [][]int{{1}, {2}, {0}}, out)
		_, err = Reorder(dofs, utils.Index{2}, utils.Index{0})
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
		_, err = Reorder(dofs, utils.Index{2, 2}, utils.Index{0, 1})
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
	}
}

func TestHex8Regular(t *testing.T) {
	m := NewHex8Regular(2, 2, 2, .5)
	assert.Equal(t, 8, m.Nelem())
	assert.Equal(t, 27, m.Nnode())
	conn := m.Conn()
	assert.Equal(t, []int{0, 1, 4, 3, 9, 10, 13, 12}, conn[0])
	assert.Equal(t, 26, len(m.NodesBoundary()))
	// 27 nodes, 8 independent images remain
	assert.Equal(t, 27-8, len(m.NodesPeriodic()))
	assert.Equal(t, 8*3, utils.MaxInt(m.DofsPeriodic())+1)
	assert.Equal(t, []float64{1, 1, 1}, m.Coor().Sub(26))
}
