package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viterin/vek"

	"github.com/notargets/femkernel/mesh"
	"github.com/notargets/femkernel/utils"
)

func TestVectorPeriodic(t *testing.T) {
	var (
		m    = mesh.NewQuad4Regular(2, 2, 1.)
		dofs = m.DofsPeriodic()
	)
	v, err := NewVector(m.Conn(), dofs)
	require.NoError(t, err)
	assert.Equal(t, 8, v.Ndof())
	{ // Test one DOF per periodic node group, and an element round trip
		nodevec := v.AllocateNodevec()
		for n, x := range []float64{1, 1, 1, 1.5, 1.5, 1.5, 1, 1, 1} {
			nodevec.Set(x, n, 0)
		}
		V := v.AllocateDofval()
		require.NoError(t, v.AsDofs(nodevec, V))
		assert.Equal(t, []float64{1, 0, 1, 0, 1.5, 0, 1.5, 0}, V)

		elemvec := v.AllocateElemvec()
		require.NoError(t, v.AsElement(V, elemvec))
		V2 := v.AllocateDofval(-1)
		require.NoError(t, v.AsDofsElem(elemvec, V2))
		assert.Equal(t, V, V2)
	}
	{ // Test a self equilibrated force pattern assembles to zero
		f := v.AllocateNodevec()
		coor := m.Coor()
		for n := 0; n < v.Nnode(); n++ {
			f.Set(coor.At(n, 0)-1, n, 0)
			f.Set(coor.At(n, 1)-1, n, 1)
		}
		F := v.AllocateDofval(1)
		require.NoError(t, v.AssembleDofsNode(f, F))
		assert.InDeltaSlice(t, make([]float64, 8), F, 1e-14)

		fe := v.AllocateElemvec()
		require.NoError(t, v.AsElementNode(f, fe))
		require.NoError(t, v.AssembleDofs(fe, F))
		assert.InDeltaSlice(t, make([]float64, 8), F, 1e-14)
	}
}

func TestVectorConversions(t *testing.T) {
	var (
		m = mesh.NewQuad4Regular(3, 2, .5)
	)
	v, err := NewVector(m.Conn(), m.Dofs())
	require.NoError(t, err)
	nodevec := v.AllocateNodevec()
	for i := range nodevec.Data {
		nodevec.Data[i] = float64(i*i) - 3.5
	}
	{ // Test node -> DOF -> node is exact
		dofval := v.AllocateDofval()
		require.NoError(t, v.AsDofs(nodevec, dofval))
		back := v.AllocateNodevec()
		require.NoError(t, v.AsNode(dofval, back))
		assert.Equal(t, nodevec.Data, back.Data)
	}
	{ // Test element -> node -> element is exact for a consistent field
		elemvec := v.AllocateElemvec()
		require.NoError(t, v.AsElementNode(nodevec, elemvec))
		nodes := v.AllocateNodevec()
		require.NoError(t, v.AsNodeElem(elemvec, nodes))
		again := v.AllocateElemvec()
		require.NoError(t, v.AsElementNode(nodes, again))
		assert.Equal(t, elemvec.Data, again.Data)
	}
	{ // Test assembly sums over the connected elements
		ones := v.AllocateElemvec(1)
		dofval := v.AllocateDofval()
		require.NoError(t, v.AssembleDofs(ones, dofval))
		coordination := mesh.Coordination(m.Conn(), m.Nnode())
		for n, row := range m.Dofs() {
			for _, d := range row {
				assert.Equal(t, float64(coordination[n]), dofval[d])
			}
		}
		assert.Equal(t, float64(v.Nelem()*4*2), vek.Sum(dofval))
		nodes := v.AllocateNodevec()
		require.NoError(t, v.AssembleNode(ones, nodes))
		assert.Equal(t, float64(coordination[5]), nodes.At(5, 1))
	}
	{ // Test shape errors leave the destination untouched
		dofval := v.AllocateDofval(7)
		assert.ErrorIs(t, v.AsDofs(utils.NewArray(3, 2), dofval), utils.ErrShapeMismatch)
		assert.ErrorIs(t, v.AsDofs(nodevec, dofval[1:]), utils.ErrShapeMismatch)
		assert.ErrorIs(t, v.AssembleDofs(utils.NewArray(v.Nelem(), 3, 2), dofval), utils.ErrShapeMismatch)
		assert.Equal(t, 7., dofval[0])
		assert.Equal(t, []int{v.Nelem(), 8, 8}, v.AllocateElemmat().Shape)
	}
	{ // Test construction errors
		_, err = NewVector([][]int{{0, 1, 9}}, mesh.Dofs(3, 2))
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
		_, err = NewVector([][]int{{0, 1}}, [][]int{{0, 1}, {3, 4}})
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
		_, err = NewVector([][]int{{0, 1}, {1}}, mesh.Dofs(2, 1))
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
	}
}

func TestVectorProcLimit(t *testing.T) {
	var (
		m       = mesh.NewQuad4Regular(3, 2, .5)
		elemvec = utils.NewArray(6, 4, 2)
		want    []float64
	)
	for i := range elemvec.Data {
		elemvec.Data[i] = 1. / float64(i+3)
	}
	for _, np := range []int{1, 2, 3, 6} {
		v, err := NewVector(m.Conn(), m.Dofs(), WithProcLimit(np))
		require.NoError(t, err)
		assert.Equal(t, np, v.Partitions.ParallelDegree)
		dofval := v.AllocateDofval()
		require.NoError(t, v.AssembleDofs(elemvec, dofval))
		again := v.AllocateDofval()
		require.NoError(t, v.AssembleDofs(elemvec, again))
		// a fixed bucket count gives a reproducible summation order
		assert.Equal(t, dofval, again)
		if want == nil {
			want = dofval
		}
		assert.InDeltaSlice(t, want, dofval, 1e-14)
	}
	{ // Test a limit above the element count falls back to one bucket
		v, err := NewVectorPartitioned(m.Conn(), m.Dofs(), utils.Index{0, 1}, WithProcLimit(7))
		require.NoError(t, err)
		assert.Equal(t, 1, v.Partitions.ParallelDegree)
	}
}

func TestVectorPartitioned(t *testing.T) {
	var (
		m    = mesh.NewQuad4Regular(2, 2, 1.)
		dofs = m.Dofs()
		iip  utils.Index
	)
	for _, n := range m.NodesBottomEdge() {
		iip = append(iip, dofs[n]...)
	}
	v, err := NewVectorPartitioned(m.Conn(), dofs, iip)
	require.NoError(t, err)
	assert.Equal(t, 12, v.Nnu())
	assert.Equal(t, 6, v.Nnp())
	assert.Equal(t, utils.Index{6, 7, 8}, v.IIU()[:3])

	nodevec := v.AllocateNodevec()
	for i := range nodevec.Data {
		nodevec.Data[i] = float64(i) + .5
	}
	{ // Test partition round trip
		u, p := v.AllocateDofvalU(), v.AllocateDofvalP()
		require.NoError(t, v.AsDofsU(nodevec, u))
		require.NoError(t, v.AsDofsP(nodevec, p))
		assert.Equal(t, []float64{.5, 1.5, 2.5, 3.5, 4.5, 5.5}, p)
		back := v.AllocateNodevec()
		require.NoError(t, v.AsNodeUP(u, p, back))
		assert.Equal(t, nodevec.Data, back.Data)

		dofval := v.AllocateDofval()
		require.NoError(t, v.DofsFromUP(u, p, dofval))
		elemvec := v.AllocateElemvec()
		require.NoError(t, v.AsElementUP(u, p, elemvec))
		ref := v.AllocateElemvec()
		require.NoError(t, v.AsElement(dofval, ref))
		assert.Equal(t, ref.Data, elemvec.Data)
	}
	{ // Test overwriting one partition leaves the other untouched
		dofval := v.AllocateDofval()
		require.NoError(t, v.AsDofs(nodevec, dofval))
		require.NoError(t, v.SetP(v.AllocateDofvalP(-1), dofval))
		u := v.AllocateDofvalU()
		require.NoError(t, v.GetU(dofval, u))
		assert.Equal(t, 6.5, u[0])
		p := v.AllocateDofvalP()
		require.NoError(t, v.GetP(dofval, p))
		assert.Equal(t, []float64{-1, -1, -1, -1, -1, -1}, p)
		require.NoError(t, v.SetU(v.AllocateDofvalU(2), dofval))
		assert.Equal(t, -1., dofval[0])
		assert.Equal(t, 2., dofval[17])
		assert.ErrorIs(t, v.SetU(p, dofval), utils.ErrShapeMismatch)
	}
	{ // Test CopyU / CopyP on nodal fields
		dst := v.AllocateNodevec(-2)
		require.NoError(t, v.CopyP(nodevec, dst))
		assert.Equal(t, .5, dst.At(0, 0))
		assert.Equal(t, -2., dst.At(3, 0))
		require.NoError(t, v.CopyU(nodevec, dst))
		assert.Equal(t, nodevec.Data, dst.Data)
	}
	{ // Test partitioned assembly splits the full assembly
		ones := v.AllocateElemvec(1)
		u, p := v.AllocateDofvalU(), v.AllocateDofvalP()
		require.NoError(t, v.AssembleDofsU(ones, u))
		require.NoError(t, v.AssembleDofsP(ones, p))
		assert.Equal(t, []float64{1, 1, 2, 2, 1, 1}, p)
		assert.Equal(t, float64(4*4*2), vek.Sum(u)+vek.Sum(p))
	}
	{ // Test invalid prescribed DOFs
		_, err = NewVectorPartitioned(m.Conn(), dofs, utils.Index{0, 0})
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
		_, err = NewVectorPartitioned(m.Conn(), dofs, utils.Index{18})
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
	}
}
