package element

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/femkernel/mesh"
	"github.com/notargets/femkernel/utils"
)

func elemCoords(coor utils.Array, conn [][]int) (x utils.Array) {
	ndim := coor.Dim(1)
	x = utils.NewArray(len(conn), len(conn[0]), ndim)
	for e, row := range conn {
		for m, n := range row {
			copy(x.Sub(e, m), coor.Sub(n))
		}
	}
	return
}

// isotropic returns C(i,j,k,l) = lam d(i,j) d(k,l) + mu (d(i,k) d(j,l) + d(i,l) d(j,k)).
func isotropic(td int, lam, mu float64) (C []float64) {
	delta := func(i, j int) float64 {
		if i == j {
			return 1
		}
		return 0
	}
	C = make([]float64, td*td*td*td)
	for i := 0; i < td; i++ {
		for j := 0; j < td; j++ {
			for k := 0; k < td; k++ {
				for l := 0; l < td; l++ {
					C[((i*td+j)*td+k)*td+l] = lam*delta(i, j)*delta(k, l) +
						mu*(delta(i, k)*delta(j, l)+delta(i, l)*delta(j, k))
				}
			}
		}
	}
	return
}

func broadcast(q *Quadrature, val []float64, dims ...int) (R utils.Array) {
	R = utils.NewArray(append([]int{q.Nelem(), q.Nip()}, dims...)...)
	for i := 0; i < q.Nelem()*q.Nip(); i++ {
		copy(R.Data[i*len(val):], val)
	}
	return
}

func TestSchemes(t *testing.T) {
	for _, tc := range []struct {
		t       Type
		nip     int
		weights float64
	}{
		{Quad4, 4, 4},
		{Hex8, 8, 8},
		{Tri3, 1, .5},
		{Quad4Axisymmetric, 4, 4},
	} {
		xi, w := Gauss(tc.t)
		assert.Equal(t, []int{tc.nip, tc.t.Ndim()}, xi.Shape)
		assert.InDelta(t, tc.weights, floats.Sum(w), 1e-14)
		xi, w = Nodal(tc.t)
		assert.Equal(t, []int{tc.t.Nne(), tc.t.Ndim()}, xi.Shape)
		assert.InDelta(t, tc.weights, floats.Sum(w), 1e-14)

		// partition of unity at every quadrature point
		topo := topologies[tc.t]
		N := make([]float64, topo.nne)
		dN := make([]float64, topo.nne*topo.ndim)
		for k := 0; k < xi.Dim(0); k++ {
			topo.shape(xi.Sub(k), N, dN)
			assert.InDelta(t, 1, floats.Sum(N), 1e-14)
			for i := 0; i < topo.ndim; i++ {
				var sum float64
				for m := 0; m < topo.nne; m++ {
					sum += dN[m*topo.ndim+i]
				}
				assert.InDelta(t, 0, sum, 1e-14)
			}
			// nodal points interpolate the nodes
			assert.InDelta(t, 1, N[k], 1e-14)
		}
	}
	{ // Test element type labels
		tt, err := NewType("hex8")
		require.NoError(t, err)
		assert.Equal(t, Hex8, tt)
		assert.Equal(t, "Quad4Axisymmetric", Quad4Axisymmetric.String())
		_, err = NewType("Tet4")
		assert.ErrorIs(t, err, utils.ErrUnsupportedConfig)
	}
}

func TestQuadratureQuad4(t *testing.T) {
	var (
		m    = mesh.NewQuad4Regular(2, 2, 1.)
		conn = m.Conn()
		x    = elemCoords(m.Coor(), conn)
	)
	q, err := NewQuadrature(Quad4, x)
	require.NoError(t, err)
	assert.Equal(t, 4, q.Nelem())
	assert.Equal(t, 4, q.Nip())
	assert.Equal(t, 2, q.Tdim())
	{ // Test geometry
		for _, D := range q.DetJ().Data {
			assert.InDelta(t, .25, D, 1e-14)
		}
		assert.InDelta(t, 4, floats.Sum(q.DV().Data), 1e-14)
		dV2 := q.DVTensor2()
		assert.Equal(t, []int{4, 4, 2, 2}, dV2.Shape)
		assert.InDelta(t, 4*4, floats.Sum(dV2.Data), 1e-13)
		g := 1 / math.Sqrt(3)
		xq := q.Coordinates()
		assert.InDelta(t, (1-g)/2, xq.At(0, 0, 0), 1e-14)
		assert.InDelta(t, (1-g)/2, xq.At(0, 0, 1), 1e-14)
		assert.InDelta(t, 1+(1+g)/2, xq.At(3, 2, 1), 1e-14)
	}
	{ // Test gradients of an affine field are exact
		var (
			H  = [2][2]float64{{.1, .2}, {.3, -.4}}
			ue = x.Copy()
		)
		for i := 0; i < len(ue.Data); i += 2 {
			x0, x1 := x.Data[i], x.Data[i+1]
			ue.Data[i] = H[0][0]*x0 + H[0][1]*x1
			ue.Data[i+1] = H[1][0]*x0 + H[1][1]*x1
		}
		gradu, err := q.GradNVector(ue)
		require.NoError(t, err)
		graduT, err := q.GradNVectorT(ue)
		require.NoError(t, err)
		eps, err := q.SymGradNVector(ue)
		require.NoError(t, err)
		for e := 0; e < 4; e++ {
			for k := 0; k < 4; k++ {
				// gradu(i,j) = du_j / dx_i
				assert.InDeltaSlice(t, []float64{.1, .3, .2, -.4}, gradu.Sub(e, k), 1e-14)
				assert.InDeltaSlice(t, []float64{.1, .2, .3, -.4}, graduT.Sub(e, k), 1e-14)
				assert.InDeltaSlice(t, []float64{.1, .25, .25, -.4}, eps.Sub(e, k), 1e-14)
			}
		}
		uq, err := q.InterpNVector(ue)
		require.NoError(t, err)
		xq := q.Coordinates()
		assert.InDelta(t, .1*xq.At(2, 1, 0)+.2*xq.At(2, 1, 1), uq.At(2, 1, 0), 1e-14)
	}
	{ // Test a uniform stress is self equilibrated
		sig := broadcast(q, []float64{1, 2, 2, 3}, 2, 2)
		fe, err := q.IntGradNDotTensor2dV(sig)
		require.NoError(t, err)
		for e := 0; e < 4; e++ {
			var sum [2]float64
			for m := 0; m < 4; m++ {
				sum[0] += fe.At(e, m, 0)
				sum[1] += fe.At(e, m, 1)
			}
			assert.InDelta(t, 0, sum[0], 1e-14)
			assert.InDelta(t, 0, sum[1], 1e-14)
		}
		// the interior node 4 collects zero
		var f4 [2]float64
		for e, row := range conn {
			for mm, n := range row {
				if n == 4 {
					f4[0] += fe.At(e, mm, 0)
					f4[1] += fe.At(e, mm, 1)
				}
			}
		}
		assert.InDeltaSlice(t, []float64{0, 0}, f4[:], 1e-14)

		packed, err := q.IntGradNDotTensor2dV(broadcast(q, []float64{1, 2, 3}, 3))
		require.NoError(t, err)
		assert.InDeltaSlice(t, fe.Data, packed.Data, 1e-14)
		_, err = q.IntGradNDotTensor2dV(broadcast(q, []float64{1, 2}, 2))
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
	}
	{ // Test mass and body force integrals
		M, err := q.IntNScalarNTdV(broadcast(q, []float64{1}))
		require.NoError(t, err)
		assert.Equal(t, []int{4, 8, 8}, M.Shape)
		assert.InDelta(t, 2*4, floats.Sum(M.Data), 1e-13)
		assert.InDelta(t, 0, M.At(0, 0, 1), 1e-14)
		fb, err := q.IntNVectordV(broadcast(q, []float64{1, 0}, 2))
		require.NoError(t, err)
		assert.InDelta(t, 4, floats.Sum(fb.Data), 1e-13)
		_, err = q.IntNScalarNTdV(utils.NewArray(4, 3))
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
	}
	{ // Test the stiffness is symmetric with rigid body null space
		var (
			C = isotropic(2, 2, 1)
			P = make([]float64, 9)
		)
		for i := 0; i < 2; i++ {
			for j := i; j < 2; j++ {
				for k := 0; k < 2; k++ {
					for l := k; l < 2; l++ {
						P[symIndex(i, j, 2)*3+symIndex(k, l, 2)] = C[((i*2+j)*2+k)*2+l]
					}
				}
			}
		}
		K, err := q.IntGradNDotTensor4DotGradNTdV(broadcast(q, C, 2, 2, 2, 2))
		require.NoError(t, err)
		Kp, err := q.IntGradNDotTensor4DotGradNTdV(broadcast(q, P, 3, 3))
		require.NoError(t, err)
		assert.InDeltaSlice(t, K.Data, Kp.Data, 1e-13)
		for e := 0; e < 4; e++ {
			Ke := K.Sub(e)
			xe := x.Sub(e)
			for r := 0; r < 8; r++ {
				var translate, rotate float64
				for c := 0; c < 8; c++ {
					assert.InDelta(t, Ke[r*8+c], Ke[c*8+r], 1e-13)
					translate += Ke[r*8+c] * float64(c%2)
					// u = (-y, x)
					if c%2 == 0 {
						rotate += Ke[r*8+c] * -xe[c+1]
					} else {
						rotate += Ke[r*8+c] * xe[c-1]
					}
				}
				assert.InDelta(t, 0, translate, 1e-13)
				assert.InDelta(t, 0, rotate, 1e-13)
				assert.Greater(t, Ke[r*8+r], 0.)
			}
		}
		serial, err := NewQuadrature(Quad4, x, WithProcLimit(1))
		require.NoError(t, err)
		Ks, err := serial.IntGradNDotTensor4DotGradNTdV(broadcast(q, C, 2, 2, 2, 2))
		require.NoError(t, err)
		assert.Equal(t, K.Data, Ks.Data)
	}
}

func TestQuadratureSchemes(t *testing.T) {
	var (
		m = mesh.NewQuad4Regular(2, 1, .5)
		x = elemCoords(m.Coor(), m.Conn())
	)
	{ // Test nodal and single point schemes integrate the area
		q, err := NewQuadrature(Quad4, x, WithNodalScheme())
		require.NoError(t, err)
		assert.Equal(t, 4, q.Nip())
		assert.InDelta(t, .5, floats.Sum(q.DV().Data), 1e-14)
		q, err = NewQuadrature(Quad4, x,
			WithPoints(utils.NewArray(1, 2)), WithWeights([]float64{4}))
		require.NoError(t, err)
		assert.Equal(t, 1, q.Nip())
		assert.InDelta(t, .5, floats.Sum(q.DV().Data), 1e-14)
	}
	{ // Test Hex8 and Tri3 volumes
		h := mesh.NewHex8Regular(2, 1, 1, .5)
		q, err := NewQuadrature(Hex8, elemCoords(h.Coor(), h.Conn()))
		require.NoError(t, err)
		assert.InDelta(t, .25, floats.Sum(q.DV().Data), 1e-14)
		for _, D := range q.DetJ().Data {
			assert.InDelta(t, 1./64, D, 1e-15)
		}
		tri := utils.NewArrayFrom([]float64{0, 0, 2, 0, 0, 1}, 1, 3, 2)
		q, err = NewQuadrature(Tri3, tri)
		require.NoError(t, err)
		assert.InDelta(t, 1, floats.Sum(q.DV().Data), 1e-14)
		q, err = NewQuadrature(Tri3, tri, WithNodalScheme())
		require.NoError(t, err)
		assert.InDelta(t, 1, floats.Sum(q.DV().Data), 1e-14)
	}
	{ // Test configuration errors
		_, err := NewQuadrature(Quad4, utils.NewArray(2, 3, 2))
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
		_, err = NewQuadrature(Quad4, x, WithPoints(utils.NewArray(1, 2)))
		assert.ErrorIs(t, err, utils.ErrUnsupportedConfig)
		_, err = NewQuadrature(Quad4, x, WithPoints(utils.NewArray(1, 3)), WithWeights([]float64{4}))
		assert.ErrorIs(t, err, utils.ErrShapeMismatch)
		_, err = NewQuadrature(Type(42), x)
		assert.ErrorIs(t, err, utils.ErrUnsupportedConfig)
	}
	{ // Test degenerate and inverted elements
		_, err := NewQuadrature(Quad4, utils.NewArray(1, 4, 2))
		assert.ErrorIs(t, err, utils.ErrDegenerateElement)
		cw := utils.NewArrayFrom([]float64{0, 0, 0, 1, 1, 1, 1, 0}, 1, 4, 2)
		_, err = NewQuadrature(Quad4, cw)
		assert.ErrorIs(t, err, utils.ErrDegenerateElement)
		nan := x.Copy()
		nan.Set(math.NaN(), 0, 2, 1)
		_, err = NewQuadrature(Quad4, nan)
		assert.ErrorIs(t, err, utils.ErrDegenerateElement)
		inf := x.Copy()
		inf.Set(math.Inf(1), 1, 1, 0)
		_, err = NewQuadrature(Quad4, inf)
		assert.ErrorIs(t, err, utils.ErrDegenerateElement)
	}
	{ // Test small, correctly oriented elements are accepted
		tiny := mesh.NewQuad4Regular(1, 1, 1e-7)
		q, err := NewQuadrature(Quad4, elemCoords(tiny.Coor(), tiny.Conn()))
		require.NoError(t, err)
		assert.InDelta(t, 1, floats.Sum(q.DV().Data)/1e-14, 1e-10)
		h := mesh.NewHex8Regular(1, 1, 1, 1e-5)
		q, err = NewQuadrature(Hex8, elemCoords(h.Coor(), h.Conn()))
		require.NoError(t, err)
		assert.InDelta(t, 1, floats.Sum(q.DV().Data)/1e-15, 1e-10)
		// a sheared element with an angle of 1e-16 between its edges
		sheared := utils.NewArrayFrom([]float64{0, 0, 1, 0, 2, 1e-16, 1, 1e-16}, 1, 4, 2)
		_, err = NewQuadrature(Quad4, sheared)
		assert.ErrorIs(t, err, utils.ErrDegenerateElement)
	}
	{ // Test a failed update keeps the previous geometry
		q, err := NewQuadrature(Quad4, x)
		require.NoError(t, err)
		collapsed := x.Copy()
		copy(collapsed.Sub(1, 2), collapsed.Sub(1, 0))
		copy(collapsed.Sub(1, 3), collapsed.Sub(1, 1))
		assert.ErrorIs(t, q.UpdateX(collapsed), utils.ErrDegenerateElement)
		assert.InDelta(t, .5, floats.Sum(q.DV().Data), 1e-14)
		scaled := x.Copy()
		for i := range scaled.Data {
			scaled.Data[i] *= 2
		}
		require.NoError(t, q.UpdateX(scaled))
		assert.InDelta(t, 2, floats.Sum(q.DV().Data), 1e-14)
		assert.ErrorIs(t, q.UpdateX(utils.NewArray(1, 4, 2)), utils.ErrShapeMismatch)
	}
}

func TestQuadratureAxisymmetric(t *testing.T) {
	// (z, r) in [0, 1] x [1, 2]
	x := utils.NewArrayFrom([]float64{0, 1, 1, 1, 1, 2, 0, 2}, 1, 4, 2)
	q, err := NewQuadrature(Quad4Axisymmetric, x)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Tdim())
	assert.InDelta(t, 3*math.Pi, floats.Sum(q.DV().Data), 1e-12)
	{ // Test a uniform radial expansion u_r = r
		ue := utils.NewArrayFrom([]float64{0, 1, 0, 1, 0, 2, 0, 2}, 1, 4, 2)
		eps, err := q.SymGradNVector(ue)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 3, 3}, eps.Shape)
		for k := 0; k < 4; k++ {
			assert.InDeltaSlice(t, []float64{1, 0, 0, 0, 1, 0, 0, 0, 0}, eps.Sub(0, k), 1e-14)
		}
	}
	{ // Test an axial translation gives zero strain and zero stiffness response
		ue := utils.NewArrayFrom([]float64{1, 0, 1, 0, 1, 0, 1, 0}, 1, 4, 2)
		eps, err := q.GradNVector(ue)
		require.NoError(t, err)
		assert.InDeltaSlice(t, make([]float64, 4*9), eps.Data, 1e-14)
		K, err := q.IntGradNDotTensor4DotGradNTdV(broadcast(q, isotropic(3, 1, 1), 3, 3, 3, 3))
		require.NoError(t, err)
		for r := 0; r < 8; r++ {
			var sum float64
			for c := 0; c < 8; c++ {
				sum += K.At(0, r, c) * ue.Data[c]
				assert.InDelta(t, K.At(0, r, c), K.At(0, c, r), 1e-12)
			}
			assert.InDelta(t, 0, sum, 1e-12)
		}
	}
	{ // Test the hoop stress loads the radial component only
		fe, err := q.IntGradNDotTensor2dV(broadcast(q, []float64{0, 0, 0, 1, 0, 0}, 6))
		require.NoError(t, err)
		var fr, fz float64
		for m := 0; m < 4; m++ {
			fz += fe.At(0, m, 0)
			fr += fe.At(0, m, 1)
		}
		// integral of N/r sig_tt 2 pi r dA = 2 pi area
		assert.InDelta(t, 2*math.Pi, fr, 1e-12)
		assert.InDelta(t, 0, fz, 1e-14)
	}
	{ // Test elements crossing the axis
		_, err := NewQuadrature(Quad4Axisymmetric,
			utils.NewArrayFrom([]float64{0, -1, 1, -1, 1, 1, 0, 1}, 1, 4, 2))
		assert.ErrorIs(t, err, utils.ErrDegenerateElement)
	}
}
