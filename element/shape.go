package element

import (
	"math"

	"github.com/notargets/femkernel/utils"
)

/*
Local node numbering, counter clockwise:

	Quad4   3 --- 2      Tri3   2
	        |     |             | \
	        0 --- 1             0 - 1

Hex8 stacks two Quad4 faces, nodes 0-3 at zeta = -1 and 4-7 at zeta = +1.
*/
var (
	quad4Corners = [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	hex8Corners  = [8][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
)

func quad4Shape(xi, N, dNdxi []float64) {
	for m, c := range quad4Corners {
		var (
			a = 1 + c[0]*xi[0]
			b = 1 + c[1]*xi[1]
		)
		N[m] = .25 * a * b
		dNdxi[2*m+0] = .25 * c[0] * b
		dNdxi[2*m+1] = .25 * c[1] * a
	}
}

func hex8Shape(xi, N, dNdxi []float64) {
	for m, c := range hex8Corners {
		var (
			a = 1 + c[0]*xi[0]
			b = 1 + c[1]*xi[1]
			d = 1 + c[2]*xi[2]
		)
		N[m] = .125 * a * b * d
		dNdxi[3*m+0] = .125 * c[0] * b * d
		dNdxi[3*m+1] = .125 * c[1] * a * d
		dNdxi[3*m+2] = .125 * c[2] * a * b
	}
}

func tri3Shape(xi, N, dNdxi []float64) {
	N[0] = 1 - xi[0] - xi[1]
	N[1] = xi[0]
	N[2] = xi[1]
	copy(dNdxi, []float64{-1, -1, 1, 0, 0, 1})
}

func quad4Gauss() (xi utils.Array, w []float64) {
	g := 1 / math.Sqrt(3)
	xi = utils.NewArray(4, 2)
	for q, c := range quad4Corners {
		xi.Set(g*c[0], q, 0)
		xi.Set(g*c[1], q, 1)
	}
	w = utils.ConstArray(4, 1)
	return
}

func quad4Nodal() (xi utils.Array, w []float64) {
	xi = utils.NewArray(4, 2)
	for q, c := range quad4Corners {
		copy(xi.Sub(q), c[:])
	}
	w = utils.ConstArray(4, 1)
	return
}

func hex8Gauss() (xi utils.Array, w []float64) {
	g := 1 / math.Sqrt(3)
	xi = utils.NewArray(8, 3)
	for q, c := range hex8Corners {
		for j := 0; j < 3; j++ {
			xi.Set(g*c[j], q, j)
		}
	}
	w = utils.ConstArray(8, 1)
	return
}

func hex8Nodal() (xi utils.Array, w []float64) {
	xi = utils.NewArray(8, 3)
	for q, c := range hex8Corners {
		copy(xi.Sub(q), c[:])
	}
	w = utils.ConstArray(8, 1)
	return
}

func tri3Gauss() (xi utils.Array, w []float64) {
	xi = utils.NewArrayFrom([]float64{1. / 3, 1. / 3}, 1, 2)
	w = []float64{.5}
	return
}

func tri3Nodal() (xi utils.Array, w []float64) {
	xi = utils.NewArrayFrom([]float64{0, 0, 1, 0, 0, 1}, 3, 2)
	w = utils.ConstArray(3, 1./6)
	return
}
