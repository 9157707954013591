package element

import (
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
)

/*
bEntry is one non zero of the strain operator B(m, i, j, c) of node m: the
gradient of a nodal vector u is gradu(i,j) = B(m,i,j,c) u(m,c). For planar
elements B(m,i,j,c) = dNx(m,i) delta(j,c).

Axisymmetric elements use coordinates (x0, x1) = (z, r) and tensors in
(r, theta, z), which gives five non zeros per node:

	B(m, r, r, r) = dN/dr     B(m, r, z, z) = dN/dr
	B(m, t, t, r) = N / r
	B(m, z, r, r) = dN/dz     B(m, z, z, z) = dN/dz
*/
type bEntry struct {
	i, j, c int
	v       float64
}

const (
	axR, axT, axZ = 0, 1, 2 // tensor axes
	coZ, coR      = 0, 1    // coordinate components
)

// bOperator fills buf with the non zeros of B for node m at (e, k).
func (q *Quadrature) bOperator(e, k, m int, buf []bEntry) []bEntry {
	var (
		nd   = q.ndim
		dNdx = q.dNx.Sub(e, k, m)
	)
	buf = buf[:0]
	if !q.topo.axisymmetric {
		for i := 0; i < nd; i++ {
			for c := 0; c < nd; c++ {
				buf = append(buf, bEntry{i, c, c, dNdx[i]})
			}
		}
		return buf
	}
	var (
		dNdz = dNdx[coZ]
		dNdr = dNdx[coR]
		Nr   = q.N.At(k, m) / q.rq.At(e, k)
	)
	return append(buf,
		bEntry{axR, axR, coR, dNdr},
		bEntry{axR, axZ, coZ, dNdr},
		bEntry{axT, axT, coR, Nr},
		bEntry{axZ, axR, coR, dNdz},
		bEntry{axZ, axZ, coZ, dNdz},
	)
}

func (q *Quadrature) bCapacity() int {
	if q.topo.axisymmetric {
		return 5
	}
	return q.ndim * q.ndim
}

func (q *Quadrature) checkElemvec(name string, elemvec utils.Array) error {
	return elemvec.CheckShape(name, q.nelem, q.nne, q.ndim)
}

// GradNVector returns gradu(i,j) = dNx(m,i) u(m,j) at every quadrature point (nelem, nip, tdim, tdim).
func (q *Quadrature) GradNVector(elemvec utils.Array) (qtensor utils.Array, err error) {
	if err = q.checkElemvec("GradNVector elemvec", elemvec); err != nil {
		return
	}
	var (
		td = q.tdim
	)
	qtensor = utils.NewArray(q.nelem, q.nip, td, td)
	err = q.Partitions.Run(func(_, kMin, kMax int) error {
		B := make([]bEntry, 0, q.bCapacity())
		for e := kMin; e < kMax; e++ {
			ue := elemvec.Sub(e)
			for k := 0; k < q.nip; k++ {
				gradu := qtensor.Sub(e, k)
				for m := 0; m < q.nne; m++ {
					B = q.bOperator(e, k, m, B)
					for _, b := range B {
						gradu[b.i*td+b.j] += b.v * ue[m*q.ndim+b.c]
					}
				}
			}
		}
		return nil
	})
	return
}

// GradNVectorT returns the transpose of GradNVector.
func (q *Quadrature) GradNVectorT(elemvec utils.Array) (qtensor utils.Array, err error) {
	if qtensor, err = q.GradNVector(elemvec); err != nil {
		return
	}
	q.mapTensor2(qtensor, func(T []float64, td int) {
		for i := 0; i < td; i++ {
			for j := i + 1; j < td; j++ {
				T[i*td+j], T[j*td+i] = T[j*td+i], T[i*td+j]
			}
		}
	})
	return
}

// SymGradNVector returns the symmetric part of GradNVector, the small strain tensor.
func (q *Quadrature) SymGradNVector(elemvec utils.Array) (qtensor utils.Array, err error) {
	if qtensor, err = q.GradNVector(elemvec); err != nil {
		return
	}
	q.mapTensor2(qtensor, func(T []float64, td int) {
		for i := 0; i < td; i++ {
			for j := i + 1; j < td; j++ {
				s := .5 * (T[i*td+j] + T[j*td+i])
				T[i*td+j], T[j*td+i] = s, s
			}
		}
	})
	return
}

func (q *Quadrature) mapTensor2(qtensor utils.Array, fn func(T []float64, td int)) {
	_ = q.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			for k := 0; k < q.nip; k++ {
				fn(qtensor.Sub(e, k), q.tdim)
			}
		}
		return nil
	})
}

// InterpNVector interpolates a nodal vector field to the quadrature points (nelem, nip, ndim).
func (q *Quadrature) InterpNVector(elemvec utils.Array) (qvector utils.Array, err error) {
	if err = q.checkElemvec("InterpNVector elemvec", elemvec); err != nil {
		return
	}
	qvector = utils.NewArray(q.nelem, q.nip, q.ndim)
	err = q.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			ue := elemvec.Sub(e)
			for k := 0; k < q.nip; k++ {
				var (
					N  = q.N.Sub(k)
					uq = qvector.Sub(e, k)
				)
				for m := 0; m < q.nne; m++ {
					for j := 0; j < q.ndim; j++ {
						uq[j] += N[m] * ue[m*q.ndim+j]
					}
				}
			}
		}
		return nil
	})
	return
}

// IntNScalarNTdV integrates M(m*ndim+c, n*ndim+c) += N(m) s N(n) dV into an elemmat.
func (q *Quadrature) IntNScalarNTdV(qscalar utils.Array) (elemmat utils.Array, err error) {
	if err = qscalar.CheckShape("IntNScalarNTdV qscalar", q.nelem, q.nip); err != nil {
		return
	}
	var (
		nd  = q.ndim
		ndf = q.nne * nd
	)
	elemmat = utils.NewArray(q.nelem, ndf, ndf)
	err = q.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			Me := elemmat.Sub(e)
			for k := 0; k < q.nip; k++ {
				var (
					N  = q.N.Sub(k)
					sv = qscalar.At(e, k) * q.vol.At(e, k)
				)
				for m := 0; m < q.nne; m++ {
					for n := 0; n < q.nne; n++ {
						val := N[m] * sv * N[n]
						for c := 0; c < nd; c++ {
							Me[(m*nd+c)*ndf+n*nd+c] += val
						}
					}
				}
			}
		}
		return nil
	})
	return
}

// IntNVectordV integrates f(m,j) += N(m) q(j) dV, a body force, into an elemvec.
func (q *Quadrature) IntNVectordV(qvector utils.Array) (elemvec utils.Array, err error) {
	if err = qvector.CheckShape("IntNVectordV qvector", q.nelem, q.nip, q.ndim); err != nil {
		return
	}
	elemvec = utils.NewArray(q.nelem, q.nne, q.ndim)
	err = q.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			fe := elemvec.Sub(e)
			for k := 0; k < q.nip; k++ {
				var (
					N  = q.N.Sub(k)
					fq = qvector.Sub(e, k)
					dV = q.vol.At(e, k)
				)
				for m := 0; m < q.nne; m++ {
					for j := 0; j < q.ndim; j++ {
						fe[m*q.ndim+j] += N[m] * fq[j] * dV
					}
				}
			}
		}
		return nil
	})
	return
}

// tensorStorage accepts a full (nelem, nip, tdim...) or packed symmetric (nelem, nip, ns...) field.
func (q *Quadrature) tensorStorage(name string, qt utils.Array, order int) (packed bool, err error) {
	var (
		td   = q.tdim
		ns   = symSize(td)
		full = []int{q.nelem, q.nip}
		pack = []int{q.nelem, q.nip}
	)
	for i := 0; i < order; i++ {
		full = append(full, td)
	}
	for i := 0; i < order/2; i++ {
		pack = append(pack, ns)
	}
	switch {
	case qt.HasShape(full...):
		return false, nil
	case qt.HasShape(pack...):
		return true, nil
	}
	err = errors.Wrapf(utils.ErrShapeMismatch, "%s: have shape %v, want %v or symmetric %v", name, qt.Shape, full, pack)
	return
}

// IntGradNDotTensor2dV integrates f(m,j) += dNx(m,i) sig(i,j) dV into an elemvec.
// qtensor is (nelem, nip, tdim, tdim), or symmetric (nelem, nip, tdim*(tdim+1)/2) ordered xx, xy, yy.
func (q *Quadrature) IntGradNDotTensor2dV(qtensor utils.Array) (elemvec utils.Array, err error) {
	var (
		packed bool
		td     = q.tdim
	)
	if packed, err = q.tensorStorage("IntGradNDotTensor2dV qtensor", qtensor, 2); err != nil {
		return
	}
	elemvec = utils.NewArray(q.nelem, q.nne, q.ndim)
	err = q.Partitions.Run(func(_, kMin, kMax int) error {
		var (
			B   = make([]bEntry, 0, q.bCapacity())
			sig = make([]float64, td*td)
		)
		for e := kMin; e < kMax; e++ {
			fe := elemvec.Sub(e)
			for k := 0; k < q.nip; k++ {
				expand2(qtensor.Sub(e, k), packed, td, sig)
				dV := q.vol.At(e, k)
				for m := 0; m < q.nne; m++ {
					B = q.bOperator(e, k, m, B)
					for _, b := range B {
						fe[m*q.ndim+b.c] += b.v * sig[b.i*td+b.j] * dV
					}
				}
			}
		}
		return nil
	})
	return
}

/*
IntGradNDotTensor4DotGradNTdV integrates the stiffness

	K(m*ndim+c, n*ndim+f) += B(m,a,b,c) C(a,b,d,e) B(n,d,e,f) dV

into an elemmat, for planar elements K(m*ndim+c, n*ndim+f) += dNx(m,a) C(a,c,b,f) dNx(n,b) dV.
qtensor4 is (nelem, nip, tdim, tdim, tdim, tdim), or symmetric (nelem, nip, ns, ns).
*/
func (q *Quadrature) IntGradNDotTensor4DotGradNTdV(qtensor4 utils.Array) (elemmat utils.Array, err error) {
	var (
		packed bool
		td     = q.tdim
		t2     = td * td
		nd     = q.ndim
		ndf    = q.nne * nd
	)
	if packed, err = q.tensorStorage("IntGradNDotTensor4DotGradNTdV qtensor", qtensor4, 4); err != nil {
		return
	}
	elemmat = utils.NewArray(q.nelem, ndf, ndf)
	err = q.Partitions.Run(func(_, kMin, kMax int) error {
		var (
			Bm = make([]bEntry, 0, q.bCapacity())
			Bn = make([]bEntry, 0, q.bCapacity())
			C  = make([]float64, t2*t2)
		)
		for e := kMin; e < kMax; e++ {
			Ke := elemmat.Sub(e)
			for k := 0; k < q.nip; k++ {
				expand4(qtensor4.Sub(e, k), packed, td, C)
				dV := q.vol.At(e, k)
				for m := 0; m < q.nne; m++ {
					Bm = q.bOperator(e, k, m, Bm)
					for n := 0; n < q.nne; n++ {
						Bn = q.bOperator(e, k, n, Bn)
						for _, em := range Bm {
							row := (m*nd + em.c) * ndf
							Crow := C[(em.i*td+em.j)*t2:]
							for _, en := range Bn {
								Ke[row+n*nd+en.c] += em.v * Crow[en.i*td+en.j] * en.v * dV
							}
						}
					}
				}
			}
		}
		return nil
	})
	return
}
