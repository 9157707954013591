package material

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
)

/*
Elastic is an isotropic linear elastic material with a bulk modulus K and a
shear modulus G per quadrature point:

	sig = lam tr(eps) I + 2 G eps,   lam = K - 2 G / 3

For tdim = 3 this is the full 3-d response, for tdim = 2 the in plane part
under plane strain.
*/
type Elastic struct {
	nelem, nip, tdim int
	K, G             utils.Array // (nelem, nip)
	Partitions       *utils.PartitionMap
}

func NewElastic(nelem, nip, tdim int) (m *Elastic) {
	m = &Elastic{
		nelem:      nelem,
		nip:        nip,
		tdim:       tdim,
		K:          utils.NewArray(nelem, nip),
		G:          utils.NewArray(nelem, nip),
		Partitions: utils.NewPartitionMap(utils.ParallelDegree(0, nelem), nelem),
	}
	return
}

func (m *Elastic) Tdim() int { return m.tdim }

// SetElastic assigns the moduli to every quadrature point of the listed elements.
func (m *Elastic) SetElastic(elems utils.Index, K, G float64) (err error) {
	if K <= 0 || G <= 0 {
		return errors.Wrapf(utils.ErrUnsupportedConfig, "elastic moduli K = %g, G = %g must be positive", K, G)
	}
	for _, e := range elems {
		if e < 0 || e >= m.nelem {
			return errors.Wrapf(utils.ErrShapeMismatch, "element %d out of range, nelem = %d", e, m.nelem)
		}
	}
	for _, e := range elems {
		for k := 0; k < m.nip; k++ {
			m.K.Set(K, e, k)
			m.G.Set(G, e, k)
		}
	}
	if glog.V(2) {
		glog.Infof("elastic: K = %g, G = %g on %d elements", K, G, len(elems))
	}
	return
}

func (m *Elastic) checkAssigned() error {
	for i, G := range m.G.Data {
		if G == 0 {
			return errors.Wrapf(utils.ErrUnsupportedConfig,
				"elastic: quadrature point %d of element %d has no material", i%m.nip, i/m.nip)
		}
	}
	return nil
}

// Stress returns sig (nelem, nip, tdim, tdim) for the strain eps of the same shape.
func (m *Elastic) Stress(eps utils.Array) (sig utils.Array, err error) {
	sig, _, err = m.evaluate(eps, false)
	return
}

// Tangent returns the stress and the tangent C (nelem, nip, tdim, tdim, tdim, tdim).
func (m *Elastic) Tangent(eps utils.Array) (sig, C utils.Array, err error) {
	return m.evaluate(eps, true)
}

func (m *Elastic) evaluate(eps utils.Array, tangent bool) (sig, C utils.Array, err error) {
	var (
		td = m.tdim
		t2 = td * td
	)
	if err = eps.CheckShape("strain", m.nelem, m.nip, td, td); err != nil {
		return
	}
	if err = m.checkAssigned(); err != nil {
		return
	}
	sig = utils.NewArray(m.nelem, m.nip, td, td)
	if tangent {
		C = utils.NewArray(m.nelem, m.nip, td, td, td, td)
	}
	err = m.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			for k := 0; k < m.nip; k++ {
				var (
					G   = m.G.At(e, k)
					lam = m.K.At(e, k) - 2*G/3
					E   = eps.Sub(e, k)
					S   = sig.Sub(e, k)
					tr  float64
				)
				for i := 0; i < td; i++ {
					tr += E[i*td+i]
				}
				for i := 0; i < td; i++ {
					for j := 0; j < td; j++ {
						S[i*td+j] = G * (E[i*td+j] + E[j*td+i])
					}
					S[i*td+i] += lam * tr
				}
				if !tangent {
					continue
				}
				Ck := C.Sub(e, k)
				for i := 0; i < td; i++ {
					for j := 0; j < td; j++ {
						for l := 0; l < td; l++ {
							for n := 0; n < td; n++ {
								var v float64
								if i == j && l == n {
									v += lam
								}
								if i == l && j == n {
									v += G
								}
								if i == n && j == l {
									v += G
								}
								Ck[(i*td+j)*t2+l*td+n] = v
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
