package element

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/femkernel/utils"
)

const (
	MINDET = 1.0e-14 // smallest admissible det(J) relative to the product of the row norms of J
)

/*
Quadrature holds the shape functions of one element type at a fixed set of
quadrature points, and the per element, per point geometric data derived from
the current nodal coordinates: the global shape function gradient and the
integration volume.

Every element is processed independently, across ParallelDegree go routines.
UpdateX is a barrier: no other method may run concurrently with it.
*/
type Quadrature struct {
	Type Type
	topo *topology
	// Dimensions
	nelem, nne, ndim, nip, tdim int
	// Scheme, fixed at construction
	xi   utils.Array // (nip, ndim)
	w    []float64   // (nip)
	N    utils.Array // (nip, nne)
	dNxi utils.Array // (nip, nne, ndim)
	// Geometry, recomputed by UpdateX
	x    utils.Array // (nelem, nne, ndim)
	dNx  utils.Array // (nelem, nip, nne, ndim)
	detJ utils.Array // (nelem, nip)
	vol  utils.Array // (nelem, nip)
	rq   utils.Array // (nelem, nip) radius at the quadrature points, axisymmetric only

	Partitions *utils.PartitionMap
}

type Option func(*options)

type options struct {
	xi        utils.Array
	w         []float64
	nodal     bool
	procLimit int
}

// WithPoints sets custom local quadrature coordinates (nip, ndim), must be paired with WithWeights.
func WithPoints(xi utils.Array) Option { return func(o *options) { o.xi = xi } }

// WithWeights sets custom quadrature weights (nip), must be paired with WithPoints.
func WithWeights(w []float64) Option { return func(o *options) { o.w = w } }

// WithNodalScheme places the quadrature points on the element nodes.
func WithNodalScheme() Option { return func(o *options) { o.nodal = true } }

// WithProcLimit caps the number of go routines, 0 uses one per CPU.
func WithProcLimit(n int) Option { return func(o *options) { o.procLimit = n } }

// NewQuadrature builds the quadrature of element type t for coordinates x (nelem, nne, ndim).
func NewQuadrature(t Type, x utils.Array, opts ...Option) (q *Quadrature, err error) {
	var (
		o    options
		topo *topology
	)
	for _, opt := range opts {
		opt(&o)
	}
	if topo, err = getTopology(t); err != nil {
		return
	}
	if x.Rank() != 3 || x.Dim(1) != topo.nne || x.Dim(2) != topo.ndim {
		err = errors.Wrapf(utils.ErrShapeMismatch,
			"%s coordinates: have shape %v, want (nelem, %d, %d)", t, x.Shape, topo.nne, topo.ndim)
		return
	}
	var (
		xi utils.Array
		w  []float64
	)
	switch {
	case o.xi.IsEmpty() != (len(o.w) == 0):
		err = errors.Wrapf(utils.ErrUnsupportedConfig,
			"quadrature points and weights must be given together")
		return
	case !o.xi.IsEmpty():
		if o.xi.Rank() != 2 || o.xi.Dim(1) != topo.ndim || o.xi.Dim(0) != len(o.w) {
			err = errors.Wrapf(utils.ErrShapeMismatch,
				"quadrature points %v and %d weights, want (nip, %d) and nip", o.xi.Shape, len(o.w), topo.ndim)
			return
		}
		xi, w = o.xi.Copy(), append([]float64(nil), o.w...)
	case o.nodal:
		xi, w = topo.nodal()
	default:
		xi, w = topo.gauss()
	}
	q = &Quadrature{
		Type:  t,
		topo:  topo,
		nelem: x.Dim(0),
		nne:   topo.nne,
		ndim:  topo.ndim,
		nip:   len(w),
		tdim:  topo.tdim,
		xi:    xi,
		w:     w,
	}
	q.Partitions = utils.NewPartitionMap(utils.ParallelDegree(o.procLimit, q.nelem), q.nelem)
	q.N = utils.NewArray(q.nip, q.nne)
	q.dNxi = utils.NewArray(q.nip, q.nne, q.ndim)
	for k := 0; k < q.nip; k++ {
		topo.shape(xi.Sub(k), q.N.Sub(k), q.dNxi.Sub(k))
	}
	if err = q.UpdateX(x); err != nil {
		q = nil
		return
	}
	if glog.V(2) {
		glog.Infof("%s quadrature: nelem = %d, nip = %d, parallel degree = %d",
			t, q.nelem, q.nip, q.Partitions.ParallelDegree)
	}
	return
}

func (q *Quadrature) Nelem() int { return q.nelem }
func (q *Quadrature) Nne() int   { return q.nne }
func (q *Quadrature) Ndim() int  { return q.ndim }
func (q *Quadrature) Nip() int   { return q.nip }

// Tdim is the dimension of the quadrature point tensors: ndim, or 3 for axisymmetric elements.
func (q *Quadrature) Tdim() int { return q.tdim }

// Xi and W return copies of the local quadrature coordinates and weights.
func (q *Quadrature) Xi() utils.Array { return q.xi.Copy() }
func (q *Quadrature) W() []float64    { return append([]float64(nil), q.w...) }

// ShapeN returns the shape function values (nip, nne).
func (q *Quadrature) ShapeN() utils.Array { return q.N.Copy() }

// GradN returns the global shape function gradients (nelem, nip, nne, ndim).
func (q *Quadrature) GradN() utils.Array { return q.dNx.Copy() }

// DetJ returns the Jacobian determinants (nelem, nip).
func (q *Quadrature) DetJ() utils.Array { return q.detJ.Copy() }

// UpdateX recomputes all geometric data for new coordinates (nelem, nne, ndim).
// On failure the previous geometry is kept.
func (q *Quadrature) UpdateX(x utils.Array) (err error) {
	if err = x.CheckShape("coordinates", q.nelem, q.nne, q.ndim); err != nil {
		return
	}
	var (
		dNx  = utils.NewArray(q.nelem, q.nip, q.nne, q.ndim)
		detJ = utils.NewArray(q.nelem, q.nip)
		vol  = utils.NewArray(q.nelem, q.nip)
		rq   utils.Array
	)
	if q.topo.axisymmetric {
		rq = utils.NewArray(q.nelem, q.nip)
	}
	err = q.Partitions.Run(func(_, kMin, kMax int) error {
		for e := kMin; e < kMax; e++ {
			if err := q.computeElement(e, x, dNx, detJ, vol, rq); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	q.x = x.Copy()
	q.dNx, q.detJ, q.vol, q.rq = dNx, detJ, vol, rq
	return
}

func (q *Quadrature) computeElement(e int, x, dNx, detJ, vol, rq utils.Array) error {
	var (
		nd     = q.ndim
		xe     = x.Sub(e)
		J, Inv [9]float64
	)
	for k := 0; k < q.nip; k++ {
		var (
			dNdxi = q.dNxi.Sub(k)
			dNdx  = dNx.Sub(e, k)
		)
		// J(i,j) = dNxi(m,i) * x(m,j)
		for i := 0; i < nd; i++ {
			for j := 0; j < nd; j++ {
				var sum float64
				for m := 0; m < q.nne; m++ {
					sum += dNdxi[m*nd+i] * xe[m*nd+j]
				}
				J[i*nd+j] = sum
			}
		}
		// |det(J)| <= product of the row norms, the ratio is independent of the element size
		scale := 1.
		for i := 0; i < nd; i++ {
			scale *= floats.Norm(J[i*nd:(i+1)*nd], 2)
		}
		D := det(&J, nd)
		if !(D > MINDET*scale) {
			return errors.Wrapf(utils.ErrDegenerateElement,
				"element %d, quadrature point %d: Jacobian determinant %g", e, k, D)
		}
		inv(&J, &Inv, D, nd)
		// dNx(m,i) = Jinv(i,j) * dNxi(m,j)
		for m := 0; m < q.nne; m++ {
			for i := 0; i < nd; i++ {
				var sum float64
				for j := 0; j < nd; j++ {
					sum += Inv[i*nd+j] * dNdxi[m*nd+j]
				}
				dNdx[m*nd+i] = sum
			}
		}
		detJ.Set(D, e, k)
		dV := q.w[k] * D
		if q.topo.axisymmetric {
			var (
				N = q.N.Sub(k)
				r float64
			)
			for m := 0; m < q.nne; m++ {
				r += N[m] * xe[m*nd+1]
			}
			if !(r > 0) {
				return errors.Wrapf(utils.ErrDegenerateElement,
					"element %d, quadrature point %d: radius %g is not positive", e, k, r)
			}
			rq.Set(r, e, k)
			dV *= 2 * math.Pi * r
		}
		vol.Set(dV, e, k)
	}
	return nil
}

// DV returns the integration volume of every quadrature point (nelem, nip).
func (q *Quadrature) DV() utils.Array { return q.vol.Copy() }

// DVTensor2 broadcasts the integration volume to the shape of a quadrature point tensor.
func (q *Quadrature) DVTensor2() (R utils.Array) {
	var (
		t2 = q.tdim * q.tdim
	)
	R = utils.NewArray(q.nelem, q.nip, q.tdim, q.tdim)
	for i, dV := range q.vol.Data {
		for j := 0; j < t2; j++ {
			R.Data[i*t2+j] = dV
		}
	}
	return
}

// Coordinates interpolates the nodal coordinates to the quadrature points (nelem, nip, ndim).
func (q *Quadrature) Coordinates() (R utils.Array) {
	R, _ = q.InterpNVector(q.x)
	return
}
