package element

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/notargets/femkernel/utils"
)

// Type selects the element topology and the kinematics used by a Quadrature.
type Type uint8

const (
	Quad4 Type = iota
	Hex8
	Tri3
	Quad4Axisymmetric
)

var (
	typeNames = map[Type]string{
		Quad4:             "Quad4",
		Hex8:              "Hex8",
		Tri3:              "Tri3",
		Quad4Axisymmetric: "Quad4Axisymmetric",
	}
)

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

func NewType(label string) (t Type, err error) {
	for tt, name := range typeNames {
		if strings.EqualFold(label, name) {
			return tt, nil
		}
	}
	err = errors.Wrapf(utils.ErrUnsupportedConfig, "unknown element type %q", label)
	return
}

// topology holds the fixed, geometry independent description of an element type.
type topology struct {
	nne, ndim    int
	tdim         int // dimension of the quadrature point tensors
	axisymmetric bool
	// shape evaluates N (nne) and dN/dxi (nne x ndim, row major) at local coordinate xi
	shape        func(xi, N, dNdxi []float64)
	gauss, nodal func() (xi utils.Array, w []float64)
}

var topologies = map[Type]*topology{
	Quad4: {
		nne: 4, ndim: 2, tdim: 2,
		shape: quad4Shape,
		gauss: quad4Gauss, nodal: quad4Nodal,
	},
	Hex8: {
		nne: 8, ndim: 3, tdim: 3,
		shape: hex8Shape,
		gauss: hex8Gauss, nodal: hex8Nodal,
	},
	Tri3: {
		nne: 3, ndim: 2, tdim: 2,
		shape: tri3Shape,
		gauss: tri3Gauss, nodal: tri3Nodal,
	},
	Quad4Axisymmetric: {
		nne: 4, ndim: 2, tdim: 3, axisymmetric: true,
		shape: quad4Shape,
		gauss: quad4Gauss, nodal: quad4Nodal,
	},
}

func getTopology(t Type) (topo *topology, err error) {
	var ok bool
	if topo, ok = topologies[t]; !ok {
		err = errors.Wrapf(utils.ErrUnsupportedConfig, "element type %d", t)
	}
	return
}

// Nne returns the number of nodes per element of t.
func (t Type) Nne() int { return topologies[t].nne }

// Ndim returns the number of spatial dimensions of t.
func (t Type) Ndim() int { return topologies[t].ndim }

// Gauss returns the default Gauss scheme of t: local coordinates (nip, ndim) and weights.
func Gauss(t Type) (xi utils.Array, w []float64) {
	return topologies[t].gauss()
}

// Nodal returns the scheme with quadrature points on the element nodes.
func Nodal(t Type) (xi utils.Array, w []float64) {
	return topologies[t].nodal()
}
