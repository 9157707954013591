package Periodic2D

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/femkernel/InputParameters"
	"github.com/notargets/femkernel/element"
	"github.com/notargets/femkernel/material"
	"github.com/notargets/femkernel/matrix"
	"github.com/notargets/femkernel/mesh"
	"github.com/notargets/femkernel/tyings"
	"github.com/notargets/femkernel/utils"
	"github.com/notargets/femkernel/vector"
)

/*
Periodic solves the static equilibrium of a periodic unit cell of Quad4
elements. The macroscopic displacement gradient is prescribed through the
two control nodes, the origin node is fixed to remove the rigid body modes.
*/
type Periodic struct {
	Mesh    *mesh.Quad4Regular
	Control *tyings.Control
	Tyings  *tyings.Periodic
	Vec     *vector.VectorPartitionedTyings
	Elem    *element.Quadrature
	Mat     *material.Elastic
	K       *matrix.MatrixPartitionedTyings
	// Nodal displacement, including the control nodes (nnode, ndim)
	Disp utils.Array
	// Convergence
	Shear, Tolerance float64
	MaxIterations    int
	Residuals        []float64 // relative residual of every checked iteration
	verbose          bool
}

func NewPeriodic(ip *InputParameters.InputParametersPeriodic, verbose bool) (c *Periodic, err error) {
	if ip.Nx < 1 || ip.Ny < 1 || ip.ElementSize <= 0 {
		err = errors.Wrapf(utils.ErrUnsupportedConfig,
			"mesh [%d x %d] with element size %g", ip.Nx, ip.Ny, ip.ElementSize)
		return
	}
	c = &Periodic{
		Mesh:          mesh.NewQuad4Regular(ip.Nx, ip.Ny, ip.ElementSize),
		Shear:         ip.Shear,
		Tolerance:     ip.Tolerance,
		MaxIterations: ip.MaxIterations,
		verbose:       verbose,
	}
	c.Control = tyings.NewControl(c.Mesh.Coor(), c.Mesh.Dofs())
	var (
		dofs = c.Control.Dofs()
		conn = c.Mesh.Conn()
		iip  utils.Index
	)
	for _, row := range c.Control.ControlDofs() {
		iip = append(iip, row...)
	}
	iip = append(iip, dofs[c.Mesh.NodesOrigin()]...)
	if c.Tyings, err = tyings.NewPeriodic(c.Control.Coor(), dofs, c.Control.ControlDofs(),
		c.Mesh.NodesPeriodic(), iip); err != nil {
		return nil, errors.Wrap(err, "periodic tyings")
	}
	dofs = c.Tyings.Dofs()
	procLimit := vector.WithProcLimit(ip.ProcLimit)
	if c.Vec, err = vector.NewVectorPartitionedTyings(conn, dofs, c.Tyings.Cdu, c.Tyings.Cdp, procLimit); err != nil {
		return nil, err
	}
	if c.K, err = matrix.NewMatrixPartitionedTyings(conn, dofs, c.Tyings.Cdu, c.Tyings.Cdp, procLimit); err != nil {
		return nil, err
	}
	switch ip.Solver {
	case "", "DenseLU":
	case "CG":
		c.K.SetSolver(matrix.ConjugateGradient{})
	default:
		return nil, errors.Wrapf(utils.ErrUnsupportedConfig, "solver %q, want DenseLU or CG", ip.Solver)
	}
	x := c.Vec.AllocateElemvec()
	if err = c.Vec.AsElementNode(c.Control.Coor(), x); err != nil {
		return nil, err
	}
	if c.Elem, err = element.NewQuadrature(element.Quad4, x, element.WithProcLimit(ip.ProcLimit)); err != nil {
		return nil, err
	}
	c.Mat = material.NewElastic(c.Elem.Nelem(), c.Elem.Nip(), c.Elem.Tdim())
	if err = c.setMaterials(ip); err != nil {
		return nil, err
	}
	c.Disp = c.Vec.AllocateNodevec()
	if verbose {
		ip.Print()
		fmt.Printf("nnode = %d, nelem = %d, nnu = %d, nnp = %d, nnd = %d\n",
			c.Vec.Nnode(), c.Vec.Nelem(), c.Vec.Nnu(), c.Vec.Nnp(), c.Vec.Nnd())
	}
	return
}

// setMaterials assigns the listed elements first, a material without elements takes the rest.
func (c *Periodic) setMaterials(ip *InputParameters.InputParametersPeriodic) (err error) {
	var (
		nelem    = c.Mesh.Nelem()
		assigned utils.Index
		rest     string
	)
	for _, name := range ip.MaterialNames() {
		mp := ip.Materials[name]
		if len(mp.Elements) == 0 {
			if rest != "" {
				return errors.Wrapf(utils.ErrUnsupportedConfig,
					"materials %q and %q both claim the remaining elements", rest, name)
			}
			rest = name
			continue
		}
		if err = c.Mat.SetElastic(mp.Elements, mp.K, mp.G); err != nil {
			return errors.Wrapf(err, "material %q", name)
		}
		assigned = append(assigned, mp.Elements...)
	}
	if rest != "" {
		mp := ip.Materials[rest]
		if err = c.Mat.SetElastic(assigned.Complement(nelem), mp.K, mp.G); err != nil {
			return errors.Wrapf(err, "material %q", rest)
		}
	}
	return
}

// Solve runs the Newton iterations until the relative residual drops below Tolerance.
func (c *Periodic) Solve() (err error) {
	var (
		vec  = c.Vec
		ue   = vec.AllocateElemvec()
		du   = vec.AllocateNodevec()
		fint = vec.AllocateNodevec()
		fext = vec.AllocateNodevec()
		fres = vec.AllocateNodevec()
		Fext = vec.AllocateDofvalI()
		Fint = vec.AllocateDofvalI()
		cn   = c.Control.ControlNodes()
	)
	start := time.Now()
	c.Residuals = c.Residuals[:0]
	for iter := 0; ; iter++ {
		var Eps, Sig, C, fe, Ke utils.Array
		if err = vec.AsElementNode(c.Disp, ue); err != nil {
			return
		}
		if Eps, err = c.Elem.SymGradNVector(ue); err != nil {
			return
		}
		if Sig, C, err = c.Mat.Tangent(Eps); err != nil {
			return
		}
		if fe, err = c.Elem.IntGradNDotTensor2dV(Sig); err != nil {
			return
		}
		fint.Fill(0)
		if err = vec.AssembleNode(fe, fint); err != nil {
			return
		}
		if Ke, err = c.Elem.IntGradNDotTensor4DotGradNTdV(C); err != nil {
			return
		}
		if err = c.K.Assemble(Ke); err != nil {
			return
		}
		floats.SubTo(fres.Data, fext.Data, fint.Data)

		// the residual vanishes trivially before the first update
		if iter > 0 {
			if err = vec.AsDofsI(fext, Fext, true); err != nil {
				return
			}
			if err = vec.AsDofsI(fint, Fint, true); err != nil {
				return
			}
			// reaction forces
			if err = vec.CopyP(Fint, Fext); err != nil {
				return
			}
			var (
				nfres = floats.Distance(Fext, Fint, 1)
				nfext = floats.Norm(Fext, 1)
				res   = nfres
			)
			if nfext != 0 {
				res = nfres / nfext
			}
			c.Residuals = append(c.Residuals, res)
			if c.verbose {
				fmt.Printf("iter = %d, res = %8.5e\n", iter, res)
			}
			glog.V(1).Infof("iter = %d, res = %g", iter, res)
			if res < c.Tolerance {
				break
			}
			if iter >= c.MaxIterations {
				return errors.Wrapf(utils.ErrNotConverged, "%d iterations, res = %g", iter, res)
			}
		}

		du.Fill(0)
		if iter == 0 {
			du.Set(c.Shear, cn[0], 1)
		}
		if err = c.K.Solve(fres, du); err != nil {
			return
		}
		floats.Add(c.Disp.Data, du.Data)
	}
	if c.verbose {
		fmt.Printf("Converged in %d iterations, elapsed %v\n", len(c.Residuals), time.Since(start))
	}
	return
}

// Stress evaluates the stress of the current displacement (nelem, nip, tdim, tdim).
func (c *Periodic) Stress() (Sig utils.Array, err error) {
	ue := c.Vec.AllocateElemvec()
	if err = c.Vec.AsElementNode(c.Disp, ue); err != nil {
		return
	}
	var Eps utils.Array
	if Eps, err = c.Elem.SymGradNVector(ue); err != nil {
		return
	}
	return c.Mat.Stress(Eps)
}

// AverageStress returns the volume averaged stress per element (nelem, tdim, tdim), and over the cell (tdim, tdim).
func (c *Periodic) AverageStress() (SigAv, SigMacro utils.Array, err error) {
	var Sig utils.Array
	if Sig, err = c.Stress(); err != nil {
		return
	}
	var (
		dV    = c.Elem.DVTensor2()
		nelem = c.Elem.Nelem()
		nip   = c.Elem.Nip()
		td    = c.Elem.Tdim()
		t2    = td * td
		vol   = c.Elem.DV()
		V     float64
	)
	SigAv = utils.NewArray(nelem, td, td)
	SigMacro = utils.NewArray(td, td)
	for e := 0; e < nelem; e++ {
		Se := SigAv.Sub(e)
		for k := 0; k < nip; k++ {
			for j := 0; j < t2; j++ {
				Se[j] += Sig.Sub(e, k)[j] * dV.Sub(e, k)[j]
			}
		}
		Ve := floats.Sum(vol.Sub(e))
		floats.AddScaled(SigMacro.Data, 1, Se)
		floats.Scale(1/Ve, Se)
		V += Ve
	}
	floats.Scale(1/V, SigMacro.Data)
	return
}
