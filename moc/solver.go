// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package moc

import (
	"math"
	"runtime"
	"sync/atomic"

	"github.com/cpmech/gomoc/cmfd"
	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/inp"
	"github.com/cpmech/gomoc/trk"
	"github.com/cpmech/gosl/io"
)

const fourPi = 4.0 * math.Pi

// Solver drives the outer source iteration: sweep the tracks, update the
// flat sources, optionally accelerate on the coarse mesh, and repeat until
// the source distribution stabilizes
type Solver struct {
	Verbose bool // log one line per outer iteration

	geom *geo.Geometry
	gen  *trk.Generator
	mesh *cmfd.Mesh // nil when acceleration is off
	quad *PolarQuad
	exp  *ExpEvaluator

	mode     string
	tol      float64
	nmaxIt   int
	nconvIt  int
	nworkers int
	cadence  int
	relax    float64
	condMax  float64

	ng, nfsr int
	tracks   []*trk.Track
	mats     []*inp.Material // FSR material cache
	vols     []float64       // FSR tracked volumes

	flux   []float64 // [nfsr*ng] scalar flux
	redSrc []float64 // [nfsr*ng] reduced source q = Q/(4π Σt)
	extSrc []float64 // [nfsr*ng] external source density; nil in eigenvalue mode

	// angular flux at the track entry points, double buffered so the
	// reflective hand-off between tracks never races during a sweep
	boundary [2][]float64
	cur      int // read buffer index

	keff   float64
	niter  int
	solved bool
	abort  int32
}

// NewSolver builds a transport solver from a segmented track generator.
// mesh may be nil when the coarse acceleration is disabled in sim
func NewSolver(g *geo.Geometry, gen *trk.Generator, mesh *cmfd.Mesh, sim *inp.Simulation) (*Solver, error) {
	if !gen.ContainsSegments() {
		return nil, ers.UsageErr("solver requires segmented tracks")
	}
	if sim.Cmfd.Active && mesh == nil {
		return nil, ers.UsageErr("coarse acceleration is active but no coarse mesh was attached")
	}
	quad, err := NewPolarQuad(sim.Solver.Npolar)
	if err != nil {
		return nil, err
	}
	tracks, err := gen.Tracks()
	if err != nil {
		return nil, err
	}

	o := &Solver{
		geom:     g,
		gen:      gen,
		quad:     quad,
		exp:      NewExpEvaluator(quad, sim.Solver.ExpTable),
		mode:     sim.Solver.Type,
		tol:      sim.Solver.Tol,
		nmaxIt:   sim.Solver.NmaxIt,
		nconvIt:  sim.Solver.NconvIt,
		nworkers: sim.Solver.Nworkers,
		cadence:  sim.Cmfd.Cadence,
		relax:    sim.Cmfd.Relax,
		condMax:  sim.Cmfd.CondMax,
		ng:       g.NumEnergyGroups(),
		nfsr:     g.NumFSRs(),
		tracks:   tracks,
		keff:     1.0,
	}
	if sim.Cmfd.Active {
		o.mesh = mesh
	}
	if o.nworkers < 1 {
		o.nworkers = runtime.NumCPU()
	}

	// cache per-FSR materials and volumes; every FSR must have been
	// crossed by at least one track and carry a positive total
	o.mats = make([]*inp.Material, o.nfsr)
	o.vols = make([]float64, o.nfsr)
	for r := 0; r < o.nfsr; r++ {
		m, err := g.FSRMaterial(r)
		if err != nil {
			return nil, err
		}
		o.mats[r] = m
		o.vols[r] = g.FSRVolume(r)
		if !(o.vols[r] > 0) {
			return nil, ers.GeomErr("flat source region %d has zero tracked volume; refine the track laydown", r)
		}
		for gi := 0; gi < o.ng; gi++ {
			if !(m.SigT[gi] > 0) {
				return nil, ers.NumErr("material %q has non-positive total cross section in group %d", m.Name, gi)
			}
		}
	}

	o.flux = make([]float64, o.nfsr*o.ng)
	o.redSrc = make([]float64, o.nfsr*o.ng)
	nb := len(tracks) * 2 * quad.N * o.ng
	o.boundary[0] = make([]float64, nb)
	o.boundary[1] = make([]float64, nb)

	if o.mode == inp.SolveFixedSource {
		o.extSrc = make([]float64, o.nfsr*o.ng)
		for r := 0; r < o.nfsr; r++ {
			q := sim.Solver.Source
			if v, ok := sim.Solver.SourceMap[o.mats[r].Name]; ok {
				q = v
			}
			for gi := 0; gi < o.ng; gi++ {
				o.extSrc[r*o.ng+gi] = q
			}
		}
	}
	return o, nil
}

// Interrupt asks the solver to stop; the current sweep finishes and
// ConvergeSource returns an abort error at the next iteration boundary.
// Safe to call from any goroutine
func (o *Solver) Interrupt() { atomic.StoreInt32(&o.abort, 1) }

// ConvergeSource runs the outer iteration until the source distribution is
// below the tolerance for the required number of consecutive iterations
func (o *Solver) ConvergeSource() (err error) {
	o.solved = false
	o.niter = 0
	o.keff = 1.0
	for i := range o.flux {
		o.flux[i] = 1.0
	}
	for b := 0; b < 2; b++ {
		for i := range o.boundary[b] {
			o.boundary[b][i] = 0.0
		}
	}

	oldSrc := make([]float64, len(o.redSrc))
	res := math.Inf(1)
	consec := 0

	for it := 1; it <= o.nmaxIt; it++ {
		if atomic.CompareAndSwapInt32(&o.abort, 1, 0) {
			// the interrupt is consumed so a later ConvergeSource starts afresh
			return ers.AbortErr("source iteration interrupted at iteration %d", it)
		}

		o.updateSource()
		if it > 1 {
			res = sourceResidual(oldSrc, o.redSrc)
		}
		copy(oldSrc, o.redSrc)

		if o.mesh != nil {
			o.mesh.ZeroCurrents()
		}
		leak := o.sweep()

		if o.mode == inp.SolveEigenvalue {
			prod, absorb := o.rates()
			o.keff = prod / (absorb + leak)
		}

		if o.mesh != nil && it%o.cadence == 0 {
			knew, err := o.mesh.Accelerate(o.flux, o.extSrc, o.mode, o.keff, o.relax, o.condMax)
			if err != nil {
				return err
			}
			if o.mode == inp.SolveEigenvalue {
				o.keff = knew
			}
		}

		if o.mode == inp.SolveEigenvalue {
			o.normalize()
		}
		o.niter = it

		if o.Verbose {
			io.Pf("it=%4d  keff=%.6f  res=%.4e\n", it, o.keff, res)
		}

		if it > 1 && res < o.tol {
			consec++
			if consec >= o.nconvIt {
				o.solved = true
				return nil
			}
		} else {
			consec = 0
		}
	}
	return ers.NumErr("source iteration did not converge within %d iterations; residual %g above tolerance %g", o.nmaxIt, res, o.tol)
}

// updateSource recomputes the reduced flat sources from the current flux:
// fission (scaled by 1/keff in eigenvalue mode), in-scattering, and the
// external source, all divided by 4π Σt
func (o *Solver) updateSource() {
	ng := o.ng
	for r := 0; r < o.nfsr; r++ {
		m := o.mats[r]
		fis := 0.0
		for gp := 0; gp < ng; gp++ {
			fis += m.NuSigF[gp] * o.flux[r*ng+gp]
		}
		if o.mode == inp.SolveEigenvalue {
			fis /= o.keff
		}
		for g := 0; g < ng; g++ {
			q := m.Chi[g] * fis
			for gp := 0; gp < ng; gp++ {
				q += m.Scat(gp, g) * o.flux[r*ng+gp]
			}
			if o.extSrc != nil {
				q += o.extSrc[r*ng+g]
			}
			o.redSrc[r*ng+g] = q / (fourPi * m.SigT[g])
		}
	}
}

// rates returns the volume-integrated fission production and absorption
func (o *Solver) rates() (prod, absorb float64) {
	ng := o.ng
	for r := 0; r < o.nfsr; r++ {
		m := o.mats[r]
		for g := 0; g < ng; g++ {
			prod += m.NuSigF[g] * o.flux[r*ng+g] * o.vols[r]
			absorb += m.SigA[g] * o.flux[r*ng+g] * o.vols[r]
		}
	}
	return
}

// normalize rescales the flux and the boundary angular fluxes so the total
// fission production equals the tracked volume, pinning the free scale of
// the eigenvalue problem
func (o *Solver) normalize() {
	prod, _ := o.rates()
	if !(prod > 0) {
		return
	}
	tot := 0.0
	for r := 0; r < o.nfsr; r++ {
		tot += o.vols[r]
	}
	f := tot / prod
	for i := range o.flux {
		o.flux[i] *= f
	}
	for b := 0; b < 2; b++ {
		for i := range o.boundary[b] {
			o.boundary[b][i] *= f
		}
	}
}

// sourceResidual is the RMS relative change of the reduced sources
func sourceResidual(old, cur []float64) float64 {
	sum := 0.0
	n := 0
	for i := range cur {
		if cur[i] > 0 {
			d := (cur[i] - old[i]) / cur[i]
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return math.Sqrt(sum / float64(n))
}

// Keff returns the latest eigenvalue estimate (1 in fixed-source mode)
func (o *Solver) Keff() float64 { return o.keff }

// NumIterations returns the number of outer iterations performed
func (o *Solver) NumIterations() int { return o.niter }

// SolveType returns the solve mode name
func (o *Solver) SolveType() string { return o.mode }

// NumGroups returns the number of energy groups
func (o *Solver) NumGroups() int { return o.ng }

// FSRScalarFlux returns the converged scalar flux of one region and group
func (o *Solver) FSRScalarFlux(fsr, group int) (float64, error) {
	if !o.solved {
		return 0, ers.UsageErr("scalar flux requested before the source iteration converged")
	}
	if fsr < 0 || fsr >= o.nfsr {
		return 0, ers.UsageErr("flat source region id out of range: %d not in [0, %d)", fsr, o.nfsr)
	}
	if group < 0 || group >= o.ng {
		return 0, ers.UsageErr("energy group out of range: %d not in [0, %d)", group, o.ng)
	}
	return o.flux[fsr*o.ng+group], nil
}

// FSRSource returns the converged reduced source of one region and group
func (o *Solver) FSRSource(fsr, group int) (float64, error) {
	if !o.solved {
		return 0, ers.UsageErr("source requested before the source iteration converged")
	}
	if fsr < 0 || fsr >= o.nfsr {
		return 0, ers.UsageErr("flat source region id out of range: %d not in [0, %d)", fsr, o.nfsr)
	}
	if group < 0 || group >= o.ng {
		return 0, ers.UsageErr("energy group out of range: %d not in [0, %d)", group, o.ng)
	}
	return o.redSrc[fsr*o.ng+group], nil
}
