// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package moc

import (
	"math"
	"testing"

	"github.com/cpmech/gomoc/cmfd"
	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/inp"
	"github.com/cpmech/gomoc/trk"
	"github.com/cpmech/gosl/chk"
)

// uniformSim builds a deck with an n by n lattice of cells of one material
// filling [-1,1]². Solver controls are left for the caller to adjust
func uniformSim(mat *inp.Material, n int) *inp.Simulation {
	sim := new(inp.Simulation)
	sim.SetDefaults()
	sim.Track.Nazim = 8
	sim.Track.Spacing = 0.1
	sim.Solver.Tol = 1e-7
	sim.MatDb = &inp.MatDb{Materials: []*inp.Material{mat}}
	if err := sim.MatDb.Init(); err != nil {
		chk.Panic("cannot init materials: %v", err)
	}
	rows := make([][]int, n)
	for j := range rows {
		rows[j] = make([]int, n)
		for i := range rows[j] {
			rows[j][i] = 2
		}
	}
	sim.Geom = inp.GeomData{
		Root: 1,
		Xmin: -1, Xmax: 1, Ymin: -1, Ymax: 1,
		Cells: []inp.CellData{
			{Id: 1, Universe: 1, Lattice: 10},
			{Id: 2, Universe: 2, Mat: mat.Name},
		},
		Lattices: []inp.LatticeData{
			{Id: 10, Nx: n, Ny: n, PitchX: 2.0 / float64(n), PitchY: 2.0 / float64(n), Universes: rows},
		},
	}
	return sim
}

func fissileMat() *inp.Material {
	return &inp.Material{Name: "fuel", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.4}, SigS: []float64{0.6},
		SigF: []float64{0.2}, NuSigF: []float64{0.5}, Chi: []float64{1.0}}
}

// trkGen generates and segmentizes the tracks for a test case
func trkGen(g *geo.Geometry, sim *inp.Simulation, mesh *cmfd.Mesh) (*trk.Generator, error) {
	gen, err := trk.NewGenerator(g, sim.Track.Nazim, sim.Track.Spacing)
	if err != nil {
		return nil, err
	}
	if mesh != nil {
		gen.SetCmfdMesh(mesh)
	}
	if err = gen.GenerateTracks(); err != nil {
		return nil, err
	}
	if err = gen.SegmentizeTracks(); err != nil {
		return nil, err
	}
	return gen, nil
}

// pipeline builds geometry, optional coarse mesh, tracks and the solver
func pipeline(sim *inp.Simulation) (*Solver, *geo.Geometry, error) {
	g, err := geo.FromSim(sim)
	if err != nil {
		return nil, nil, err
	}
	var mesh *cmfd.Mesh
	if sim.Cmfd.Active {
		mesh, err = cmfd.NewMesh(g, sim.Cmfd.Nx, sim.Cmfd.Ny)
		if err != nil {
			return nil, nil, err
		}
	}
	gen, err := trkGen(g, sim, mesh)
	if err != nil {
		return nil, nil, err
	}
	sol, err := NewSolver(g, gen, mesh, sim)
	if err != nil {
		return nil, nil, err
	}
	return sol, g, nil
}

func Test_solver01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver01. flat source in a uniform absorber: φ = q/σa")

	mod := &inp.Material{Name: "mod", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.5}, SigS: []float64{0.5}}
	sim := uniformSim(mod, 4)
	sim.Solver.Type = inp.SolveFixedSource
	sim.Solver.Source = 1.0
	sim.Solver.NconvIt = 2

	sol, g, err := pipeline(sim)
	if err != nil {
		tst.Errorf("setup failed:\n%v", err)
		return
	}

	// accessors must refuse before convergence
	if _, err = sol.FSRScalarFlux(0, 0); !ers.IsUsage(err) {
		tst.Errorf("expected usage error before solve; got %v", err)
	}

	if err = sol.ConvergeSource(); err != nil {
		tst.Errorf("iteration failed:\n%v", err)
		return
	}
	if sol.NumIterations() < 2 {
		tst.Errorf("suspiciously few iterations: %d", sol.NumIterations())
	}

	// uniform medium with reflective boundaries: φ = q/σa = 2 everywhere
	for r := 0; r < g.NumFSRs(); r++ {
		phi, err := sol.FSRScalarFlux(r, 0)
		if err != nil {
			tst.Errorf("%v", err)
			return
		}
		chk.Float64(tst, "flux", 0.02, phi, 2.0)
	}

	// the reduced source of the converged flat problem is q_tot/(4π σt)
	q, err := sol.FSRSource(0, 0)
	if err != nil {
		tst.Errorf("%v", err)
		return
	}
	chk.Float64(tst, "reduced source", 1e-3, q, (1.0+0.5*2.0)/(4.0*math.Pi))
}

func Test_solver02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver02. infinite-medium eigenvalue: k = νσf/σa")

	sim := uniformSim(fissileMat(), 2)
	sol, _, err := pipeline(sim)
	if err != nil {
		tst.Errorf("setup failed:\n%v", err)
		return
	}
	if err = sol.ConvergeSource(); err != nil {
		tst.Errorf("iteration failed:\n%v", err)
		return
	}
	chk.Float64(tst, "keff", 1e-3, sol.Keff(), 1.25)
	if sol.SolveType() != inp.SolveEigenvalue {
		tst.Errorf("wrong solve type %q", sol.SolveType())
	}
}

func Test_solver03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver03. coarse acceleration reproduces the eigenvalue")

	sim := uniformSim(fissileMat(), 2)
	sim.Cmfd.Active = true
	sim.Cmfd.Nx = 2
	sim.Cmfd.Ny = 2

	sol, _, err := pipeline(sim)
	if err != nil {
		tst.Errorf("setup failed:\n%v", err)
		return
	}
	if err = sol.ConvergeSource(); err != nil {
		tst.Errorf("iteration failed:\n%v", err)
		return
	}
	chk.Float64(tst, "keff", 1e-3, sol.Keff(), 1.25)
}

func Test_solver04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver04. vacuum boundaries leak: k below the infinite medium")

	sim := uniformSim(fissileMat(), 2)
	sim.Bounds = inp.BoundaryData{Left: inp.BcVacuum, Right: inp.BcVacuum, Bottom: inp.BcVacuum, Top: inp.BcVacuum}

	sol, g, err := pipeline(sim)
	if err != nil {
		tst.Errorf("setup failed:\n%v", err)
		return
	}
	if err = sol.ConvergeSource(); err != nil {
		tst.Errorf("iteration failed:\n%v", err)
		return
	}
	if !(sol.Keff() < 1.2) {
		tst.Errorf("leaky system must be well below k-infinity; got %g", sol.Keff())
	}
	if !(sol.Keff() > 0) {
		tst.Errorf("eigenvalue must be positive; got %g", sol.Keff())
	}
	for r := 0; r < g.NumFSRs(); r++ {
		phi, _ := sol.FSRScalarFlux(r, 0)
		if !(phi > 0) || math.IsNaN(phi) {
			tst.Errorf("flux of region %d is not positive: %g", r, phi)
			return
		}
	}
}

func Test_solver05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver05. failure modes: stagnation and interruption")

	mod := &inp.Material{Name: "mod", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.5}, SigS: []float64{0.5}}
	sim := uniformSim(mod, 2)
	sim.Solver.Type = inp.SolveFixedSource
	sim.Solver.Source = 1.0
	sim.Solver.NmaxIt = 1

	sol, _, err := pipeline(sim)
	if err != nil {
		tst.Errorf("setup failed:\n%v", err)
		return
	}
	if err = sol.ConvergeSource(); !ers.IsNumerical(err) {
		tst.Errorf("expected numerical error when the iteration budget runs out; got %v", err)
	}

	sim.Solver.NmaxIt = 1000
	sol, _, err = pipeline(sim)
	if err != nil {
		tst.Errorf("setup failed:\n%v", err)
		return
	}
	sol.Interrupt()
	if err = sol.ConvergeSource(); !ers.IsAborted(err) {
		tst.Errorf("expected abort error after Interrupt; got %v", err)
	}

	// the interrupt is consumed: the same solver converges on the next call
	if err = sol.ConvergeSource(); err != nil {
		tst.Errorf("solve after a consumed interrupt failed:\n%v", err)
		return
	}
	phi, err := sol.FSRScalarFlux(0, 0)
	if err != nil {
		tst.Errorf("%v", err)
		return
	}
	chk.Float64(tst, "flux after restart", 0.02, phi, 2.0)
}
