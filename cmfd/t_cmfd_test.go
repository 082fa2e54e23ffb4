// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmfd

import (
	"testing"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/inp"
	"github.com/cpmech/gosl/chk"
)

// quadrantGeom builds a 2x2 lattice of unit material cells on [-1,1]²,
// giving four FSRs laid out like the coarse cells of a 2x2 mesh
func quadrantGeom(mat *inp.Material, bc string) (*geo.Geometry, error) {
	sim := new(inp.Simulation)
	sim.SetDefaults()
	sim.Bounds = inp.BoundaryData{Left: bc, Right: bc, Bottom: bc, Top: bc}
	sim.MatDb = &inp.MatDb{Materials: []*inp.Material{mat}}
	if err := sim.MatDb.Init(); err != nil {
		return nil, err
	}
	sim.Geom = inp.GeomData{
		Root: 1,
		Xmin: -1, Xmax: 1, Ymin: -1, Ymax: 1,
		Cells: []inp.CellData{
			{Id: 1, Universe: 1, Lattice: 10},
			{Id: 2, Universe: 2, Mat: mat.Name},
		},
		Lattices: []inp.LatticeData{
			{Id: 10, Nx: 2, Ny: 2, PitchX: 1, PitchY: 1, Universes: [][]int{{2, 2}, {2, 2}}},
		},
	}
	return geo.FromSim(sim)
}

// assignQuadrants registers each FSR with its own coarse cell and gives it
// a unit tracked volume
func assignQuadrants(g *geo.Geometry, m *Mesh) error {
	for iy := 0; iy < 2; iy++ {
		for ix := 0; ix < 2; ix++ {
			p := geo.Point{X: -1 + float64(ix) + 0.5, Y: -1 + float64(iy) + 0.5}
			fsr, err := g.FindFSRId(p)
			if err != nil {
				return err
			}
			cell, err := m.FindCellId(p)
			if err != nil {
				return err
			}
			m.RegisterFSR(fsr, cell, 1.0)
			g.TallyFSRVolume(fsr, 1.0)
		}
	}
	return m.FinalizeFSRs()
}

func Test_cmfd01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cmfd01. mesh layout, cell lookup and grid crossings")

	mod := &inp.Material{Name: "mod", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.5}, SigS: []float64{0.5}}
	g, err := quadrantGeom(mod, inp.BcReflective)
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	m, err := NewMesh(g, 2, 2)
	if err != nil {
		tst.Errorf("mesh failed:\n%v", err)
		return
	}
	chk.IntAssert(m.NumCells(), 4)
	chk.IntAssert(m.NumSurfaces(), 16)
	chk.Float64(tst, "cell width", 1e-15, m.CellWidth(), 1.0)

	// quadrant lookup: bottom-left is cell 0, top-right is cell 3
	c, err := m.FindCellId(geo.Point{X: -0.5, Y: -0.5})
	if err != nil {
		tst.Errorf("%v", err)
		return
	}
	chk.IntAssert(c, 0)
	c, _ = m.FindCellId(geo.Point{X: 0.5, Y: 0.5})
	chk.IntAssert(c, 3)

	_, err = m.FindCellId(geo.Point{X: 2, Y: 0})
	if !ers.IsGeometry(err) {
		tst.Errorf("expected geometry error out of bounds; got %v", err)
	}

	// the interior vertical line x=0 is one cell width from the left half
	d := m.DistanceToGridLine(geo.Point{X: -0.5, Y: -0.5}, 0.0)
	chk.Float64(tst, "distance to grid line", 1e-12, d, 0.5)

	// crossing x=0 rightwards exits cell 0 through its right surface
	s := m.CrossingSurface(geo.Point{X: 0, Y: -0.5}, 1, 0)
	chk.IntAssert(s, 0*4+SideRight)

	// flux lookups before a solve are usage errors
	if _, err = m.Flux(0, 0); !ers.IsUsage(err) {
		tst.Errorf("expected usage error before solve; got %v", err)
	}
}

func Test_cmfd02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cmfd02. fixed-source balance on a uniform absorber")

	mod := &inp.Material{Name: "mod", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.5}, SigS: []float64{0.5}}
	g, err := quadrantGeom(mod, inp.BcReflective)
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	m, _ := NewMesh(g, 2, 2)
	if err = assignQuadrants(g, m); err != nil {
		tst.Errorf("assignment failed:\n%v", err)
		return
	}

	// uniform unit flux and unit source density; the balance gives
	// φ = q/σa = 2 in every cell
	flux := []float64{1, 1, 1, 1}
	src := []float64{1, 1, 1, 1}
	m.ZeroCurrents()
	if _, err = m.Accelerate(flux, src, inp.SolveFixedSource, 1.0, 1.0, 1e12); err != nil {
		tst.Errorf("acceleration failed:\n%v", err)
		return
	}
	for c := 0; c < 4; c++ {
		phi, err := m.Flux(c, 0)
		if err != nil {
			tst.Errorf("%v", err)
			return
		}
		chk.Float64(tst, "coarse flux", 1e-6, phi, 2.0)
	}

	// with relax=1 the prolongation carries the full ratio
	chk.Array(tst, "prolongated flux", 1e-6, flux, []float64{2, 2, 2, 2})
}

func Test_cmfd03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cmfd03. eigenvalue of a uniform fissile medium")

	fuel := &inp.Material{Name: "fuel", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.4}, SigS: []float64{0.6},
		SigF: []float64{0.2}, NuSigF: []float64{0.5}, Chi: []float64{1.0}}
	g, err := quadrantGeom(fuel, inp.BcReflective)
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	m, _ := NewMesh(g, 2, 2)
	if err = assignQuadrants(g, m); err != nil {
		tst.Errorf("assignment failed:\n%v", err)
		return
	}

	flux := []float64{1, 1, 1, 1}
	m.ZeroCurrents()
	k, err := m.Accelerate(flux, nil, inp.SolveEigenvalue, 1.0, 0.6, 1e12)
	if err != nil {
		tst.Errorf("acceleration failed:\n%v", err)
		return
	}
	// infinite medium: k = νσf/σa
	chk.Float64(tst, "keff", 1e-8, k, 1.25)
	chk.Float64(tst, "mesh keff", 1e-8, m.Keff(), 1.25)
}

func Test_cmfd04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cmfd04. singular coarse system is reported")

	// pure scatterer with reflective boundaries: the loss matrix is singular
	sct := &inp.Material{Name: "sct", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.0}, SigS: []float64{1.0}}
	g, err := quadrantGeom(sct, inp.BcReflective)
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	m, _ := NewMesh(g, 2, 2)
	if err = assignQuadrants(g, m); err != nil {
		tst.Errorf("assignment failed:\n%v", err)
		return
	}

	flux := []float64{1, 1, 1, 1}
	src := []float64{1, 1, 1, 1}
	m.ZeroCurrents()
	_, err = m.Accelerate(flux, src, inp.SolveFixedSource, 1.0, 1.0, 1e12)
	if !ers.IsNumerical(err) {
		tst.Errorf("expected numerical error for a singular system; got %v", err)
	}
}
