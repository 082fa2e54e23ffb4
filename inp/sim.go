// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file:
// the characteristic-track parameters, the transport solver controls, the
// coarse-mesh acceleration controls, the boundary conditions and the
// constructive-solid-geometry definition, plus the materials database read
// from a companion (.mat) JSON file
package inp

import (
	"encoding/json"
	"path/filepath"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// solver types
const (
	SolveEigenvalue  = "eigenvalue"  // fission-source (criticality) problem
	SolveFixedSource = "fixedsource" // fixed external source problem
)

// boundary condition names
const (
	BcReflective = "reflective"
	BcVacuum     = "vacuum"
)

// Data holds global data for simulations
type Data struct {
	Desc    string `json:"desc"`    // description of simulation
	Matfile string `json:"matfile"` // materials (.mat) file path, relative to the .sim file
}

// TrackData holds parameters for the characteristic track generator
type TrackData struct {
	Nazim   int     `json:"nazim"`   // number of azimuthal angles over (0, 2π); must be a multiple of 4
	Spacing float64 `json:"spacing"` // nominal track spacing [cm]; must be > 0
}

// SolverData holds transport solver data
type SolverData struct {
	Type     string  `json:"type"`     // "eigenvalue" or "fixedsource"
	Tol      float64 `json:"tol"`      // relative source convergence tolerance
	NmaxIt   int     `json:"nmaxit"`   // maximum number of outer (sweep) iterations
	NconvIt  int     `json:"nconvit"`  // consecutive iterations below Tol required for convergence
	Npolar   int     `json:"npolar"`   // number of polar angles (1, 2 or 3)
	Nworkers int     `json:"nworkers"` // number of sweep workers; 0 ⇒ all CPUs
	ExpTable bool    `json:"exptable"` // use interpolated exponential tables during sweeps
	Source   float64 `json:"source"`   // uniform external source density [n/cm³/s] (fixedsource type)

	// per-material external source densities overriding the uniform value (fixedsource type)
	SourceMap map[string]float64 `json:"sourcemap"`
}

// CmfdData holds parameters for the coarse-mesh finite-difference acceleration
type CmfdData struct {
	Active  bool    `json:"active"`  // enable the acceleration
	Nx      int     `json:"nx"`      // number of coarse cells along x
	Ny      int     `json:"ny"`      // number of coarse cells along y
	Cadence int     `json:"cadence"` // run the coarse solve every Cadence outer iterations
	Relax   float64 `json:"relax"`   // prolongation under-relaxation factor in (0, 1]
	CondMax float64 `json:"condmax"` // condition number limit for the coarse system
}

// BoundaryData holds the boundary condition of each edge of the bounding box
type BoundaryData struct {
	Left   string `json:"left"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Top    string `json:"top"`
}

// SurfaceData defines one quadratic surface of the CSG tree
type SurfaceData struct {
	Id   int     `json:"id"`   // unique surface id
	Type string  `json:"type"` // "xplane", "yplane" or "circle"
	X    float64 `json:"x"`    // plane abscissa or circle centre x
	Y    float64 `json:"y"`    // plane ordinate or circle centre y
	R    float64 `json:"r"`    // circle radius
}

// CellData defines one cell: a region bounded by surface half-spaces and
// filled by a material, another universe, or a lattice
type CellData struct {
	Id       int    `json:"id"`       // unique cell id
	Universe int    `json:"universe"` // id of the universe this cell belongs to
	Mat      string `json:"mat"`      // fill material name; "" if filled by universe/lattice
	Fill     int    `json:"fill"`     // id of filling universe (positive); 0 if none
	Lattice  int    `json:"lattice"`  // id of filling lattice (positive); 0 if none
	Surfs    []int  `json:"surfs"`    // signed surface ids: +id ⇒ positive half-space, -id ⇒ negative
}

// LatticeData defines a regular rectangular arrangement of universes.
// Universes are listed row-major with row 0 at the TOP of the lattice,
// matching the way lattices are written down in input decks
type LatticeData struct {
	Id        int     `json:"id"`        // unique lattice id
	Nx        int     `json:"nx"`        // number of lattice cells along x
	Ny        int     `json:"ny"`        // number of lattice cells along y
	PitchX    float64 `json:"pitchx"`    // lattice pitch along x [cm]
	PitchY    float64 `json:"pitchy"`    // lattice pitch along y [cm]
	Universes [][]int `json:"universes"` // [ny][nx] universe ids, row 0 on top
}

// GeomData holds the CSG geometry definition and the global bounding box
type GeomData struct {
	Root     int           `json:"root"` // id of the root universe
	Xmin     float64       `json:"xmin"`
	Xmax     float64       `json:"xmax"`
	Ymin     float64       `json:"ymin"`
	Ymax     float64       `json:"ymax"`
	Surfaces []SurfaceData `json:"surfaces"`
	Cells    []CellData    `json:"cells"`
	Lattices []LatticeData `json:"lattices"`
}

// Simulation holds all simulation data read from a .sim file
type Simulation struct {

	// input
	Data   Data         `json:"data"`
	Track  TrackData    `json:"track"`
	Solver SolverData   `json:"solver"`
	Cmfd   CmfdData     `json:"cmfd"`
	Bounds BoundaryData `json:"bounds"`
	Geom   GeomData     `json:"geom"`

	// derived
	MatDb *MatDb // materials database read from Data.Matfile
	DirIn string // directory of the .sim file
}

// ReadSim reads a simulation input file and its materials database. It
// panics on unreadable or undecodable files since there is no sensible way
// to proceed; malformed values are reported by Validate instead
func ReadSim(simfilepath string) (o *Simulation) {

	// read file; io.ReadFile panics on an unreadable path, the fatal path here
	b := io.ReadFile(simfilepath)

	// decode
	o = new(Simulation)
	o.SetDefaults()
	err := json.Unmarshal(b, o)
	if err != nil {
		chk.Panic("ReadSim: cannot unmarshal simulation file %q:\n%v", simfilepath, err)
	}
	o.DirIn = filepath.Dir(simfilepath)

	// materials
	if o.Data.Matfile == "" {
		chk.Panic("ReadSim: simulation file %q does not name a materials file", simfilepath)
	}
	o.MatDb, err = ReadMat(filepath.Join(o.DirIn, o.Data.Matfile))
	if err != nil {
		chk.Panic("ReadSim: loading materials failed:\n%v", err)
	}
	return
}

// SetDefaults fills control parameters that may be omitted from the deck
func (o *Simulation) SetDefaults() {
	o.Solver.Type = SolveEigenvalue
	o.Solver.Tol = 1e-5
	o.Solver.NmaxIt = 1000
	o.Solver.NconvIt = 1
	o.Solver.Npolar = 3
	o.Cmfd.Cadence = 1
	o.Cmfd.Relax = 0.6
	o.Cmfd.CondMax = 1e12
	o.Bounds.Left = BcReflective
	o.Bounds.Right = BcReflective
	o.Bounds.Bottom = BcReflective
	o.Bounds.Top = BcReflective
}

// Validate checks control parameters, reporting the offending value and the
// expected range. The geometry definition itself is checked when the CSG
// tree is built
func (o *Simulation) Validate() error {
	if o.Track.Nazim < 4 || o.Track.Nazim%4 != 0 {
		return ers.UsageErr("number of azimuthal angles must be a multiple of 4; got %d", o.Track.Nazim)
	}
	if !(o.Track.Spacing > 0) {
		return ers.UsageErr("track spacing must be > 0; got %g", o.Track.Spacing)
	}
	if o.Solver.Type != SolveEigenvalue && o.Solver.Type != SolveFixedSource {
		return ers.UsageErr("solver type must be %q or %q; got %q", SolveEigenvalue, SolveFixedSource, o.Solver.Type)
	}
	if !(o.Solver.Tol > 0) {
		return ers.UsageErr("convergence tolerance must be > 0; got %g", o.Solver.Tol)
	}
	if o.Solver.NmaxIt < 1 {
		return ers.UsageErr("maximum number of iterations must be ≥ 1; got %d", o.Solver.NmaxIt)
	}
	if o.Solver.NconvIt < 1 {
		return ers.UsageErr("number of consecutive converged iterations must be ≥ 1; got %d", o.Solver.NconvIt)
	}
	if o.Solver.Npolar < 1 || o.Solver.Npolar > 3 {
		return ers.UsageErr("number of polar angles must be 1, 2 or 3; got %d", o.Solver.Npolar)
	}
	if o.Solver.Nworkers < 0 {
		return ers.UsageErr("number of workers must be ≥ 0; got %d", o.Solver.Nworkers)
	}
	if o.Cmfd.Active {
		if o.Cmfd.Nx < 1 || o.Cmfd.Ny < 1 {
			return ers.UsageErr("coarse mesh dimensions must be ≥ 1; got %d x %d", o.Cmfd.Nx, o.Cmfd.Ny)
		}
		if o.Cmfd.Cadence < 1 {
			return ers.UsageErr("coarse solve cadence must be ≥ 1; got %d", o.Cmfd.Cadence)
		}
		if !(o.Cmfd.Relax > 0 && o.Cmfd.Relax <= 1) {
			return ers.UsageErr("prolongation relaxation factor must be in (0,1]; got %g", o.Cmfd.Relax)
		}
		if !(o.Cmfd.CondMax > 1) {
			return ers.UsageErr("coarse system condition limit must be > 1; got %g", o.Cmfd.CondMax)
		}
	}
	for _, bc := range []string{o.Bounds.Left, o.Bounds.Right, o.Bounds.Bottom, o.Bounds.Top} {
		if bc != BcReflective && bc != BcVacuum {
			return ers.UsageErr("boundary condition must be %q or %q; got %q", BcReflective, BcVacuum, bc)
		}
	}
	if !(o.Geom.Xmax > o.Geom.Xmin) || !(o.Geom.Ymax > o.Geom.Ymin) {
		return ers.UsageErr("bounding box is degenerate: x=[%g,%g] y=[%g,%g]", o.Geom.Xmin, o.Geom.Xmax, o.Geom.Ymin, o.Geom.Ymax)
	}
	return nil
}
