// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gomoc solves 2D neutron transport eigenvalue and fixed-source problems
// with the method of characteristics
package main

import (
	"github.com/cpmech/gomoc/cmfd"
	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/inp"
	"github.com/cpmech/gomoc/moc"
	"github.com/cpmech/gomoc/trk"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
			io.Pf("See location of error below:\n")
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
		}
	}()

	// read input parameters
	simfn, _ := io.ArgToFilename(0, "inp/data/square", ".sim", true)
	verbose := io.ArgToBool(1, true)

	// message
	if verbose {
		io.PfWhite("\nGomoc -- 2D Method of Characteristics Neutron Transport\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"simulation filename", "simfn", simfn,
			"show convergence log", "verbose", verbose,
		))
	}

	// simulation deck
	sim := inp.ReadSim(simfn)
	err := sim.Validate()
	if err != nil {
		chk.Panic("invalid simulation deck:\n%v", err)
	}

	// geometry
	g, err := geo.FromSim(sim)
	if err != nil {
		chk.Panic("cannot build geometry:\n%v", err)
	}
	if verbose {
		io.Pf("geometry: %d flat source regions, %d energy groups\n", g.NumFSRs(), g.NumEnergyGroups())
	}

	// coarse mesh
	var mesh *cmfd.Mesh
	if sim.Cmfd.Active {
		mesh, err = cmfd.NewMesh(g, sim.Cmfd.Nx, sim.Cmfd.Ny)
		if err != nil {
			chk.Panic("cannot build coarse mesh:\n%v", err)
		}
	}

	// tracks and segments
	gen, err := trk.NewGenerator(g, sim.Track.Nazim, sim.Track.Spacing)
	if err != nil {
		chk.Panic("cannot prepare track generator:\n%v", err)
	}
	if mesh != nil {
		gen.SetCmfdMesh(mesh)
	}
	err = gen.GenerateTracks()
	if err != nil {
		chk.Panic("track generation failed:\n%v", err)
	}
	err = gen.SegmentizeTracks()
	if err != nil {
		chk.Panic("segmentation failed:\n%v", err)
	}
	if verbose {
		ntracks, _ := gen.NumTracks()
		nsegs, _ := gen.NumSegments()
		io.Pf("tracks: %d tracks, %d segments\n\n", ntracks, nsegs)
	}

	// solve
	sol, err := moc.NewSolver(g, gen, mesh, sim)
	if err != nil {
		chk.Panic("cannot allocate solver:\n%v", err)
	}
	sol.Verbose = verbose
	err = sol.ConvergeSource()
	if err != nil {
		chk.Panic("source iteration failed:\n%v", err)
	}

	// summary
	io.Pf("\nconverged after %d iterations\n", sol.NumIterations())
	if sim.Solver.Type == inp.SolveEigenvalue {
		io.Pforan("keff = %.6f\n", sol.Keff())
	}
}
