// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"testing"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gosl/chk"
)

func Test_sim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01. read square deck")

	sim := ReadSim("data/square.sim")
	if err := sim.Validate(); err != nil {
		tst.Errorf("validation failed:\n%v", err)
		return
	}

	chk.IntAssert(sim.Track.Nazim, 4)
	chk.Float64(tst, "spacing", 1e-17, sim.Track.Spacing, 0.1)
	if sim.Solver.Type != SolveFixedSource {
		tst.Errorf("wrong solver type: %q", sim.Solver.Type)
	}
	chk.Float64(tst, "source", 1e-17, sim.Solver.Source, 1.0)

	// defaults kept where the deck is silent
	chk.IntAssert(sim.Solver.NmaxIt, 1000)
	chk.IntAssert(sim.Solver.Npolar, 3)
	if sim.Bounds.Left != BcReflective {
		tst.Errorf("wrong default boundary condition: %q", sim.Bounds.Left)
	}

	// materials
	chk.IntAssert(sim.MatDb.Ngroups(), 1)
	mod := sim.MatDb.Get("mod")
	if mod == nil {
		tst.Errorf("material 'mod' not found")
		return
	}
	chk.Float64(tst, "sigt", 1e-17, mod.SigT[0], 1.0)
	chk.Float64(tst, "siga", 1e-17, mod.SigA[0], 0.5)
	if mod.Fissile {
		tst.Errorf("'mod' must not be fissile")
	}
}

func Test_sim02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim02. read pincell deck")

	sim := ReadSim("data/pincell.sim")
	if err := sim.Validate(); err != nil {
		tst.Errorf("validation failed:\n%v", err)
		return
	}

	chk.IntAssert(sim.Track.Nazim, 8)
	if !sim.Cmfd.Active {
		tst.Errorf("coarse acceleration must be active")
	}
	chk.IntAssert(sim.Cmfd.Nx, 2)
	chk.Float64(tst, "relax", 1e-17, sim.Cmfd.Relax, 0.6)

	chk.IntAssert(sim.MatDb.Ngroups(), 2)
	fuel := sim.MatDb.Get("fuel")
	if fuel == nil || !fuel.Fissile {
		tst.Errorf("material 'fuel' must exist and be fissile")
		return
	}
	chk.Float64(tst, "scat 1->2", 1e-17, fuel.Scat(0, 1), 0.02)
	chk.Float64(tst, "scat out g1", 1e-15, fuel.ScatOut(0), 0.19)
}

func Test_sim03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim03. validation catches bad controls")

	sim := ReadSim("data/square.sim")

	sim.Track.Nazim = 6 // not a multiple of 4
	err := sim.Validate()
	if !ers.IsUsage(err) {
		tst.Errorf("expected usage error for nazim=6; got %v", err)
	}
	sim.Track.Nazim = 4

	sim.Solver.Npolar = 5
	err = sim.Validate()
	if !ers.IsUsage(err) {
		tst.Errorf("expected usage error for npolar=5; got %v", err)
	}
	sim.Solver.Npolar = 3

	sim.Cmfd.Active = true
	sim.Cmfd.Nx = 0
	err = sim.Validate()
	if !ers.IsUsage(err) {
		tst.Errorf("expected usage error for coarse mesh with nx=0; got %v", err)
	}
}

func Test_mat01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mat01. material consistency checks")

	m := &Material{
		Name:  "bad",
		Ngrps: 2,
		SigT:  []float64{1.0}, // wrong length
		SigA:  []float64{0.1, 0.1},
		SigS:  []float64{0.4, 0.1, 0.0, 0.9},
	}
	if err := m.Validate(); !ers.IsUsage(err) {
		tst.Errorf("expected usage error for short sigt; got %v", err)
	}

	m.SigT = []float64{1.0, 1.0}
	if err := m.Validate(); err != nil {
		tst.Errorf("material must now validate:\n%v", err)
	}
	if len(m.NuSigF) != 2 || m.NuSigF[0] != 0 {
		tst.Errorf("omitted fission data must be zero-filled")
	}
}

func Test_mat02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mat02. unreadable materials file is a usage error")

	_, err := ReadMat("data/does-not-exist.mat")
	if !ers.IsUsage(err) {
		tst.Errorf("expected usage error for missing file; got %v", err)
	}
}
