// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trk

import (
	"math"
	"testing"

	"github.com/cpmech/gomoc/cmfd"
	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/inp"
	"github.com/cpmech/gosl/chk"
)

// squareGeom builds a single-material square [-1,1]² with one FSR
func squareGeom() (*geo.Geometry, error) {
	sim := new(inp.Simulation)
	sim.SetDefaults()
	sim.MatDb = &inp.MatDb{Materials: []*inp.Material{
		{Name: "mod", Ngrps: 1, SigT: []float64{1.0}, SigA: []float64{0.5}, SigS: []float64{0.5}},
	}}
	if err := sim.MatDb.Init(); err != nil {
		return nil, err
	}
	sim.Geom = inp.GeomData{
		Root: 1,
		Xmin: -1, Xmax: 1, Ymin: -1, Ymax: 1,
		Cells: []inp.CellData{
			{Id: 1, Universe: 1, Mat: "mod"},
		},
	}
	return geo.FromSim(sim)
}

func Test_track01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("track01. cyclic track laydown and reflective closure")

	g, err := squareGeom()
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	gen, err := NewGenerator(g, 8, 0.3)
	if err != nil {
		tst.Errorf("generator failed:\n%v", err)
		return
	}
	if err = gen.GenerateTracks(); err != nil {
		tst.Errorf("generation failed:\n%v", err)
		return
	}

	tracks, err := gen.Tracks()
	if err != nil {
		tst.Errorf("%v", err)
		return
	}
	n, _ := gen.NumTracks()
	chk.IntAssert(n, len(tracks))

	// complementary angles mirror about π/2 and share spacing
	na2 := 4
	for i := 0; i < na2/2; i++ {
		ic := na2 - 1 - i
		chk.Float64(tst, "angle complement", 1e-13, gen.EffAngle(i)+gen.EffAngle(ic), math.Pi)
		chk.Float64(tst, "spacing match", 1e-13, gen.EffSpacing(i), gen.EffSpacing(ic))
	}

	// azimuthal fractions sum to one
	sum := 0.0
	for i := 0; i < na2; i++ {
		sum += gen.AzimFraction(i)
	}
	chk.Float64(tst, "azim fractions", 1e-13, sum, 1.0)

	// every track end must coincide bitwise with its partner's end, and the
	// traversal direction must be encoded consistently
	for _, t := range tracks {
		pf := t.NextFwd
		if pf == nil || t.NextBwd == nil {
			tst.Errorf("track %d has missing reflective links", t.Id)
			return
		}
		pfEnd := pf.End
		if t.FwdFwd {
			pfEnd = pf.Start
		}
		if pfEnd != t.End {
			tst.Errorf("track %d forward end (%v) does not meet its partner (%v)", t.Id, t.End, pfEnd)
			return
		}
		pb := t.NextBwd
		pbEnd := pb.End
		if t.BwdFwd {
			pbEnd = pb.Start
		}
		if pbEnd != t.Start {
			tst.Errorf("track %d backward end (%v) does not meet its partner (%v)", t.Id, t.Start, pbEnd)
			return
		}
		if !(t.Weight > 0) {
			tst.Errorf("track %d has non-positive weight %g", t.Id, t.Weight)
			return
		}
	}

	// regeneration reproduces the exact same coordinates
	gen2, _ := NewGenerator(g, 8, 0.3)
	if err = gen2.GenerateTracks(); err != nil {
		tst.Errorf("second generation failed:\n%v", err)
		return
	}
	c1 := make([]float64, 4*n)
	c2 := make([]float64, 4*n)
	if err = gen.RetrieveTrackCoords(c1); err != nil {
		tst.Errorf("%v", err)
		return
	}
	if err = gen2.RetrieveTrackCoords(c2); err != nil {
		tst.Errorf("%v", err)
		return
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			tst.Errorf("coordinate %d differs between identical laydowns", i)
			return
		}
	}
}

func Test_track02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("track02. segmentation conserves lengths and volumes")

	g, err := squareGeom()
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	gen, _ := NewGenerator(g, 8, 0.1)
	if err = gen.GenerateTracks(); err != nil {
		tst.Errorf("generation failed:\n%v", err)
		return
	}
	if err = gen.SegmentizeTracks(); err != nil {
		tst.Errorf("segmentation failed:\n%v", err)
		return
	}

	tracks, _ := gen.Tracks()
	for _, t := range tracks {
		sum := 0.0
		for _, s := range t.Segs {
			sum += s.Length
			chk.IntAssert(s.FSR, 0)
		}
		chk.Float64(tst, "track length", 1e-9, sum, t.Start.Dist(t.End))
	}

	// the tallied volume of the single region is the box area
	chk.Float64(tst, "tracked volume", 1e-8, g.FSRVolume(0), 4.0)

	nsegs, err := gen.NumSegments()
	if err != nil || nsegs < len(tracks) {
		tst.Errorf("bad segment count %d (%v)", nsegs, err)
	}
}

func Test_track03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("track03. accessors report the wrong phase")

	g, err := squareGeom()
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	gen, _ := NewGenerator(g, 4, 0.5)

	if _, err = gen.NumTracks(); !ers.IsUsage(err) {
		tst.Errorf("expected usage error before generation; got %v", err)
	}
	if err = gen.SegmentizeTracks(); !ers.IsUsage(err) {
		tst.Errorf("expected usage error segmenting before generation; got %v", err)
	}
	if err = gen.GenerateTracks(); err != nil {
		tst.Errorf("generation failed:\n%v", err)
		return
	}
	if _, err = gen.NumSegments(); !ers.IsUsage(err) {
		tst.Errorf("expected usage error before segmentation; got %v", err)
	}

	if _, err = NewGenerator(g, 6, 0.5); !ers.IsUsage(err) {
		tst.Errorf("expected usage error for nazim=6; got %v", err)
	}
	if _, err = NewGenerator(g, 4, 0.0); !ers.IsUsage(err) {
		tst.Errorf("expected usage error for zero spacing; got %v", err)
	}
}

func Test_track04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("track04. coarse-mesh splitting and surface tagging")

	g, err := squareGeom()
	if err != nil {
		tst.Errorf("geometry failed:\n%v", err)
		return
	}
	mesh, err := cmfd.NewMesh(g, 2, 2)
	if err != nil {
		tst.Errorf("mesh failed:\n%v", err)
		return
	}
	gen, _ := NewGenerator(g, 8, 0.1)
	gen.SetCmfdMesh(mesh)
	if err = gen.GenerateTracks(); err != nil {
		tst.Errorf("generation failed:\n%v", err)
		return
	}
	if err = gen.SegmentizeTracks(); err != nil {
		tst.Errorf("segmentation failed:\n%v", err)
		return
	}

	// interior grid crossings must be tagged on at least some segments
	tracks, _ := gen.Tracks()
	tagged := 0
	for _, t := range tracks {
		for _, s := range t.Segs {
			if s.CmfdFwd >= 0 {
				tagged++
				if s.CmfdFwd >= mesh.NumSurfaces() {
					tst.Errorf("surface id %d out of range", s.CmfdFwd)
					return
				}
			}
		}
	}
	if tagged == 0 {
		tst.Errorf("no segment was tagged with a coarse surface")
	}

	// the single FSR belongs to exactly one coarse cell after finalize
	cell := mesh.CellOfFSR(0)
	if cell < 0 || cell >= mesh.NumCells() {
		tst.Errorf("FSR 0 assigned to invalid coarse cell %d", cell)
	}
}
