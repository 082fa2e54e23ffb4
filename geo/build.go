// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/inp"
)

// FromSim builds the geometry from the CSG definition of a simulation input
// file, resolves boundary conditions, and runs the FSR indexing pass
func FromSim(sim *inp.Simulation) (*Geometry, error) {

	gd := &sim.Geom

	// surfaces
	surfs := make(map[int]Surface)
	for _, sd := range gd.Surfaces {
		if _, ok := surfs[sd.Id]; ok {
			return nil, ers.UsageErr("duplicate surface id %d", sd.Id)
		}
		switch sd.Type {
		case "xplane":
			surfs[sd.Id] = &XPlane{Sid: sd.Id, X: sd.X}
		case "yplane":
			surfs[sd.Id] = &YPlane{Sid: sd.Id, Y: sd.Y}
		case "circle":
			if !(sd.R > 0) {
				return nil, ers.UsageErr("circle surface %d must have radius > 0; got %g", sd.Id, sd.R)
			}
			surfs[sd.Id] = &Circle{Sid: sd.Id, X0: sd.X, Y0: sd.Y, R: sd.R}
		default:
			return nil, ers.UsageErr("unknown surface type %q (surface %d)", sd.Type, sd.Id)
		}
	}

	// universe shells: every id referenced as owner, lattice entry or root
	univs := make(map[int]*Universe)
	mkUniv := func(id int) *Universe {
		if u, ok := univs[id]; ok {
			return u
		}
		u := NewUniverse(id)
		univs[id] = u
		return u
	}
	mkUniv(gd.Root)
	for _, cd := range gd.Cells {
		mkUniv(cd.Universe)
	}

	// lattice shells, resolving universe references
	lats := make(map[int]*Lattice)
	for _, ld := range gd.Lattices {
		if _, ok := lats[ld.Id]; ok {
			return nil, ers.UsageErr("duplicate lattice id %d", ld.Id)
		}
		if ld.Nx < 1 || ld.Ny < 1 {
			return nil, ers.UsageErr("lattice %d dimensions must be ≥ 1; got %d x %d", ld.Id, ld.Nx, ld.Ny)
		}
		if !(ld.PitchX > 0) || !(ld.PitchY > 0) {
			return nil, ers.UsageErr("lattice %d pitch must be > 0; got %g x %g", ld.Id, ld.PitchX, ld.PitchY)
		}
		if len(ld.Universes) != ld.Ny {
			return nil, ers.UsageErr("lattice %d must list %d rows; got %d", ld.Id, ld.Ny, len(ld.Universes))
		}
		uu := make([][]*Universe, ld.Ny)
		for iy := 0; iy < ld.Ny; iy++ {
			// deck rows are written top-first; internal storage is bottom-first
			row := ld.Universes[ld.Ny-1-iy]
			if len(row) != ld.Nx {
				return nil, ers.UsageErr("lattice %d row %d must list %d universes; got %d", ld.Id, ld.Ny-1-iy, ld.Nx, len(row))
			}
			uu[iy] = make([]*Universe, ld.Nx)
			for ix := 0; ix < ld.Nx; ix++ {
				uu[iy][ix] = mkUniv(row[ix])
			}
		}
		lats[ld.Id] = NewLattice(ld.Id, ld.Nx, ld.Ny, ld.PitchX, ld.PitchY, uu)
	}

	// cells
	for _, cd := range gd.Cells {
		var hs []HalfSurf
		for _, sid := range cd.Surfs {
			abs := sid
			sign := 1
			if sid < 0 {
				abs = -sid
				sign = -1
			}
			s, ok := surfs[abs]
			if !ok {
				return nil, ers.UsageErr("cell %d references unknown surface %d", cd.Id, abs)
			}
			hs = append(hs, HalfSurf{S: s, Sign: sign})
		}
		// fill kind: decks use positive ids for lattices and fill universes,
		// so a zero value means the field was omitted
		var cell *Cell
		switch {
		case cd.Mat != "":
			mat := sim.MatDb.Get(cd.Mat)
			if mat == nil {
				return nil, ers.UsageErr("cell %d references unknown material %q", cd.Id, cd.Mat)
			}
			cell = NewMaterialCell(cd.Id, mat, hs...)
		case cd.Lattice != 0:
			lat, ok := lats[cd.Lattice]
			if !ok {
				return nil, ers.UsageErr("cell %d references unknown lattice %d", cd.Id, cd.Lattice)
			}
			cell = NewLatticeCell(cd.Id, lat, hs...)
		case cd.Fill != 0:
			u, ok := univs[cd.Fill]
			if !ok {
				return nil, ers.UsageErr("cell %d references unknown fill universe %d", cd.Id, cd.Fill)
			}
			cell = NewUniverseCell(cd.Id, u, hs...)
		default:
			return nil, ers.UsageErr("cell %d has no material, fill universe or lattice", cd.Id)
		}
		univs[cd.Universe].AddCell(cell)
	}

	// geometry
	g, err := NewGeometry(univs[gd.Root], gd.Xmin, gd.Xmax, gd.Ymin, gd.Ymax, sim.MatDb.Ngroups())
	if err != nil {
		return nil, err
	}
	g.SetBoundaryConds(bcFromName(sim.Bounds.Left), bcFromName(sim.Bounds.Right),
		bcFromName(sim.Bounds.Bottom), bcFromName(sim.Bounds.Top))
	err = g.InitializeFSRs()
	if err != nil {
		return nil, err
	}
	return g, nil
}

func bcFromName(name string) int {
	if name == inp.BcVacuum {
		return Vacuum
	}
	return Reflective
}
