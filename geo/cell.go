// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/inp"
)

// FillType discriminates the tagged variant filling a cell
type FillType int

// fill kinds
const (
	MaterialFill FillType = iota // cell holds a homogeneous material (leaf)
	UniverseFill                 // cell holds a nested universe
	LatticeFill                  // cell holds a lattice
)

// HalfSurf pairs a surface with the half-space sign selecting one side:
// Sign=+1 keeps points with Evaluate > 0, Sign=-1 the opposite side
type HalfSurf struct {
	S    Surface
	Sign int
}

// Cell is a region bounded by the intersection of surface half-spaces and
// filled by a material, a nested universe, or a lattice
type Cell struct {

	// definition
	Cid   int        // unique cell id
	Surfs []HalfSurf // bounding half-spaces; empty ⇒ the whole universe extent
	Fill  FillType   // which member of the variant below is active
	Mat   *inp.Material
	Univ  *Universe
	Lat   *Lattice
}

// NewMaterialCell returns a cell filled by a material
func NewMaterialCell(id int, mat *inp.Material, surfs ...HalfSurf) *Cell {
	return &Cell{Cid: id, Surfs: surfs, Fill: MaterialFill, Mat: mat}
}

// NewUniverseCell returns a cell filled by a nested universe
func NewUniverseCell(id int, u *Universe, surfs ...HalfSurf) *Cell {
	return &Cell{Cid: id, Surfs: surfs, Fill: UniverseFill, Univ: u}
}

// NewLatticeCell returns a cell filled by a lattice
func NewLatticeCell(id int, lat *Lattice, surfs ...HalfSurf) *Cell {
	return &Cell{Cid: id, Surfs: surfs, Fill: LatticeFill, Lat: lat}
}

// Contains tells whether p lies inside all bounding half-spaces. Points
// within OnSurfTol of a surface are accepted so ray walking never falls
// into a gap between adjacent cells
func (o *Cell) Contains(p Point) bool {
	for _, hs := range o.Surfs {
		v := o.sgn(hs) * hs.S.Evaluate(p)
		if v < -OnSurfTol {
			return false
		}
	}
	return true
}

// MinDistance returns the smallest positive ray distance from p to any of
// the cell's bounding surfaces, or +Inf for an unbounded cell
func (o *Cell) MinDistance(p Point, phi float64) float64 {
	d := infDist
	for _, hs := range o.Surfs {
		if t := hs.S.DistanceToSurface(p, phi); t < d {
			d = t
		}
	}
	return d
}

// Material returns the fill material, or an error for non-leaf cells
func (o *Cell) Material() (*inp.Material, error) {
	if o.Fill != MaterialFill {
		return nil, ers.UsageErr("cell %d is not filled by a material", o.Cid)
	}
	return o.Mat, nil
}

func (o *Cell) sgn(hs HalfSurf) float64 {
	if hs.Sign < 0 {
		return -1.0
	}
	return 1.0
}
