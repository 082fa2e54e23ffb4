// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"math"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/inp"
)

// boundary condition kinds, one per edge of the bounding box
const (
	Reflective = iota
	Vacuum
)

// Geometry is the root of the CSG tree plus the global bounding box and the
// energy group count. It is built once and is read-only during a solve,
// except for the FSR volume tallies filled in by track segmentation
type Geometry struct {

	// definition
	root                   *Universe
	xmin, xmax, ymin, ymax float64
	ngroups                int
	bcLeft, bcRight        int
	bcBottom, bcTop        int

	// derived: FSR indexing
	nfsr     int
	fsrCells []*Cell   // [nfsr] owning (leaf) cell of each dense FSR id
	fsrVols  []float64 // [nfsr] volumes tallied during segmentation
	indexed  bool
}

// NewGeometry returns a geometry rooted at the given universe. The bounding
// box must enclose the root universe's extent; boundary conditions default
// to reflective on all edges
func NewGeometry(root *Universe, xmin, xmax, ymin, ymax float64, ngroups int) (*Geometry, error) {
	if !(xmax > xmin) || !(ymax > ymin) {
		return nil, ers.UsageErr("bounding box is degenerate: x=[%g,%g] y=[%g,%g]", xmin, xmax, ymin, ymax)
	}
	if ngroups < 1 {
		return nil, ers.UsageErr("number of energy groups must be ≥ 1; got %d", ngroups)
	}
	o := &Geometry{
		root: root,
		xmin: xmin, xmax: xmax, ymin: ymin, ymax: ymax,
		ngroups: ngroups,
	}
	return o, nil
}

// SetBoundaryConds sets the boundary condition (Reflective or Vacuum) of
// each edge of the bounding box
func (o *Geometry) SetBoundaryConds(left, right, bottom, top int) {
	o.bcLeft, o.bcRight, o.bcBottom, o.bcTop = left, right, bottom, top
}

// bounding box accessors
func (o *Geometry) XMin() float64 { return o.xmin }
func (o *Geometry) XMax() float64 { return o.xmax }
func (o *Geometry) YMin() float64 { return o.ymin }
func (o *Geometry) YMax() float64 { return o.ymax }

// Width returns the bounding box extent along x
func (o *Geometry) Width() float64 { return o.xmax - o.xmin }

// Height returns the bounding box extent along y
func (o *Geometry) Height() float64 { return o.ymax - o.ymin }

// boundary condition accessors
func (o *Geometry) BcLeft() int   { return o.bcLeft }
func (o *Geometry) BcRight() int  { return o.bcRight }
func (o *Geometry) BcBottom() int { return o.bcBottom }
func (o *Geometry) BcTop() int    { return o.bcTop }

// NumEnergyGroups returns the number of energy groups
func (o *Geometry) NumEnergyGroups() int { return o.ngroups }

// RootUniverse returns the root universe
func (o *Geometry) RootUniverse() *Universe { return o.root }

// Contains tells whether p lies within the bounding box
func (o *Geometry) Contains(p Point) bool {
	return p.X >= o.xmin-OnSurfTol && p.X <= o.xmax+OnSurfTol &&
		p.Y >= o.ymin-OnSurfTol && p.Y <= o.ymax+OnSurfTol
}

// InitializeFSRs assigns dense, contiguous FSR ids [0, NumFSRs) to every
// maximal material-filled sub-volume via per-universe and per-lattice-cell
// offset maps, and records the leaf cell owning each id
func (o *Geometry) InitializeFSRs() error {
	n, err := o.root.indexFSRs()
	if err != nil {
		return err
	}
	if n < 1 {
		return ers.GeomErr("geometry contains no material-filled cells")
	}
	o.nfsr = n
	o.fsrCells = make([]*Cell, n)
	o.root.collectFSRs(0, o.fsrCells)
	for id, c := range o.fsrCells {
		if c == nil {
			return ers.GeomErr("FSR indexing left id %d unassigned", id)
		}
	}
	o.fsrVols = make([]float64, n)
	o.indexed = true
	return nil
}

// NumFSRs returns the number of flat source regions
func (o *Geometry) NumFSRs() int { return o.nfsr }

// FindCellContainingCoords descends the CSG tree from the root universe,
// testing surface half-space membership at each level, and returns the
// LocalCoords chain ending at the leaf cell containing p. Points outside
// the bounding box fail with a Geometry error
func (o *Geometry) FindCellContainingCoords(p Point) (*LocalCoords, error) {
	if !o.Contains(p) {
		return nil, ers.GeomErr("point (%g,%g) is outside the bounding box x=[%g,%g] y=[%g,%g]",
			p.X, p.Y, o.xmin, o.xmax, o.ymin, o.ymax)
	}
	head := &LocalCoords{Point: p, Univ: o.root}
	cur := head
	for depth := 0; depth < maxDepth; depth++ {
		c, idx := cur.Univ.FindCell(cur.Point)
		if c == nil {
			return nil, ers.GeomErr("point (%g,%g) falls into a gap of universe %d", cur.Point.X, cur.Point.Y, cur.Univ.Uid)
		}
		cur.Cell = c
		cur.CellIdx = idx
		switch c.Fill {
		case MaterialFill:
			return head, nil
		case UniverseFill:
			next := &LocalCoords{Point: cur.Point, Univ: c.Univ, Prev: cur}
			cur.Next = next
			cur = next
		case LatticeFill:
			ix, iy, local, err := c.Lat.Find(cur.Point)
			if err != nil {
				return nil, err
			}
			lat := &LocalCoords{Point: cur.Point, Lat: c.Lat, LatX: ix, LatY: iy, Prev: cur}
			next := &LocalCoords{Point: local, Univ: c.Lat.Univs[iy][ix], Prev: lat}
			cur.Next = lat
			lat.Next = next
			cur = next
		}
	}
	return nil, ers.GeomErr("CSG descent from point (%g,%g) did not reach a material cell within %d levels", p.X, p.Y, maxDepth)
}

// FindFSRId returns the dense id of the flat source region containing p
func (o *Geometry) FindFSRId(p Point) (int, error) {
	if !o.indexed {
		return -1, ers.UsageErr("FSR query before InitializeFSRs")
	}
	chain, err := o.FindCellContainingCoords(p)
	if err != nil {
		return -1, err
	}
	return o.FSRIdFromChain(chain), nil
}

// FSRIdFromChain accumulates the FSR id offsets along an already-resolved
// LocalCoords chain
func (o *Geometry) FSRIdFromChain(chain *LocalCoords) int {
	id := 0
	for lvl := chain; lvl != nil; lvl = lvl.Next {
		if lvl.Univ != nil {
			id += lvl.Univ.fsrOffsets[lvl.CellIdx]
		} else {
			id += lvl.Lat.Offset(lvl.LatX, lvl.LatY)
		}
	}
	return id
}

// FindCellContainingFSR returns the leaf cell owning the given FSR id
func (o *Geometry) FindCellContainingFSR(id int) (*Cell, error) {
	if !o.indexed {
		return nil, ers.UsageErr("FSR query before InitializeFSRs")
	}
	if id < 0 || id >= o.nfsr {
		return nil, ers.UsageErr("FSR id %d is out of range [0,%d)", id, o.nfsr)
	}
	return o.fsrCells[id], nil
}

// FSRMaterial returns the material of the given FSR id
func (o *Geometry) FSRMaterial(id int) (*inp.Material, error) {
	c, err := o.FindCellContainingFSR(id)
	if err != nil {
		return nil, err
	}
	return c.Mat, nil
}

// FSRVolume returns the volume (area, in 2D) of the given FSR, as tallied
// during track segmentation
func (o *Geometry) FSRVolume(id int) float64 { return o.fsrVols[id] }

// TallyFSRVolume accumulates a weighted segment length into the FSR volume
func (o *Geometry) TallyFSRVolume(id int, w float64) { o.fsrVols[id] += w }

// ResetFSRVolumes zeroes the volume tallies prior to (re)segmentation
func (o *Geometry) ResetFSRVolumes() {
	for i := range o.fsrVols {
		o.fsrVols[i] = 0
	}
}

// MinDistanceToBoundary returns the smallest positive distance, along the
// ray at angle phi, from the point resolved by chain to any surface or
// lattice wall on the chain, or to the bounding box itself
func (o *Geometry) MinDistanceToBoundary(chain *LocalCoords, phi float64) float64 {
	d := o.distToBox(chain.Point, phi)
	for lvl := chain; lvl != nil; lvl = lvl.Next {
		if lvl.Univ != nil {
			if lvl.Cell != nil {
				if t := lvl.Cell.MinDistance(lvl.Point, phi); t < d {
					d = t
				}
			}
		} else if lvl.Next != nil {
			// lattice walls are planes in the lattice-cell local frame
			if t := lvl.Lat.MinDistance(lvl.Next.Point, phi); t < d {
				d = t
			}
		}
	}
	return d
}

// distToBox returns the positive ray distance from p to the bounding box edges
func (o *Geometry) distToBox(p Point, phi float64) float64 {
	d := infDist
	u := math.Cos(phi)
	v := math.Sin(phi)
	if math.Abs(u) > OnSurfTol {
		if t := (o.xmax - p.X) / u; t > TinyMove && t < d {
			d = t
		}
		if t := (o.xmin - p.X) / u; t > TinyMove && t < d {
			d = t
		}
	}
	if math.Abs(v) > OnSurfTol {
		if t := (o.ymax - p.Y) / v; t > TinyMove && t < d {
			d = t
		}
		if t := (o.ymin - p.Y) / v; t > TinyMove && t < d {
			d = t
		}
	}
	return d
}
