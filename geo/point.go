// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package geo implements the constructive-solid-geometry model: quadratic
// surfaces, cells bounded by surface half-spaces, universes and lattices,
// and the flat-source-region (FSR) indexing that partitions the geometry
// into dense, contiguous tally regions
package geo

import "math"

// tolerances
const (
	// OnSurfTol is the half-space membership tolerance: points closer than
	// this to a surface are taken as inside either side
	OnSurfTol = 1e-12

	// TinyMove is the distance by which ray walking nudges a point off a
	// surface before asking which cell contains it
	TinyMove = 1e-10

	// maxDepth bounds the CSG descent; a deeper chain indicates a cyclic
	// (hence invalid) universe definition
	maxDepth = 64
)

// Point holds 2D coordinates
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance to q
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// LocalCoords records one level of the descent of a point through the CSG
// tree. Universe levels resolve the cell containing the point; lattice
// levels record the lattice cell indices and translate the point into the
// frame of the nested universe. Traversal always proceeds root-to-leaf via
// Next; Prev exists only for diagnostics
type LocalCoords struct {
	Point   Point        // point in this level's local frame
	Univ    *Universe    // universe searched at this level (nil for lattice levels)
	Cell    *Cell        // cell found at this level (universe levels only)
	CellIdx int          // index of Cell within Univ.Cells
	Lat     *Lattice     // lattice traversed at this level (nil for universe levels)
	LatX    int          // lattice cell index along x (lattice levels)
	LatY    int          // lattice cell index along y (lattice levels)
	Next    *LocalCoords // next (deeper) level
	Prev    *LocalCoords // previous (shallower) level; diagnostics only
}

// Lowest returns the deepest level of the chain
func (o *LocalCoords) Lowest() *LocalCoords {
	c := o
	for c.Next != nil {
		c = c.Next
	}
	return c
}
