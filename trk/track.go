// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trk generates cyclic characteristic tracks across the geometry
// and cuts them into segments of constant material region
package trk

import "github.com/cpmech/gomoc/geo"

// Segment is the portion of a track crossing a single flat source region.
// CmfdFwd and CmfdBwd are the coarse-mesh surfaces crossed when leaving the
// segment in the forward and backward directions (-1 when none)
type Segment struct {
	FSR     int       // flat source region id
	Length  float64   // segment length [cm]
	Start   geo.Point // entry point (forward direction)
	End     geo.Point // exit point (forward direction)
	CmfdFwd int
	CmfdBwd int
}

// Track is a single characteristic line across the domain. The reflective
// linkage fields chain tracks into closed cycles: leaving this track at its
// forward end continues onto NextFwd, traversed forward when FwdFwd is true
// and backward otherwise (and likewise for the backward end)
type Track struct {
	Id    int       // index into the flat track ordering
	Azim  int       // azimuthal angle index in [0, nazim/2)
	Phi   float64   // effective azimuthal angle in (0, π)
	Start geo.Point // entry point on the domain boundary
	End   geo.Point // exit point on the domain boundary

	// Weight is the azimuthal quadrature fraction times the effective
	// track spacing of this angle; segment length times Weight tallies
	// exactly one unit of area
	Weight float64

	Segs []Segment

	NextFwd *Track
	FwdFwd  bool
	NextBwd *Track
	BwdFwd  bool
	BcFwd   int // boundary condition at the forward end (geo.Reflective or geo.Vacuum)
	BcBwd   int // boundary condition at the backward end
}
