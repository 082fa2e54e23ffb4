// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trk

import (
	"math"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
)

// segmentation constants
const (
	minSegLength = 1e-10     // segments shorter than this are folded into their neighbor
	maxCrossings = 1_000_000 // per-track crossing limit guarding against infinite walks
)

// SegmentizeTracks walks every track through the CSG tree and cuts it at
// material region boundaries and, when a coarse mesh is attached, at the
// coarse grid lines. Segment lengths are tallied into the FSR volume
// estimates, so the transport sweep conserves the exact tracked volumes.
// Requires GenerateTracks to have run
func (o *Generator) SegmentizeTracks() (err error) {
	if !o.generated {
		return ers.UsageErr("segmentation requested before track generation")
	}
	o.geom.ResetFSRVolumes()
	if o.mesh != nil {
		o.mesh.ZeroCurrents()
	}
	o.nsegs = 0
	for _, t := range o.flat {
		err = o.segmentize(t)
		if err != nil {
			return
		}
		o.nsegs += len(t.Segs)
	}
	if o.mesh != nil {
		err = o.mesh.FinalizeFSRs()
		if err != nil {
			return
		}
	}
	o.segmented = true
	return
}

// segmentize cuts a single track. The walk nudges the query point slightly
// forward of each boundary so cell lookups never sit exactly on a surface
func (o *Generator) segmentize(t *Track) error {
	u := math.Cos(t.Phi)
	v := math.Sin(t.Phi)
	total := t.Start.Dist(t.End)
	t.Segs = t.Segs[:0]

	pos := t.Start
	segStart := t.Start
	traveled := 0.0
	crossings := 0

	for traveled < total-geo.TinyMove {
		crossings++
		if crossings > maxCrossings {
			return ers.GeomErr("track %d exceeded %d boundary crossings; geometry appears inconsistent near (%g, %g)", t.Id, maxCrossings, pos.X, pos.Y)
		}

		probe := geo.Point{X: pos.X + geo.TinyMove*u, Y: pos.Y + geo.TinyMove*v}
		chain, err := o.geom.FindCellContainingCoords(probe)
		if err != nil {
			return err
		}
		d := o.geom.MinDistanceToBoundary(chain, t.Phi)
		if o.mesh != nil {
			if dg := o.mesh.DistanceToGridLine(probe, t.Phi); dg < d {
				d = dg
			}
		}
		if math.IsInf(d, 1) {
			return ers.GeomErr("track %d found no boundary ahead of (%g, %g); geometry is unbounded along the track", t.Id, pos.X, pos.Y)
		}
		d += geo.TinyMove // account for the nudge
		end := geo.Point{X: pos.X + d*u, Y: pos.Y + d*v}
		if remaining := total - traveled; d >= remaining {
			d = remaining
			end = t.End // land exactly on the boundary grid point
		}
		traveled += d
		pos = end

		// fold vanishing cuts into the next segment
		length := segStart.Dist(end)
		if length < minSegLength && traveled < total-geo.TinyMove {
			continue
		}

		mid := geo.Point{X: 0.5 * (segStart.X + end.X), Y: 0.5 * (segStart.Y + end.Y)}
		fsr, err := o.geom.FindFSRId(mid)
		if err != nil {
			return err
		}
		seg := Segment{FSR: fsr, Length: length, Start: segStart, End: end, CmfdFwd: -1, CmfdBwd: -1}
		if o.mesh != nil {
			cell, err := o.mesh.FindCellId(mid)
			if err != nil {
				return err
			}
			o.mesh.RegisterFSR(fsr, cell, length)
			seg.CmfdFwd = o.mesh.CrossingSurface(end, u, v)
			seg.CmfdBwd = o.mesh.CrossingSurface(segStart, -u, -v)
		}
		t.Segs = append(t.Segs, seg)
		o.geom.TallyFSRVolume(fsr, t.Weight*length)
		segStart = end
	}

	if len(t.Segs) == 0 {
		return ers.GeomErr("track %d produced no segments; track length %g is degenerate", t.Id, total)
	}
	return nil
}
