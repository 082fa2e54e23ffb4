// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trk

import (
	"math"

	"github.com/cpmech/gomoc/cmfd"
	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
)

// boundary edges of the rectangular domain
const (
	edgeBottom = iota
	edgeRight
	edgeTop
	edgeLeft
)

// endKey identifies a track endpoint by its edge and half-integer grid
// index. Matching endpoints by integer key instead of by coordinates makes
// the cyclic closure exact in floating point
type endKey struct {
	edge  int
	index int
}

// endRef is one track end hosted at a boundary grid point
type endRef struct {
	t       *Track
	isStart bool
}

// Generator produces the cyclic track layout for a geometry. Angles come in
// complementary pairs (φ, π-φ) sharing the same boundary intercept grids,
// so every track end coincides bitwise with the end of its reflective
// partner
type Generator struct {
	geom    *geo.Geometry
	mesh    *cmfd.Mesh // optional; set before segmentation
	nazim   int        // user angle count over (0, 2π)
	spacing float64    // nominal track spacing
	na2     int        // nazim/2 effective angles over (0, π)

	phiEff   []float64 // [na2] effective azimuthal angles
	deltaEff []float64 // [na2] effective track spacings
	azimFrac []float64 // [na2] azimuthal quadrature fractions, summing to 1
	nxa, nya []int     // [na2] intercept counts on x and y oriented edges

	tracks    [][]*Track // [na2][nxa+nya]
	flat      []*Track
	generated bool
	segmented bool
	nsegs     int
}

// NewGenerator prepares a track generator. nazim counts angles over the
// full (0, 2π) range and must be a multiple of 4 so that no angle is its
// own reflective complement
func NewGenerator(g *geo.Geometry, nazim int, spacing float64) (*Generator, error) {
	if g == nil || g.NumFSRs() < 1 {
		return nil, ers.UsageErr("track generation requires an indexed geometry")
	}
	if nazim < 4 || nazim%4 != 0 {
		return nil, ers.UsageErr("number of azimuthal angles must be a multiple of 4; got %d", nazim)
	}
	if !(spacing > 0) {
		return nil, ers.UsageErr("track spacing must be > 0; got %g", spacing)
	}
	return &Generator{geom: g, nazim: nazim, spacing: spacing, na2: nazim / 2}, nil
}

// SetCmfdMesh attaches a coarse mesh; segments are then split at its grid
// lines and tagged with the surfaces they cross. Must be called before
// SegmentizeTracks
func (o *Generator) SetCmfdMesh(m *cmfd.Mesh) { o.mesh = m }

// GenerateTracks lays down the cyclic tracks: for each angle the desired
// spacing is adjusted so a whole number of tracks fits the domain, start
// and end points land on shared half-integer boundary grids, and the
// reflective linkage is resolved by exact endpoint matching
func (o *Generator) GenerateTracks() (err error) {
	w := o.geom.Width()
	h := o.geom.Height()
	na2 := o.na2

	o.phiEff = make([]float64, na2)
	o.deltaEff = make([]float64, na2)
	o.azimFrac = make([]float64, na2)
	o.nxa = make([]int, na2)
	o.nya = make([]int, na2)
	o.tracks = make([][]*Track, na2)

	// effective angles and spacings
	for i := 0; i < na2; i++ {
		phi := 2.0 * math.Pi / float64(o.nazim) * (0.5 + float64(i))
		nx := int(math.Floor(w/o.spacing*math.Abs(math.Sin(phi)))) + 1
		ny := int(math.Floor(h/o.spacing*math.Abs(math.Cos(phi)))) + 1
		eff := math.Atan2(h*float64(nx), w*float64(ny))
		if phi > math.Pi/2 {
			eff = math.Pi - eff
		}
		o.nxa[i] = nx
		o.nya[i] = ny
		o.phiEff[i] = eff
		o.deltaEff[i] = w / float64(nx) * math.Sin(eff)
	}

	// azimuthal quadrature fractions from the bin widths of the effective
	// angles, with outer bin edges at 0 and π
	for i := 0; i < na2; i++ {
		lo := 0.0
		if i > 0 {
			lo = 0.5 * (o.phiEff[i-1] + o.phiEff[i])
		}
		hi := math.Pi
		if i < na2-1 {
			hi = 0.5 * (o.phiEff[i] + o.phiEff[i+1])
		}
		o.azimFrac[i] = (hi - lo) / math.Pi
	}

	// lay down the tracks angle by angle
	ends := make([]map[*Track][2]endKey, na2)
	id := 0
	for i := 0; i < na2; i++ {
		nx, ny := o.nxa[i], o.nya[i]
		dx, dy := w/float64(nx), h/float64(ny)
		weight := o.azimFrac[i] * o.deltaEff[i]
		forward := o.phiEff[i] < math.Pi/2

		keys := make(map[*Track][2]endKey, nx+ny)
		lst := make([]*Track, 0, nx+ny)

		add := func(start, end endKey) {
			t := &Track{
				Id:     id,
				Azim:   i,
				Phi:    o.phiEff[i],
				Start:  o.edgePoint(start, dx, dy),
				End:    o.edgePoint(end, dx, dy),
				Weight: weight,
				BcBwd:  o.edgeBc(start.edge),
				BcFwd:  o.edgeBc(end.edge),
			}
			keys[t] = [2]endKey{start, end}
			lst = append(lst, t)
			id++
		}

		if forward {
			for k := 0; k < nx; k++ {
				if 2*(nx-k)-1 < 2*ny {
					add(endKey{edgeBottom, k}, endKey{edgeRight, nx - k - 1})
				} else {
					add(endKey{edgeBottom, k}, endKey{edgeTop, k + ny})
				}
			}
			for m := 0; m < ny; m++ {
				if 2*(ny-m)-1 < 2*nx {
					add(endKey{edgeLeft, m}, endKey{edgeTop, ny - m - 1})
				} else {
					add(endKey{edgeLeft, m}, endKey{edgeRight, m + nx})
				}
			}
		} else {
			for k := 0; k < nx; k++ {
				if 2*k+1 < 2*ny {
					add(endKey{edgeBottom, k}, endKey{edgeLeft, k})
				} else {
					add(endKey{edgeBottom, k}, endKey{edgeTop, k - ny})
				}
			}
			for m := 0; m < ny; m++ {
				if 2*(ny-m)-1 < 2*nx {
					add(endKey{edgeRight, m}, endKey{edgeTop, nx - ny + m})
				} else {
					add(endKey{edgeRight, m}, endKey{edgeLeft, m + nx})
				}
			}
		}
		o.tracks[i] = lst
		ends[i] = keys
	}

	// resolve the reflective linkage within each complementary angle pair
	for i := 0; i < na2/2; i++ {
		ic := na2 - 1 - i
		if o.nxa[i] != o.nxa[ic] || o.nya[i] != o.nya[ic] {
			return ers.GeomErr("complementary angles %d and %d have mismatched intercept grids", i, ic)
		}
		hosts := make(map[endKey][]endRef, 2*(o.nxa[i]+o.nya[i]))
		for _, ia := range []int{i, ic} {
			for _, t := range o.tracks[ia] {
				k := ends[ia][t]
				hosts[k[0]] = append(hosts[k[0]], endRef{t, true})
				hosts[k[1]] = append(hosts[k[1]], endRef{t, false})
			}
		}
		for k, refs := range hosts {
			if len(refs) != 2 {
				return ers.GeomErr("cyclic track closure broken: boundary point (edge %d, index %d) hosts %d track ends instead of 2", k.edge, k.index, len(refs))
			}
		}
		for _, ia := range []int{i, ic} {
			for _, t := range o.tracks[ia] {
				k := ends[ia][t]
				pb := other(hosts[k[0]], t, true)
				pf := other(hosts[k[1]], t, false)
				t.NextBwd = pb.t
				t.BwdFwd = pb.isStart
				t.NextFwd = pf.t
				t.FwdFwd = pf.isStart
			}
		}
	}

	o.flat = make([]*Track, 0, id)
	for i := 0; i < na2; i++ {
		o.flat = append(o.flat, o.tracks[i]...)
	}
	o.generated = true
	return
}

// other returns the reference at a boundary grid point which is not the
// given end of the given track
func other(refs []endRef, t *Track, isStart bool) endRef {
	if refs[0].t == t && refs[0].isStart == isStart {
		return refs[1]
	}
	return refs[0]
}

// edgePoint materializes a boundary grid point. Using the same expression
// for every track end guarantees partners coincide bitwise
func (o *Generator) edgePoint(k endKey, dx, dy float64) geo.Point {
	switch k.edge {
	case edgeBottom:
		return geo.Point{X: o.geom.XMin() + dx*(float64(k.index)+0.5), Y: o.geom.YMin()}
	case edgeTop:
		return geo.Point{X: o.geom.XMin() + dx*(float64(k.index)+0.5), Y: o.geom.YMax()}
	case edgeLeft:
		return geo.Point{X: o.geom.XMin(), Y: o.geom.YMin() + dy*(float64(k.index)+0.5)}
	}
	return geo.Point{X: o.geom.XMax(), Y: o.geom.YMin() + dy*(float64(k.index)+0.5)}
}

func (o *Generator) edgeBc(edge int) int {
	switch edge {
	case edgeBottom:
		return o.geom.BcBottom()
	case edgeTop:
		return o.geom.BcTop()
	case edgeLeft:
		return o.geom.BcLeft()
	}
	return o.geom.BcRight()
}

// NumAzim returns the requested number of azimuthal angles over (0, 2π)
func (o *Generator) NumAzim() int { return o.nazim }

// TrackSpacing returns the nominal (requested) track spacing
func (o *Generator) TrackSpacing() float64 { return o.spacing }

// ContainsTracks reports whether tracks have been generated
func (o *Generator) ContainsTracks() bool { return o.generated }

// ContainsSegments reports whether tracks have been segmented
func (o *Generator) ContainsSegments() bool { return o.segmented }

// EffAngle returns the effective azimuthal angle of angle index i ∈ [0, nazim/2)
func (o *Generator) EffAngle(i int) float64 { return o.phiEff[i] }

// EffSpacing returns the effective track spacing of angle index i
func (o *Generator) EffSpacing(i int) float64 { return o.deltaEff[i] }

// AzimFraction returns the azimuthal quadrature fraction of angle index i
func (o *Generator) AzimFraction(i int) float64 { return o.azimFrac[i] }

// NumTracks returns the total number of tracks
func (o *Generator) NumTracks() (int, error) {
	if !o.generated {
		return 0, ers.UsageErr("track count requested before track generation")
	}
	return len(o.flat), nil
}

// NumSegments returns the total number of segments over all tracks
func (o *Generator) NumSegments() (int, error) {
	if !o.segmented {
		return 0, ers.UsageErr("segment count requested before segmentation")
	}
	return o.nsegs, nil
}

// Tracks returns the flat track list (all angles, generation order)
func (o *Generator) Tracks() ([]*Track, error) {
	if !o.generated {
		return nil, ers.UsageErr("tracks requested before track generation")
	}
	return o.flat, nil
}

// RetrieveTrackCoords fills coords with [x0, y0, x1, y1] per track.
// len(coords) must be 4 times the number of tracks
func (o *Generator) RetrieveTrackCoords(coords []float64) error {
	if !o.generated {
		return ers.UsageErr("track coordinates requested before track generation")
	}
	if len(coords) != 4*len(o.flat) {
		return ers.UsageErr("track coordinate buffer must have length %d; got %d", 4*len(o.flat), len(coords))
	}
	for i, t := range o.flat {
		coords[4*i+0] = t.Start.X
		coords[4*i+1] = t.Start.Y
		coords[4*i+2] = t.End.X
		coords[4*i+3] = t.End.Y
	}
	return nil
}

// RetrieveSegmentCoords fills coords with [fsrId, x0, y0, x1, y1] per
// segment. len(coords) must be 5 times the number of segments
func (o *Generator) RetrieveSegmentCoords(coords []float64) error {
	if !o.segmented {
		return ers.UsageErr("segment coordinates requested before segmentation")
	}
	if len(coords) != 5*o.nsegs {
		return ers.UsageErr("segment coordinate buffer must have length %d; got %d", 5*o.nsegs, len(coords))
	}
	n := 0
	for _, t := range o.flat {
		for _, s := range t.Segs {
			coords[n+0] = float64(s.FSR)
			coords[n+1] = s.Start.X
			coords[n+2] = s.Start.Y
			coords[n+3] = s.End.X
			coords[n+4] = s.End.Y
			n += 5
		}
	}
	return nil
}
