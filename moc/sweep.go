// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package moc

import (
	"math"
	"sync"

	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/trk"
)

const twoPi = 2.0 * math.Pi

// sweepTally holds the thread-local accumulators of one sweep worker; the
// partials are merged serially after the sweep barrier
type sweepTally struct {
	acc  []float64 // [nfsr*ng] weighted Δψ sums
	cur  []float64 // [nsurf*ng] coarse surface currents (nil without mesh)
	leak float64
}

// sweep traverses every track in both directions, tallies the angular flux
// drops into the regions crossed, hands the outgoing angular fluxes to the
// reflective partners (or tallies them as leakage at vacuum edges), and
// rebuilds the scalar flux from the tallies. Returns the total leakage
func (o *Solver) sweep() float64 {
	np, ng := o.quad.N, o.ng
	read := o.boundary[o.cur]
	write := o.boundary[1-o.cur]

	tallies := make([]*sweepTally, o.nworkers)
	var wg sync.WaitGroup
	for w := 0; w < o.nworkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			tl := &sweepTally{acc: make([]float64, o.nfsr*ng)}
			if o.mesh != nil {
				tl.cur = make([]float64, o.mesh.NumSurfaces()*ng)
			}
			tallies[w] = tl
			wtp := make([]float64, np)
			psi := make([]float64, np*ng)
			for ti := w; ti < len(o.tracks); ti += o.nworkers {
				t := o.tracks[ti]
				for p := 0; p < np; p++ {
					wtp[p] = twoPi * t.Weight * o.quad.Wgt[p] * o.quad.SinT[p]
				}
				o.traverse(t, 0, read, write, wtp, psi, tl)
				o.traverse(t, 1, read, write, wtp, psi, tl)
			}
		}(w)
	}
	wg.Wait()
	o.cur = 1 - o.cur

	// merge the worker partials
	leak := 0.0
	acc := make([]float64, o.nfsr*ng)
	for _, tl := range tallies {
		leak += tl.leak
		for i, v := range tl.acc {
			acc[i] += v
		}
		if tl.cur != nil {
			for s := 0; s < o.mesh.NumSurfaces(); s++ {
				for g := 0; g < ng; g++ {
					if v := tl.cur[s*ng+g]; v != 0 {
						o.mesh.AddCurrent(s, g, v)
					}
				}
			}
		}
	}

	// scalar flux from the tallies plus the flat source contribution
	for r := 0; r < o.nfsr; r++ {
		m := o.mats[r]
		for g := 0; g < ng; g++ {
			o.flux[r*ng+g] = acc[r*ng+g]/(m.SigT[g]*o.vols[r]) + fourPi*o.redSrc[r*ng+g]
		}
	}
	return leak
}

// bidx returns the offset of the incoming angular flux block of one track
// direction in the boundary buffers
func (o *Solver) bidx(trackId, dir int) int {
	return (trackId*2 + dir) * o.quad.N * o.ng
}

// traverse sweeps one track in one direction (0 forward, 1 backward),
// reading the incoming angular flux from the current buffer and writing the
// outgoing flux into the partner's entry slot of the next buffer
func (o *Solver) traverse(t *trk.Track, dir int, read, write, wtp, psi []float64, tl *sweepTally) {
	np, ng := o.quad.N, o.ng
	base := o.bidx(t.Id, dir)
	copy(psi, read[base:base+np*ng])

	if dir == 0 {
		for si := range t.Segs {
			s := &t.Segs[si]
			o.applySegment(s, s.CmfdFwd, wtp, psi, tl)
		}
	} else {
		for si := len(t.Segs) - 1; si >= 0; si-- {
			s := &t.Segs[si]
			o.applySegment(s, s.CmfdBwd, wtp, psi, tl)
		}
	}

	var bc int
	var partner *trk.Track
	var partnerFwd bool
	if dir == 0 {
		bc, partner, partnerFwd = t.BcFwd, t.NextFwd, t.FwdFwd
	} else {
		bc, partner, partnerFwd = t.BcBwd, t.NextBwd, t.BwdFwd
	}
	pdir := 1
	if partnerFwd {
		pdir = 0
	}
	dst := o.bidx(partner.Id, pdir)

	if bc == geo.Vacuum {
		for p := 0; p < np; p++ {
			for g := 0; g < ng; g++ {
				tl.leak += wtp[p] * psi[p*ng+g]
			}
		}
		for i := 0; i < np*ng; i++ {
			write[dst+i] = 0.0
		}
		return
	}
	copy(write[dst:dst+np*ng], psi)
}

// applySegment attenuates the angular flux across one segment, tallies the
// drop into the segment's region, and tallies the outgoing flux onto the
// coarse surface the segment exits through (if any)
func (o *Solver) applySegment(s *trk.Segment, surf int, wtp, psi []float64, tl *sweepTally) {
	np, ng := o.quad.N, o.ng
	m := o.mats[s.FSR]
	for g := 0; g < ng; g++ {
		tau := m.SigT[g] * s.Length
		q := o.redSrc[s.FSR*ng+g]
		for p := 0; p < np; p++ {
			dpsi := (psi[p*ng+g] - q) * o.exp.Compute(tau, p)
			psi[p*ng+g] -= dpsi
			tl.acc[s.FSR*ng+g] += wtp[p] * dpsi
		}
	}
	if surf >= 0 && tl.cur != nil {
		for p := 0; p < np; p++ {
			for g := 0; g < ng; g++ {
				tl.cur[surf*ng+g] += wtp[p] * psi[p*ng+g]
			}
		}
	}
}
