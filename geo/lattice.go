// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"math"

	"github.com/cpmech/gomoc/ers"
)

// Lattice is a regular Nx by Ny rectangular arrangement of universes with
// uniform pitch, centred on the origin of its parent cell's frame. Each
// lattice cell translates points into the frame of its filling universe,
// whose origin sits at the lattice cell centre
type Lattice struct {

	// definition
	Lid    int           // unique lattice id
	Nx, Ny int           // number of lattice cells along x and y
	PitchX float64       // pitch along x
	PitchY float64       // pitch along y
	Univs  [][]*Universe // [Ny][Nx] universes; y index 0 is the BOTTOM row

	// derived: FSR indexing
	fsrOffsets [][]int // [Ny][Nx] FSR id offset of each lattice position
	numFSRs    int
	indexed    bool
}

// NewLattice returns a lattice. univs is indexed [Ny][Nx] with y index 0 at
// the bottom row, i.e. univs[iy][ix] fills the lattice cell whose centre is
// at (xmin+(ix+0.5)·PitchX, ymin+(iy+0.5)·PitchY) in the lattice frame
func NewLattice(id, nx, ny int, pitchx, pitchy float64, univs [][]*Universe) *Lattice {
	return &Lattice{Lid: id, Nx: nx, Ny: ny, PitchX: pitchx, PitchY: pitchy, Univs: univs}
}

// Width returns the total lattice extent along x
func (o *Lattice) Width() float64 { return float64(o.Nx) * o.PitchX }

// Height returns the total lattice extent along y
func (o *Lattice) Height() float64 { return float64(o.Ny) * o.PitchY }

// Find locates the lattice cell containing p (in the lattice frame) via
// integer division of the offset by the pitch, and returns the indices and
// the point translated into the filling universe's frame
func (o *Lattice) Find(p Point) (ix, iy int, local Point, err error) {
	hw := 0.5 * o.Width()
	hh := 0.5 * o.Height()
	if p.X < -hw-OnSurfTol || p.X > hw+OnSurfTol || p.Y < -hh-OnSurfTol || p.Y > hh+OnSurfTol {
		err = ers.GeomErr("point (%g,%g) is outside lattice %d extent [%g,%g]x[%g,%g]", p.X, p.Y, o.Lid, -hw, hw, -hh, hh)
		return
	}
	ix = int(math.Floor((p.X + hw) / o.PitchX))
	iy = int(math.Floor((p.Y + hh) / o.PitchY))
	if ix < 0 {
		ix = 0
	}
	if ix > o.Nx-1 {
		ix = o.Nx - 1
	}
	if iy < 0 {
		iy = 0
	}
	if iy > o.Ny-1 {
		iy = o.Ny - 1
	}
	cx := -hw + (float64(ix)+0.5)*o.PitchX
	cy := -hh + (float64(iy)+0.5)*o.PitchY
	local = Point{p.X - cx, p.Y - cy}
	return
}

// MinDistance returns the smallest positive ray distance from p (lattice
// cell local frame) to the walls of the lattice cell
func (o *Lattice) MinDistance(local Point, phi float64) float64 {
	d := infDist
	u := math.Cos(phi)
	v := math.Sin(phi)
	if math.Abs(u) > OnSurfTol {
		if t := (0.5*o.PitchX - local.X) / u; t > TinyMove && t < d {
			d = t
		}
		if t := (-0.5*o.PitchX - local.X) / u; t > TinyMove && t < d {
			d = t
		}
	}
	if math.Abs(v) > OnSurfTol {
		if t := (0.5*o.PitchY - local.Y) / v; t > TinyMove && t < d {
			d = t
		}
		if t := (-0.5*o.PitchY - local.Y) / v; t > TinyMove && t < d {
			d = t
		}
	}
	return d
}

// NumFSRs returns the number of flat source regions contained in this
// lattice (valid after geometry indexing)
func (o *Lattice) NumFSRs() int { return o.numFSRs }

// Offset returns the FSR id offset of lattice position (ix, iy)
func (o *Lattice) Offset(ix, iy int) int { return o.fsrOffsets[iy][ix] }

// indexFSRs computes offsets for every lattice position in row-major order
// (bottom row first). The same universe instance placed in several
// positions is indexed once but contributes its FSR count at each position
func (o *Lattice) indexFSRs() (int, error) {
	if o.indexed {
		return o.numFSRs, nil
	}
	o.fsrOffsets = make([][]int, o.Ny)
	count := 0
	for iy := 0; iy < o.Ny; iy++ {
		o.fsrOffsets[iy] = make([]int, o.Nx)
		for ix := 0; ix < o.Nx; ix++ {
			o.fsrOffsets[iy][ix] = count
			n, err := o.Univs[iy][ix].indexFSRs()
			if err != nil {
				return 0, err
			}
			count += n
		}
	}
	o.numFSRs = count
	o.indexed = true
	return count, nil
}

// collectFSRs expands every FSR occurrence below this lattice
func (o *Lattice) collectFSRs(base int, cells []*Cell) {
	for iy := 0; iy < o.Ny; iy++ {
		for ix := 0; ix < o.Nx; ix++ {
			o.Univs[iy][ix].collectFSRs(base+o.fsrOffsets[iy][ix], cells)
		}
	}
}
