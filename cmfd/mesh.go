// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cmfd implements the coarse-mesh finite-difference acceleration:
// a structured mesh overlaid on the flat-source-region grid, homogenization
// of cross sections and currents, the coarse diffusion-like balance solve,
// and the prolongation of the coarse correction back onto the fine mesh
package cmfd

import (
	"math"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
)

// surface sides of one coarse cell
const (
	SideLeft = iota
	SideBottom
	SideRight
	SideTop
	numSides
)

// gridSnapTol is the absolute tolerance for deciding that a point sits on a
// coarse grid line when attributing surface crossings
const gridSnapTol = 1e-9

// Mesh is the structured coarse overlay. Cell (ix,iy) has id iy*Nx+ix with
// iy=0 the bottom row; surface ids are cell*4+side. Cross sections and
// coupling coefficients are rebuilt from the fine mesh every acceleration
// step; the coarse flux is queryable after the first solve
type Mesh struct {

	// definition
	geom   *geo.Geometry
	nx, ny int
	ng     int
	dx, dy float64

	// FSR membership: per coarse cell, the FSRs whose tracked length falls
	// mostly inside it
	fsrCell  []int             // [nfsr] coarse cell of each FSR (-1 before assignment)
	fsrLen   []map[int]float64 // [nfsr] tallied track length per candidate cell
	cellFSRs [][]int           // [ncells] FSR ids per cell
	assigned bool

	// homogenized data, rebuilt by Homogenize
	vol    []float64   // [ncells]
	sigT   [][]float64 // [ncells][ng]
	sigA   [][]float64 // [ncells][ng]
	nuSigF [][]float64 // [ncells][ng]
	chi    [][]float64 // [ncells][ng]
	difC   [][]float64 // [ncells][ng] diffusion coefficient 1/(3 sigT)
	sigS   [][]float64 // [ncells][ng*ng] scattering (from*ng+to)
	extSrc [][]float64 // [ncells][ng] homogenized external source (fixed-source mode)

	// sweep tallies and solution
	currents [][]float64 // [ncells*4][ng] outward directed partial currents
	fluxOld  []float64   // [ncells*ng] homogenized flux before the coarse solve
	fluxNew  []float64   // [ncells*ng] coarse solution
	keff     float64
	solved   bool
}

// NewMesh returns a coarse mesh with nx by ny cells covering the geometry's
// bounding box
func NewMesh(g *geo.Geometry, nx, ny int) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, ers.UsageErr("coarse mesh dimensions must be ≥ 1; got %d x %d", nx, ny)
	}
	if g.NumFSRs() < 1 {
		return nil, ers.UsageErr("coarse mesh requires an FSR-indexed geometry")
	}
	o := &Mesh{
		geom: g,
		nx:   nx, ny: ny,
		ng: g.NumEnergyGroups(),
		dx: g.Width() / float64(nx),
		dy: g.Height() / float64(ny),
	}
	n := nx * ny
	nfsr := g.NumFSRs()
	o.fsrCell = make([]int, nfsr)
	o.fsrLen = make([]map[int]float64, nfsr)
	for i := range o.fsrCell {
		o.fsrCell[i] = -1
	}
	o.cellFSRs = make([][]int, n)
	o.vol = make([]float64, n)
	o.sigT = alloc2(n, o.ng)
	o.sigA = alloc2(n, o.ng)
	o.nuSigF = alloc2(n, o.ng)
	o.chi = alloc2(n, o.ng)
	o.difC = alloc2(n, o.ng)
	o.sigS = alloc2(n, o.ng*o.ng)
	o.extSrc = alloc2(n, o.ng)
	o.currents = alloc2(n*numSides, o.ng)
	o.fluxOld = make([]float64, n*o.ng)
	o.fluxNew = make([]float64, n*o.ng)
	return o, nil
}

func alloc2(m, n int) [][]float64 {
	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, n)
	}
	return a
}

// dimensions and metadata accessors
func (o *Mesh) NumCellsX() int      { return o.nx }
func (o *Mesh) NumCellsY() int      { return o.ny }
func (o *Mesh) NumCells() int       { return o.nx * o.ny }
func (o *Mesh) NumGroups() int      { return o.ng }
func (o *Mesh) NumSurfaces() int    { return o.nx * o.ny * numSides }
func (o *Mesh) LengthX() float64    { return o.geom.Width() }
func (o *Mesh) LengthY() float64    { return o.geom.Height() }
func (o *Mesh) CellWidth() float64  { return o.dx }
func (o *Mesh) CellHeight() float64 { return o.dy }

// SolveType reports how the coarse flux was produced; the only mode
// implemented is the transport-coupled balance solve (1)
func (o *Mesh) SolveType() int { return 1 }

// FindCellId returns the id of the coarse cell containing p
func (o *Mesh) FindCellId(p geo.Point) (int, error) {
	if !o.geom.Contains(p) {
		return -1, ers.GeomErr("point (%g,%g) is outside the coarse mesh extent x=[%g,%g] y=[%g,%g]",
			p.X, p.Y, o.geom.XMin(), o.geom.XMax(), o.geom.YMin(), o.geom.YMax())
	}
	ix := clampInt(int(math.Floor((p.X-o.geom.XMin())/o.dx)), 0, o.nx-1)
	iy := clampInt(int(math.Floor((p.Y-o.geom.YMin())/o.dy)), 0, o.ny-1)
	return iy*o.nx + ix, nil
}

// Flux returns the coarse scalar flux of one cell and group. It is a usage
// error to call it before a coarse solve has completed
func (o *Mesh) Flux(cell, group int) (float64, error) {
	if !o.solved {
		return 0, ers.UsageErr("coarse flux requested before any coarse solve")
	}
	if cell < 0 || cell >= o.NumCells() {
		return 0, ers.UsageErr("coarse cell id %d is out of range [0,%d)", cell, o.NumCells())
	}
	if group < 0 || group >= o.ng {
		return 0, ers.UsageErr("energy group %d is out of range [0,%d)", group, o.ng)
	}
	return o.fluxNew[cell*o.ng+group], nil
}

// Keff returns the latest coarse eigenvalue estimate
func (o *Mesh) Keff() float64 { return o.keff }

// RegisterFSR tallies tracked length of an FSR inside a coarse cell during
// segmentation; FinalizeFSRs later assigns each FSR to the cell holding the
// majority of its length
func (o *Mesh) RegisterFSR(fsr, cell int, length float64) {
	if o.fsrLen[fsr] == nil {
		o.fsrLen[fsr] = make(map[int]float64)
	}
	o.fsrLen[fsr][cell] += length
}

// FinalizeFSRs completes the FSR-to-coarse-cell assignment. Every FSR must
// have been seen by at least one track
func (o *Mesh) FinalizeFSRs() error {
	for fsr, lens := range o.fsrLen {
		best, bestLen := -1, 0.0
		for cell, l := range lens {
			if l > bestLen {
				best, bestLen = cell, l
			}
		}
		if best < 0 {
			return ers.GeomErr("FSR %d was not crossed by any track; refine the track laydown", fsr)
		}
		o.fsrCell[fsr] = best
		o.cellFSRs[best] = append(o.cellFSRs[best], fsr)
	}
	for cell, fsrs := range o.cellFSRs {
		if len(fsrs) == 0 {
			return ers.GeomErr("coarse cell %d contains no FSR; coarsen the mesh", cell)
		}
	}
	o.assigned = true
	return nil
}

// CellOfFSR returns the coarse cell assigned to an FSR
func (o *Mesh) CellOfFSR(fsr int) int { return o.fsrCell[fsr] }

// DistanceToGridLine returns the smallest positive distance from p along
// the ray at angle phi to any interior coarse grid line, or +Inf
func (o *Mesh) DistanceToGridLine(p geo.Point, phi float64) float64 {
	d := math.Inf(1)
	u := math.Cos(phi)
	v := math.Sin(phi)
	x0 := o.geom.XMin()
	y0 := o.geom.YMin()
	if math.Abs(u) > geo.OnSurfTol {
		var i int
		if u > 0 {
			i = int(math.Floor((p.X-x0)/o.dx)) + 1
		} else {
			i = int(math.Ceil((p.X-x0)/o.dx)) - 1
		}
		if i >= 1 && i <= o.nx-1 {
			if t := (x0 + float64(i)*o.dx - p.X) / u; t > geo.TinyMove && t < d {
				d = t
			}
		}
	}
	if math.Abs(v) > geo.OnSurfTol {
		var j int
		if v > 0 {
			j = int(math.Floor((p.Y-y0)/o.dy)) + 1
		} else {
			j = int(math.Ceil((p.Y-y0)/o.dy)) - 1
		}
		if j >= 1 && j <= o.ny-1 {
			if t := (y0 + float64(j)*o.dy - p.Y) / v; t > geo.TinyMove && t < d {
				d = t
			}
		}
	}
	return d
}

// CrossingSurface returns the id of the coarse surface being EXITED by a
// particle at p moving along (u,v), or -1 when p is not on a grid line.
// Domain edges count as grid lines so boundary leakage is tallied too
func (o *Mesh) CrossingSurface(p geo.Point, u, v float64) int {
	x0 := o.geom.XMin()
	y0 := o.geom.YMin()

	// vertical line?
	fx := (p.X - x0) / o.dx
	i := int(math.Floor(fx + 0.5))
	if math.Abs(p.X-(x0+float64(i)*o.dx)) < gridSnapTol && i >= 0 && i <= o.nx {
		if math.Abs(u) > geo.OnSurfTol {
			var ix, side int
			if u > 0 {
				ix, side = i-1, SideRight
			} else {
				ix, side = i, SideLeft
			}
			if ix >= 0 && ix <= o.nx-1 {
				iy := clampInt(int(math.Floor((p.Y-y0)/o.dy)), 0, o.ny-1)
				return (iy*o.nx+ix)*numSides + side
			}
		}
	}

	// horizontal line?
	fy := (p.Y - y0) / o.dy
	j := int(math.Floor(fy + 0.5))
	if math.Abs(p.Y-(y0+float64(j)*o.dy)) < gridSnapTol && j >= 0 && j <= o.ny {
		if math.Abs(v) > geo.OnSurfTol {
			var jy, side int
			if v > 0 {
				jy, side = j-1, SideTop
			} else {
				jy, side = j, SideBottom
			}
			if jy >= 0 && jy <= o.ny-1 {
				ix := clampInt(int(math.Floor((p.X-x0)/o.dx)), 0, o.nx-1)
				return (jy*o.nx+ix)*numSides + side
			}
		}
	}
	return -1
}

// ZeroCurrents resets the surface current tallies before a sweep
func (o *Mesh) ZeroCurrents() {
	for s := range o.currents {
		for g := range o.currents[s] {
			o.currents[s][g] = 0
		}
	}
}

// AddCurrent accumulates an outward partial current tally on a surface.
// Callers merge per-worker partials serially after the sweep barrier
func (o *Mesh) AddCurrent(surf, g int, w float64) {
	o.currents[surf][g] += w
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
