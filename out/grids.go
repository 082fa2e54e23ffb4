// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package out samples converged results onto regular grids for plotting
// and postprocessing. Grids are returned row-major with row 0 at the
// bottom edge (y increasing with row index)
package out

import (
	"github.com/cpmech/gomoc/cmfd"
	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/moc"
	"github.com/cpmech/gosl/utl"
)

// sampleCoords returns gridsize sample abscissae inset half a pixel from
// each end so no sample sits exactly on the domain boundary
func sampleCoords(lo, hi float64, gridsize int) []float64 {
	d := (hi - lo) / float64(gridsize)
	return utl.LinSpace(lo+0.5*d, hi-0.5*d, gridsize)
}

func checkGridsize(gridsize int) error {
	if gridsize < 1 {
		return ers.UsageErr("grid size must be ≥ 1; got %d", gridsize)
	}
	return nil
}

// MaterialGrid samples the material id at every grid point
func MaterialGrid(g *geo.Geometry, gridsize int) ([][]int, error) {
	if err := checkGridsize(gridsize); err != nil {
		return nil, err
	}
	xs := sampleCoords(g.XMin(), g.XMax(), gridsize)
	ys := sampleCoords(g.YMin(), g.YMax(), gridsize)
	grid := make([][]int, gridsize)
	for j, y := range ys {
		grid[j] = make([]int, gridsize)
		for i, x := range xs {
			chain, err := g.FindCellContainingCoords(geo.Point{X: x, Y: y})
			if err != nil {
				return nil, err
			}
			m, err := chain.Lowest().Cell.Material()
			if err != nil {
				return nil, err
			}
			grid[j][i] = m.Id
		}
	}
	return grid, nil
}

// CellGrid samples the id of the lowest-level cell at every grid point
func CellGrid(g *geo.Geometry, gridsize int) ([][]int, error) {
	if err := checkGridsize(gridsize); err != nil {
		return nil, err
	}
	xs := sampleCoords(g.XMin(), g.XMax(), gridsize)
	ys := sampleCoords(g.YMin(), g.YMax(), gridsize)
	grid := make([][]int, gridsize)
	for j, y := range ys {
		grid[j] = make([]int, gridsize)
		for i, x := range xs {
			chain, err := g.FindCellContainingCoords(geo.Point{X: x, Y: y})
			if err != nil {
				return nil, err
			}
			grid[j][i] = chain.Lowest().Cell.Cid
		}
	}
	return grid, nil
}

// FSRGrid samples the flat source region id at every grid point
func FSRGrid(g *geo.Geometry, gridsize int) ([][]int, error) {
	if err := checkGridsize(gridsize); err != nil {
		return nil, err
	}
	xs := sampleCoords(g.XMin(), g.XMax(), gridsize)
	ys := sampleCoords(g.YMin(), g.YMax(), gridsize)
	grid := make([][]int, gridsize)
	for j, y := range ys {
		grid[j] = make([]int, gridsize)
		for i, x := range xs {
			id, err := g.FindFSRId(geo.Point{X: x, Y: y})
			if err != nil {
				return nil, err
			}
			grid[j][i] = id
		}
	}
	return grid, nil
}

// FluxGrid samples the converged scalar flux of one group at every grid
// point, looking the flux up by flat source region
func FluxGrid(s *moc.Solver, g *geo.Geometry, gridsize, group int) ([][]float64, error) {
	if err := checkGridsize(gridsize); err != nil {
		return nil, err
	}
	xs := sampleCoords(g.XMin(), g.XMax(), gridsize)
	ys := sampleCoords(g.YMin(), g.YMax(), gridsize)
	grid := make([][]float64, gridsize)
	for j, y := range ys {
		grid[j] = make([]float64, gridsize)
		for i, x := range xs {
			id, err := g.FindFSRId(geo.Point{X: x, Y: y})
			if err != nil {
				return nil, err
			}
			phi, err := s.FSRScalarFlux(id, group)
			if err != nil {
				return nil, err
			}
			grid[j][i] = phi
		}
	}
	return grid, nil
}

// MeshFluxGrid samples the coarse-mesh solution of one group at every grid
// point of the geometry bounding box
func MeshFluxGrid(m *cmfd.Mesh, g *geo.Geometry, gridsize, group int) ([][]float64, error) {
	if err := checkGridsize(gridsize); err != nil {
		return nil, err
	}
	xs := sampleCoords(g.XMin(), g.XMax(), gridsize)
	ys := sampleCoords(g.YMin(), g.YMax(), gridsize)
	grid := make([][]float64, gridsize)
	for j, y := range ys {
		grid[j] = make([]float64, gridsize)
		for i, x := range xs {
			cell, err := m.FindCellId(geo.Point{X: x, Y: y})
			if err != nil {
				return nil, err
			}
			phi, err := m.Flux(cell, group)
			if err != nil {
				return nil, err
			}
			grid[j][i] = phi
		}
	}
	return grid, nil
}
