// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"math"

	"github.com/cpmech/gomoc/ers"
)

var infDist = math.Inf(1)

// Universe is a container of cells sharing one local coordinate frame.
// After FSR indexing it also carries the per-cell FSR id offsets that make
// flat-source-region ids dense and stable
type Universe struct {

	// definition
	Uid   int     // unique universe id
	Cells []*Cell // cells in this universe

	// derived: FSR indexing
	fsrOffsets []int // [len(Cells)] FSR id offset of each cell within this universe
	numFSRs    int   // number of FSRs contained in this universe (0 before indexing)
	visiting   bool  // cycle guard during indexing
	indexed    bool
}

// NewUniverse returns a universe with the given cells
func NewUniverse(id int, cells ...*Cell) *Universe {
	return &Universe{Uid: id, Cells: cells}
}

// AddCell appends a cell to the universe
func (o *Universe) AddCell(c *Cell) {
	o.Cells = append(o.Cells, c)
	o.indexed = false
}

// FindCell returns the first cell containing p and its index, or nil if the
// point falls into a gap of the CSG definition
func (o *Universe) FindCell(p Point) (*Cell, int) {
	for i, c := range o.Cells {
		if c.Contains(p) {
			return c, i
		}
	}
	return nil, -1
}

// NumFSRs returns the number of flat source regions contained in this
// universe (valid after geometry indexing)
func (o *Universe) NumFSRs() int { return o.numFSRs }

// indexFSRs computes numFSRs and the per-cell offsets, recursing into
// nested universes and lattices. Universes reused in several places are
// indexed once; a universe reached while still being indexed means the
// definition is cyclic
func (o *Universe) indexFSRs() (int, error) {
	if o.indexed {
		return o.numFSRs, nil
	}
	if o.visiting {
		return 0, ers.GeomErr("universe %d is part of a cycle in the CSG definition", o.Uid)
	}
	o.visiting = true
	defer func() { o.visiting = false }()

	o.fsrOffsets = make([]int, len(o.Cells))
	count := 0
	for i, c := range o.Cells {
		o.fsrOffsets[i] = count
		switch c.Fill {
		case MaterialFill:
			count++
		case UniverseFill:
			n, err := c.Univ.indexFSRs()
			if err != nil {
				return 0, err
			}
			count += n
		case LatticeFill:
			n, err := c.Lat.indexFSRs()
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

// collectFSRs expands every FSR occurrence below this universe, in offset
// order, appending the owning cell of each dense id starting at base
func (o *Universe) collectFSRs(base int, cells []*Cell) {
	for i, c := range o.Cells {
		off := base + o.fsrOffsets[i]
		switch c.Fill {
		case MaterialFill:
			cells[off] = c
		case UniverseFill:
			c.Univ.collectFSRs(off, cells)
		case LatticeFill:
			c.Lat.collectFSRs(off, cells)
		}
	}
}
