// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"math"
	"os"

	"github.com/cpmech/gomoc/ers"
)

// Material holds the macroscopic cross sections of one material, per energy
// group. The scattering matrix is stored row-major with SigS[from*Ng+to]
// giving the cross section for scattering from group 'from' into group 'to'.
// Materials are immutable once loaded and shared by reference from cells.
type Material struct {

	// input
	Name   string    `json:"name"`   // name of material
	Ngrps  int       `json:"ngrps"`  // number of energy groups
	SigT   []float64 `json:"sigt"`   // [ngrps] total cross section
	SigA   []float64 `json:"siga"`   // [ngrps] absorption cross section
	SigS   []float64 `json:"sigs"`   // [ngrps*ngrps] scattering matrix (from*Ng+to)
	SigF   []float64 `json:"sigf"`   // [ngrps] fission cross section
	NuSigF []float64 `json:"nusigf"` // [ngrps] nu times fission cross section
	Chi    []float64 `json:"chi"`    // [ngrps] fission spectrum

	// derived
	Id      int  // index into the material database
	Fissile bool // whether any group has nonzero fission production
}

// Scat returns the cross section for scattering from group 'from' into
// group 'to' (both zero-based)
func (o *Material) Scat(from, to int) float64 {
	return o.SigS[from*o.Ngrps+to]
}

// ScatOut returns the total out-scattering cross section from group g,
// excluding within-group scattering
func (o *Material) ScatOut(g int) (sum float64) {
	for to := 0; to < o.Ngrps; to++ {
		if to != g {
			sum += o.SigS[g*o.Ngrps+to]
		}
	}
	return
}

// Validate checks array lengths and physical sanity of the cross sections
func (o *Material) Validate() error {
	if o.Ngrps < 1 {
		return ers.UsageErr("material %q: number of groups must be ≥ 1; got %d", o.Name, o.Ngrps)
	}
	ng := o.Ngrps
	if len(o.SigT) != ng || len(o.SigA) != ng {
		return ers.UsageErr("material %q: sigt and siga must have %d entries; got %d and %d", o.Name, ng, len(o.SigT), len(o.SigA))
	}
	if len(o.SigS) != ng*ng {
		return ers.UsageErr("material %q: sigs must have %d entries (row-major %dx%d); got %d", o.Name, ng*ng, ng, ng, len(o.SigS))
	}
	// fission arrays may be omitted for non-fissile materials
	if len(o.SigF) == 0 {
		o.SigF = make([]float64, ng)
	}
	if len(o.NuSigF) == 0 {
		o.NuSigF = make([]float64, ng)
	}
	if len(o.Chi) == 0 {
		o.Chi = make([]float64, ng)
	}
	if len(o.SigF) != ng || len(o.NuSigF) != ng || len(o.Chi) != ng {
		return ers.UsageErr("material %q: sigf, nusigf and chi must have %d entries", o.Name, ng)
	}
	for g := 0; g < ng; g++ {
		if o.SigT[g] < 0 || o.SigA[g] < 0 || o.SigF[g] < 0 || o.NuSigF[g] < 0 || o.Chi[g] < 0 {
			return ers.UsageErr("material %q: negative cross section in group %d", o.Name, g)
		}
		if o.NuSigF[g] > 0 {
			o.Fissile = true
		}
	}
	for i := 0; i < ng*ng; i++ {
		if o.SigS[i] < 0 {
			return ers.UsageErr("material %q: negative scattering entry %d", o.Name, i)
		}
	}
	if o.Fissile {
		var sum float64
		for g := 0; g < ng; g++ {
			sum += o.Chi[g]
		}
		if math.Abs(sum-1.0) > 1e-10 {
			return ers.UsageErr("material %q: fission spectrum must sum to 1; got %g", o.Name, sum)
		}
	}
	return nil
}

// MatDb implements a database of materials
type MatDb struct {

	// input
	Materials []*Material `json:"materials"` // all materials

	// derived
	byName map[string]*Material
}

// ReadMat reads all materials data from a .mat JSON file
func ReadMat(fn string) (mdb *MatDb, err error) {

	// read file
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, ers.UsageErr("cannot read materials file %q: %v", fn, err)
	}

	// decode
	mdb = new(MatDb)
	err = json.Unmarshal(b, mdb)
	if err != nil {
		return nil, ers.UsageErr("cannot unmarshal materials file %q: %v", fn, err)
	}

	// derived data
	err = mdb.Init()
	if err != nil {
		return nil, err
	}
	return
}

// Init validates all materials and builds the name map. All materials must
// agree on the number of energy groups
func (o *MatDb) Init() error {
	if len(o.Materials) == 0 {
		return ers.UsageErr("materials database is empty")
	}
	o.byName = make(map[string]*Material)
	ng := o.Materials[0].Ngrps
	for i, m := range o.Materials {
		m.Id = i
		if err := m.Validate(); err != nil {
			return err
		}
		if m.Ngrps != ng {
			return ers.UsageErr("material %q has %d groups; database uses %d", m.Name, m.Ngrps, ng)
		}
		if _, ok := o.byName[m.Name]; ok {
			return ers.UsageErr("duplicate material name %q", m.Name)
		}
		o.byName[m.Name] = m
	}
	return nil
}

// Get returns a material by name or nil if not present
func (o *MatDb) Get(name string) *Material {
	return o.byName[name]
}

// Ngroups returns the number of energy groups shared by all materials
func (o *MatDb) Ngroups() int {
	return o.Materials[0].Ngrps
}
