// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package moc implements the method-of-characteristics transport sweep and
// the outer source iteration for eigenvalue and fixed-source problems
package moc

import "github.com/cpmech/gomoc/ers"

// PolarQuad is the Tabuchi-Yamamoto polar quadrature over (0, π/2)
type PolarQuad struct {
	N    int
	SinT []float64 // sines of the polar angles
	Wgt  []float64 // polar weights, summing to 1
}

// NewPolarQuad returns the Tabuchi-Yamamoto quadrature with n polar angles.
// n=1 uses the single flat angle sinθ=1 with unit weight
func NewPolarQuad(n int) (*PolarQuad, error) {
	switch n {
	case 1:
		return &PolarQuad{N: 1, SinT: []float64{1.0}, Wgt: []float64{1.0}}, nil
	case 2:
		return &PolarQuad{
			N:    2,
			SinT: []float64{0.363900, 0.899900},
			Wgt:  []float64{0.212854, 0.787146},
		}, nil
	case 3:
		return &PolarQuad{
			N:    3,
			SinT: []float64{0.166648, 0.537707, 0.932954},
			Wgt:  []float64{0.046233, 0.283619, 0.670148},
		}, nil
	}
	return nil, ers.UsageErr("number of polar angles must be 1, 2 or 3; got %d", n)
}
