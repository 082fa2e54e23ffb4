// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package moc

import "math"

// exponential table controls
const (
	expTableMaxTau = 10.0 // optical lengths beyond this fall back to the exact form
	expTableTolErr = 1e-7 // linear interpolation error bound
)

// ExpEvaluator computes the attenuation factor 1 - exp(-τ/sinθ) for each
// polar angle. The default is the exact expm1 form; an optional linear
// interpolation table trades a bounded error for speed on long sweeps
type ExpEvaluator struct {
	quad *PolarQuad

	// interpolation table (nil when disabled)
	dtau float64
	inv  float64     // 1/dtau
	vals [][]float64 // [npolar][npts]
}

// NewExpEvaluator prepares an evaluator for the given polar quadrature.
// With useTable the attenuation factors are linearly interpolated on a
// τ grid sized so the interpolation error stays below 1e-7
func NewExpEvaluator(q *PolarQuad, useTable bool) *ExpEvaluator {
	o := &ExpEvaluator{quad: q}
	if useTable {
		o.buildTable()
	}
	return o
}

// buildTable fills the interpolation grids. The curvature of
// F(τ) = 1 - exp(-τ/s) is bounded by 1/s², so the step keeping the linear
// interpolation error below the tolerance is s·sqrt(8·tol) for the
// smallest polar sine
func (o *ExpEvaluator) buildTable() {
	sinMin := o.quad.SinT[0]
	for _, s := range o.quad.SinT {
		if s < sinMin {
			sinMin = s
		}
	}
	o.dtau = sinMin * math.Sqrt(8.0*expTableTolErr)
	o.inv = 1.0 / o.dtau
	npts := int(math.Ceil(expTableMaxTau/o.dtau)) + 2
	o.vals = make([][]float64, o.quad.N)
	for p := 0; p < o.quad.N; p++ {
		v := make([]float64, npts)
		for i := range v {
			v[i] = -math.Expm1(-float64(i) * o.dtau / o.quad.SinT[p])
		}
		o.vals[p] = v
	}
}

// Compute returns 1 - exp(-τ/sinθp) for polar index p
func (o *ExpEvaluator) Compute(tau float64, p int) float64 {
	if o.vals != nil && tau < expTableMaxTau {
		f := tau * o.inv
		i := int(f)
		r := f - float64(i)
		row := o.vals[p]
		return row[i]*(1.0-r) + row[i+1]*r
	}
	return -math.Expm1(-tau / o.quad.SinT[p])
}
