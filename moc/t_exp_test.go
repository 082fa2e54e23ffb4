// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package moc

import (
	"math"
	"testing"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

func Test_quad01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("quad01. polar quadrature weights and sines")

	for _, n := range []int{1, 2, 3} {
		q, err := NewPolarQuad(n)
		if err != nil {
			tst.Errorf("%v", err)
			return
		}
		chk.IntAssert(q.N, n)
		sum := 0.0
		for p := 0; p < n; p++ {
			sum += q.Wgt[p]
			if !(q.SinT[p] > 0 && q.SinT[p] <= 1) {
				tst.Errorf("sine %g out of range", q.SinT[p])
				return
			}
			if p > 0 && q.SinT[p] <= q.SinT[p-1] {
				tst.Errorf("sines must be ascending")
				return
			}
		}
		chk.Float64(tst, "weight sum", 1e-12, sum, 1.0)
	}

	if _, err := NewPolarQuad(4); !ers.IsUsage(err) {
		tst.Errorf("expected usage error for npolar=4; got %v", err)
	}
}

func Test_exp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("exp01. interpolated exponentials match the exact form")

	q, _ := NewPolarQuad(3)
	exact := NewExpEvaluator(q, false)
	table := NewExpEvaluator(q, true)

	for _, tau := range utl.LinSpace(0, 12, 121) {
		for p := 0; p < q.N; p++ {
			fe := exact.Compute(tau, p)
			ft := table.Compute(tau, p)
			if math.Abs(fe-ft) > 1e-6 {
				tst.Errorf("table error %g at tau=%g p=%d", math.Abs(fe-ft), tau, p)
				return
			}
		}
	}

	// limits
	chk.Float64(tst, "tau=0", 1e-15, exact.Compute(0, 0), 0.0)
	chk.Float64(tst, "large tau", 1e-12, exact.Compute(50, 2), 1.0)
}
