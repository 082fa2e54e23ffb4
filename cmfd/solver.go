// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmfd

import (
	"math"

	"github.com/cpmech/gomoc/ers"
	"github.com/cpmech/gomoc/geo"
	"github.com/cpmech/gomoc/inp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// inner (coarse) iteration controls
const (
	innerTolK    = 1e-10 // eigenvalue convergence of the coarse power iteration
	innerTolFlux = 1e-8  // flux convergence of the coarse iterations
	innerMaxIt   = 20000
	fluxFloor    = 1e-30 // below this a flux is treated as zero
)

// Accelerate performs one full acceleration step strictly between sweeps:
// homogenize the fine-mesh solution, solve the coarse balance, and
// prolongate the coarse correction back onto fsrFlux. It returns the coarse
// eigenvalue estimate (mode inp.SolveEigenvalue) or keff unchanged
// (fixed-source mode). fsrExtSrc may be nil for eigenvalue problems
func (o *Mesh) Accelerate(fsrFlux, fsrExtSrc []float64, mode string, keff, relax, condMax float64) (float64, error) {
	if !o.assigned {
		return keff, ers.UsageErr("coarse acceleration requested before FSR assignment (segmentation)")
	}
	err := o.Homogenize(fsrFlux, fsrExtSrc)
	if err != nil {
		return keff, err
	}
	knew, err := o.Solve(mode, keff, condMax)
	if err != nil {
		return keff, err
	}
	o.Prolongate(fsrFlux, relax)
	return knew, nil
}

// Homogenize condenses FSR cross sections and fluxes into the coarse cells
// using flux-volume weighting; fission spectra are production-weighted.
// fsrExtSrc (optional) is the external source density per FSR and group
func (o *Mesh) Homogenize(fsrFlux, fsrExtSrc []float64) error {
	ng := o.ng
	for c := range o.cellFSRs {
		vol := 0.0
		fv := make([]float64, ng) // flux-volume per group
		rt := make([]float64, ng) // sigT flux-volume
		ra := make([]float64, ng) // sigA flux-volume
		rf := make([]float64, ng) // nuSigF flux-volume
		rs := make([]float64, ng*ng)
		qc := make([]float64, ng)
		chiW := make([]float64, ng) // production-weighted spectrum
		prodTot := 0.0

		for _, fsr := range o.cellFSRs[c] {
			v := o.geom.FSRVolume(fsr)
			m, err := o.geom.FSRMaterial(fsr)
			if err != nil {
				return err
			}
			vol += v
			prod := 0.0
			for g := 0; g < ng; g++ {
				pv := fsrFlux[fsr*ng+g] * v
				fv[g] += pv
				rt[g] += m.SigT[g] * pv
				ra[g] += m.SigA[g] * pv
				rf[g] += m.NuSigF[g] * pv
				prod += m.NuSigF[g] * pv
				for gp := 0; gp < ng; gp++ {
					rs[g*ng+gp] += m.Scat(g, gp) * pv
				}
				if fsrExtSrc != nil {
					qc[g] += fsrExtSrc[fsr*ng+g] * v
				}
			}
			prodTot += prod
			for g := 0; g < ng; g++ {
				chiW[g] += m.Chi[g] * prod
			}
		}
		if vol < fluxFloor {
			return ers.GeomErr("coarse cell %d has zero tracked volume", c)
		}

		o.vol[c] = vol
		for g := 0; g < ng; g++ {
			phiV := fv[g]
			o.fluxOld[c*ng+g] = phiV / vol
			if phiV < fluxFloor {
				return ers.NumErr("coarse cell %d has vanishing flux in group %d; cannot homogenize", c, g)
			}
			o.sigT[c][g] = rt[g] / phiV
			o.sigA[c][g] = ra[g] / phiV
			o.nuSigF[c][g] = rf[g] / phiV
			o.extSrc[c][g] = qc[g] // volume-integrated
			if o.sigT[c][g] > 0 {
				o.difC[c][g] = 1.0 / (3.0 * o.sigT[c][g])
			} else {
				return ers.NumErr("coarse cell %d has degenerate total cross section in group %d", c, g)
			}
			for gp := 0; gp < ng; gp++ {
				o.sigS[c][g*ng+gp] = rs[g*ng+gp] / phiV
			}
			if prodTot > 0 {
				o.chi[c][g] = chiW[g] / prodTot
			} else {
				o.chi[c][g] = 0
			}
		}
	}
	return nil
}

// neighborOf returns the cell across the given side, or -1 at the domain edge
func (o *Mesh) neighborOf(c, side int) int {
	ix := c % o.nx
	iy := c / o.nx
	switch side {
	case SideLeft:
		ix--
	case SideRight:
		ix++
	case SideBottom:
		iy--
	case SideTop:
		iy++
	}
	if ix < 0 || ix >= o.nx || iy < 0 || iy >= o.ny {
		return -1
	}
	return iy*o.nx + ix
}

func oppositeSide(side int) int {
	switch side {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideBottom:
		return SideTop
	}
	return SideBottom
}

func (o *Mesh) boundaryCond(side int) int {
	switch side {
	case SideLeft:
		return o.geom.BcLeft()
	case SideRight:
		return o.geom.BcRight()
	case SideBottom:
		return o.geom.BcBottom()
	}
	return o.geom.BcTop()
}

// faceGeom returns the face length and the cell width across the face
func (o *Mesh) faceGeom(side int) (faceLen, h float64) {
	if side == SideLeft || side == SideRight {
		return o.dy, o.dx
	}
	return o.dx, o.dy
}

// assemble builds the loss matrix M and the fission matrix F of the coarse
// balance, including the diffusion coupling D̂ and the current-matching
// correction D̃ that reproduces the transport net currents exactly. D̃ is
// clamped to |D̃| ≤ D̂ to keep M diagonally dominant while the tallied
// currents are still noisy
func (o *Mesh) assemble() (M, F *mat.Dense) {
	ng := o.ng
	n := o.NumCells() * ng
	M = mat.NewDense(n, n, nil)
	F = mat.NewDense(n, n, nil)

	for c := 0; c < o.NumCells(); c++ {
		vol := o.vol[c]
		for g := 0; g < ng; g++ {
			row := c*ng + g

			// removal: absorption plus out-scattering
			rem := o.sigA[c][g] * vol
			for gp := 0; gp < ng; gp++ {
				if gp != g {
					rem += o.sigS[c][g*ng+gp] * vol
				}
			}
			M.Set(row, row, M.At(row, row)+rem)

			// in-scattering
			for gp := 0; gp < ng; gp++ {
				if gp != g {
					col := c*ng + gp
					M.Set(row, col, M.At(row, col)-o.sigS[c][gp*ng+g]*vol)
				}
			}

			// fission production
			for gp := 0; gp < ng; gp++ {
				F.Set(row, c*ng+gp, o.chi[c][g]*o.nuSigF[c][gp]*vol)
			}

			// streaming through the four faces
			phic := o.fluxOld[row]
			for side := 0; side < numSides; side++ {
				faceLen, h := o.faceGeom(side)
				dc := o.difC[c][g]
				nb := o.neighborOf(c, side)

				if nb < 0 {
					if o.boundaryCond(side) == geo.Reflective {
						continue // zero net current
					}
					// vacuum: diffusion estimate with Marshak-like boundary
					dhat := (2.0 * dc / h) / (1.0 + 4.0*dc/h)
					jm := o.currents[c*numSides+side][g]
					dtil := 0.0
					if phic > fluxFloor {
						dtil = (jm/faceLen - dhat*phic) / phic
					}
					dtil = clamp(dtil, -dhat, dhat)
					M.Set(row, row, M.At(row, row)+faceLen*(dhat+dtil))
					continue
				}

				dn := o.difC[nb][g]
				dhat := 0.0
				if dc+dn > 0 {
					dhat = 2.0 * dc * dn / (h * (dc + dn))
				}
				phin := o.fluxOld[nb*ng+g]
				jm := o.currents[c*numSides+side][g] - o.currents[nb*numSides+oppositeSide(side)][g]
				dtil := 0.0
				if phic+phin > fluxFloor {
					dtil = -(jm/faceLen + dhat*(phin-phic)) / (phin + phic)
				}
				dtil = clamp(dtil, -dhat, dhat)
				M.Set(row, row, M.At(row, row)+faceLen*(dhat-dtil))
				col := nb*ng + g
				M.Set(row, col, M.At(row, col)-faceLen*(dhat+dtil))
			}
		}
	}
	return
}

// Solve factorizes the coarse loss matrix and solves the balance: a power
// iteration on M φ = (1/k) F φ in eigenvalue mode, or M φ = F φ + q in
// fixed-source mode. An ill-conditioned M is reported, never worked around
func (o *Mesh) Solve(mode string, keff, condMax float64) (float64, error) {
	n := o.NumCells() * o.ng
	M, F := o.assemble()

	var lu mat.LU
	lu.Factorize(M)
	cond := lu.Cond()
	if math.IsInf(cond, 1) || math.IsNaN(cond) || cond > condMax {
		return keff, ers.NumErr("coarse-mesh system is ill-conditioned: condition number %g exceeds limit %g", cond, condMax)
	}

	phi := mat.NewVecDense(n, nil)
	copy(phi.RawVector().Data, o.fluxOld)
	work := mat.NewVecDense(n, nil)
	next := mat.NewVecDense(n, nil)

	switch mode {
	case inp.SolveEigenvalue:
		prod := fissionSum(F, phi, work)
		if prod <= 0 {
			return keff, ers.UsageErr("eigenvalue coarse solve requires fissile material in the mesh")
		}
		k := keff
		for it := 0; it < innerMaxIt; it++ {
			work.MulVec(F, phi)
			work.ScaleVec(1.0/k, work)
			err := lu.SolveVecTo(next, false, work)
			if err != nil {
				return keff, ers.NumErr("coarse-mesh solve failed: %v", err)
			}
			pnew := fissionSum(F, next, work)
			knew := k * pnew / prod
			dflux := relDiff(next.RawVector().Data, phi.RawVector().Data)
			phi.CopyVec(next)
			prod = pnew
			if math.Abs(knew-k) < innerTolK && dflux < innerTolFlux {
				k = knew
				copy(o.fluxNew, phi.RawVector().Data)
				o.normalizeToOld()
				o.keff = k
				o.solved = true
				return k, nil
			}
			k = knew
		}
		return keff, ers.NumErr("coarse power iteration did not converge within %d iterations", innerMaxIt)

	case inp.SolveFixedSource:
		q := mat.NewVecDense(n, nil)
		for c := 0; c < o.NumCells(); c++ {
			for g := 0; g < o.ng; g++ {
				q.SetVec(c*o.ng+g, o.extSrc[c][g])
			}
		}
		for it := 0; it < innerMaxIt; it++ {
			work.MulVec(F, phi)
			work.AddVec(work, q)
			err := lu.SolveVecTo(next, false, work)
			if err != nil {
				return keff, ers.NumErr("coarse-mesh solve failed: %v", err)
			}
			dflux := relDiff(next.RawVector().Data, phi.RawVector().Data)
			phi.CopyVec(next)
			if dflux < innerTolFlux {
				copy(o.fluxNew, phi.RawVector().Data)
				o.keff = keff
				o.solved = true
				return keff, nil
			}
		}
		return keff, ers.NumErr("coarse fixed-source iteration did not converge within %d iterations", innerMaxIt)
	}
	return keff, ers.UsageErr("unknown solve mode %q", mode)
}

// normalizeToOld rescales the coarse solution so its total fission
// production matches the homogenized fine-mesh solution, making the
// prolongation ratios meaningful
func (o *Mesh) normalizeToOld() {
	ng := o.ng
	pOld, pNew := 0.0, 0.0
	for c := 0; c < o.NumCells(); c++ {
		for g := 0; g < ng; g++ {
			pOld += o.nuSigF[c][g] * o.fluxOld[c*ng+g] * o.vol[c]
			pNew += o.nuSigF[c][g] * o.fluxNew[c*ng+g] * o.vol[c]
		}
	}
	if pNew > 0 && pOld > 0 {
		floats.Scale(pOld/pNew, o.fluxNew)
	}
}

// Prolongate multiplies every FSR flux by the (under-relaxed) ratio of the
// coarse solution to the homogenized flux of its coarse cell, preserving
// the coarse-cell reaction-rate balance for relax=1
func (o *Mesh) Prolongate(fsrFlux []float64, relax float64) {
	ng := o.ng
	for fsr, cell := range o.fsrCell {
		if cell < 0 {
			continue
		}
		for g := 0; g < ng; g++ {
			fold := o.fluxOld[cell*ng+g]
			fnew := o.fluxNew[cell*ng+g]
			if fold > fluxFloor && fnew > 0 {
				ratio := fnew / fold
				fsrFlux[fsr*ng+g] *= 1.0 + relax*(ratio-1.0)
			}
		}
	}
}

// fissionSum returns the total fission production sum(F φ)
func fissionSum(F *mat.Dense, phi, work *mat.VecDense) float64 {
	work.MulVec(F, phi)
	return floats.Sum(work.RawVector().Data)
}

// relDiff returns the largest relative componentwise difference
func relDiff(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		den := math.Abs(b[i])
		if den < fluxFloor {
			den = fluxFloor
		}
		if r := math.Abs(a[i]-b[i]) / den; r > d {
			d = r
		}
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
