// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import "math"

// Surface is one quadratic surface of the CSG model. Evaluate returns the
// signed potential of a point (negative on the 'negative' half-space) and
// DistanceToSurface returns the smallest positive distance from a point to
// the surface along the ray at azimuthal angle phi, or +Inf if the ray
// never crosses it
type Surface interface {
	Id() int
	Evaluate(p Point) float64
	DistanceToSurface(p Point, phi float64) float64
}

// XPlane is the plane x = X
type XPlane struct {
	Sid int     // surface id
	X   float64 // plane position
}

// YPlane is the plane y = Y
type YPlane struct {
	Sid int     // surface id
	Y   float64 // plane position
}

// Circle is the circle of radius R centred at (X0, Y0)
type Circle struct {
	Sid    int     // surface id
	X0, Y0 float64 // centre
	R      float64 // radius
}

// Id returns the surface id
func (o *XPlane) Id() int { return o.Sid }

// Evaluate returns x - X
func (o *XPlane) Evaluate(p Point) float64 { return p.X - o.X }

// DistanceToSurface returns the positive ray distance to the plane
func (o *XPlane) DistanceToSurface(p Point, phi float64) float64 {
	u := math.Cos(phi)
	if math.Abs(u) < OnSurfTol {
		return math.Inf(1)
	}
	t := (o.X - p.X) / u
	if t <= TinyMove {
		return math.Inf(1)
	}
	return t
}

// Id returns the surface id
func (o *YPlane) Id() int { return o.Sid }

// Evaluate returns y - Y
func (o *YPlane) Evaluate(p Point) float64 { return p.Y - o.Y }

// DistanceToSurface returns the positive ray distance to the plane
func (o *YPlane) DistanceToSurface(p Point, phi float64) float64 {
	v := math.Sin(phi)
	if math.Abs(v) < OnSurfTol {
		return math.Inf(1)
	}
	t := (o.Y - p.Y) / v
	if t <= TinyMove {
		return math.Inf(1)
	}
	return t
}

// Id returns the surface id
func (o *Circle) Id() int { return o.Sid }

// Evaluate returns (x-X0)² + (y-Y0)² - R²; negative inside the circle
func (o *Circle) Evaluate(p Point) float64 {
	dx := p.X - o.X0
	dy := p.Y - o.Y0
	return dx*dx + dy*dy - o.R*o.R
}

// DistanceToSurface returns the smallest positive ray distance to the circle
func (o *Circle) DistanceToSurface(p Point, phi float64) float64 {
	u := math.Cos(phi)
	v := math.Sin(phi)
	dx := p.X - o.X0
	dy := p.Y - o.Y0
	b := 2.0 * (dx*u + dy*v)
	c := dx*dx + dy*dy - o.R*o.R
	disc := b*b - 4.0*c
	if disc < 0 {
		return math.Inf(1)
	}
	sq := math.Sqrt(disc)
	t1 := 0.5 * (-b - sq)
	if t1 > TinyMove {
		return t1
	}
	t2 := 0.5 * (-b + sq)
	if t2 > TinyMove {
		return t2
	}
	return math.Inf(1)
}
