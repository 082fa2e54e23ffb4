// Copyright 2017 The Gomoc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ers defines the error kinds reported by the transport engine:
// usage errors (calls out of phase or with malformed arguments), geometry
// errors (inconsistent or out-of-bounds spatial data) and numerical errors
// (ill-conditioned systems, non-convergence). All kinds implement error and
// can be matched with errors.As via the Is* predicates.
package ers

import (
	"errors"
	"fmt"
)

// Usage indicates a query issued before its prerequisite phase ran, or a
// malformed argument such as a non-positive spacing or an out-of-range
// energy group index
type Usage struct {
	Msg string
}

// Geometry indicates an inconsistent spatial query or CSG definition; e.g.
// a point outside the bounding box or a ray that fails to terminate
type Geometry struct {
	Msg string
}

// Numerical indicates a terminal numerical failure; e.g. an ill-conditioned
// coarse-mesh system or exhaustion of the iteration budget. Aborted is set
// when the solve was interrupted by the caller rather than failing on its own
type Numerical struct {
	Msg     string
	Aborted bool
}

// Error returns the message
func (o *Usage) Error() string { return o.Msg }

// Error returns the message
func (o *Geometry) Error() string { return o.Msg }

// Error returns the message
func (o *Numerical) Error() string { return o.Msg }

// UsageErr returns a new Usage error with a formatted message
func UsageErr(msg string, prm ...interface{}) error {
	return &Usage{Msg: fmt.Sprintf(msg, prm...)}
}

// GeomErr returns a new Geometry error with a formatted message
func GeomErr(msg string, prm ...interface{}) error {
	return &Geometry{Msg: fmt.Sprintf(msg, prm...)}
}

// NumErr returns a new Numerical error with a formatted message
func NumErr(msg string, prm ...interface{}) error {
	return &Numerical{Msg: fmt.Sprintf(msg, prm...)}
}

// AbortErr returns a Numerical error flagged as caller-initiated abortion
func AbortErr(msg string, prm ...interface{}) error {
	return &Numerical{Msg: fmt.Sprintf(msg, prm...), Aborted: true}
}

// IsUsage tells whether err is (or wraps) a Usage error
func IsUsage(err error) bool {
	var e *Usage
	return errors.As(err, &e)
}

// IsGeometry tells whether err is (or wraps) a Geometry error
func IsGeometry(err error) bool {
	var e *Geometry
	return errors.As(err, &e)
}

// IsNumerical tells whether err is (or wraps) a Numerical error
func IsNumerical(err error) bool {
	var e *Numerical
	return errors.As(err, &e)
}

// IsAborted tells whether err is a Numerical error caused by an interrupt
func IsAborted(err error) bool {
	var e *Numerical
	if errors.As(err, &e) {
		return e.Aborted
	}
	return false
}
