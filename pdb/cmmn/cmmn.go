// Package cmmn has common definitions for coordinates shared by the
// record model and the geometry code.
package cmmn

import (
	"math"
)

// Xyz is one Cartesian position in Angstrom.
type Xyz struct{ X, Y, Z float64 }

// BrokenXyz marks a coordinate that was never set.
var BrokenXyz = Xyz{math.MaxFloat64, 0, -math.MaxFloat64}

// Ok says the coordinate is not the broken marker.
func (xyz *Xyz) Ok() bool {
	return *xyz != BrokenXyz
}

// Sub returns xyz - b
func (xyz Xyz) Sub(b Xyz) Xyz { return Xyz{xyz.X - b.X, xyz.Y - b.Y, xyz.Z - b.Z} }

// Add returns xyz + b
func (xyz Xyz) Add(b Xyz) Xyz { return Xyz{xyz.X + b.X, xyz.Y + b.Y, xyz.Z + b.Z} }

// Arr gives the coordinate as an array, which is handier for matrix code.
func (xyz Xyz) Arr() [3]float64 { return [3]float64{xyz.X, xyz.Y, xyz.Z} }

// XyzSl is a slice of coordinates. We need the type to hang methods on.
type XyzSl []Xyz
