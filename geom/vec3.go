// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom implements the fixed-size 3D vector, matrix, quaternion and
// rigid transform kernel that every other package in this module builds on.
package geom

import "math"

// Epsilon constants shared across the whole engine. Centralising them here
// keeps every package comparing against the same tolerances.
const (
	LinearTolerance    = 1e-5
	SingularityEpsilon = 1e-6
	AxisEpsilon        = 1e-6
)

// Vec3 is a point or direction in R3.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the additive identity.
var Zero = Vec3{}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Neg() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LengthSq() float64 { return a.Dot(a) }

func (a Vec3) Length() float64 { return math.Sqrt(a.LengthSq()) }

// Normalize returns the unit vector of a, or the X axis if a is near the
// zero vector (degenerate direction), matching the driver's fallback.
func (a Vec3) Normalize() Vec3 {
	l := a.Length()
	if l <= SingularityEpsilon {
		return Vec3{1, 0, 0}
	}
	return a.Scale(1 / l)
}

// Component returns the i-th axis value (0=X, 1=Y, 2=Z).
func (a Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Lerp interpolates linearly between a and b, clamping t to [0, 1].
func Lerp(a, b Vec3, t float64) Vec3 {
	alpha := Clamp01(t)
	return Vec3{
		a.X + (b.X-a.X)*alpha,
		a.Y + (b.Y-a.Y)*alpha,
		a.Z + (b.Z-a.Z)*alpha,
	}
}

// IsFinite reports whether v has no NaN/Inf component.
func (a Vec3) IsFinite() bool {
	return isFiniteFloat(a.X) && isFiniteFloat(a.Y) && isFiniteFloat(a.Z)
}

func isFiniteFloat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Min returns the component-wise minimum.
func Min(a, b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum.
func Max(a, b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}
