// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import "math"

// Transform is a rigid transform: rotate then translate.
type Transform struct {
	Rotation    Mat3
	Translation Vec3
}

// IdentityTransform is the no-op rigid transform.
func IdentityTransform() Transform {
	return Transform{Rotation: Identity3}
}

// Point maps p from local into world coordinates.
func (t Transform) Point(p Vec3) Vec3 {
	return t.Rotation.MulVec(p).Add(t.Translation)
}

// IsValid reports whether both the rotation and the translation are finite.
func (t Transform) IsValid() bool {
	return t.Rotation.IsValid() && t.Translation.IsFinite()
}

// AxisAngleFromMatrix extracts the axis and angle of rotation m. It returns
// ok=false only when the rotation angle is non-trivial but the sin(angle)
// denominator used to recover the axis falls to SingularityEpsilon; callers
// treat that as "no well-defined axis" the way the original source does.
func AxisAngleFromMatrix(m Mat3) (axis Vec3, angle float64, ok bool) {
	trace := m[0][0] + m[1][1] + m[2][2]
	angle = math.Acos(Clamp((trace-1)*0.5, -1, 1))

	if angle <= SingularityEpsilon {
		return Vec3{1, 0, 0}, 0, true
	}

	denom := 2 * math.Sin(angle)
	if math.Abs(denom) <= SingularityEpsilon {
		return Vec3{}, 0, false
	}

	axis = Vec3{
		(m[2][1] - m[1][2]) / denom,
		(m[0][2] - m[2][0]) / denom,
		(m[1][0] - m[0][1]) / denom,
	}.Normalize()
	return axis, angle, true
}

// RotationFromAxisAngle builds the rotation matrix of angle radians about axis.
func RotationFromAxisAngle(axis Vec3, angle float64) Mat3 {
	n := axis.Normalize()
	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c
	x, y, z := n.X, n.Y, n.Z
	return Mat3{
		{c + x*x*t, x*y*t - z*s, x*z*t + y*s},
		{y*x*t + z*s, c + y*y*t, y*z*t - x*s},
		{z*x*t - y*s, z*y*t + x*s, c + z*z*t},
	}
}
