// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import "math"

// Quat is a W,X,Y,Z unit quaternion used for rotation interpolation.
type Quat struct {
	W, X, Y, Z float64
}

var IdentityQuat = Quat{W: 1}

func (q Quat) Dot(p Quat) float64 { return q.W*p.W + q.X*p.X + q.Y*p.Y + q.Z*p.Z }

func (q Quat) Negate() Quat { return Quat{-q.W, -q.X, -q.Y, -q.Z} }

// Normalize returns the unit quaternion of q, or the identity rotation if q
// is too close to the zero quaternion to normalize reliably.
func (q Quat) Normalize() Quat {
	length := math.Sqrt(q.Dot(q))
	if length <= SingularityEpsilon {
		return IdentityQuat
	}
	inv := 1 / length
	return Quat{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// QuatFromMatrix extracts the rotation quaternion of m using the standard
// largest-diagonal-term branch selection.
func QuatFromMatrix(m Mat3) Quat {
	trace := m[0][0] + m[1][1] + m[2][2]
	var q Quat
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q.W = 0.25 * s
		q.X = (m[2][1] - m[1][2]) / s
		q.Y = (m[0][2] - m[2][0]) / s
		q.Z = (m[1][0] - m[0][1]) / s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math.Sqrt(1+m[0][0]-m[1][1]-m[2][2]) * 2
		q.W = (m[2][1] - m[1][2]) / s
		q.X = 0.25 * s
		q.Y = (m[0][1] + m[1][0]) / s
		q.Z = (m[0][2] + m[2][0]) / s
	case m[1][1] > m[2][2]:
		s := math.Sqrt(1+m[1][1]-m[0][0]-m[2][2]) * 2
		q.W = (m[0][2] - m[2][0]) / s
		q.X = (m[0][1] + m[1][0]) / s
		q.Y = 0.25 * s
		q.Z = (m[1][2] + m[2][1]) / s
	default:
		s := math.Sqrt(1+m[2][2]-m[0][0]-m[1][1]) * 2
		q.W = (m[1][0] - m[0][1]) / s
		q.X = (m[0][2] + m[2][0]) / s
		q.Y = (m[1][2] + m[2][1]) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// ToMatrix converts q to a rotation matrix.
func (q Quat) ToMatrix() Mat3 {
	n := q.Normalize()
	xx, yy, zz := n.X*n.X, n.Y*n.Y, n.Z*n.Z
	xy, xz, yz := n.X*n.Y, n.X*n.Z, n.Y*n.Z
	wx, wy, wz := n.W*n.X, n.W*n.Y, n.W*n.Z
	return Mat3{
		{1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy)},
		{2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx)},
		{2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy)},
	}
}

// slerpThreshold is the dot-product above which Slerp falls back to a
// normalized linear blend to avoid dividing by a near-zero sine.
const slerpThreshold = 0.9995

// Slerp spherically interpolates between a and b, clamping t to [0, 1] and
// taking the shorter arc.
func Slerp(a, b Quat, t float64) Quat {
	alpha := Clamp01(t)
	dot := a.Dot(b)
	if dot < 0 {
		dot = -dot
		b = b.Negate()
	}
	if dot > slerpThreshold {
		return Quat{
			a.W + alpha*(b.W-a.W),
			a.X + alpha*(b.X-a.X),
			a.Y + alpha*(b.Y-a.Y),
			a.Z + alpha*(b.Z-a.Z),
		}.Normalize()
	}
	theta0 := math.Acos(dot)
	theta := theta0 * alpha
	sinTheta0 := math.Sin(theta0)
	sinTheta := math.Sin(theta)
	s0 := math.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0
	return Quat{
		s0*a.W + s1*b.W,
		s0*a.X + s1*b.X,
		s0*a.Y + s1*b.Y,
		s0*a.Z + s1*b.Z,
	}
}

// Nlerp normalizes a linear blend between a and b; cheaper than Slerp and
// selectable via Config.RotationInterp.
func Nlerp(a, b Quat, t float64) Quat {
	alpha := Clamp01(t)
	dot := a.Dot(b)
	if dot < 0 {
		b = b.Negate()
	}
	return Quat{
		a.W + alpha*(b.W-a.W),
		a.X + alpha*(b.X-a.X),
		a.Y + alpha*(b.Y-a.Y),
		a.Z + alpha*(b.Z-a.Z),
	}.Normalize()
}

// QuatFromAxisAngle builds the rotation of angle radians about axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	half := angle * 0.5
	n := axis.Normalize()
	sinHalf := math.Sin(half)
	return Quat{math.Cos(half), n.X * sinHalf, n.Y * sinHalf, n.Z * sinHalf}.Normalize()
}

func (q Quat) Mul(p Quat) Quat {
	return Quat{
		q.W*p.W - q.X*p.X - q.Y*p.Y - q.Z*p.Z,
		q.W*p.X + q.X*p.W + q.Y*p.Z - q.Z*p.Y,
		q.W*p.Y - q.X*p.Z + q.Y*p.W + q.Z*p.X,
		q.W*p.Z + q.X*p.Y - q.Y*p.X + q.Z*p.W,
	}.Normalize()
}
