// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestVec3Basics(tst *testing.T) {
	chk.PrintTitle("Vec3Basics")

	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	chk.Float64(tst, "dot", 1e-15, a.Dot(b), 32)
	c := a.Cross(b)
	chk.Array(tst, "cross", 1e-15, []float64{c.X, c.Y, c.Z}, []float64{-3, 6, -3})

	n := Vec3{3, 4, 0}.Normalize()
	chk.Float64(tst, "normalized length", 1e-15, n.Length(), 1)

	deg := Vec3{}.Normalize()
	chk.Float64(tst, "degenerate normalize falls back to X axis", 1e-15, deg.X, 1)
}

func TestMat3DeterminantOfRotation(tst *testing.T) {
	chk.PrintTitle("Mat3DeterminantOfRotation")

	axis := Vec3{1, 2, 3}.Normalize()
	m := RotationFromAxisAngle(axis, math.Pi/5)
	chk.Float64(tst, "det(rotation) == 1", 1e-9, m.Determinant(), 1)
}

func TestMat3DeterminantOfScale(tst *testing.T) {
	chk.PrintTitle("Mat3DeterminantOfScale")

	m := Mat3{
		{2, 0, 0},
		{0, 3, 0},
		{0, 0, 4},
	}
	chk.Float64(tst, "det(diag(2,3,4))", 1e-12, m.Determinant(), 24)
}

func TestQuatRoundTrip(tst *testing.T) {
	chk.PrintTitle("QuatRoundTrip")

	axis := Vec3{0, 0, 1}.Normalize()
	angle := math.Pi / 3
	m := RotationFromAxisAngle(axis, angle)

	q := QuatFromMatrix(m)
	back := q.ToMatrix()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			chk.Float64(tst, "matrix->quat->matrix", 1e-9, back[i][j], m[i][j])
		}
	}

	gotAxis, gotAngle, ok := AxisAngleFromMatrix(m)
	if !ok {
		tst.Errorf("AxisAngleFromMatrix failed to recover axis")
		return
	}
	chk.Float64(tst, "recovered angle", 1e-9, gotAngle, angle)
	chk.Float64(tst, "recovered axis z", 1e-9, gotAxis.Z, 1)
}

func TestSlerpEndpoints(tst *testing.T) {
	chk.PrintTitle("SlerpEndpoints")

	a := IdentityQuat
	b := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)

	start := Slerp(a, b, 0)
	end := Slerp(a, b, 1)
	chk.Float64(tst, "slerp(0) == a.W", 1e-12, start.W, a.W)
	chk.Float64(tst, "slerp(1) == b.W", 1e-9, math.Abs(end.W), math.Abs(b.W))
}

func TestLerpClampsT(tst *testing.T) {
	chk.PrintTitle("LerpClampsT")

	a := Vec3{0, 0, 0}
	b := Vec3{10, 0, 0}
	below := Lerp(a, b, -5)
	above := Lerp(a, b, 5)
	chk.Float64(tst, "t<0 clamps to a", 1e-15, below.X, 0)
	chk.Float64(tst, "t>1 clamps to b", 1e-15, above.X, 10)
}
