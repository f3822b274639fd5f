// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

// Mat3 is a row-major 3x3 matrix, used for rotations and covariance tensors.
type Mat3 [3][3]float64

// Identity3 is the 3x3 identity matrix.
var Identity3 = Mat3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// IsValid reports whether every entry is finite.
func (m Mat3) IsValid() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !isFiniteFloat(m[i][j]) {
				return false
			}
		}
	}
	return true
}

// Determinant computes m's determinant by direct cofactor expansion. A
// fixed 3x3 has no library surface for this beyond gosl/la, which operates
// on [][]float64 and would cost an allocation and a boxing round trip for
// three multiply-adds; it backs the ingestion-time "det ~ 1" rotation
// check spec.md section 3 requires, not a per-query recomputation.
func (m Mat3) Determinant() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// RowVec returns row i as a Vec3.
func (m Mat3) RowVec(i int) Vec3 { return Vec3{m[i][0], m[i][1], m[i][2]} }

// ColVec returns column j as a Vec3.
func (m Mat3) ColVec(j int) Vec3 { return Vec3{m[0][j], m[1][j], m[2][j]} }

// FromColumns builds a matrix whose columns are the given axes.
func FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{
		{c0.X, c1.X, c2.X},
		{c0.Y, c1.Y, c2.Y},
		{c0.Z, c1.Z, c2.Z},
	}
}
