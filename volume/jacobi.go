// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package volume

import (
	"math"

	"github.com/cpmech/fcl3d/geom"
)

const (
	jacobiMaxSweeps  = 50
	jacobiConvergeTo = 1e-12
)

// jacobiEigenSymmetric3 diagonalizes the symmetric 3x3 matrix a via the
// classical cyclic Jacobi rotation sweep, returning the eigenvectors as
// columns of a rotation matrix and the eigenvalues as a Vec3. ok is false
// if the off-diagonal mass fails to shrink to jacobiConvergeTo within
// jacobiMaxSweeps sweeps.
func jacobiEigenSymmetric3(a geom.Mat3) (vectors geom.Mat3, values geom.Vec3, ok bool) {
	vectors = geom.Identity3

	for sweep := 0; sweep < jacobiMaxSweeps; sweep++ {
		off := math.Abs(a[0][1]) + math.Abs(a[0][2]) + math.Abs(a[1][2])
		if off <= jacobiConvergeTo {
			values = geom.Vec3{X: a[0][0], Y: a[1][1], Z: a[2][2]}
			return vectors, values, true
		}
		for p := 0; p < 2; p++ {
			for q := p + 1; q < 3; q++ {
				rotateJacobi(&a, &vectors, p, q)
			}
		}
	}
	return geom.Mat3{}, geom.Vec3{}, false
}

// rotateJacobi zeroes a[p][q] (and a[q][p]) via a single Givens rotation,
// accumulating the rotation into vectors.
func rotateJacobi(a, vectors *geom.Mat3, p, q int) {
	apq := a[p][q]
	if math.Abs(apq) <= 1e-300 {
		return
	}

	theta := (a[q][q] - a[p][p]) / (2 * apq)
	var t float64
	if theta >= 0 {
		t = 1 / (theta + math.Sqrt(1+theta*theta))
	} else {
		t = -1 / (-theta + math.Sqrt(1+theta*theta))
	}
	c := 1 / math.Sqrt(1+t*t)
	s := t * c

	app, aqq := a[p][p], a[q][q]
	a[p][p] = app - t*apq
	a[q][q] = aqq + t*apq
	a[p][q] = 0
	a[q][p] = 0

	for i := 0; i < 3; i++ {
		if i != p && i != q {
			aip, aiq := a[i][p], a[i][q]
			a[i][p] = c*aip - s*aiq
			a[p][i] = a[i][p]
			a[i][q] = s*aip + c*aiq
			a[q][i] = a[i][q]
		}
		vip, viq := vectors[i][p], vectors[i][q]
		vectors[i][p] = c*vip - s*viq
		vectors[i][q] = s*vip + c*viq
	}
}
