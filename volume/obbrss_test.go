// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package volume

import (
	"testing"

	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/rnd"
)

func cubePoints(center geom.Vec3, half float64) []geom.Vec3 {
	pts := make([]geom.Vec3, 0, 8)
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				pts = append(pts, geom.Vec3{
					X: center.X + sx*half,
					Y: center.Y + sy*half,
					Z: center.Z + sz*half,
				})
			}
		}
	}
	return pts
}

func TestObbrssFromPointsAxisAligned(tst *testing.T) {
	chk.PrintTitle("ObbrssFromPointsAxisAligned")

	v := FromPoints(cubePoints(geom.Vec3{}, 1))
	chk.Float64(tst, "center x", 1e-9, v.Center.X, 0)
	chk.Float64(tst, "center y", 1e-9, v.Center.Y, 0)
	chk.Float64(tst, "center z", 1e-9, v.Center.Z, 0)
}

func TestObbrssOverlapSeparated(tst *testing.T) {
	chk.PrintTitle("ObbrssOverlapSeparated")

	a := FromPoints(cubePoints(geom.Vec3{}, 1))
	b := FromPoints(cubePoints(geom.Vec3{X: 10}, 1))
	if Overlap(a, b) {
		tst.Errorf("expected far-apart boxes not to overlap")
	}
}

func TestObbrssOverlapTouching(tst *testing.T) {
	chk.PrintTitle("ObbrssOverlapTouching")

	a := FromPoints(cubePoints(geom.Vec3{}, 1))
	b := FromPoints(cubePoints(geom.Vec3{X: 1.5}, 1))
	if !Overlap(a, b) {
		tst.Errorf("expected overlapping boxes to overlap")
	}
}

func TestObbrssMergeContainsBoth(tst *testing.T) {
	chk.PrintTitle("ObbrssMergeContainsBoth")

	a := FromPoints(cubePoints(geom.Vec3{X: -5}, 1))
	b := FromPoints(cubePoints(geom.Vec3{X: 5}, 1))
	merged := Merge(a, b)

	if !Overlap(merged, a) {
		tst.Errorf("merged volume must still overlap a")
	}
	if !Overlap(merged, b) {
		tst.Errorf("merged volume must still overlap b")
	}
	if merged.Extents.X < 5 {
		tst.Errorf("merged volume must span both inputs, got extents.X=%v", merged.Extents.X)
	}
}

// Property: every point a volume was fit from must project, along each of
// the volume's own axes, inside that axis's half-extent -- the defining
// containment guarantee of a bounding fit, checked against randomized
// point clouds rather than a single fixed cube.
func TestObbrssFromPointsContainsRandomCloud(tst *testing.T) {
	chk.PrintTitle("ObbrssFromPointsContainsRandomCloud")

	rnd.Init(4321)
	for trial := 0; trial < 20; trial++ {
		n := rnd.Int(8, 40)
		pts := make([]geom.Vec3, n)
		for i := range pts {
			pts[i] = geom.Vec3{
				X: rnd.Float64(-5, 5),
				Y: rnd.Float64(-5, 5),
				Z: rnd.Float64(-5, 5),
			}
		}
		v := FromPoints(pts)
		for _, p := range pts {
			local := p.Sub(v.Center)
			for axis := 0; axis < 3; axis++ {
				proj := local.Dot(v.Axis[axis])
				half := extent(v.Extents, axis)
				if proj < -half-1e-6 || proj > half+1e-6 {
					tst.Errorf("trial %d: point %v projects to %.6f on axis %d outside half-extent %.6f", trial, p, proj, axis, half)
				}
			}
		}
	}
}

func TestJacobiEigenSymmetric3Identity(tst *testing.T) {
	chk.PrintTitle("JacobiEigenSymmetric3Identity")

	vectors, values, ok := jacobiEigenSymmetric3(geom.Identity3)
	if !ok {
		tst.Errorf("expected convergence on a diagonal matrix")
		return
	}
	chk.Array(tst, "eigenvalues of identity", 1e-9, []float64{values.X, values.Y, values.Z}, []float64{1, 1, 1})
	_ = vectors
}
