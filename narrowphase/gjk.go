// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package narrowphase

import "github.com/cpmech/fcl3d/geom"

// gjkMaxIterations bounds the simplex-walk loop; convergence is expected
// in well under this for the low-vertex-count shapes this engine deals
// with, so hitting the cap signals degenerate input rather than slow
// convergence.
const gjkMaxIterations = 128

// minkowskiSupport is a vertex of A-B's support mapping, carrying the two
// witness points it was built from so EPA can recover contact points from
// the final simplex without a second pass over the shapes.
type minkowskiSupport struct {
	point geom.Vec3
	onA   geom.Vec3
	onB   geom.Vec3
}

func supportMinkowski(supportA, supportB supportFunc, direction geom.Vec3) minkowskiSupport {
	a := supportA(direction)
	b := supportB(direction.Neg())
	return minkowskiSupport{point: a.Sub(b), onA: a, onB: b}
}

// gjkIntersect runs the GJK simplex algorithm over the Minkowski difference
// of supportA and supportB. It reports whether the origin lies inside the
// difference and, if so, the final simplex (1-4 points) for EPA to expand.
func gjkIntersect(supportA, supportB supportFunc, initialDirection geom.Vec3) (bool, []minkowskiSupport) {
	direction := initialDirection
	if direction.LengthSq() <= geom.SingularityEpsilon*geom.SingularityEpsilon {
		direction = geom.Vec3{X: 1}
	}

	simplex := []minkowskiSupport{supportMinkowski(supportA, supportB, direction)}
	direction = simplex[0].point.Neg()

	for i := 0; i < gjkMaxIterations; i++ {
		if direction.LengthSq() <= geom.SingularityEpsilon*geom.SingularityEpsilon {
			return true, simplex
		}
		next := supportMinkowski(supportA, supportB, direction)
		if next.point.Dot(direction) < 0 {
			return false, nil
		}
		simplex = append(simplex, next)

		var contains bool
		simplex, direction, contains = evolveSimplex(simplex)
		if contains {
			return true, simplex
		}
	}
	return false, nil
}

// evolveSimplex reduces simplex to the feature (edge/face/tetrahedron)
// closest to the origin, returning the next search direction, or reports
// containment once a tetrahedron surrounds the origin.
func evolveSimplex(simplex []minkowskiSupport) ([]minkowskiSupport, geom.Vec3, bool) {
	switch len(simplex) {
	case 2:
		return lineCase(simplex)
	case 3:
		return triangleCase(simplex)
	case 4:
		return tetrahedronCase(simplex)
	default:
		return simplex, geom.Vec3{}, false
	}
}

func lineCase(simplex []minkowskiSupport) ([]minkowskiSupport, geom.Vec3, bool) {
	a, b := simplex[1], simplex[0]
	ab := b.point.Sub(a.point)
	ao := a.point.Neg()
	if ab.Dot(ao) > 0 {
		direction := tripleProduct(ab, ao, ab)
		return simplex, direction, false
	}
	return []minkowskiSupport{a}, ao, false
}

func triangleCase(simplex []minkowskiSupport) ([]minkowskiSupport, geom.Vec3, bool) {
	a, b, c := simplex[2], simplex[1], simplex[0]
	ab := b.point.Sub(a.point)
	ac := c.point.Sub(a.point)
	ao := a.point.Neg()
	abc := ab.Cross(ac)

	if tripleProduct(abc, ac, ac).Dot(ao) > 0 {
		if ac.Dot(ao) > 0 {
			return []minkowskiSupport{c, a}, tripleProduct(ac, ao, ac), false
		}
		return lineCase([]minkowskiSupport{b, a})
	}
	if tripleProduct(ab, abc, abc).Dot(ao) > 0 {
		return lineCase([]minkowskiSupport{b, a})
	}
	if abc.Dot(ao) > 0 {
		return []minkowskiSupport{c, b, a}, abc, false
	}
	return []minkowskiSupport{b, c, a}, abc.Neg(), false
}

func tetrahedronCase(simplex []minkowskiSupport) ([]minkowskiSupport, geom.Vec3, bool) {
	a, b, c, d := simplex[3], simplex[2], simplex[1], simplex[0]
	ao := a.point.Neg()

	abc := b.point.Sub(a.point).Cross(c.point.Sub(a.point))
	acd := c.point.Sub(a.point).Cross(d.point.Sub(a.point))
	adb := d.point.Sub(a.point).Cross(b.point.Sub(a.point))

	if abc.Dot(ao) > 0 {
		return triangleCase([]minkowskiSupport{c, b, a})
	}
	if acd.Dot(ao) > 0 {
		return triangleCase([]minkowskiSupport{d, c, a})
	}
	if adb.Dot(ao) > 0 {
		return triangleCase([]minkowskiSupport{b, d, a})
	}
	return simplex, geom.Vec3{}, true
}

// tripleProduct computes (a x b) x c, used to pick a search direction that
// lies in the plane of a and b but points away from c.
func tripleProduct(a, b, c geom.Vec3) geom.Vec3 {
	return a.Cross(b).Cross(c)
}
