// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package narrowphase

import (
	"math"

	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
)

// distanceMaxIterations bounds the generic closest-point search, the
// distance-query twin of gjkMaxIterations.
const distanceMaxIterations = 64

// Distance reports the separation between a and b and a closest-point
// witness on each shape. Sphere/sphere and sphere/OBB pairs use closed
// forms, as they do for Detect, and report a negative separation when the
// shapes overlap; every other pair runs the generic support-based distance
// solver, which reports 0 for touching or overlapping shapes and never a
// negative value.
func Distance(a, b Placed) (float64, geom.Vec3, geom.Vec3) {
	switch {
	case a.Snapshot.Kind == registry.KindSphere && b.Snapshot.Kind == registry.KindSphere:
		return distanceSphereSphere(a, b)
	case a.Snapshot.Kind == registry.KindSphere && b.Snapshot.Kind == registry.KindObb:
		return distanceSphereObb(a, b)
	case a.Snapshot.Kind == registry.KindObb && b.Snapshot.Kind == registry.KindSphere:
		d, onB, onA := distanceSphereObb(b, a)
		return d, onA, onB
	default:
		return distanceGeneric(a, b)
	}
}

func distanceSphereSphere(a, b Placed) (float64, geom.Vec3, geom.Vec3) {
	centerA := a.Transform.Point(a.Snapshot.Sphere.Center)
	centerB := b.Transform.Point(b.Snapshot.Sphere.Center)
	delta := centerB.Sub(centerA)
	d := delta.Length()
	normal := geom.Vec3{X: 1}
	if d > geom.SingularityEpsilon {
		normal = delta.Scale(1 / d)
	}
	ra, rb := a.Snapshot.Sphere.Radius, b.Snapshot.Sphere.Radius
	closestA := centerA.Add(normal.Scale(ra))
	closestB := centerB.Sub(normal.Scale(rb))
	return d - ra - rb, closestA, closestB
}

func distanceSphereObb(sphere, obb Placed) (float64, geom.Vec3, geom.Vec3) {
	sphereCenter := sphere.Transform.Point(sphere.Snapshot.Sphere.Center)
	box := buildWorldObb(obb.Snapshot.Obb.Center, obb.Snapshot.Obb.Extents, obb.Snapshot.Obb.Rotation, obb.Transform)
	closest := closestPointOnObb(box, sphereCenter)
	delta := sphereCenter.Sub(closest)
	d := delta.Length()
	radius := sphere.Snapshot.Sphere.Radius
	normal := geom.Vec3{X: 1}
	if d > geom.SingularityEpsilon {
		normal = delta.Scale(1 / d)
	}
	closestOnSphere := sphereCenter.Sub(normal.Scale(radius))
	return d - radius, closestOnSphere, closest
}

// distanceGeneric runs a Gilbert-Johnson-Keerthi style closest-point search
// over the Minkowski difference: it keeps reducing a simplex of at most
// four support points to the feature nearest the origin, advancing toward
// the origin, until the support in that direction stops improving.
func distanceGeneric(a, b Placed) (float64, geom.Vec3, geom.Vec3) {
	supportA, supportB := makeSupport(a), makeSupport(b)

	seed := b.Transform.Point(geom.Zero).Sub(a.Transform.Point(geom.Zero))
	if seed.LengthSq() <= geom.SingularityEpsilon*geom.SingularityEpsilon {
		seed = geom.Vec3{X: 1}
	}

	simplex := []minkowskiSupport{supportMinkowski(supportA, supportB, seed.Neg())}
	best := closestFeature(simplex)

	for i := 0; i < distanceMaxIterations; i++ {
		if best.distSq <= geom.SingularityEpsilon*geom.SingularityEpsilon {
			// origin lies on (or inside) the difference: shapes touch/overlap.
			return 0, best.onA, best.onB
		}
		direction := best.point.Neg()
		candidate := supportMinkowski(supportA, supportB, direction)
		improvement := direction.Dot(candidate.point) - direction.Dot(best.point)
		if improvement <= geom.LinearTolerance*direction.Length() {
			break
		}
		simplex = append(reducedSimplex(simplex, best), candidate)
		best = closestFeature(simplex)
	}

	distance := math.Sqrt(best.distSq)
	return distance, best.onA, best.onB
}

// closestResult is the nearest point of a simplex to the origin, along with
// the witness points on each original shape that combination corresponds
// to and the simplex indices it was built from (so the caller can drop
// vertices the closest feature does not use).
type closestResult struct {
	point  geom.Vec3
	distSq float64
	onA    geom.Vec3
	onB    geom.Vec3
	used   []int
}

func closestFeature(simplex []minkowskiSupport) closestResult {
	switch len(simplex) {
	case 1:
		p := simplex[0]
		return closestResult{point: p.point, distSq: p.point.LengthSq(), onA: p.onA, onB: p.onB, used: []int{0}}
	case 2:
		return closestOnSegment(simplex)
	default:
		return closestOnTriangleSet(simplex)
	}
}

func reducedSimplex(simplex []minkowskiSupport, best closestResult) []minkowskiSupport {
	out := make([]minkowskiSupport, 0, len(best.used))
	for _, idx := range best.used {
		out = append(out, simplex[idx])
	}
	return out
}

func closestOnSegment(simplex []minkowskiSupport) closestResult {
	a, b := simplex[0], simplex[1]
	ab := b.point.Sub(a.point)
	lenSq := ab.LengthSq()
	if lenSq <= geom.SingularityEpsilon {
		return closestResult{point: a.point, distSq: a.point.LengthSq(), onA: a.onA, onB: a.onB, used: []int{0}}
	}
	t := geom.Clamp01(a.point.Neg().Dot(ab) / lenSq)
	point := a.point.Add(ab.Scale(t))
	onA := a.onA.Add(b.onA.Sub(a.onA).Scale(t))
	onB := a.onB.Add(b.onB.Sub(a.onB).Scale(t))
	used := []int{0, 1}
	if t <= 0 {
		used = []int{0}
	} else if t >= 1 {
		used = []int{1}
	}
	return closestResult{point: point, distSq: point.LengthSq(), onA: onA, onB: onB, used: used}
}

// closestOnTriangleSet finds the point nearest the origin across every
// vertex/edge/face feature of a 3- or 4-point simplex, the same Voronoi
// region walk Ericson's Real-Time Collision Detection uses for
// ClosestPtPointTriangle, extended pairwise over a tetrahedron's four
// faces when the simplex has grown that large.
func closestOnTriangleSet(simplex []minkowskiSupport) closestResult {
	type face struct{ i, j, k int }
	var faces []face
	switch len(simplex) {
	case 3:
		faces = []face{{0, 1, 2}}
	default:
		faces = []face{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2}}
	}

	var best closestResult
	haveBest := false
	for _, f := range faces {
		r := closestOnTriangle(simplex, f.i, f.j, f.k)
		if !haveBest || r.distSq < best.distSq {
			best = r
			haveBest = true
		}
	}
	return best
}

func closestOnTriangle(simplex []minkowskiSupport, i, j, k int) closestResult {
	a, b, c := simplex[i], simplex[j], simplex[k]
	ab := b.point.Sub(a.point)
	ac := c.point.Sub(a.point)
	ap := a.point.Neg()

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return closestResult{point: a.point, distSq: a.point.LengthSq(), onA: a.onA, onB: a.onB, used: []int{i}}
	}

	bp := b.point.Neg()
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return closestResult{point: b.point, distSq: b.point.LengthSq(), onA: b.onA, onB: b.onB, used: []int{j}}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		t := d1 / (d1 - d3)
		point := a.point.Add(ab.Scale(t))
		onA := a.onA.Add(b.onA.Sub(a.onA).Scale(t))
		onB := a.onB.Add(b.onB.Sub(a.onB).Scale(t))
		return closestResult{point: point, distSq: point.LengthSq(), onA: onA, onB: onB, used: []int{i, j}}
	}

	cp := c.point.Neg()
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return closestResult{point: c.point, distSq: c.point.LengthSq(), onA: c.onA, onB: c.onB, used: []int{k}}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		point := a.point.Add(ac.Scale(t))
		onA := a.onA.Add(c.onA.Sub(a.onA).Scale(t))
		onB := a.onB.Add(c.onB.Sub(a.onB).Scale(t))
		return closestResult{point: point, distSq: point.LengthSq(), onA: onA, onB: onB, used: []int{i, k}}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		t := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		point := b.point.Add(c.point.Sub(b.point).Scale(t))
		onA := b.onA.Add(c.onA.Sub(b.onA).Scale(t))
		onB := b.onB.Add(c.onB.Sub(b.onB).Scale(t))
		return closestResult{point: point, distSq: point.LengthSq(), onA: onA, onB: onB, used: []int{j, k}}
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	point := a.point.Add(ab.Scale(v)).Add(ac.Scale(w))
	onA := a.onA.Add(b.onA.Sub(a.onA).Scale(v)).Add(c.onA.Sub(a.onA).Scale(w))
	onB := a.onB.Add(b.onB.Sub(a.onB).Scale(v)).Add(c.onB.Sub(a.onB).Scale(w))
	return closestResult{point: point, distSq: point.LengthSq(), onA: onA, onB: onB, used: []int{i, j, k}}
}
