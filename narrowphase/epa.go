// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package narrowphase

import (
	"math"

	"github.com/cpmech/fcl3d/geom"
)

// epaMaxIterations bounds the polytope-expansion loop.
const epaMaxIterations = 64

// epaTolerance is the acceptable gap between successive penetration depth
// estimates before the expansion is considered converged.
const epaTolerance = 1e-6

type epaFace struct {
	a, b, c  int // indices into the polytope's vertex slice
	normal   geom.Vec3
	distance float64
}

// expandPolytope runs the Expanding Polytope Algorithm over the tetrahedron
// GJK terminated with, returning the contact (penetration depth, normal,
// witness points) of the deepest face once expansion converges.
func expandPolytope(supportA, supportB supportFunc, simplex []minkowskiSupport) (Contact, bool) {
	polytope := ensureTetrahedron(supportA, supportB, simplex)
	if polytope == nil {
		return Contact{}, false
	}

	faces := initialFaces(polytope)
	if faces == nil {
		return Contact{}, false
	}

	var closest epaFace
	for i := 0; i < epaMaxIterations; i++ {
		closest = closestFace(faces)
		support := supportMinkowski(supportA, supportB, closest.normal)
		supportDistance := support.point.Dot(closest.normal)

		if supportDistance-closest.distance < epaTolerance {
			return contactFromFace(polytope, closest), true
		}

		polytope = append(polytope, support)
		faces = reconstructWithPoint(polytope, faces, len(polytope)-1)
		if faces == nil {
			return contactFromFace(polytope, closest), true
		}
	}
	return contactFromFace(polytope, closest), true
}

func contactFromFace(polytope []minkowskiSupport, face epaFace) Contact {
	pa, pb, pc := polytope[face.a], polytope[face.b], polytope[face.c]
	u, v, w := barycentric(face.normal.Scale(face.distance), pa.point, pb.point, pc.point)

	onA := pa.onA.Scale(u).Add(pb.onA.Scale(v)).Add(pc.onA.Scale(w))
	onB := pa.onB.Scale(u).Add(pb.onB.Scale(v)).Add(pc.onB.Scale(w))

	return Contact{
		Normal:           face.normal,
		PenetrationDepth: face.distance,
		PointOnObjectA:   onA,
		PointOnObjectB:   onB,
	}
}

// barycentric resolves p's weights over triangle (a, b, c), assuming p lies
// in the triangle's plane (true for the closest point on an EPA face).
func barycentric(p, a, b, c geom.Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) <= geom.SingularityEpsilon {
		return 1.0 / 3, 1.0 / 3, 1.0 / 3
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

func faceNormal(polytope []minkowskiSupport, a, b, c int) (geom.Vec3, float64, bool) {
	pa, pb, pc := polytope[a].point, polytope[b].point, polytope[c].point
	normal := pb.Sub(pa).Cross(pc.Sub(pa))
	length := normal.Length()
	if length <= geom.SingularityEpsilon {
		return geom.Vec3{}, 0, false
	}
	normal = normal.Scale(1 / length)
	distance := normal.Dot(pa)
	if distance < 0 {
		normal = normal.Neg()
		distance = -distance
	}
	return normal, distance, true
}

func initialFaces(polytope []minkowskiSupport) []epaFace {
	indices := [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}
	faces := make([]epaFace, 0, 4)
	for _, idx := range indices {
		normal, distance, ok := faceNormal(polytope, idx[0], idx[1], idx[2])
		if !ok {
			return nil
		}
		faces = append(faces, epaFace{a: idx[0], b: idx[1], c: idx[2], normal: normal, distance: distance})
	}
	return faces
}

func closestFace(faces []epaFace) epaFace {
	best := faces[0]
	for _, f := range faces[1:] {
		if f.distance < best.distance {
			best = f
		}
	}
	return best
}

// reconstructWithPoint removes every face visible from the new point and
// re-triangulates the resulting hole with edges to the new point, the
// standard EPA polytope-expansion step.
func reconstructWithPoint(polytope []minkowskiSupport, faces []epaFace, newPoint int) []epaFace {
	type edge struct{ a, b int }
	edgeCount := map[edge]int{}
	kept := make([]epaFace, 0, len(faces))

	newVertex := polytope[newPoint].point
	for _, f := range faces {
		if f.normal.Dot(newVertex.Sub(polytope[f.a].point)) > epaTolerance {
			for _, e := range [][2]int{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
				edgeCount[edge{e[0], e[1]}]++
			}
			continue
		}
		kept = append(kept, f)
	}

	for e, count := range edgeCount {
		if edgeCount[edge{e.b, e.a}] > 0 || count == 0 {
			continue
		}
		normal, distance, ok := faceNormal(polytope, e.a, e.b, newPoint)
		if !ok {
			continue
		}
		kept = append(kept, epaFace{a: e.a, b: e.b, c: newPoint, normal: normal, distance: distance})
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// ensureTetrahedron inflates a degenerate GJK simplex (fewer than four
// points, which happens when shapes merely touch) into a tetrahedron by
// probing additional directions, so EPA always has a polytope to expand.
func ensureTetrahedron(supportA, supportB supportFunc, simplex []minkowskiSupport) []minkowskiSupport {
	points := append([]minkowskiSupport(nil), simplex...)
	probeDirections := []geom.Vec3{{X: 1}, {Y: 1}, {Z: 1}, {X: -1}, {Y: -1}, {Z: -1}}

	for i := 0; len(points) < 4 && i < len(probeDirections); i++ {
		candidate := supportMinkowski(supportA, supportB, probeDirections[i])
		if !nearlyCoplanarOrColinear(points, candidate.point) {
			points = append(points, candidate)
		}
	}
	if len(points) < 4 {
		return nil
	}
	return points[:4]
}

func nearlyCoplanarOrColinear(points []minkowskiSupport, candidate geom.Vec3) bool {
	switch len(points) {
	case 0, 1:
		return false
	case 2:
		ab := points[1].point.Sub(points[0].point)
		ac := candidate.Sub(points[0].point)
		return ab.Cross(ac).Length() <= geom.SingularityEpsilon
	default:
		ab := points[1].point.Sub(points[0].point)
		ac := points[2].point.Sub(points[0].point)
		ad := candidate.Sub(points[0].point)
		volume := ab.Cross(ac).Dot(ad)
		return math.Abs(volume) <= geom.SingularityEpsilon
	}
}
