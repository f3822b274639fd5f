// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package narrowphase

import (
	"math"

	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/gosl/fun"
)

// collisionTolerance absorbs float rounding in the overlap compare,
// matching the driver's kCollisionTolerance (== kLinearTolerance).
const collisionTolerance = geom.LinearTolerance

// worldObb is an OBB already placed in world space: orthonormal Axes and
// half-extent Extents about Center.
type worldObb struct {
	Center  geom.Vec3
	Axes    [3]geom.Vec3
	Extents geom.Vec3
}

func buildWorldObb(center, extents geom.Vec3, localRotation geom.Mat3, transform geom.Transform) worldObb {
	combined := transform.Rotation.Mul(localRotation)
	box := worldObb{Center: transform.Point(center), Extents: extents}
	for axis := 0; axis < 3; axis++ {
		box.Axes[axis] = combined.ColVec(axis).Normalize()
	}
	return box
}

func extentAt(v geom.Vec3, i int) float64 { return v.Component(i) }

func closestPointOnObb(box worldObb, point geom.Vec3) geom.Vec3 {
	result := box.Center
	delta := point.Sub(box.Center)
	for i := 0; i < 3; i++ {
		distance := delta.Dot(box.Axes[i])
		extent := extentAt(box.Extents, i)
		clamped := geom.Clamp(distance, -extent, extent)
		result = result.Add(box.Axes[i].Scale(clamped))
	}
	return result
}

func supportPointOnObb(box worldObb, direction geom.Vec3) geom.Vec3 {
	result := box.Center
	for i := 0; i < 3; i++ {
		s := fun.Sign(box.Axes[i].Dot(direction))
		if s == 0 {
			s = 1
		}
		result = result.Add(box.Axes[i].Scale(s * extentAt(box.Extents, i)))
	}
	return result
}

// detectSphereSphere is the closed-form sphere/sphere test: distance
// between world centers compared against the sum of radii.
func detectSphereSphere(a, b Placed) (bool, Contact) {
	centerA := a.Transform.Point(a.Snapshot.Sphere.Center)
	centerB := b.Transform.Point(b.Snapshot.Sphere.Center)

	delta := centerB.Sub(centerA)
	distSq := delta.Dot(delta)
	radiusSum := a.Snapshot.Sphere.Radius + b.Snapshot.Sphere.Radius
	threshold := radiusSum*radiusSum + collisionTolerance

	if distSq > threshold {
		return false, Contact{}
	}

	distance := 0.0
	if distSq > 0 {
		distance = math.Sqrt(distSq)
	}
	penetration := math.Max(radiusSum-distance, 0)
	normal := geom.Vec3{X: 1}
	if distance > geom.SingularityEpsilon {
		normal = delta.Scale(1 / distance)
	}
	return true, Contact{
		Normal:           normal,
		PenetrationDepth: penetration,
		PointOnObjectA:   centerA.Add(normal.Scale(a.Snapshot.Sphere.Radius)),
		PointOnObjectB:   centerB.Sub(normal.Scale(b.Snapshot.Sphere.Radius)),
	}
}

// detectSphereObb closest-point-clamp test between a sphere center and the
// nearest point on a world-placed OBB.
func detectSphereObb(sphere, obb Placed) (bool, Contact) {
	sphereCenter := sphere.Transform.Point(sphere.Snapshot.Sphere.Center)
	box := buildWorldObb(obb.Snapshot.Obb.Center, obb.Snapshot.Obb.Extents, obb.Snapshot.Obb.Rotation, obb.Transform)

	closest := closestPointOnObb(box, sphereCenter)
	delta := sphereCenter.Sub(closest)
	distSq := delta.Dot(delta)
	radius := sphere.Snapshot.Sphere.Radius
	if distSq > radius*radius+collisionTolerance {
		return false, Contact{}
	}

	distance := math.Sqrt(math.Max(distSq, 0))
	normal := geom.Vec3{X: 1}
	if distance > geom.SingularityEpsilon {
		normal = delta.Scale(1 / distance)
	}
	penetration := math.Max(radius-distance, 0)
	return true, Contact{
		Normal:           normal,
		PenetrationDepth: penetration,
		PointOnObjectB:   closest,
		PointOnObjectA:   sphereCenter.Sub(normal.Scale(radius)),
	}
}

// detectObbSphere mirrors detectSphereObb by negating the normal and
// swapping the witness points, the same trick DispatchObbSphere uses
// instead of a second implementation.
func detectObbSphere(obb, sphere Placed) (bool, Contact) {
	colliding, contact := detectSphereObb(sphere, obb)
	if !colliding {
		return false, Contact{}
	}
	contact.Normal = contact.Normal.Neg()
	contact.PointOnObjectA, contact.PointOnObjectB = contact.PointOnObjectB, contact.PointOnObjectA
	return true, contact
}

// testAxis checks one SAT axis, tracking the minimum-overlap axis so far;
// it returns false the moment a separating axis is found.
func testAxis(projection, radiusSum float64, bestOverlap *float64, axisWorld, deltaCenter geom.Vec3, bestAxis *geom.Vec3) bool {
	if projection > radiusSum+collisionTolerance {
		return false
	}
	overlap := radiusSum - projection
	if overlap < *bestOverlap {
		*bestOverlap = overlap
		axis := axisWorld.Normalize()
		if fun.Sign(axis.Dot(deltaCenter)) < 0 {
			axis = axis.Neg()
		}
		*bestAxis = axis
	}
	return true
}

// detectObbObb is the 15-axis SAT test with best-overlap axis tracking,
// mirroring DetectObbObb exactly.
func detectObbObb(a, b Placed) (bool, Contact) {
	boxA := buildWorldObb(a.Snapshot.Obb.Center, a.Snapshot.Obb.Extents, a.Snapshot.Obb.Rotation, a.Transform)
	boxB := buildWorldObb(b.Snapshot.Obb.Center, b.Snapshot.Obb.Extents, b.Snapshot.Obb.Rotation, b.Transform)

	var r, absR [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = boxA.Axes[i].Dot(boxB.Axes[j])
			absR[i][j] = math.Abs(r[i][j]) + geom.AxisEpsilon
		}
	}

	translation := boxB.Center.Sub(boxA.Center)
	t := [3]float64{translation.Dot(boxA.Axes[0]), translation.Dot(boxA.Axes[1]), translation.Dot(boxA.Axes[2])}

	bestOverlap := math.MaxFloat64
	bestAxis := geom.Vec3{X: 1}

	for i := 0; i < 3; i++ {
		ra := extentAt(boxA.Extents, i)
		rb := extentAt(boxB.Extents, 0)*absR[i][0] + extentAt(boxB.Extents, 1)*absR[i][1] + extentAt(boxB.Extents, 2)*absR[i][2]
		if !testAxis(math.Abs(t[i]), ra+rb, &bestOverlap, boxA.Axes[i], translation, &bestAxis) {
			return false, Contact{}
		}
	}

	for j := 0; j < 3; j++ {
		rb := extentAt(boxB.Extents, j)
		ra := extentAt(boxA.Extents, 0)*absR[0][j] + extentAt(boxA.Extents, 1)*absR[1][j] + extentAt(boxA.Extents, 2)*absR[2][j]
		proj := math.Abs(translation.Dot(boxB.Axes[j]))
		if !testAxis(proj, ra+rb, &bestOverlap, boxB.Axes[j], translation, &bestAxis) {
			return false, Contact{}
		}
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := boxA.Axes[i].Cross(boxB.Axes[j])
			if axis.Length() <= geom.AxisEpsilon {
				continue
			}
			i1, i2 := (i+1)%3, (i+2)%3
			j1, j2 := (j+1)%3, (j+2)%3
			ra := extentAt(boxA.Extents, i1)*absR[i2][j] + extentAt(boxA.Extents, i2)*absR[i1][j]
			rb := extentAt(boxB.Extents, j1)*absR[i][j2] + extentAt(boxB.Extents, j2)*absR[i][j1]
			proj := math.Abs(t[i1]*r[i2][j] - t[i2]*r[i1][j])
			if !testAxis(proj, ra+rb, &bestOverlap, axis, translation, &bestAxis) {
				return false, Contact{}
			}
		}
	}

	normal := bestAxis.Normalize()
	if normal.Length() <= geom.SingularityEpsilon {
		normal = geom.Vec3{X: 1}
	}
	return true, Contact{
		Normal:           normal,
		PenetrationDepth: bestOverlap,
		PointOnObjectA:   supportPointOnObb(boxA, normal),
		PointOnObjectB:   supportPointOnObb(boxB, normal.Neg()),
	}
}
