// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package broadphase enumerates pairs of placed geometries whose
// world-space AABBs overlap, as a coarse pre-filter ahead of narrow-phase.
package broadphase

import (
	"math"

	fcl3d "github.com/cpmech/fcl3d"
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
)

// Object is one broadphase query input: a geometry handle placed at a
// world transform.
type Object struct {
	Handle    registry.Handle
	Transform geom.Transform
}

// Pair is a detected overlap between two of the input objects' indices
// into the caller's Object slice, not registry handles, since the same
// handle may legitimately appear more than once in a single call.
type Pair struct {
	IndexA int
	IndexB int
}

// Aabb is an axis-aligned bounding box.
type Aabb struct {
	Min, Max geom.Vec3
}

func (box Aabb) overlaps(other Aabb) bool {
	return box.Min.X <= other.Max.X && box.Max.X >= other.Min.X &&
		box.Min.Y <= other.Max.Y && box.Max.Y >= other.Min.Y &&
		box.Min.Z <= other.Max.Z && box.Max.Z >= other.Min.Z
}

// WorldAabb computes the world-space AABB of a geometry snapshot placed at
// transform: a sphere's AABB is its center +/- radius on every axis, an
// OBB's is its center +/- the sum of |axis_i|*extent_i, and a mesh's is
// its BVH root OBBRSS's AABB when a BVH is available, else a fold over
// every transformed vertex.
func WorldAabb(snap registry.Snapshot, transform geom.Transform) Aabb {
	switch snap.Kind {
	case registry.KindSphere:
		center := transform.Point(snap.Sphere.Center)
		r := geom.Vec3{X: snap.Sphere.Radius, Y: snap.Sphere.Radius, Z: snap.Sphere.Radius}
		return Aabb{Min: center.Sub(r), Max: center.Add(r)}
	case registry.KindObb:
		center := transform.Point(snap.Obb.Center)
		combined := transform.Rotation.Mul(snap.Obb.Rotation)
		var extent geom.Vec3
		for i := 0; i < 3; i++ {
			axis := combined.ColVec(i)
			e := extentComponent(snap.Obb.Extents, i)
			extent.X += math.Abs(axis.X) * e
			extent.Y += math.Abs(axis.Y) * e
			extent.Z += math.Abs(axis.Z) * e
		}
		return Aabb{Min: center.Sub(extent), Max: center.Add(extent)}
	default:
		if snap.Bvh != nil && snap.Bvh.Root() >= 0 {
			root := snap.Bvh.Nodes[snap.Bvh.Root()].Volume
			center := transform.Point(root.Center)
			var extent geom.Vec3
			for i := 0; i < 3; i++ {
				axis := transform.Rotation.MulVec(root.Axis[i])
				e := extentComponent(root.Extents, i)
				extent.X += math.Abs(axis.X) * e
				extent.Y += math.Abs(axis.Y) * e
				extent.Z += math.Abs(axis.Z) * e
			}
			return Aabb{Min: center.Sub(extent), Max: center.Add(extent)}
		}
		return aabbFromVertices(snap.MeshVerts, transform)
	}
}

func extentComponent(v geom.Vec3, axis int) float64 { return v.Component(axis) }

func aabbFromVertices(verts []geom.Vec3, transform geom.Transform) Aabb {
	if len(verts) == 0 {
		return Aabb{}
	}
	p := transform.Point(verts[0])
	box := Aabb{Min: p, Max: p}
	for _, v := range verts[1:] {
		p := transform.Point(v)
		box.Min = geom.Min(box.Min, p)
		box.Max = geom.Max(box.Max, p)
	}
	return box
}

// Detect computes the world AABB of every object (acquiring and releasing
// a reference around each lookup) and enumerates overlapping pairs via a
// brute O(n^2) sweep with deterministic i<j ordering, the "Brute"
// strategy. It writes up to len(out) pairs into out and returns the true
// total pair count; when total exceeds len(out) the returned error is
// ErrBufferTooSmall and the pairs actually written are
// still valid.
func Detect(reg *registry.Registry, objects []Object, out []Pair) (int, error) {
	boxes := make([]Aabb, len(objects))
	for i, obj := range objects {
		snap, err := reg.Acquire(obj.Handle)
		if err != nil {
			return 0, err
		}
		boxes[i] = WorldAabb(snap, obj.Transform)
		reg.Release(obj.Handle)
	}

	written := 0
	total := 0
	for i := 0; i < len(objects); i++ {
		for j := i + 1; j < len(objects); j++ {
			if !boxes[i].overlaps(boxes[j]) {
				continue
			}
			total++
			if written < len(out) {
				out[written] = Pair{IndexA: i, IndexB: j}
				written++
			}
		}
	}
	if total > len(out) {
		return total, fcl3d.ErrBufferTooSmall
	}
	return total, nil
}
