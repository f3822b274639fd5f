// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package narrowphase

import (
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
	"github.com/cpmech/fcl3d/volume"
)

// supportFunc returns the point on a placed geometry farthest along
// direction, the primitive GJK/EPA are built on.
type supportFunc func(direction geom.Vec3) geom.Vec3

// makeSupport builds the support function for whatever kind p holds.
func makeSupport(p Placed) supportFunc {
	switch p.Snapshot.Kind {
	case registry.KindSphere:
		center := p.Transform.Point(p.Snapshot.Sphere.Center)
		radius := p.Snapshot.Sphere.Radius
		return func(direction geom.Vec3) geom.Vec3 {
			return center.Add(direction.Normalize().Scale(radius))
		}
	case registry.KindObb:
		box := buildWorldObb(p.Snapshot.Obb.Center, p.Snapshot.Obb.Extents, p.Snapshot.Obb.Rotation, p.Transform)
		return func(direction geom.Vec3) geom.Vec3 {
			return supportPointOnObb(box, direction)
		}
	default:
		verts := worldMeshVertices(p)
		return func(direction geom.Vec3) geom.Vec3 {
			return supportOverVertices(verts, direction)
		}
	}
}

func worldMeshVertices(p Placed) []geom.Vec3 {
	src := p.Snapshot.MeshVerts
	out := make([]geom.Vec3, len(src))
	for i, v := range src {
		out[i] = p.Transform.Point(v)
	}
	return out
}

// supportOverVertices exhaustively scans for the farthest vertex along
// direction. A mesh reaching this path has already survived the OBBRSS
// pre-prune, so an exhaustive scan over its (typically small) vertex set
// costs less than building and querying an auxiliary acceleration
// structure just for support queries.
func supportOverVertices(verts []geom.Vec3, direction geom.Vec3) geom.Vec3 {
	best := verts[0]
	bestDot := best.Dot(direction)
	for _, v := range verts[1:] {
		d := v.Dot(direction)
		if d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

// worldVolume returns an OBBRSS bounding p in world space, used as a cheap
// pre-prune ahead of the generic GJK/EPA path.
func worldVolume(p Placed) volume.Obbrss {
	switch p.Snapshot.Kind {
	case registry.KindSphere:
		center := p.Transform.Point(p.Snapshot.Sphere.Center)
		r := p.Snapshot.Sphere.Radius
		return volume.Obbrss{
			Center:  center,
			Axis:    [3]geom.Vec3{{X: 1}, {Y: 1}, {Z: 1}},
			Extents: geom.Vec3{X: r, Y: r, Z: r},
			Radius:  r,
		}
	case registry.KindObb:
		box := buildWorldObb(p.Snapshot.Obb.Center, p.Snapshot.Obb.Extents, p.Snapshot.Obb.Rotation, p.Transform)
		return volume.Obbrss{
			Center:  box.Center,
			Axis:    box.Axes,
			Extents: box.Extents,
			Radius:  box.Extents.Length(),
		}
	default:
		root := p.Snapshot.Bvh.Nodes[p.Snapshot.Bvh.Root()].Volume
		var worldAxis [3]geom.Vec3
		for i, a := range root.Axis {
			worldAxis[i] = p.Transform.Rotation.MulVec(a)
		}
		return volume.Obbrss{
			Center:  p.Transform.Point(root.Center),
			Axis:    worldAxis,
			Extents: root.Extents,
			Radius:  root.Radius,
		}
	}
}
