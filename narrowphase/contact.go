// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package narrowphase resolves whether two placed geometries intersect and,
// if so, their contact normal, penetration depth and witness points. A
// compile-time dispatch table routes sphere/OBB pairs to closed-form
// analytic routines; every pair touching a mesh (and any future geometry
// kind) falls back to a generic GJK/EPA solver over a support function.
package narrowphase

import (
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
)

// Contact is the witness geometry of an intersection. Normal points from
// ObjectA toward ObjectB.
type Contact struct {
	Normal           geom.Vec3
	PenetrationDepth float64
	PointOnObjectA   geom.Vec3
	PointOnObjectB   geom.Vec3
}

// Placed pairs a geometry snapshot with the world transform it is queried
// at.
type Placed struct {
	Snapshot  registry.Snapshot
	Transform geom.Transform
}
