// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package narrowphase

import (
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
	"github.com/cpmech/fcl3d/volume"
)

// analyticCell is one cell of the compile-time dispatch matrix: a routine
// that only ever sees the pair of kinds it was registered under.
type analyticCell func(a, b Placed) (bool, Contact)

// dispatchMatrix is the 3x3 table of analytic routines indexed by
// [a.Kind][b.Kind], mirroring the driver's g_DispatchMatrix. A nil cell
// falls back to the generic support-based solver in Detect.
var dispatchMatrix = [3][3]analyticCell{
	registry.KindSphere: {
		registry.KindSphere: detectSphereSphere,
		registry.KindObb:    detectSphereObb,
		registry.KindMesh:   nil,
	},
	registry.KindObb: {
		registry.KindSphere: detectObbSphere,
		registry.KindObb:    detectObbObb,
		registry.KindMesh:   nil,
	},
	registry.KindMesh: {
		registry.KindSphere: nil,
		registry.KindObb:    nil,
		registry.KindMesh:   nil,
	},
}

// Detect resolves whether a and b, each placed at a world transform,
// intersect and returns their contact. It first tries the analytic
// dispatch matrix; pairs with no analytic cell (any mesh involvement) fall
// back to the generic GJK/EPA support-based path, pre-pruned by an OBBRSS
// overlap test when both shapes carry one.
func Detect(a, b Placed) (bool, Contact) {
	if cell := dispatchMatrix[a.Snapshot.Kind][b.Snapshot.Kind]; cell != nil {
		return cell(a, b)
	}
	return detectGeneric(a, b)
}

// detectGeneric is the support-function fallback: an OBBRSS pre-prune
// followed by GJK intersection and, on a positive result, EPA penetration
// extraction. EPA extracts the penetration depth/normal/witnesses from the
// GJK-terminated simplex (see DESIGN.md's narrowphase entry for why it was
// chosen over a second, differently-grounded solver).
func detectGeneric(a, b Placed) (bool, Contact) {
	volA, volB := worldVolume(a), worldVolume(b)
	if !volume.Overlap(volA, volB) {
		return false, Contact{}
	}

	supportA, supportB := makeSupport(a), makeSupport(b)
	seed := volB.Center.Sub(volA.Center)
	if seed.LengthSq() <= geom.SingularityEpsilon*geom.SingularityEpsilon {
		seed = geom.Vec3{X: 1}
	}

	intersecting, simplex := gjkIntersect(supportA, supportB, seed)
	if !intersecting {
		return false, Contact{}
	}

	contact, ok := expandPolytope(supportA, supportB, simplex)
	if !ok {
		return false, Contact{}
	}
	return true, contact
}
