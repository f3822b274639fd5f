// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fcl3d-demo is a small demo CLI driving the engine package: it builds
// a handful of geometries, runs one collide/distance/broadphase/CCD query
// against each, and prints the results. It exists to exercise the public
// API end to end, the way gofem's root main.go drove a whole simulation
// from the command line; the core engine itself never prints anything.
package main

import (
	"flag"

	"github.com/cpmech/fcl3d/broadphase"
	"github.com/cpmech/fcl3d/ccd"
	"github.com/cpmech/fcl3d/engine"
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// printingTelemetry forwards every recorded sample to io.Pf, standing in
// for an external telemetry sink the core never reads back from.
type printingTelemetry struct{ verbose bool }

func (t printingTelemetry) RecordDuration(kind engine.TelemetryKind, microseconds uint64) {
	if !t.verbose {
		return
	}
	io.Pf("  [telemetry] kind=%d took %dus\n", kind, microseconds)
}

func main() {
	verbose := flag.Bool("v", false, "print telemetry samples")
	flag.Parse()

	io.Pf("fcl3d demo -- 3D collision/distance/CCD engine\n\n")

	e := engine.New(engine.DefaultConfig(), printingTelemetry{verbose: *verbose})

	sphereA, err := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	if err != nil {
		chk.Panic("create sphere A failed: %v", err)
	}
	sphereB, err := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1.5})
	if err != nil {
		chk.Panic("create sphere B failed: %v", err)
	}
	boxC, err := e.CreateObb(registry.ObbDesc{
		Center:   geom.Vec3{},
		Extents:  geom.Vec3{X: 1, Y: 1, Z: 1},
		Rotation: geom.Identity3,
	})
	if err != nil {
		chk.Panic("create box C failed: %v", err)
	}

	transformA := geom.IdentityTransform()
	transformB := geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 1.75}}
	colliding, contact, err := e.Collide(sphereA, transformA, sphereB, transformB)
	if err != nil {
		chk.Panic("collide failed: %v", err)
	}
	io.Pf("collide(sphereA, sphereB): intersecting=%v penetration=%.4f normal=%v\n", colliding, contact.PenetrationDepth, contact.Normal)

	transformC := geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 4}}
	dist, closestA, closestC, err := e.Distance(sphereA, transformA, boxC, transformC)
	if err != nil {
		chk.Panic("distance failed: %v", err)
	}
	io.Pf("distance(sphereA, boxC):   separation=%.4f closestA=%v closestC=%v\n", dist, closestA, closestC)

	objects := []broadphase.Object{
		{Handle: sphereA, Transform: transformA},
		{Handle: sphereB, Transform: transformB},
		{Handle: boxC, Transform: transformC},
	}
	pairs := make([]broadphase.Pair, 8)
	count, err := e.Broadphase(objects, pairs)
	if err != nil {
		chk.Panic("broadphase failed: %v", err)
	}
	io.Pf("broadphase: %d overlapping pair(s) among %d objects\n", count, len(objects))

	ccdResult, err := e.ContinuousCollide(ccd.Query{
		HandleA: sphereA,
		MotionA: ccd.LinearMotion{Start: transformA, End: geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 3}}},
		HandleB: boxC,
		MotionB: ccd.LinearMotion{Start: transformC, End: transformC},
	})
	if err != nil {
		chk.Panic("continuous collide failed: %v", err)
	}
	io.Pf("continuous_collide(sphereA -> boxC): intersecting=%v toi=%.4f\n", ccdResult.Intersecting, ccdResult.TimeOfImpact)
}
