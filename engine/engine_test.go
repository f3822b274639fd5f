// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"math"
	"testing"

	fcl3d "github.com/cpmech/fcl3d"
	"github.com/cpmech/fcl3d/broadphase"
	"github.com/cpmech/fcl3d/ccd"
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
	"github.com/cpmech/gosl/chk"
)

type recordingTelemetry struct {
	counts map[TelemetryKind]int
}

func newRecordingTelemetry() *recordingTelemetry {
	return &recordingTelemetry{counts: make(map[TelemetryKind]int)}
}

func (r *recordingTelemetry) RecordDuration(kind TelemetryKind, _ uint64) {
	r.counts[kind]++
}

func TestCollideRecordsTelemetryOnlyOnSuccess(tst *testing.T) {
	chk.PrintTitle("CollideRecordsTelemetryOnlyOnSuccess")

	telemetry := newRecordingTelemetry()
	e := New(DefaultConfig(), telemetry)

	a, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	b, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})

	colliding, _, err := e.Collide(a, geom.IdentityTransform(), b, geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 0.5}})
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if !colliding {
		tst.Error("expected overlapping spheres to collide")
	}
	if telemetry.counts[TelemetryCollision] != 1 {
		tst.Errorf("expected exactly one recorded collision sample, got %d", telemetry.counts[TelemetryCollision])
	}

	if _, _, err := e.Collide(registry.Handle(999), geom.IdentityTransform(), b, geom.IdentityTransform()); err == nil {
		tst.Error("expected an invalid-handle error")
	}
	if telemetry.counts[TelemetryCollision] != 1 {
		tst.Error("a failed query must not be timed")
	}
}

func TestCollideRejectsNonFiniteTransform(tst *testing.T) {
	chk.PrintTitle("CollideRejectsNonFiniteTransform")

	e := New(DefaultConfig(), nil)
	a, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	b, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})

	badTransform := geom.Transform{Rotation: geom.Mat3{{math.NaN(), 0, 0}, {0, 1, 0}, {0, 0, 1}}}
	_, _, err := e.Collide(a, badTransform, b, geom.IdentityTransform())
	if !errors.Is(err, fcl3d.ErrInvalidParameter) {
		tst.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestDestroyGeometryBusyThenOk(tst *testing.T) {
	chk.PrintTitle("DestroyGeometryBusyThenOk")

	e := New(DefaultConfig(), nil)
	h, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	if _, err := e.registry.Acquire(h); err != nil {
		tst.Fatalf("acquire failed: %v", err)
	}
	if err := e.DestroyGeometry(h); !errors.Is(err, fcl3d.ErrBusy) {
		tst.Errorf("expected ErrBusy while a reference is outstanding, got %v", err)
	}
	e.registry.Release(h)
	if err := e.DestroyGeometry(h); err != nil {
		tst.Errorf("expected destroy of unreferenced geometry to succeed, got %v", err)
	}
	if e.IsValidGeometry(h) {
		tst.Error("expected handle to be invalid after destroy")
	}
}

func TestDistancePeerOfCollide(tst *testing.T) {
	chk.PrintTitle("DistancePeerOfCollide")

	e := New(DefaultConfig(), nil)
	a, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	b, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})

	d, _, _, err := e.Distance(a, geom.IdentityTransform(), b, geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 4}})
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if d < 1.9 || d > 2.1 {
		tst.Errorf("expected distance ~2.0, got %v", d)
	}
}

func TestEngineBroadphaseWiring(tst *testing.T) {
	chk.PrintTitle("EngineBroadphaseWiring")

	e := New(DefaultConfig(), nil)
	a, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	b, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})

	objects := []broadphase.Object{
		{Handle: a, Transform: geom.IdentityTransform()},
		{Handle: b, Transform: geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 0.5}}},
	}
	out := make([]broadphase.Pair, 4)
	n, err := e.Broadphase(objects, out)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		tst.Errorf("expected one overlapping pair, got %d", n)
	}
}

func TestEngineConfigPcaDisabledAppliesToMeshes(tst *testing.T) {
	chk.PrintTitle("EngineConfigPcaDisabledAppliesToMeshes")

	config := DefaultConfig()
	config.PcaDisabled = true
	e := New(config, nil)

	h, err := e.CreateMesh(registry.MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	})
	if err != nil {
		tst.Fatalf("create mesh failed: %v", err)
	}
	if !e.IsValidGeometry(h) {
		tst.Error("expected the created mesh handle to be valid")
	}
	snap, err := e.registry.Acquire(h)
	if err != nil {
		tst.Fatalf("acquire failed: %v", err)
	}
	defer e.registry.Release(h)
	identity := [3]geom.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	if axes := snap.Bvh.Nodes[snap.Bvh.Root()].Volume.Axis; axes != identity {
		tst.Errorf("expected a PCA-disabled engine to fit axis-aligned mesh volumes, got axes %v", axes)
	}
}

func TestEngineContinuousCollideInvalidHandleBypassesTiming(tst *testing.T) {
	chk.PrintTitle("EngineContinuousCollideInvalidHandleBypassesTiming")

	telemetry := newRecordingTelemetry()
	e := New(DefaultConfig(), telemetry)
	a, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})

	_, err := e.ContinuousCollide(ccd.Query{
		HandleA: a,
		MotionA: ccd.LinearMotion{Start: geom.IdentityTransform(), End: geom.IdentityTransform()},
		HandleB: registry.Handle(999),
		MotionB: ccd.LinearMotion{Start: geom.IdentityTransform(), End: geom.IdentityTransform()},
	})
	if !errors.Is(err, fcl3d.ErrInvalidHandle) {
		tst.Errorf("expected ErrInvalidHandle, got %v", err)
	}
	if telemetry.counts[TelemetryCCD] != 0 {
		tst.Errorf("a failed CCD query (bad handle) must not be timed, got %d samples", telemetry.counts[TelemetryCCD])
	}
}

func TestEngineContinuousCollideRejectsNilMotion(tst *testing.T) {
	chk.PrintTitle("EngineContinuousCollideRejectsNilMotion")

	e := New(DefaultConfig(), nil)
	a, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	b, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})

	_, err := e.ContinuousCollide(ccd.Query{HandleA: a, HandleB: b})
	if !errors.Is(err, fcl3d.ErrInvalidParameter) {
		tst.Errorf("expected ErrInvalidParameter for a query without motions, got %v", err)
	}
}

func TestEngineShutdownInvalidatesHandles(tst *testing.T) {
	chk.PrintTitle("EngineShutdownInvalidatesHandles")

	e := New(DefaultConfig(), nil)
	h, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	e.Shutdown()
	if e.IsValidGeometry(h) {
		tst.Error("expected all handles to be invalid after shutdown")
	}
}

func TestEngineContinuousCollideWiring(tst *testing.T) {
	chk.PrintTitle("EngineContinuousCollideWiring")

	e := New(DefaultConfig(), nil)
	a, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})
	b, _ := e.CreateSphere(registry.SphereDesc{Center: geom.Vec3{}, Radius: 1})

	result, err := e.ContinuousCollide(ccd.Query{
		HandleA: a,
		MotionA: ccd.LinearMotion{
			Start: geom.IdentityTransform(),
			End:   geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 4}},
		},
		HandleB: b,
		MotionB: ccd.LinearMotion{
			Start: geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 6}},
			End:   geom.Transform{Rotation: geom.Identity3, Translation: geom.Vec3{X: 6}},
		},
	})
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if !result.Intersecting {
		tst.Error("expected the engine-level CCD call to hit")
	}
}
