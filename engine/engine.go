// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine is the public entry point of the collision library: it
// owns one registry, consults the narrow-phase dispatch matrix, the
// broadphase sweep and the CCD solver, and wraps every successful query in
// a timing sample forwarded to an external telemetry sink. It never
// panics on caller input; every failure is returned as a *fcl3d.StatusError.
package engine

import (
	"time"

	fcl3d "github.com/cpmech/fcl3d"
	"github.com/cpmech/fcl3d/broadphase"
	"github.com/cpmech/fcl3d/ccd"
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/narrowphase"
	"github.com/cpmech/fcl3d/registry"
)

// TelemetryKind discriminates which query family a recorded duration
// belongs to.
type TelemetryKind int

const (
	TelemetryCollision TelemetryKind = iota
	TelemetryDistance
	TelemetryCCD
	TelemetryHighPriorityCollision
)

// Telemetry is the external collaborator a caller supplies to New: the
// engine only ever calls RecordDuration, never reads anything back.
type Telemetry interface {
	RecordDuration(kind TelemetryKind, microseconds uint64)
}

// noopTelemetry discards every sample; an Engine built by New with a nil
// Telemetry is still safe to call.
type noopTelemetry struct{}

func (noopTelemetry) RecordDuration(TelemetryKind, uint64) {}

// Config groups the engine-wide tunables, following the single-struct-
// read-at-startup shape inp.Simulation uses in the teacher repo rather
// than package-level mutable globals.
type Config struct {
	// CcdTolerance is the default CCD tolerance when a query supplies a
	// non-positive one.
	CcdTolerance float64
	// CcdMaxIterations is the default CCD iteration budget when a query
	// supplies zero.
	CcdMaxIterations int
	// RotationInterp selects slerp or nlerp for LinearMotion evaluation
	// during continuous collision.
	RotationInterp ccd.RotationInterp
	// BvhLeafThreshold caps the triangle count a BVH leaf may hold before
	// the builder splits it further. Non-positive keeps the builder's
	// default of 4.
	BvhLeafThreshold int
	// PcaDisabled forces every mesh's BVH to fit axis-aligned volumes
	// instead of PCA-aligned ones, trading tighter pruning for a cheaper
	// build with no eigen-sweep. The zero value keeps PCA fitting on.
	PcaDisabled bool
}

// DefaultConfig returns the library-wide defaults: tolerance 1e-4, 64
// iterations, slerp rotation interpolation (matching the original driver's
// continuous_collision.cpp, see DESIGN.md), BVH leaf threshold 4, PCA
// fitting on.
func DefaultConfig() Config {
	return Config{
		CcdTolerance:     1e-4,
		CcdMaxIterations: 64,
		RotationInterp:   ccd.RotationSlerp,
		BvhLeafThreshold: 4,
		PcaDisabled:      false,
	}
}

// Engine is the top-level collision/distance/CCD API, analogous to the
// teacher's top-level FEM struct owning its solver subsystems and exposing
// them as methods.
type Engine struct {
	registry  *registry.Registry
	config    Config
	telemetry Telemetry
}

// New creates an engine with an empty geometry registry, tuned by
// config's BvhLeafThreshold/PcaDisabled for every mesh it builds. A nil
// telemetry is replaced with a no-op sink.
func New(config Config, telemetry Telemetry) *Engine {
	if telemetry == nil {
		telemetry = noopTelemetry{}
	}
	reg := registry.NewTuned(config.BvhLeafThreshold, !config.PcaDisabled)
	return &Engine{registry: reg, config: config, telemetry: telemetry}
}

// Shutdown drains the engine's registry regardless of outstanding
// references, per the registry's end-of-life contract: initialize before
// the first query, tear down after the last consumer.
func (e *Engine) Shutdown() {
	e.registry.Shutdown()
}

func (e *Engine) timed(kind TelemetryKind, fn func()) {
	start := time.Now()
	fn()
	e.telemetry.RecordDuration(kind, uint64(time.Since(start).Microseconds()))
}

// CreateGeometry variants -----------------------------------------------

// CreateSphere validates and inserts a sphere geometry.
func (e *Engine) CreateSphere(desc registry.SphereDesc) (registry.Handle, error) {
	return e.registry.CreateSphere(desc)
}

// CreateObb validates and inserts an oriented-box geometry.
func (e *Engine) CreateObb(desc registry.ObbDesc) (registry.Handle, error) {
	return e.registry.CreateObb(desc)
}

// CreateMesh validates, builds a BVH over, and inserts a mesh geometry.
func (e *Engine) CreateMesh(desc registry.MeshDesc) (registry.Handle, error) {
	return e.registry.CreateMesh(desc)
}

// DestroyGeometry removes a geometry; it returns ErrBusy while any
// reference is outstanding.
func (e *Engine) DestroyGeometry(h registry.Handle) error {
	return e.registry.Destroy(h)
}

// UpdateMeshGeometry replaces a mesh geometry's payload and rebuilds its
// BVH, refusing while any reference is outstanding.
func (e *Engine) UpdateMeshGeometry(h registry.Handle, desc registry.MeshDesc) error {
	return e.registry.UpdateMesh(h, desc)
}

// IsValidGeometry reports whether h names a live geometry.
func (e *Engine) IsValidGeometry(h registry.Handle) bool {
	return e.registry.IsValid(h)
}

// Collide acquires both handles, validates the supplied transforms, runs
// narrow-phase dispatch and releases the references before returning.
// Failures bypass timing.
func (e *Engine) Collide(handleA registry.Handle, transformA geom.Transform, handleB registry.Handle, transformB geom.Transform) (bool, narrowphase.Contact, error) {
	if !transformA.IsValid() || !transformB.IsValid() {
		return false, narrowphase.Contact{}, fcl3d.ErrInvalidParameter
	}
	snapA, err := e.registry.Acquire(handleA)
	if err != nil {
		return false, narrowphase.Contact{}, err
	}
	defer e.registry.Release(handleA)
	snapB, err := e.registry.Acquire(handleB)
	if err != nil {
		return false, narrowphase.Contact{}, err
	}
	defer e.registry.Release(handleB)

	var intersecting bool
	var contact narrowphase.Contact
	e.timed(TelemetryCollision, func() {
		intersecting, contact = narrowphase.Detect(
			narrowphase.Placed{Snapshot: snapA, Transform: transformA},
			narrowphase.Placed{Snapshot: snapB, Transform: transformB},
		)
	})
	return intersecting, contact, nil
}

// CollideSnapshots is the "high-priority context" entry point: it accepts
// pre-acquired snapshots and raw transforms instead of handles, so it
// never touches the registry lock. Callers in contexts that draw no
// distinction between permitted and forbidden calling contexts (this
// userspace Go library among them) can call this directly instead of
// Collide with no behavioral difference beyond which telemetry counter
// is credited.
func (e *Engine) CollideSnapshots(snapA registry.Snapshot, transformA geom.Transform, snapB registry.Snapshot, transformB geom.Transform) (bool, narrowphase.Contact, error) {
	if !transformA.IsValid() || !transformB.IsValid() {
		return false, narrowphase.Contact{}, fcl3d.ErrInvalidParameter
	}
	var intersecting bool
	var contact narrowphase.Contact
	e.timed(TelemetryHighPriorityCollision, func() {
		intersecting, contact = narrowphase.Detect(
			narrowphase.Placed{Snapshot: snapA, Transform: transformA},
			narrowphase.Placed{Snapshot: snapB, Transform: transformB},
		)
	})
	return intersecting, contact, nil
}

// Distance acquires both handles and computes their separation and a
// closest-point witness on each. The separation is negative for overlapping
// sphere/sphere and sphere/OBB pairs; other pairs report 0 when touching or
// overlapping.
func (e *Engine) Distance(handleA registry.Handle, transformA geom.Transform, handleB registry.Handle, transformB geom.Transform) (float64, geom.Vec3, geom.Vec3, error) {
	if !transformA.IsValid() || !transformB.IsValid() {
		return 0, geom.Vec3{}, geom.Vec3{}, fcl3d.ErrInvalidParameter
	}
	snapA, err := e.registry.Acquire(handleA)
	if err != nil {
		return 0, geom.Vec3{}, geom.Vec3{}, err
	}
	defer e.registry.Release(handleA)
	snapB, err := e.registry.Acquire(handleB)
	if err != nil {
		return 0, geom.Vec3{}, geom.Vec3{}, err
	}
	defer e.registry.Release(handleB)

	var d float64
	var closestA, closestB geom.Vec3
	e.timed(TelemetryDistance, func() {
		d, closestA, closestB = narrowphase.Distance(
			narrowphase.Placed{Snapshot: snapA, Transform: transformA},
			narrowphase.Placed{Snapshot: snapB, Transform: transformB},
		)
	})
	return d, closestA, closestB, nil
}

// ContinuousCollide acquires both handles, runs the bisection/conservative-
// advancement solver between the two motions, and releases the references
// before returning, using e's configured default tolerance/iteration count
// and rotation interpolation when the query leaves them zero. Acquisition
// failures (InvalidHandle, Busy) bypass timing, the same as Collide/Distance.
func (e *Engine) ContinuousCollide(query ccd.Query) (ccd.Result, error) {
	if query.MotionA == nil || query.MotionB == nil {
		return ccd.Result{}, fcl3d.ErrInvalidParameter
	}
	if query.Tolerance <= 0 {
		query.Tolerance = e.config.CcdTolerance
	}
	if query.MaxIterations == 0 {
		query.MaxIterations = e.config.CcdMaxIterations
	}

	snapA, err := e.registry.Acquire(query.HandleA)
	if err != nil {
		return ccd.Result{}, err
	}
	defer e.registry.Release(query.HandleA)
	snapB, err := e.registry.Acquire(query.HandleB)
	if err != nil {
		return ccd.Result{}, err
	}
	defer e.registry.Release(query.HandleB)

	var result ccd.Result
	e.timed(TelemetryCCD, func() {
		result = ccd.ContinuousCollideSnapshots(snapA, query.MotionA, snapB, query.MotionB, query.Tolerance, query.MaxIterations, e.config.RotationInterp)
	})
	return result, nil
}

// Broadphase computes world AABBs for every object (acquiring/releasing a
// reference around each) and writes up to len(out) overlapping pairs,
// returning the true total pair count. It returns ErrBufferTooSmall when
// total exceeds len(out); the pairs written up to that point remain valid.
func (e *Engine) Broadphase(objects []broadphase.Object, out []broadphase.Pair) (int, error) {
	return broadphase.Detect(e.registry, objects, out)
}

// BroadphaseTree is Broadphase's "Tree" strategy: same result set,
// different traversal, via a dynamic-AABB-tree-shaped arena built fresh
// for this call.
func (e *Engine) BroadphaseTree(objects []broadphase.Object, out []broadphase.Pair) (int, error) {
	return broadphase.DetectTree(e.registry, objects, out)
}
