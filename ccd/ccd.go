// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ccd

import (
	"math"

	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/narrowphase"
	"github.com/cpmech/fcl3d/registry"
)

// defaultTolerance and defaultMaxIterations apply whenever a Query leaves
// Tolerance non-positive or MaxIterations zero.
const (
	defaultTolerance     = 1e-4
	defaultMaxIterations = 64
	// relativeSpeedGate below this threshold routes to bisection instead
	// of conservative advancement.
	relativeSpeedGate = 1e-8
)

// Query is one continuous-collision request between two placed motions.
type Query struct {
	HandleA       registry.Handle
	MotionA       Motion
	HandleB       registry.Handle
	MotionB       Motion
	Tolerance     float64
	MaxIterations int
}

// Result is the outcome of a continuous-collision query.
type Result struct {
	Intersecting bool
	TimeOfImpact float64
	Contact      narrowphase.Contact
}

// ContinuousCollide acquires q.HandleA/q.HandleB and runs
// ContinuousCollideSnapshots between them, releasing both references before
// returning. Acquisition failures (InvalidHandle, Busy) are returned as-is.
func ContinuousCollide(reg *registry.Registry, q Query, interp RotationInterp) (Result, error) {
	snapA, err := reg.Acquire(q.HandleA)
	if err != nil {
		return Result{}, err
	}
	defer reg.Release(q.HandleA)
	snapB, err := reg.Acquire(q.HandleB)
	if err != nil {
		return Result{}, err
	}
	defer reg.Release(q.HandleB)

	return ContinuousCollideSnapshots(snapA, q.MotionA, snapB, q.MotionB, q.Tolerance, q.MaxIterations, interp), nil
}

// ContinuousCollideSnapshots is ContinuousCollide's snapshot-core entry
// point: it runs the bisection/conservative-advancement solver directly on
// pre-acquired snapshots, so a caller already holding references (such as
// engine.Engine.ContinuousCollide) never touches the registry lock here and
// can keep its own acquire/release outside any timed region. It selects
// bisection when both motions are nearly stationary (their combined
// endpoint translation speed is at or below relativeSpeedGate) and
// conservative advancement otherwise.
func ContinuousCollideSnapshots(snapA registry.Snapshot, motionA Motion, snapB registry.Snapshot, motionB Motion, tolerance float64, maxIterations int, interp RotationInterp) Result {
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	if maxIterations == 0 {
		maxIterations = defaultMaxIterations
	}

	speed := motionA.EndpointSpeed() + motionB.EndpointSpeed()
	sample := func(t float64) (bool, narrowphase.Contact) {
		placedA := narrowphase.Placed{Snapshot: snapA, Transform: motionA.Evaluate(t, interp)}
		placedB := narrowphase.Placed{Snapshot: snapB, Transform: motionB.Evaluate(t, interp)}
		return narrowphase.Detect(placedA, placedB)
	}
	distanceAt := func(t float64) float64 {
		placedA := narrowphase.Placed{Snapshot: snapA, Transform: motionA.Evaluate(t, interp)}
		placedB := narrowphase.Placed{Snapshot: snapB, Transform: motionB.Evaluate(t, interp)}
		d, _, _ := narrowphase.Distance(placedA, placedB)
		return d
	}

	if speed <= relativeSpeedGate {
		return bisect(sample, tolerance, maxIterations)
	}
	return conservativeAdvance(sample, distanceAt, speed, tolerance, maxIterations)
}

// bisect narrows [lo, hi] until the window closes to tolerance, reporting
// the last sampled midpoint's outcome and hi (the tightest known-colliding
// time) as the time of impact, or 1.0 if that last sample did not collide.
func bisect(sample func(t float64) (bool, narrowphase.Contact), tolerance float64, maxIterations int) Result {
	lo, hi := 0.0, 1.0
	var intersecting bool
	var contact narrowphase.Contact
	for i := 0; i < maxIterations; i++ {
		mid := (lo + hi) / 2
		intersecting, contact = sample(mid)
		if intersecting {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo <= tolerance {
			break
		}
	}
	toi := 1.0
	if intersecting {
		toi = hi
	}
	return Result{Intersecting: intersecting, TimeOfImpact: geom.Clamp01(toi), Contact: contact}
}

// conservativeAdvance advances t by (separation / relative speed) each
// step, the standard conservative-advancement bound: the shapes cannot
// reach each other before that much time has passed at the given closing
// speed. A step that reaches the end of the motion is clamped to t=1 and
// sampled there before a miss is reported.
func conservativeAdvance(sample func(t float64) (bool, narrowphase.Contact), distanceAt func(t float64) float64, speed, tolerance float64, maxIterations int) Result {
	t := 0.0
	speedSafe := math.Max(speed, relativeSpeedGate)
	for i := 0; i < maxIterations; i++ {
		intersecting, contact := sample(t)
		if intersecting {
			return Result{Intersecting: true, TimeOfImpact: geom.Clamp01(t), Contact: contact}
		}
		d := distanceAt(t)
		if d <= tolerance {
			break
		}
		t += math.Max(d/speedSafe, tolerance)
		if t >= 1 {
			t = 1
			if hit, contact := sample(t); hit {
				return Result{Intersecting: true, TimeOfImpact: t, Contact: contact}
			}
			break
		}
	}
	return Result{Intersecting: false, TimeOfImpact: geom.Clamp01(t)}
}
