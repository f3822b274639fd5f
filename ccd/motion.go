// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ccd implements continuous collision detection: sampling two
// shapes' motions over t in [0,1], bisecting or conservatively advancing
// toward the first time of impact.
package ccd

import "github.com/cpmech/fcl3d/geom"

// RotationInterp selects how Motion implementations blend rotation between
// keyframes, chosen per engine through engine.Config.RotationInterp; fcl3d
// defaults to Slerp (see engine.DefaultConfig) and exposes Nlerp as the
// cheaper, lower-precision alternative.
type RotationInterp int

const (
	RotationSlerp RotationInterp = iota
	RotationNlerp
)

// Motion evaluates a shape's world transform at a normalized time t in
// [0,1]. interp only affects motions that interpolate between two
// keyframe rotations (LinearMotion); ScrewMotion ignores it, since its
// rotation is an exact axis-angle function of t, not a blend.
type Motion interface {
	Evaluate(t float64, interp RotationInterp) geom.Transform
	// EndpointSpeed is |end.Translation - start.Translation|, used by the
	// relative-speed gate to pick bisection vs. conservative advancement.
	EndpointSpeed() float64
}

// LinearMotion interpolates translation linearly and rotation via slerp or
// nlerp between two keyframe transforms.
type LinearMotion struct {
	Start geom.Transform
	End   geom.Transform
}

func (m LinearMotion) Evaluate(t float64, interp RotationInterp) geom.Transform {
	alpha := geom.Clamp01(t)
	translation := geom.Lerp(m.Start.Translation, m.End.Translation, alpha)

	qa := geom.QuatFromMatrix(m.Start.Rotation)
	qb := geom.QuatFromMatrix(m.End.Rotation)
	var q geom.Quat
	if interp == RotationNlerp {
		q = geom.Nlerp(qa, qb, alpha)
	} else {
		q = geom.Slerp(qa, qb, alpha)
	}
	return geom.Transform{Rotation: q.ToMatrix(), Translation: translation}
}

func (m LinearMotion) EndpointSpeed() float64 {
	return m.End.Translation.Sub(m.Start.Translation).Length()
}

// ScrewMotion rotates start.Rotation by angle = AngularVelocity*t about
// Axis and translates along Axis*LinearVelocity plus a constant
// OrthogonalTranslation, both scaled by t.
type ScrewMotion struct {
	Start                 geom.Transform
	Axis                  geom.Vec3
	AngularVelocity       float64
	LinearVelocity        float64
	OrthogonalTranslation geom.Vec3
}

func (m ScrewMotion) Evaluate(t float64, _ RotationInterp) geom.Transform {
	alpha := geom.Clamp01(t)
	delta := geom.RotationFromAxisAngle(m.Axis, m.AngularVelocity*alpha)
	rotation := delta.Mul(m.Start.Rotation)
	translation := m.Start.Translation.
		Add(m.Axis.Scale(m.LinearVelocity * alpha)).
		Add(m.OrthogonalTranslation.Scale(alpha))
	return geom.Transform{Rotation: rotation, Translation: translation}
}

func (m ScrewMotion) EndpointSpeed() float64 {
	return m.Axis.Scale(m.LinearVelocity).Add(m.OrthogonalTranslation).Length()
}
