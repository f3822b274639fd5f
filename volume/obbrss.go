// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package volume implements the oriented bounding box with a circumscribed
// sphere radius (OBBRSS) used throughout the BVH for fast overlap pruning.
package volume

import (
	"math"

	"github.com/cpmech/fcl3d/geom"
)

// projectionTolerance absorbs float rounding in the SAT projection compare,
// mirroring the driver's kProjectionTolerance.
const projectionTolerance = 1e-5

// Obbrss is an oriented bounding volume: a box aligned with Axis, centered
// at Center, half-extents Extents along each axis, plus Radius, the box's
// circumscribed sphere radius (Extents' own length). Overlap runs the full
// SAT test and does not consult Radius.
type Obbrss struct {
	Center  geom.Vec3
	Axis    [3]geom.Vec3
	Extents geom.Vec3
	Radius  float64
}

func identityAxes() [3]geom.Vec3 {
	return [3]geom.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
}

// Empty returns the degenerate volume used when no points are supplied.
func Empty() Obbrss {
	return Obbrss{Axis: identityAxes()}
}

func extent(v geom.Vec3, axis int) float64 { return v.Component(axis) }

// FromPoints fits a volume to points, preferring a PCA-aligned box and
// falling back to an axis-aligned box if the PCA fit does not converge or
// fewer than 2 points are supplied.
func FromPoints(points []geom.Vec3) Obbrss {
	if len(points) == 0 {
		return Empty()
	}
	if pca, ok := buildPcaVolume(points); ok {
		return pca
	}
	return buildAlignedVolume(points)
}

// FromPointsAligned fits an axis-aligned volume to points, skipping the PCA
// fit entirely. It backs the BVH builder's PCA-disabled configuration,
// trading tighter-fitting boxes for a cheaper, solver-free fit.
func FromPointsAligned(points []geom.Vec3) Obbrss {
	if len(points) == 0 {
		return Empty()
	}
	return buildAlignedVolume(points)
}

func buildAlignedVolume(points []geom.Vec3) Obbrss {
	minPoint, maxPoint := points[0], points[0]
	for _, p := range points[1:] {
		minPoint = geom.Min(minPoint, p)
		maxPoint = geom.Max(maxPoint, p)
	}
	v := Obbrss{Axis: identityAxes()}
	v.Center = minPoint.Add(maxPoint).Scale(0.5)
	v.Extents = maxPoint.Sub(minPoint).Scale(0.5)
	v.Radius = v.Extents.Length()
	return v
}

// buildPcaVolume fits a box aligned with the principal axes of the point
// cloud's covariance tensor, found via a cyclic Jacobi eigenvalue sweep
// (the corpus has no bound Eigen library, so the sweep itself plays the
// role BuildPcaVolume's Eigen::SelfAdjointEigenSolver played in the
// original). ok is false when the sweep fails to converge, signalling the
// caller to fall back to the axis-aligned fit exactly as the original does
// when Eigen reports a non-Success solver state.
func buildPcaVolume(points []geom.Vec3) (Obbrss, bool) {
	if len(points) < 2 {
		return Obbrss{}, false
	}

	var mean geom.Vec3
	for _, p := range points {
		mean = mean.Add(p)
	}
	mean = mean.Scale(1 / float64(len(points)))

	var cov geom.Mat3
	for _, p := range points {
		c := p.Sub(mean)
		cov[0][0] += c.X * c.X
		cov[0][1] += c.X * c.Y
		cov[0][2] += c.X * c.Z
		cov[1][1] += c.Y * c.Y
		cov[1][2] += c.Y * c.Z
		cov[2][2] += c.Z * c.Z
	}
	n := float64(len(points))
	cov[0][0] /= n
	cov[0][1] /= n
	cov[0][2] /= n
	cov[1][1] /= n
	cov[1][2] /= n
	cov[2][2] /= n
	cov[1][0] = cov[0][1]
	cov[2][0] = cov[0][2]
	cov[2][1] = cov[1][2]

	eigenvectors, eigenvalues, ok := jacobiEigenSymmetric3(cov)
	if !ok {
		return Obbrss{}, false
	}
	sortEigenDescending(&eigenvectors, &eigenvalues)

	var v Obbrss
	for axis := 0; axis < 3; axis++ {
		v.Axis[axis] = eigenvectors.ColVec(axis)
	}

	minProj := [3]float64{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	maxProj := [3]float64{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}
	for _, p := range points {
		c := p.Sub(mean)
		for axis := 0; axis < 3; axis++ {
			proj := c.Dot(v.Axis[axis])
			minProj[axis] = math.Min(minProj[axis], proj)
			maxProj[axis] = math.Max(maxProj[axis], proj)
		}
	}

	v.Center = mean
	for axis := 0; axis < 3; axis++ {
		mid := (minProj[axis] + maxProj[axis]) * 0.5
		v.Center = v.Center.Add(v.Axis[axis].Scale(mid))
		half := (maxProj[axis] - minProj[axis]) * 0.5
		switch axis {
		case 0:
			v.Extents.X = half
		case 1:
			v.Extents.Y = half
		case 2:
			v.Extents.Z = half
		}
	}
	v.Radius = v.Extents.Length()
	return v, true
}

func sortEigenDescending(vectors *geom.Mat3, values *geom.Vec3) {
	order := [3]int{0, 1, 2}
	get := func(i int) float64 { return values.Component(order[i]) }
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if get(j) > get(i) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	cols := [3]geom.Vec3{vectors.ColVec(order[0]), vectors.ColVec(order[1]), vectors.ColVec(order[2])}
	vals := geom.Vec3{X: values.Component(order[0]), Y: values.Component(order[1]), Z: values.Component(order[2])}
	*vectors = geom.FromColumns(cols[0], cols[1], cols[2])
	*values = vals
}

func getCorner(v Obbrss, sx, sy, sz float64) geom.Vec3 {
	corner := v.Center
	corner = corner.Add(v.Axis[0].Scale(sx * v.Extents.X))
	corner = corner.Add(v.Axis[1].Scale(sy * v.Extents.Y))
	corner = corner.Add(v.Axis[2].Scale(sz * v.Extents.Z))
	return corner
}

// Merge returns the smallest-fit volume enclosing both lhs and rhs, by
// refitting over their 16 combined corners (8 each) the same way the
// original's FclObbrssMerge does rather than attempting a closed-form
// union of two oriented boxes.
func Merge(lhs, rhs Obbrss) Obbrss {
	points := make([]geom.Vec3, 0, 16)
	signs := [2]float64{-1, 1}
	for _, sx := range signs {
		for _, sy := range signs {
			for _, sz := range signs {
				points = append(points, getCorner(lhs, sx, sy, sz))
				points = append(points, getCorner(rhs, sx, sy, sz))
			}
		}
	}
	return FromPoints(points)
}

// Overlap runs the 15-axis separating axis test (3 face axes per box, plus
// 9 cross-products) between lhs and rhs.
func Overlap(lhs, rhs Obbrss) bool {
	var r, absR [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = lhs.Axis[i].Dot(rhs.Axis[j])
			absR[i][j] = math.Abs(r[i][j]) + geom.AxisEpsilon
		}
	}

	translation := rhs.Center.Sub(lhs.Center)
	t := [3]float64{
		translation.Dot(lhs.Axis[0]),
		translation.Dot(lhs.Axis[1]),
		translation.Dot(lhs.Axis[2]),
	}

	separated := func(projection, radius float64) bool {
		return projection > radius+projectionTolerance
	}

	for i := 0; i < 3; i++ {
		ra := extent(lhs.Extents, i)
		rb := 0.0
		for j := 0; j < 3; j++ {
			rb += extent(rhs.Extents, j) * absR[i][j]
		}
		if separated(math.Abs(t[i]), ra+rb) {
			return false
		}
	}

	for j := 0; j < 3; j++ {
		ra := 0.0
		for i := 0; i < 3; i++ {
			ra += extent(lhs.Extents, i) * absR[i][j]
		}
		rb := extent(rhs.Extents, j)
		projection := math.Abs(t[0]*r[0][j] + t[1]*r[1][j] + t[2]*r[2][j])
		if separated(projection, ra+rb) {
			return false
		}
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := lhs.Axis[i].Cross(rhs.Axis[j])
			if axis.Length() <= geom.AxisEpsilon {
				continue
			}
			i1, i2 := (i+1)%3, (i+2)%3
			j1, j2 := (j+1)%3, (j+2)%3
			ra := extent(lhs.Extents, i1)*absR[i2][j] + extent(lhs.Extents, i2)*absR[i1][j]
			rb := extent(rhs.Extents, j1)*absR[i][j2] + extent(rhs.Extents, j2)*absR[i][j1]
			proj := math.Abs(t[i1]*r[i2][j] - t[i2]*r[i1][j])
			if separated(proj, ra+rb) {
				return false
			}
		}
	}

	return true
}
