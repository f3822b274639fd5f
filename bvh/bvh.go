// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bvh builds a bounding volume hierarchy of OBBRSS volumes over an
// indexed triangle mesh, used to prune mesh-involving narrow-phase queries.
package bvh

import (
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/volume"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// defaultLeafTriangleThreshold is the maximum triangle count a leaf node
// may hold before the builder splits it further, when Build is called
// without an explicit threshold.
const defaultLeafTriangleThreshold = 4

// noChild marks a node with no left/right child (a leaf).
const noChild = ^uint32(0)

// Node is one entry of the flat node arena. Leaves carry FirstTriangle and
// TriangleCount into Model.TriangleOrder; internal nodes carry LeftChild and
// RightChild indices instead and report a zero TriangleCount.
type Node struct {
	Volume        volume.Obbrss
	LeftChild     uint32
	RightChild    uint32
	FirstTriangle uint32
	TriangleCount uint32
}

// IsLeaf reports whether n is a leaf node.
func (n Node) IsLeaf() bool { return n.LeftChild == noChild && n.RightChild == noChild }

// Model is a built BVH over a mesh's vertices and indices. It borrows no
// pointers into the caller's arrays; Build copies what it needs.
type Model struct {
	vertices      []geom.Vec3
	indices       []uint32
	leafThreshold int
	pcaEnabled    bool
	Nodes         []Node
	TriangleOrder []uint32
}

// Root returns the index of the root node, or -1 if the model is empty.
func (m *Model) Root() int {
	if len(m.Nodes) == 0 {
		return -1
	}
	return 0
}

// TriangleCount returns the number of triangles the model was built from.
func (m *Model) TriangleCount() int { return len(m.indices) / 3 }

// Vertex returns vertex i.
func (m *Model) Vertex(i uint32) geom.Vec3 { return m.vertices[i] }

// Triangle returns the three vertex indices of triangle order-position tri
// (an index into TriangleOrder, not a raw triangle id).
func (m *Model) Triangle(tri uint32) (a, b, c uint32) {
	base := m.TriangleOrder[tri] * 3
	return m.indices[base], m.indices[base+1], m.indices[base+2]
}

type triangleInfo struct {
	volume   volume.Obbrss
	centroid geom.Vec3
}

type buildContext struct {
	nodes         []Node
	infos         []triangleInfo
	order         []uint32
	leafThreshold uint32
}

// Build constructs a BVH from vertices/indices using the default leaf
// threshold (4) and PCA-aligned volumes. indexCount must be a multiple of
// 3 and every index must address a valid vertex, matching the original's
// ValidateIndices gate.
func Build(vertices []geom.Vec3, indices []uint32) (*Model, error) {
	return BuildTuned(vertices, indices, defaultLeafTriangleThreshold, true)
}

// BuildTuned is Build with the leaf threshold and PCA-fit toggle exposed,
// the knobs a caller's configuration may override: a lower threshold
// yields a deeper tree with tighter pruning at higher build cost; a
// disabled PCA fit yields looser, axis-aligned volumes without running
// the Jacobi eigen-sweep.
func BuildTuned(vertices []geom.Vec3, indices []uint32, leafThreshold int, pcaEnabled bool) (*Model, error) {
	if err := validateIndices(vertices, indices); err != nil {
		return nil, err
	}
	if leafThreshold < 1 {
		leafThreshold = defaultLeafTriangleThreshold
	}
	m := &Model{
		vertices:      append([]geom.Vec3(nil), vertices...),
		indices:       append([]uint32(nil), indices...),
		leafThreshold: leafThreshold,
		pcaEnabled:    pcaEnabled,
	}
	if err := m.rebuild(); err != nil {
		return nil, err
	}
	return m, nil
}

// Update replaces the mesh data and rebuilds the whole tree from scratch,
// keeping the model's existing leaf threshold and PCA setting; fcl3d
// never attempts incremental BVH refit, matching FclBvhUpdateModel's full
// BuildModelInternal call.
func (m *Model) Update(vertices []geom.Vec3, indices []uint32) error {
	if err := validateIndices(vertices, indices); err != nil {
		return err
	}
	old := *m
	m.vertices = append([]geom.Vec3(nil), vertices...)
	m.indices = append([]uint32(nil), indices...)
	if err := m.rebuild(); err != nil {
		*m = old
		return err
	}
	return nil
}

func validateIndices(vertices []geom.Vec3, indices []uint32) error {
	if len(vertices) == 0 || len(indices) < 3 {
		return chk.Err("bvh: need at least one vertex and one triangle")
	}
	if len(indices)%3 != 0 {
		return chk.Err("bvh: index count %d is not a multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return chk.Err("bvh: index %d out of range for %d vertices", idx, len(vertices))
		}
	}
	return nil
}

func (m *Model) rebuild() error {
	if m.leafThreshold < 1 {
		m.leafThreshold = defaultLeafTriangleThreshold
	}
	fitVolume := volume.FromPoints
	if !m.pcaEnabled {
		fitVolume = volume.FromPointsAligned
	}

	triCount := len(m.indices) / 3
	ctx := &buildContext{
		nodes:         make([]Node, 0, triCount*2),
		infos:         make([]triangleInfo, triCount),
		order:         make([]uint32, triCount),
		leafThreshold: uint32(m.leafThreshold),
	}

	for tri := 0; tri < triCount; tri++ {
		i0, i1, i2 := m.indices[tri*3], m.indices[tri*3+1], m.indices[tri*3+2]
		v0, v1, v2 := m.vertices[i0], m.vertices[i1], m.vertices[i2]
		ctx.infos[tri] = triangleInfo{
			volume:   fitVolume([]geom.Vec3{v0, v1, v2}),
			centroid: v0.Add(v1).Add(v2).Scale(1.0 / 3.0),
		}
		ctx.order[tri] = uint32(tri)
	}

	if triCount > 0 {
		buildRecursive(ctx, 0, uint32(triCount))
	}

	m.Nodes = ctx.nodes
	m.TriangleOrder = ctx.order
	return nil
}

func chooseSplitAxis(ctx *buildContext, begin, count uint32) int {
	minC := ctx.infos[ctx.order[begin]].centroid
	maxC := minC
	for i := uint32(1); i < count; i++ {
		c := ctx.infos[ctx.order[begin+i]].centroid
		minC = geom.Vec3{
			X: utl.Min(minC.X, c.X),
			Y: utl.Min(minC.Y, c.Y),
			Z: utl.Min(minC.Z, c.Z),
		}
		maxC = geom.Vec3{
			X: utl.Max(maxC.X, c.X),
			Y: utl.Max(maxC.Y, c.Y),
			Z: utl.Max(maxC.Z, c.Z),
		}
	}
	ext := maxC.Sub(minC)
	if ext.Y > ext.X && ext.Y >= ext.Z {
		return 1
	}
	if ext.Z > ext.X && ext.Z >= ext.Y {
		return 2
	}
	return 0
}

// buildRecursive appends one node per call (pre-order), returning its
// index. Internal nodes split on the widest centroid-extent axis via a
// median quickselect partition, matching the original's std::nth_element
// call, not a full sort.
func buildRecursive(ctx *buildContext, begin, count uint32) uint32 {
	nodeIndex := uint32(len(ctx.nodes))
	ctx.nodes = append(ctx.nodes, Node{
		LeftChild:     noChild,
		RightChild:    noChild,
		FirstTriangle: begin,
		TriangleCount: count,
	})

	combined := ctx.infos[ctx.order[begin]].volume
	for i := uint32(1); i < count; i++ {
		combined = volume.Merge(combined, ctx.infos[ctx.order[begin+i]].volume)
	}
	ctx.nodes[nodeIndex].Volume = combined

	if count <= ctx.leafThreshold {
		return nodeIndex
	}

	axis := chooseSplitAxis(ctx, begin, count)
	mid := begin + count/2
	quickselectByAxis(ctx, begin, begin+count, mid, axis)

	leftCount := mid - begin
	rightCount := count - leftCount

	left := buildRecursive(ctx, begin, leftCount)
	right := buildRecursive(ctx, mid, rightCount)
	ctx.nodes[nodeIndex].LeftChild = left
	ctx.nodes[nodeIndex].RightChild = right
	ctx.nodes[nodeIndex].FirstTriangle = 0
	ctx.nodes[nodeIndex].TriangleCount = 0
	return nodeIndex
}

// quickselectByAxis partitions order[lo:hi] in place so that order[k] holds
// the element that would be at position k under a full sort by the chosen
// axis's centroid component, without fully sorting the range. Go's stdlib
// has no nth_element equivalent; a small hand-rolled quickselect keeps the
// O(n) expected cost the original's std::nth_element call relies on.
func quickselectByAxis(ctx *buildContext, lo, hi, k uint32, axis int) {
	key := func(idx uint32) float64 { return ctx.infos[ctx.order[idx]].centroid.Component(axis) }
	for hi-lo > 1 {
		pivot := key(lo + (hi-lo)/2)
		i, j := lo, hi-1
		for i <= j {
			for key(i) < pivot {
				i++
			}
			for key(j) > pivot {
				j--
			}
			if i <= j {
				ctx.order[i], ctx.order[j] = ctx.order[j], ctx.order[i]
				i++
				if j == 0 {
					break
				}
				j--
			}
		}
		if k <= j {
			hi = j + 1
		} else if k >= i {
			lo = i
		} else {
			return
		}
	}
}
