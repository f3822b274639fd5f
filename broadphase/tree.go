// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package broadphase

import (
	fcl3d "github.com/cpmech/fcl3d"
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/fcl3d/registry"
)

// treeNode is one entry of a flat, index-addressed AABB tree, the same
// arena shape bvh.Model uses for its OBBRSS tree: internal nodes carry
// child indices, leaves carry a single object index.
type treeNode struct {
	box         Aabb
	left, right int
	object      int // valid only on leaves
}

const treeNoChild = -1

func (n treeNode) isLeaf() bool { return n.left == treeNoChild && n.right == treeNoChild }

func mergeAabb(a, b Aabb) Aabb {
	return Aabb{Min: geom.Min(a.Min, b.Min), Max: geom.Max(a.Max, b.Max)}
}

func buildTree(boxes []Aabb) []treeNode {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	nodes := make([]treeNode, 0, len(boxes)*2)
	if len(boxes) > 0 {
		buildTreeRecursive(&nodes, boxes, order)
	}
	return nodes
}

func buildTreeRecursive(nodes *[]treeNode, boxes []Aabb, order []int) int {
	idx := len(*nodes)
	*nodes = append(*nodes, treeNode{left: treeNoChild, right: treeNoChild})

	combined := boxes[order[0]]
	for _, o := range order[1:] {
		combined = mergeAabb(combined, boxes[o])
	}
	(*nodes)[idx].box = combined

	if len(order) == 1 {
		(*nodes)[idx].object = order[0]
		return idx
	}

	extent := combined.Max.Sub(combined.Min)
	axis := 0
	if extent.Y > extent.X && extent.Y >= extent.Z {
		axis = 1
	} else if extent.Z > extent.X && extent.Z >= extent.Y {
		axis = 2
	}
	centroid := func(o int) float64 {
		b := boxes[o]
		return (b.Min.Component(axis) + b.Max.Component(axis)) * 0.5
	}
	sortByKey(order, centroid)

	mid := len(order) / 2
	left := buildTreeRecursive(nodes, boxes, order[:mid])
	right := buildTreeRecursive(nodes, boxes, order[mid:])
	(*nodes)[idx].left = left
	(*nodes)[idx].right = right
	(*nodes)[idx].object = -1
	return idx
}

// sortByKey is a small insertion sort: its O(n^2) worst case per level is
// no worse than the O(n^2) brute alternative it replaces the ordering for.
func sortByKey(order []int, key func(int) float64) {
	for i := 1; i < len(order); i++ {
		v := order[i]
		kv := key(v)
		j := i - 1
		for j >= 0 && key(order[j]) > kv {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = v
	}
}

// DetectTree is the "Tree" broadphase strategy: objects are inserted into
// a dynamic-AABB-tree-shaped arena (built fresh per call, since this
// engine has no persistent broadphase state to insert/remove against
// incrementally) and the tree is traversed against itself to find
// overlapping pairs. Output order is stable within a call but otherwise
// unspecified; the result set is identical to Detect's brute strategy.
func DetectTree(reg *registry.Registry, objects []Object, out []Pair) (int, error) {
	boxes := make([]Aabb, len(objects))
	for i, obj := range objects {
		snap, err := reg.Acquire(obj.Handle)
		if err != nil {
			return 0, err
		}
		boxes[i] = WorldAabb(snap, obj.Transform)
		reg.Release(obj.Handle)
	}

	nodes := buildTree(boxes)
	written, total := 0, 0
	if len(nodes) > 0 {
		root := 0
		walkSelf(nodes, root, root, &written, &total, out)
	}
	if total > len(out) {
		return total, fcl3d.ErrBufferTooSmall
	}
	return total, nil
}

// walkSelf recurses over pairs of subtrees rooted at i and j, pruning
// whenever their combined boxes don't overlap, and emits a Pair each time
// two distinct leaves overlap (with IndexA<IndexB ensured by swapping the
// two leaves' object indices when needed).
func walkSelf(nodes []treeNode, i, j int, written, total *int, out []Pair) {
	ni, nj := nodes[i], nodes[j]
	if !ni.box.overlaps(nj.box) {
		return
	}
	if ni.isLeaf() && nj.isLeaf() {
		if i == j {
			return
		}
		a, b := ni.object, nj.object
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		*total++
		if *written < len(out) {
			out[*written] = Pair{IndexA: a, IndexB: b}
			*written++
		}
		return
	}
	if i == j {
		if !ni.isLeaf() {
			walkSelf(nodes, ni.left, ni.left, written, total, out)
			walkSelf(nodes, ni.right, ni.right, written, total, out)
			walkSelf(nodes, ni.left, ni.right, written, total, out)
		}
		return
	}
	if ni.isLeaf() {
		walkSelf(nodes, i, nj.left, written, total, out)
		walkSelf(nodes, i, nj.right, written, total, out)
		return
	}
	if nj.isLeaf() {
		walkSelf(nodes, ni.left, j, written, total, out)
		walkSelf(nodes, ni.right, j, written, total, out)
		return
	}
	walkSelf(nodes, ni.left, nj.left, written, total, out)
	walkSelf(nodes, ni.left, nj.right, written, total, out)
	walkSelf(nodes, ni.right, nj.left, written, total, out)
	walkSelf(nodes, ni.right, nj.right, written, total, out)
}
