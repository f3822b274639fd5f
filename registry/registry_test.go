// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"errors"
	"testing"

	fcl3d "github.com/cpmech/fcl3d"
	"github.com/cpmech/fcl3d/geom"
	"github.com/cpmech/gosl/chk"
)

func TestCreateSphereRejectsBadRadius(tst *testing.T) {
	chk.PrintTitle("CreateSphereRejectsBadRadius")

	r := New()
	_, err := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 0})
	if !errors.Is(err, fcl3d.ErrInvalidParameter) {
		tst.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestCreateMeshRejectsBadIndexCount(tst *testing.T) {
	chk.PrintTitle("CreateMeshRejectsBadIndexCount")

	r := New()
	_, err := r.CreateMesh(MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1},
	})
	if !errors.Is(err, fcl3d.ErrInvalidParameter) {
		tst.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestCreateObbAcceptsValidRotation(tst *testing.T) {
	chk.PrintTitle("CreateObbAcceptsValidRotation")

	r := New()
	_, err := r.CreateObb(ObbDesc{
		Center:   geom.Vec3{},
		Extents:  geom.Vec3{X: 1, Y: 1, Z: 1},
		Rotation: geom.Identity3,
	})
	if err != nil {
		tst.Errorf("expected identity rotation to be accepted, got %v", err)
	}
}

func TestCreateObbRejectsNonRotationMatrix(tst *testing.T) {
	chk.PrintTitle("CreateObbRejectsNonRotationMatrix")

	r := New()
	_, err := r.CreateObb(ObbDesc{
		Center:  geom.Vec3{},
		Extents: geom.Vec3{X: 1, Y: 1, Z: 1},
		Rotation: geom.Mat3{
			{2, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	})
	if !errors.Is(err, fcl3d.ErrInvalidParameter) {
		tst.Errorf("expected ErrInvalidParameter for a det!=1 rotation, got %v", err)
	}
}

func TestDestroyUnknownHandle(tst *testing.T) {
	chk.PrintTitle("DestroyUnknownHandle")

	r := New()
	err := r.Destroy(Handle(999))
	if !errors.Is(err, fcl3d.ErrInvalidHandle) {
		tst.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestDestroyBusyWhileAcquired(tst *testing.T) {
	chk.PrintTitle("DestroyBusyWhileAcquired")

	r := New()
	h, err := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 1})
	if err != nil {
		tst.Errorf("create failed: %v", err)
		return
	}
	snap, err := r.Acquire(h)
	if err != nil {
		tst.Errorf("acquire failed: %v", err)
		return
	}
	defer r.Release(snap.Handle)

	if err := r.Destroy(h); !errors.Is(err, fcl3d.ErrBusy) {
		tst.Errorf("expected ErrBusy while a reference is outstanding, got %v", err)
	}
}

func TestDestroySucceedsAfterRelease(tst *testing.T) {
	chk.PrintTitle("DestroySucceedsAfterRelease")

	r := New()
	h, _ := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 1})
	snap, _ := r.Acquire(h)
	r.Release(snap.Handle)

	if err := r.Destroy(h); err != nil {
		tst.Errorf("expected destroy to succeed once refs drop to zero, got %v", err)
	}
	if r.IsValid(h) {
		tst.Errorf("handle must be invalid after destroy")
	}
}

func TestUpdateMeshRejectsNonMeshHandle(tst *testing.T) {
	chk.PrintTitle("UpdateMeshRejectsNonMeshHandle")

	r := New()
	h, _ := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 1})
	err := r.UpdateMesh(h, MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	})
	if !errors.Is(err, fcl3d.ErrNotSupported) {
		tst.Errorf("expected ErrNotSupported, got %v", err)
	}
}

func TestUpdateMeshBusyWhileAcquired(tst *testing.T) {
	chk.PrintTitle("UpdateMeshBusyWhileAcquired")

	r := New()
	h, _ := r.CreateMesh(MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	})
	snap, _ := r.Acquire(h)
	defer r.Release(snap.Handle)

	err := r.UpdateMesh(h, MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 2}, {Y: 2}},
		Indices:  []uint32{0, 1, 2},
	})
	if !errors.Is(err, fcl3d.ErrBusy) {
		tst.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestAcquiredSnapshotSurvivesUpdateRejection(tst *testing.T) {
	chk.PrintTitle("AcquiredSnapshotSurvivesUpdateRejection")

	r := New()
	h, _ := r.CreateMesh(MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	})
	snap, _ := r.Acquire(h)
	_ = r.UpdateMesh(h, MeshDesc{Vertices: []geom.Vec3{{}, {X: 2}, {Y: 2}}, Indices: []uint32{0, 1, 2}})

	if len(snap.MeshVerts) != 3 {
		tst.Errorf("acquired snapshot must be unaffected by a rejected concurrent update")
	}
	r.Release(snap.Handle)
}

func TestBalancedAcquireReleaseRestoresRefcount(tst *testing.T) {
	chk.PrintTitle("BalancedAcquireReleaseRestoresRefcount")

	r := New()
	h, _ := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 1})
	for k := 0; k < 5; k++ {
		if _, err := r.Acquire(h); err != nil {
			tst.Fatalf("acquire %d failed: %v", k, err)
		}
	}
	for k := 0; k < 5; k++ {
		r.Release(h)
	}
	if err := r.Destroy(h); err != nil {
		tst.Errorf("expected destroy to succeed after balanced acquire/release pairs, got %v", err)
	}
}

func TestUpdateMeshSwapsPayload(tst *testing.T) {
	chk.PrintTitle("UpdateMeshSwapsPayload")

	r := New()
	h, _ := r.CreateMesh(MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	})
	replacement := MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 2}, {Y: 2}, {Z: 2}},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
	if err := r.UpdateMesh(h, replacement); err != nil {
		tst.Fatalf("update failed: %v", err)
	}

	snap, err := r.Acquire(h)
	if err != nil {
		tst.Fatalf("acquire failed: %v", err)
	}
	defer r.Release(h)
	if len(snap.MeshVerts) != len(replacement.Vertices) {
		tst.Fatalf("expected %d vertices after update, got %d", len(replacement.Vertices), len(snap.MeshVerts))
	}
	for i, v := range replacement.Vertices {
		if snap.MeshVerts[i] != v {
			tst.Errorf("vertex %d: expected %v, got %v", i, v, snap.MeshVerts[i])
		}
	}
	for i, idx := range replacement.Indices {
		if snap.MeshIdx[i] != idx {
			tst.Errorf("index %d: expected %v, got %v", i, idx, snap.MeshIdx[i])
		}
	}
}

func TestShutdownDrainsDespiteReferences(tst *testing.T) {
	chk.PrintTitle("ShutdownDrainsDespiteReferences")

	r := New()
	h, _ := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 1})
	if _, err := r.Acquire(h); err != nil {
		tst.Fatalf("acquire failed: %v", err)
	}
	r.Shutdown()
	if r.Count() != 0 {
		tst.Errorf("expected an empty table after shutdown, got %d entries", r.Count())
	}
	if r.IsValid(h) {
		tst.Error("expected the handle to be invalid after shutdown")
	}
}

func TestHandlesAreNeverReused(tst *testing.T) {
	chk.PrintTitle("HandlesAreNeverReused")

	r := New()
	h1, _ := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 1})
	_ = r.Destroy(h1)
	h2, _ := r.CreateSphere(SphereDesc{Center: geom.Vec3{}, Radius: 1})
	if h2 == h1 {
		tst.Errorf("expected a fresh handle, got the same value %v twice", h1)
	}
}

func TestNewTunedPcaDisabledYieldsAxisAlignedMesh(tst *testing.T) {
	chk.PrintTitle("NewTunedPcaDisabledYieldsAxisAlignedMesh")

	r := NewTuned(0, false)
	h, err := r.CreateMesh(MeshDesc{
		Vertices: []geom.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	})
	if err != nil {
		tst.Fatalf("create mesh failed: %v", err)
	}
	snap, err := r.Acquire(h)
	if err != nil {
		tst.Fatalf("acquire failed: %v", err)
	}
	defer r.Release(h)

	identity := [3]geom.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	root := snap.Bvh.Nodes[snap.Bvh.Root()]
	if root.Volume.Axis != identity {
		tst.Errorf("expected a PCA-disabled registry to fit axis-aligned volumes, got axes %v", root.Volume.Axis)
	}
}
