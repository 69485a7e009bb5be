package world

import (
	"testing"

	"voxcore/internal/voxel"
)

// linkAll links every pair of chunks in the set that are neighbors.
func linkAll(chunks map[Pos]*Chunk) {
	for origin, c := range chunks {
		for i := 0; i < NumNeighbors; i++ {
			if n, ok := chunks[origin.Add(Dir(i).Mul(ChunkSize))]; ok {
				c.LinkNeighbor(i, n)
			}
		}
	}
}

func checkSymmetry(t *testing.T, chunks map[Pos]*Chunk) {
	t.Helper()
	for _, c := range chunks {
		for i := 0; i < NumNeighbors; i++ {
			if n := c.Neighbor(i); n != nil && n.Neighbor(Opposite(i)) != c {
				t.Fatalf("chunk %v slot %d -> %v is not reciprocated", c.Origin(), i, n.Origin())
			}
		}
	}
}

func TestThreeInARowNeverComplete(t *testing.T) {
	chunks := map[Pos]*Chunk{}
	for _, x := range []int{-16, 0, 16} {
		chunks[Pos{x, 0, 0}] = NewChunk(Pos{x, 0, 0})
	}
	for _, c := range chunks {
		if c.IsNeighborsComplete() {
			t.Fatal("unlinked chunk reported complete")
		}
	}
	linkAll(chunks)
	checkSymmetry(t, chunks)

	mid := chunks[Pos{0, 0, 0}]
	if mid.Neighbor(DirNegX) == nil || mid.Neighbor(DirPosX) == nil {
		t.Fatal("middle chunk should have both x faces linked")
	}
	linked := len(mid.LinkedNeighbors(nil))
	if linked != 2 {
		t.Fatalf("middle chunk has %d links, want 2", linked)
	}
	for origin, c := range chunks {
		if c.IsNeighborsComplete() {
			t.Errorf("chunk %v should not be complete", origin)
		}
	}
}

func TestFullNeighborhoodComplete(t *testing.T) {
	chunks := map[Pos]*Chunk{}
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				o := Pos{x, y, z}.Mul(ChunkSize)
				chunks[o] = NewChunk(o)
			}
		}
	}
	linkAll(chunks)
	checkSymmetry(t, chunks)
	center := chunks[Pos{}]
	if !center.IsNeighborsComplete() {
		t.Fatal("center chunk should be complete")
	}

	// Unlinking one side clears both slots.
	center.UnlinkNeighbor(DirPosY)
	if center.Neighbor(DirPosY) != nil || chunks[Pos{0, 16, 0}].Neighbor(DirNegY) != nil {
		t.Fatal("unlink left a dangling slot")
	}
	checkSymmetry(t, chunks)
	if center.IsNeighborsComplete() {
		t.Fatal("center should no longer be complete")
	}

	center.UnlinkAll()
	for _, c := range chunks {
		for i := 0; i < NumNeighbors; i++ {
			if c.Neighbor(i) == center {
				t.Fatalf("chunk %v still links the detached center", c.Origin())
			}
		}
	}
	checkSymmetry(t, chunks)
}

func TestVoxelRelativeCrossesBoundary(t *testing.T) {
	a := NewChunk(Pos{0, 0, 0})
	b := NewChunk(Pos{16, 0, 0})
	stone := voxel.New(voxel.Stone, voxel.Isosurface, -1)
	b.SetVoxel(Pos{0, 3, 4}, stone)

	if _, ok := a.VoxelRelative(Pos{16, 3, 4}); ok {
		t.Fatal("read through an unlinked neighbor should report no value")
	}
	a.LinkNeighbor(DirPosX, b)
	v, ok := a.VoxelRelative(Pos{16, 3, 4})
	if !ok || v != stone {
		t.Fatalf("relative read = %v, %v", v, ok)
	}
	if v, ok := b.VoxelRelative(Pos{-1, 0, 0}); !ok || !v.IsNil() {
		t.Fatalf("reverse read = %v, %v", v, ok)
	}
	if _, ok := a.VoxelRelative(Pos{40, 0, 0}); ok {
		t.Fatal("positions two chunks away must not resolve")
	}
	if !b.SetVoxelRelative(Pos{-16, 0, 0}, stone) || a.Voxel(Pos{0, 0, 0}) != stone {
		t.Fatal("relative write did not land in the neighbor")
	}
}

func TestLinkNeighborRejectsWrongOrigin(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic linking a non-adjacent chunk")
		}
	}()
	NewChunk(Pos{}).LinkNeighbor(DirPosX, NewChunk(Pos{0, 16, 0}))
}

func TestNeighborhoodSnapshot(t *testing.T) {
	a := NewChunk(Pos{0, 0, 0})
	up := NewChunk(Pos{0, 16, 0})
	a.LinkNeighbor(DirPosY, up)
	lamp := voxel.Voxel{ID: voxel.Glowstone, Shape: voxel.Cube}
	up.SetVoxel(Pos{2, 0, 2}, lamp)
	a.SetVoxel(Pos{1, 1, 1}, lamp)

	n := a.Neighborhood()
	if v, ok := n.Sample(2, 16, 2); !ok || v != lamp {
		t.Fatalf("apron sample = %v, %v", v, ok)
	}
	if v, ok := n.Sample(1, 1, 1); !ok || v != lamp {
		t.Fatalf("interior sample = %v, %v", v, ok)
	}
	if _, ok := n.Sample(-1, 0, 0); ok {
		t.Fatal("unlinked apron cell should be undefined")
	}
	if _, ok := n.Sample(17, 0, 0); ok {
		t.Fatal("outside the apron should be undefined")
	}

	// The snapshot is a copy.
	a.SetVoxel(Pos{1, 1, 1}, voxel.Voxel{})
	if v, _ := n.Sample(1, 1, 1); v != lamp {
		t.Fatal("snapshot changed after a live edit")
	}
}

func TestNewChunkRequiresOrigin(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a non-origin position")
		}
	}()
	NewChunk(Pos{1, 0, 0})
}
