package store

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.db")
	s, err := Open(path, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestSaveLoadAcrossReopen(t *testing.T) {
	s, path := openTemp(t)

	c := world.NewChunk(world.Pos{X: 32, Y: -16, Z: 0})
	c.SetVoxel(world.Pos{X: 4, Y: 5, Z: 6}, voxel.Voxel{ID: voxel.Glowstone, Shape: voxel.Cube})
	c.SetVoxel(world.Pos{X: 0, Y: 0, Z: 0}, voxel.New(voxel.Stone, voxel.Isosurface, -0.5))
	if err := s.Save(c); err != nil {
		t.Fatal(err)
	}

	// Visible before the writer catches up.
	got := world.NewChunk(c.Origin())
	if err := s.Load(got); err != nil {
		t.Fatalf("Load pending: %v", err)
	}
	if got.Voxel(world.Pos{X: 4, Y: 5, Z: 6}).ID != voxel.Glowstone {
		t.Fatal("pending save not visible")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n, b := s.Stats(); n != 1 || b == 0 {
		t.Fatalf("stats = %d chunks, %d bytes", n, b)
	}

	s2, err := Open(path, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got = world.NewChunk(c.Origin())
	if err := s2.Load(got); err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	for i := 0; i < world.ChunkVolume; i++ {
		if got.VoxelAt(i) != c.VoxelAt(i) {
			t.Fatalf("cell %v differs", world.IndexToLocal(i))
		}
	}
}

func TestLoadMissing(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	if err := s.Load(world.NewChunk(world.Pos{})); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load = %v, want ErrNotFound", err)
	}
}

func TestLatestSaveWins(t *testing.T) {
	s, _ := openTemp(t)
	c := world.NewChunk(world.Pos{})
	for id := uint16(1); id <= 5; id++ {
		c.SetVoxel(world.Pos{}, voxel.Voxel{ID: id, Shape: voxel.Cube})
		if err := s.Save(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if len(s.pending) != 0 {
		t.Fatalf("%d saves still pending after close", len(s.pending))
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatal("expected an error")
	}
}
