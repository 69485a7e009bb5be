package world

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"voxcore/internal/voxel"
)

func TestStandardGeneratorsImplementInterface(t *testing.T) {
	var _ Generator = NewNoiseGenerator(123)
	var _ Generator = NewFlatGenerator(10)
}

func TestFlatGeneratorGenerate(t *testing.T) {
	c := NewChunk(Pos{0, 0, 0})
	g := NewFlatGenerator(5)
	if err := g.Generate(c); err != nil {
		t.Fatal(err)
	}

	if v := c.Voxel(Pos{0, 4, 0}); v.ID != voxel.GrassBlock || !v.IsSolid() {
		t.Errorf("expected solid grass at y=4, got %+v", v)
	}
	if v := c.Voxel(Pos{3, 2, 3}); v.ID != voxel.Dirt {
		t.Errorf("expected dirt at y=2, got %d", v.ID)
	}
	if v := c.Voxel(Pos{0, 0, 0}); v.ID != voxel.Stone {
		t.Errorf("expected stone at y=0, got %d", v.ID)
	}
	if v := c.Voxel(Pos{0, 5, 0}); !v.IsNil() || v.IsSolid() {
		t.Errorf("expected air at y=5, got %+v", v)
	}
	// The surface sits half way between y=4 and y=5.
	if iso := c.Voxel(Pos{0, 5, 0}).Isovalue(); iso < 0.49 || iso > 0.51 {
		t.Errorf("isovalue above surface = %f, want 0.5", iso)
	}
}

// hashChunk computes a SHA-256 over every voxel of a chunk.
func hashChunk(c *Chunk) [32]byte {
	h := sha256.New()
	var buf [6]byte
	for i := 0; i < ChunkVolume; i++ {
		v := c.VoxelAt(i)
		binary.LittleEndian.PutUint16(buf[0:], v.ID)
		buf[2] = byte(v.Shape)
		buf[3] = v.RawIsovalue()
		binary.LittleEndian.PutUint16(buf[4:], uint16(v.Light))
		h.Write(buf[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func TestNoiseGeneratorDeterminism(t *testing.T) {
	origins := []Pos{{0, 0, 0}, {-16, 16, 32}, {48, -16, -64}}
	for _, o := range origins {
		a, b := NewChunk(o), NewChunk(o)
		if err := NewNoiseGenerator(99).Generate(a); err != nil {
			t.Fatal(err)
		}
		if err := NewNoiseGenerator(99).Generate(b); err != nil {
			t.Fatal(err)
		}
		if hashChunk(a) != hashChunk(b) {
			t.Fatalf("chunk %v differs between runs with the same seed", o)
		}
	}
}

func TestNoiseGeneratorLayers(t *testing.T) {
	g := NewNoiseGenerator(7)

	deep := NewChunk(Pos{0, -64, 0})
	if err := g.Generate(deep); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < ChunkVolume; i++ {
		if !deep.VoxelAt(i).IsSolid() {
			t.Fatalf("deep chunk has a void voxel at %v", IndexToLocal(i))
		}
	}

	sky := NewChunk(Pos{0, 128, 0})
	if err := g.Generate(sky); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < ChunkVolume; i++ {
		if v := sky.VoxelAt(i); v.IsSolid() || !v.IsNil() {
			t.Fatalf("sky chunk has matter at %v", IndexToLocal(i))
		}
	}
}

func TestNoisePopulateStaysInsideNeighborhood(t *testing.T) {
	g := NewNoiseGenerator(3)
	chunks := map[Pos]*Chunk{}
	h := g.SurfaceHeightAt(8, 8)
	center := ChunkOrigin(Pos{0, h, 0})
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				o := center.Add(Pos{x, y, z}.Mul(ChunkSize))
				c := NewChunk(o)
				if err := g.Generate(c); err != nil {
					t.Fatal(err)
				}
				chunks[o] = c
			}
		}
	}
	linkAll(chunks)
	c := chunks[center]
	if !c.IsNeighborsComplete() {
		t.Fatal("center should be complete")
	}
	// Must not panic on boundary-crossing writes.
	g.Populate(c)
}
