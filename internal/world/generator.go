package world

import "voxcore/internal/voxel"

// Generator fills chunks for the chunk system.
//
// Generate runs on a worker goroutine against a fresh chunk that nothing
// else references yet; it may only use the chunk's origin. Populate runs on
// the driver goroutine once all 26 neighbors are linked and may write across
// the chunk boundary with SetVoxelRelative.
type Generator interface {
	Generate(c *Chunk) error
	Populate(c *Chunk)
}

// FlatGenerator produces an endless flat plain with its surface at Height.
type FlatGenerator struct {
	Height int
}

// NewFlatGenerator creates a flat generator with the surface at height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{Height: height}
}

// Generate fills voxels below Height with dirt (grass on top, stone deeper).
func (g *FlatGenerator) Generate(c *Chunk) error {
	o := c.Origin()
	for y := 0; y < ChunkSize; y++ {
		wy := o.Y + y
		v := voxel.New(flatMaterial(wy, g.Height), voxel.Isosurface, float32(wy-g.Height)+0.5)
		for x := 0; x < ChunkSize; x++ {
			for z := 0; z < ChunkSize; z++ {
				c.SetVoxel(Pos{x, y, z}, v)
			}
		}
	}
	return nil
}

func flatMaterial(wy, height int) uint16 {
	switch {
	case wy >= height:
		return voxel.Air
	case wy == height-1:
		return voxel.GrassBlock
	case wy >= height-4:
		return voxel.Dirt
	}
	return voxel.Stone
}

// Populate does nothing: the plain has no decoration.
func (g *FlatGenerator) Populate(c *Chunk) {}

// hash2 is a SplitMix64 style integer hash, stable across runs for the same inputs.
func hash2(x, z int64, seed int64) uint64 {
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}
