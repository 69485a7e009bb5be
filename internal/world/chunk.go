package world

import (
	"fmt"

	"voxcore/internal/voxel"
)

// Handle is an opaque render/collision resource owned by the consumer that
// uploaded a chunk's mesh. The engine only stores and hands it back.
type Handle any

// Chunk is a fixed 16x16x16 cube of voxels plus links to its loaded neighbors.
//
// Neighbor links are lookups only: the chunk system clears them when a chunk
// is despawned, and nothing else keeps a despawned chunk reachable.
type Chunk struct {
	origin    Pos
	voxels    [ChunkVolume]voxel.Voxel
	neighbors [NumNeighbors]*Chunk

	populated bool
	lit       bool
	edited    bool
	handle    Handle
}

// NewChunk creates an empty (all air) chunk. origin must be a chunk position.
func NewChunk(origin Pos) *Chunk {
	if !IsChunkPos(origin) {
		panic(fmt.Sprintf("world: %v is not a chunk origin", origin))
	}
	return &Chunk{origin: origin}
}

// Origin returns the world position of the chunk's (0,0,0) voxel.
func (c *Chunk) Origin() Pos {
	return c.origin
}

// Voxel returns the voxel at a local position. Panics when out of range.
func (c *Chunk) Voxel(lp Pos) voxel.Voxel {
	return c.voxels[LocalIndex(lp)]
}

// SetVoxel writes the voxel at a local position. No dirty tracking happens here.
func (c *Chunk) SetVoxel(lp Pos, v voxel.Voxel) {
	c.voxels[LocalIndex(lp)] = v
}

// VoxelAt returns the voxel at a local index.
func (c *Chunk) VoxelAt(i int) voxel.Voxel {
	return c.voxels[i]
}

// SetVoxelAt writes the voxel at a local index.
func (c *Chunk) SetVoxelAt(i int, v voxel.Voxel) {
	c.voxels[i] = v
}

// Fill sets every voxel of the chunk to v.
func (c *Chunk) Fill(v voxel.Voxel) {
	for i := range c.voxels {
		c.voxels[i] = v
	}
}

// Resolve maps a position relative to this chunk onto the chunk that owns it.
// rel may reach at most one chunk away on each axis. ok is false when the
// owning neighbor is not linked.
func (c *Chunk) Resolve(rel Pos) (owner *Chunk, lp Pos, ok bool) {
	if IsLocalPos(rel) {
		return c, rel, true
	}
	d := Pos{axisDir(rel.X), axisDir(rel.Y), axisDir(rel.Z)}
	i, ok := DirIndex(d)
	if !ok {
		return nil, Pos{}, false
	}
	lp = rel.Sub(d.Mul(ChunkSize))
	if !IsLocalPos(lp) {
		return nil, Pos{}, false
	}
	n := c.neighbors[i]
	if n == nil {
		return nil, Pos{}, false
	}
	return n, lp, true
}

func axisDir(v int) int {
	switch {
	case v < 0:
		return -1
	case v >= ChunkSize:
		return 1
	}
	return 0
}

// VoxelRelative reads a voxel that may lie in a neighboring chunk.
// ok is false when that neighbor is not loaded.
func (c *Chunk) VoxelRelative(rel Pos) (voxel.Voxel, bool) {
	owner, lp, ok := c.Resolve(rel)
	if !ok {
		return voxel.Voxel{}, false
	}
	return owner.voxels[LocalIndex(lp)], true
}

// SetVoxelRelative writes a voxel that may lie in a neighboring chunk and
// reports whether the write landed.
func (c *Chunk) SetVoxelRelative(rel Pos, v voxel.Voxel) bool {
	owner, lp, ok := c.Resolve(rel)
	if !ok {
		return false
	}
	owner.voxels[LocalIndex(lp)] = v
	return true
}

// Sample is VoxelRelative with separate coordinates.
func (c *Chunk) Sample(x, y, z int) (voxel.Voxel, bool) {
	return c.VoxelRelative(Pos{x, y, z})
}

// Neighbor returns the linked chunk in direction dir, or nil.
func (c *Chunk) Neighbor(dir int) *Chunk {
	return c.neighbors[dir]
}

// IsNeighborsComplete reports whether all 26 neighbor slots are linked.
func (c *Chunk) IsNeighborsComplete() bool {
	for _, n := range c.neighbors {
		if n == nil {
			return false
		}
	}
	return true
}

// LinkNeighbor links other as the neighbor in direction dir and links c
// into other's opposite slot.
func (c *Chunk) LinkNeighbor(dir int, other *Chunk) {
	if want := c.origin.Add(Dir(dir).Mul(ChunkSize)); other.origin != want {
		panic(fmt.Sprintf("world: linking %v as neighbor %d of %v, expected %v", other.origin, dir, c.origin, want))
	}
	c.neighbors[dir] = other
	other.neighbors[Opposite(dir)] = c
}

// UnlinkNeighbor clears slot dir and the reciprocal slot on the neighbor.
func (c *Chunk) UnlinkNeighbor(dir int) {
	n := c.neighbors[dir]
	if n == nil {
		return
	}
	if n.neighbors[Opposite(dir)] == c {
		n.neighbors[Opposite(dir)] = nil
	}
	c.neighbors[dir] = nil
}

// UnlinkAll detaches the chunk from every neighbor.
func (c *Chunk) UnlinkAll() {
	for i := range c.neighbors {
		c.UnlinkNeighbor(i)
	}
}

// LinkedNeighbors appends every linked neighbor to dst.
func (c *Chunk) LinkedNeighbors(dst []*Chunk) []*Chunk {
	for _, n := range c.neighbors {
		if n != nil {
			dst = append(dst, n)
		}
	}
	return dst
}

func (c *Chunk) Populated() bool     { return c.populated }
func (c *Chunk) SetPopulated(p bool) { c.populated = p }

// Lit reports whether skylight has been seeded into the chunk.
func (c *Chunk) Lit() bool     { return c.lit }
func (c *Chunk) SetLit(l bool) { c.lit = l }

// Edited reports whether the chunk changed since it was generated or restored.
func (c *Chunk) Edited() bool     { return c.edited }
func (c *Chunk) SetEdited(e bool) { c.edited = e }

// Handle returns the consumer's resource handle for this chunk's mesh.
func (c *Chunk) Handle() Handle {
	return c.handle
}

// SwapHandle installs h and returns the previous handle.
func (c *Chunk) SwapHandle(h Handle) Handle {
	old := c.handle
	c.handle = h
	return old
}
