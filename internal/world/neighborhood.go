package world

import "voxcore/internal/voxel"

const apron = ChunkSize + 2

// Neighborhood is a read-only copy of a chunk plus a one-voxel apron taken
// from its linked neighbors. Meshing workers read it instead of live chunks,
// so edits on the driver goroutine never race with them.
type Neighborhood struct {
	origin  Pos
	voxels  [apron * apron * apron]voxel.Voxel
	defined [apron * apron * apron]bool
}

func apronIndex(x, y, z int) int {
	return ((x+1)*apron+(y+1))*apron + (z + 1)
}

// Neighborhood copies the chunk and its apron. Call it on the goroutine that
// owns the chunk map.
func (c *Chunk) Neighborhood() *Neighborhood {
	n := &Neighborhood{origin: c.origin}
	for x := -1; x <= ChunkSize; x++ {
		for y := -1; y <= ChunkSize; y++ {
			for z := -1; z <= ChunkSize; z++ {
				i := apronIndex(x, y, z)
				n.voxels[i], n.defined[i] = c.VoxelRelative(Pos{x, y, z})
			}
		}
	}
	return n
}

// Origin returns the origin of the chunk the snapshot was taken from.
func (n *Neighborhood) Origin() Pos {
	return n.origin
}

// Sample returns the voxel at a position relative to the chunk origin.
// Positions outside [-1,16] or in unloaded neighbors report ok=false.
func (n *Neighborhood) Sample(x, y, z int) (voxel.Voxel, bool) {
	if x < -1 || x > ChunkSize || y < -1 || y > ChunkSize || z < -1 || z > ChunkSize {
		return voxel.Voxel{}, false
	}
	i := apronIndex(x, y, z)
	return n.voxels[i], n.defined[i]
}
