package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

// Volume is the voxel source a mesh is built from. Coordinates are relative to
// the chunk origin and cover [-1,16] on each axis; ok is false for voxels in
// chunks that are not loaded.
type Volume interface {
	Sample(x, y, z int) (voxel.Voxel, bool)
}

// VertexBuffer holds non-indexed triangle vertices. Positions are local to the
// chunk origin. UV.x carries the material id and UV.y the packed light, so the
// consumer can resolve textures and shading itself.
type VertexBuffer struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Normals   []mgl32.Vec3
	Indices   []uint32
}

func (b *VertexBuffer) add(pos, normal mgl32.Vec3, uv mgl32.Vec2) {
	b.Indices = append(b.Indices, uint32(len(b.Positions)))
	b.Positions = append(b.Positions, pos)
	b.Normals = append(b.Normals, normal)
	b.UVs = append(b.UVs, uv)
}

// addQuad appends corners c[0..3] as triangles (0,1,2) and (2,3,0).
func (b *VertexBuffer) addQuad(c [4]mgl32.Vec3, normal mgl32.Vec3, uv mgl32.Vec2) {
	for _, i := range quadOrder {
		b.add(c[i], normal, uv)
	}
}

// Len returns the number of vertices.
func (b *VertexBuffer) Len() int {
	return len(b.Positions)
}

// Quads returns the number of six-vertex quads in the buffer.
func (b *VertexBuffer) Quads() int {
	return len(b.Positions) / 6
}

// Empty reports whether the buffer has no geometry.
func (b *VertexBuffer) Empty() bool {
	return len(b.Positions) == 0
}

// CollisionMesh is a triangle soup, three consecutive points per triangle.
type CollisionMesh struct {
	Triangles []mgl32.Vec3
}

// NewCollisionMesh copies the triangles of a terrain buffer.
func NewCollisionMesh(terrain *VertexBuffer) CollisionMesh {
	tris := make([]mgl32.Vec3, len(terrain.Indices))
	for i, idx := range terrain.Indices {
		tris[i] = terrain.Positions[idx]
	}
	return CollisionMesh{Triangles: tris}
}

// ChunkMesh is everything one remesh produces for a chunk.
type ChunkMesh struct {
	Origin    world.Pos
	Terrain   VertexBuffer
	Foliage   VertexBuffer
	Liquid    VertexBuffer
	Collision CollisionMesh
}

// VertexCount returns the total vertices across all buffers.
func (m *ChunkMesh) VertexCount() int {
	return m.Terrain.Len() + m.Foliage.Len() + m.Liquid.Len()
}

// Bytes estimates the memory held by the mesh buffers.
func (m *ChunkMesh) Bytes() uint64 {
	const perVertex = 12 + 8 + 12 + 4
	return uint64(m.VertexCount()*perVertex + len(m.Collision.Triangles)*12)
}

// Build runs every meshing pass over vol. It only reads vol, so it is safe to
// call from a worker goroutine on a private snapshot.
func Build(origin world.Pos, vol Volume) *ChunkMesh {
	m := &ChunkMesh{Origin: origin}
	buildSurfaceNets(vol, &m.Terrain)
	buildBlocks(vol, &m.Terrain)
	buildFoliage(vol, &m.Foliage)
	buildLiquid(vol, &m.Liquid)
	m.Collision = NewCollisionMesh(&m.Terrain)
	return m
}

// BuildChunk meshes a neighborhood snapshot.
func BuildChunk(n *world.Neighborhood) *ChunkMesh {
	return Build(n.Origin(), n)
}

// sample reads a voxel, defaulting to air for unloaded positions.
func sample(vol Volume, x, y, z int) voxel.Voxel {
	v, _ := vol.Sample(x, y, z)
	return v
}

func packUV(material uint16, light voxel.Light) mgl32.Vec2 {
	return mgl32.Vec2{float32(material), float32(light)}
}
