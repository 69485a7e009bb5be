package meshing

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/config"
	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

var (
	solidStone = voxel.New(voxel.Stone, voxel.Isosurface, -1)
	openAir    = voxel.New(voxel.Air, voxel.Isosurface, 1)
)

// layeredChunk returns a chunk that is solid at y=0 and void above.
func layeredChunk() *world.Chunk {
	c := world.NewChunk(world.Pos{})
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			c.SetVoxel(world.Pos{X: x, Y: 0, Z: z}, solidStone)
			c.SetVoxel(world.Pos{X: x, Y: 1, Z: z}, openAir)
		}
	}
	return c
}

func triangleNormal(b *VertexBuffer, i int) mgl32.Vec3 {
	a := b.Positions[b.Indices[i]]
	e1 := b.Positions[b.Indices[i+1]].Sub(a)
	e2 := b.Positions[b.Indices[i+2]].Sub(a)
	return e1.Cross(e2)
}

func TestSingleLayerProducesHorizontalQuads(t *testing.T) {
	m := BuildChunk(layeredChunk().Neighborhood())

	if got := m.Terrain.Quads(); got != world.ChunkSize*world.ChunkSize {
		t.Fatalf("got %d quads, want %d", got, world.ChunkSize*world.ChunkSize)
	}
	for i, p := range m.Terrain.Positions {
		if math.Abs(float64(p.Y()-0.5)) > 1e-3 {
			t.Fatalf("vertex %d at y=%f, want 0.5", i, p.Y())
		}
		if n := m.Terrain.Normals[i]; !n.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
			t.Fatalf("vertex %d normal %v, want +Y", i, n)
		}
		if uv := m.Terrain.UVs[i]; uv.X() != float32(voxel.Stone) {
			t.Fatalf("vertex %d material %f, want stone", i, uv.X())
		}
	}
	for i := 0; i < len(m.Terrain.Indices); i += 3 {
		if n := triangleNormal(&m.Terrain, i); n.Y() <= 0 {
			t.Fatalf("triangle %d winds away from the void side: %v", i/3, n)
		}
	}
	if len(m.Collision.Triangles) != m.Terrain.Len() {
		t.Errorf("collision has %d points, terrain %d", len(m.Collision.Triangles), m.Terrain.Len())
	}
	if !m.Foliage.Empty() || !m.Liquid.Empty() {
		t.Error("foliage and liquid buffers should be empty")
	}
}

func TestInvertedLayerFacesDown(t *testing.T) {
	c := world.NewChunk(world.Pos{})
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			c.SetVoxel(world.Pos{X: x, Y: 4, Z: z}, openAir)
			c.SetVoxel(world.Pos{X: x, Y: 5, Z: z}, solidStone)
		}
		for y := 0; y < 4; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				c.SetVoxel(world.Pos{X: x, Y: y, Z: z}, openAir)
			}
		}
		for y := 6; y < world.ChunkSize; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				c.SetVoxel(world.Pos{X: x, Y: y, Z: z}, solidStone)
			}
		}
	}
	m := BuildChunk(c.Neighborhood())
	if m.Terrain.Quads() != world.ChunkSize*world.ChunkSize {
		t.Fatalf("got %d quads", m.Terrain.Quads())
	}
	for i := 0; i < len(m.Terrain.Indices); i += 3 {
		if n := triangleNormal(&m.Terrain, i); n.Y() >= 0 {
			t.Fatalf("ceiling triangle %d should face down, got %v", i/3, n)
		}
	}
}

func TestUniformFieldsProduceNoQuads(t *testing.T) {
	for _, fill := range []voxel.Voxel{solidStone, openAir, {}} {
		chunks := map[world.Pos]*world.Chunk{}
		for i := 0; i < world.NumNeighbors; i++ {
			o := world.Dir(i).Mul(world.ChunkSize)
			chunks[o] = world.NewChunk(o)
		}
		chunks[world.Pos{}] = world.NewChunk(world.Pos{})
		for _, c := range chunks {
			c.Fill(fill)
		}
		center := chunks[world.Pos{}]
		for i := 0; i < world.NumNeighbors; i++ {
			center.LinkNeighbor(i, chunks[world.Dir(i).Mul(world.ChunkSize)])
		}
		m := BuildChunk(center.Neighborhood())
		if !m.Terrain.Empty() {
			t.Errorf("uniform %+v: got %d terrain vertices", fill, m.Terrain.Len())
		}
	}
}

func TestFeaturePointFallsBackToCellCenter(t *testing.T) {
	c := world.NewChunk(world.Pos{})
	c.Fill(solidStone)
	s := newSurfaceNets(c.Neighborhood())
	for _, p := range []world.Pos{{X: 3, Y: 3, Z: 3}, {X: -1, Y: -1, Z: -1}, {X: 15, Y: 15, Z: 15}} {
		corners := cornerIndices(p.X, p.Y, p.Z)
		got := s.featurePoint(&corners)
		if got != (mgl32.Vec3{0.5, 0.5, 0.5}) {
			t.Errorf("cell %v: feature point %v, want center", p, got)
		}
		for _, f := range got {
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				t.Fatalf("non-finite feature point %v", got)
			}
		}
	}
}

func TestFeaturePointInterpolatesCrossing(t *testing.T) {
	c := world.NewChunk(world.Pos{})
	// Isovalues -0.5 below and +0.5 above: crossing halfway.
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			c.SetVoxel(world.Pos{X: x, Y: 2, Z: z}, voxel.New(voxel.Dirt, voxel.Isosurface, -0.25))
			c.SetVoxel(world.Pos{X: x, Y: 3, Z: z}, voxel.New(voxel.Air, voxel.Isosurface, 0.75))
			c.SetVoxel(world.Pos{X: x, Y: 0, Z: z}, solidStone)
			c.SetVoxel(world.Pos{X: x, Y: 1, Z: z}, solidStone)
		}
	}
	s := newSurfaceNets(c.Neighborhood())
	corners := cornerIndices(4, 2, 4)
	got := s.featurePoint(&corners)
	if math.Abs(float64(got.Y()-0.25)) > 0.01 {
		t.Errorf("feature point y = %f, want 0.25", got.Y())
	}
}

func TestAdjacencyTablesMatchWinding(t *testing.T) {
	for axis := 0; axis < 3; axis++ {
		var c [4]mgl32.Vec3
		for k := 0; k < 4; k++ {
			p := Adjacency(axis, k)
			c[k] = mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
		}
		n := c[1].Sub(c[0]).Cross(c[2].Sub(c[0]))
		want := mgl32.Vec3{}
		want[axis] = -1
		if !n.ApproxEqual(want) {
			t.Errorf("axis %d forward winding faces %v, want %v", axis, n, want)
		}
	}
}

func TestForceBlockyDisablesIsosurface(t *testing.T) {
	config.SetForceBlocky(true)
	defer config.SetForceBlocky(false)

	m := BuildChunk(layeredChunk().Neighborhood())
	for i, p := range m.Terrain.Positions {
		if math.Abs(float64(p.Y()-0.5)) < 1e-3 {
			t.Fatalf("vertex %d lies on the smooth surface", i)
		}
	}
	tops := 0
	for i, n := range m.Terrain.Normals {
		if n == (mgl32.Vec3{0, 1, 0}) && m.Terrain.Positions[i].Y() == 1 {
			tops++
		}
	}
	if tops != world.ChunkSize*world.ChunkSize*6 {
		t.Errorf("got %d top vertices, want one quad per column", tops)
	}
}

func BenchmarkBuildNoiseChunk(b *testing.B) {
	g := world.NewNoiseGenerator(1)
	chunks := map[world.Pos]*world.Chunk{}
	center := world.ChunkOrigin(world.Pos{Y: g.SurfaceHeightAt(0, 0)})
	for i := 0; i < world.NumNeighbors; i++ {
		o := center.Add(world.Dir(i).Mul(world.ChunkSize))
		chunks[o] = world.NewChunk(o)
	}
	chunks[center] = world.NewChunk(center)
	for _, c := range chunks {
		if err := g.Generate(c); err != nil {
			b.Fatal(err)
		}
	}
	c := chunks[center]
	for i := 0; i < world.NumNeighbors; i++ {
		c.LinkNeighbor(i, chunks[center.Add(world.Dir(i).Mul(world.ChunkSize))])
	}
	n := c.Neighborhood()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildChunk(n)
	}
}
