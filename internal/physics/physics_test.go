package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

type gridSource map[world.Pos]voxel.Voxel

func (g gridSource) VoxelAt(p world.Pos) (voxel.Voxel, bool) {
	return g[p], true
}

var grass = voxel.Voxel{ID: voxel.GrassBlock, Shape: voxel.Cube}

func TestCollides(t *testing.T) {
	g := gridSource{{X: 0, Y: 0, Z: 0}: grass}
	body := BodyBox(mgl32.Vec3{0.5, 1, 0.5}, 0.3, 1.8)
	if Collides(g, body) {
		t.Fatal("body standing on the block should not collide")
	}
	body = BodyBox(mgl32.Vec3{0.5, 0.9, 0.5}, 0.3, 1.8)
	if !Collides(g, body) {
		t.Fatal("body sunk into the block should collide")
	}
	if Collides(g, BodyBox(mgl32.Vec3{1.4, 0.5, 0.5}, 0.3, 1.8)) {
		t.Fatal("body beside the block should not collide")
	}
}

func TestCollidesWithUnloaded(t *testing.T) {
	var src unloaded
	if !Collides(src, CellBox(world.Pos{})) {
		t.Fatal("unloaded cells should block")
	}
}

type unloaded struct{}

func (unloaded) VoxelAt(world.Pos) (voxel.Voxel, bool) { return voxel.Voxel{}, false }

func TestGroundLevel(t *testing.T) {
	g := gridSource{{X: 2, Y: 4, Z: -3}: grass, {X: 2, Y: 1, Z: -3}: grass}
	y, ok := GroundLevel(g, 2.5, -2.5, 10, 20)
	if !ok || y != 5 {
		t.Fatalf("ground = %f, %v; want 5", y, ok)
	}
	if _, ok := GroundLevel(g, 7, 7, 10, 20); ok {
		t.Fatal("empty column should have no ground")
	}
}

func BenchmarkRaycast(b *testing.B) {
	g := gridSource{}
	// Build a simple wall
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			g[world.Pos{X: x, Y: y, Z: 5}] = grass
		}
	}
	start := mgl32.Vec3{0, 8, 0}
	dir := mgl32.Vec3{0, 0, 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Raycast(g, start, dir, 0.1, 10.0)
	}
}
